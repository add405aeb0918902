package workers

import (
	"context"
	"log/slog"
	"time"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
	"pulseops/contexts/incident-response/incident-service/ports"
	"pulseops/internal/shared/correlation"
	"pulseops/internal/shared/events"
)

// activeStatuses are the states a stale incident can be stuck in: not yet
// opened work is expected to be idle, and CLOSED is terminal.
var activeStatuses = []entities.Status{
	entities.StatusInvestigating,
	entities.StatusMitigated,
}

// StaleDetector sweeps for incidents with no recorded activity inside the
// threshold window and emits a synthetic incident.stale_detected event per
// match. Marking an incident stale records StaleDetectedAt but leaves
// LastActivityAt alone: the detector's write is monitoring output, not an
// activity signal, so it can never suppress a later genuine staleness check
// or race a human edit's freshness.
type StaleDetector struct {
	Repo      ports.Repository
	Publisher events.Publisher
	Clock     ports.Clock
	Threshold time.Duration
	Logger    *slog.Logger
}

func (d StaleDetector) RunOnce(ctx context.Context) error {
	logger := d.logger()
	now := d.now()
	threshold := now.Add(-d.threshold())

	stale, err := d.Repo.FindStale(ctx, activeStatuses, threshold)
	if err != nil {
		logger.Error("stale incident sweep failed",
			"event", "stale_sweep_failed",
			"module", "incident-response/incident-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	if len(stale) > 0 {
		logger.Info("stale incidents found",
			"event", "stale_sweep_matched",
			"module", "incident-response/incident-service",
			"layer", "worker",
			"count", len(stale),
			"threshold", d.threshold().String(),
		)
	}

	for _, incident := range stale {
		// A save conflict on one incident must not abort the rest of the sweep.
		d.markStale(ctx, incident, now)
	}
	return nil
}

func (d StaleDetector) markStale(ctx context.Context, incident entities.Incident, now time.Time) {
	logger := d.logger()

	staleSince := incident.LastActivityAt
	incident.Stale = true
	incident.StaleDetectedAt = &now
	incident.UpdatedAt = now

	saved, err := d.Repo.Save(ctx, incident)
	if err != nil {
		logger.Error("failed to mark incident stale",
			"event", "stale_mark_failed",
			"module", "incident-response/incident-service",
			"layer", "worker",
			"incident_id", incident.ID,
			"error", err.Error(),
		)
		return
	}

	correlationID := correlation.Synthesize("stale-detector")
	logger.Info("incident marked stale",
		"event", "incident_marked_stale",
		"module", "incident-response/incident-service",
		"layer", "worker",
		"incident_id", saved.ID,
		"status", string(saved.Status),
		"stale_since", staleSince,
		"correlation_id", correlationID,
	)

	d.Publisher.Publish(ctx, events.TypeIncidentStaleDetected, saved.ID, saved.ID, correlationID, map[string]any{
		"id":         saved.ID,
		"status":     string(saved.Status),
		"severity":   saved.Severity,
		"assignee":   saved.Assignee,
		"staleSince": staleSince,
		"detectedAt": now,
	})
}

func (d StaleDetector) threshold() time.Duration {
	if d.Threshold <= 0 {
		return 30 * time.Minute
	}
	return d.Threshold
}

func (d StaleDetector) now() time.Time {
	if d.Clock == nil {
		return time.Now().UTC()
	}
	return d.Clock.Now().UTC()
}

func (d StaleDetector) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
