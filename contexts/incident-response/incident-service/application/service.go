package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
	domainerrors "pulseops/contexts/incident-response/incident-service/domain/errors"
	"pulseops/contexts/incident-response/incident-service/ports"
	"pulseops/internal/shared/events"
)

type Service struct {
	Repo        ports.Repository
	Publisher   events.Publisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type CreateIncidentInput struct {
	Title       string
	Description string
	Severity    string
	Assignee    string
	Tags        []string
}

type UpdateIncidentInput struct {
	Title       *string
	Description *string
	Severity    *string
	Assignee    *string
}

type ChangeStatusInput struct {
	Status    string
	Reason    string
	ChangedBy string
}

func (s Service) CreateIncident(ctx context.Context, input CreateIncidentInput, correlationID string) (entities.Incident, error) {
	if strings.TrimSpace(input.Title) == "" {
		return entities.Incident{}, domainerrors.ErrInvalidRequest
	}

	id, err := s.newIncidentID(ctx)
	if err != nil {
		return entities.Incident{}, err
	}

	now := s.now()
	incident := entities.Incident{
		ID:             id,
		Title:          input.Title,
		Description:    input.Description,
		Status:         entities.StatusOpen,
		Severity:       input.Severity,
		Assignee:       input.Assignee,
		Tags:           input.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastActivityAt: now,
	}

	saved, err := s.Repo.Save(ctx, incident)
	if err != nil {
		return entities.Incident{}, err
	}

	s.logger().Info("incident created",
		"event", "incident_created",
		"module", "incident-response/incident-service",
		"layer", "application",
		"incident_id", saved.ID,
		"severity", saved.Severity,
		"correlation_id", correlationID,
	)

	s.Publisher.Publish(ctx, events.TypeIncidentCreated, saved.ID, saved.ID, correlationID, map[string]any{
		"id":       saved.ID,
		"title":    saved.Title,
		"severity": saved.Severity,
		"status":   string(saved.Status),
		"assignee": saved.Assignee,
	})
	return saved, nil
}

func (s Service) GetIncident(ctx context.Context, id string) (entities.Incident, error) {
	return s.Repo.FindByID(ctx, id)
}

func (s Service) ListIncidents(ctx context.Context, statusRaw, severity string) ([]entities.Incident, error) {
	filter := ports.ListFilter{Severity: strings.TrimSpace(severity)}
	if strings.TrimSpace(statusRaw) != "" {
		status, err := entities.ParseStatus(statusRaw)
		if err != nil {
			return nil, domainerrors.ErrInvalidStatus
		}
		filter.Status = &status
	}
	return s.Repo.List(ctx, filter)
}

func (s Service) UpdateIncident(ctx context.Context, id string, input UpdateIncidentInput, correlationID string) (entities.Incident, error) {
	incident, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entities.Incident{}, err
	}

	if input.Title != nil {
		incident.Title = *input.Title
	}
	if input.Description != nil {
		incident.Description = *input.Description
	}
	if input.Severity != nil {
		incident.Severity = *input.Severity
	}
	if input.Assignee != nil {
		incident.Assignee = *input.Assignee
	}
	s.touch(&incident)

	saved, err := s.Repo.Save(ctx, incident)
	if err != nil {
		return entities.Incident{}, err
	}

	s.logger().Info("incident updated",
		"event", "incident_updated",
		"module", "incident-response/incident-service",
		"layer", "application",
		"incident_id", saved.ID,
		"correlation_id", correlationID,
	)

	s.Publisher.Publish(ctx, events.TypeIncidentUpdated, saved.ID, saved.ID, correlationID, map[string]any{
		"id":       saved.ID,
		"title":    saved.Title,
		"severity": saved.Severity,
		"status":   string(saved.Status),
		"assignee": saved.Assignee,
	})
	return saved, nil
}

func (s Service) ChangeStatus(ctx context.Context, id string, input ChangeStatusInput, correlationID string) (entities.Incident, error) {
	requested, err := entities.ParseStatus(input.Status)
	if err != nil {
		return entities.Incident{}, domainerrors.ErrInvalidStatus
	}

	incident, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return entities.Incident{}, err
	}

	current := incident.Status
	if !entities.CanTransition(current, requested) {
		s.logger().Warn("invalid status transition rejected",
			"event", "incident_transition_rejected",
			"module", "incident-response/incident-service",
			"layer", "application",
			"incident_id", id,
			"from", string(current),
			"to", string(requested),
			"correlation_id", correlationID,
		)
		return entities.Incident{}, &domainerrors.InvalidTransitionError{
			Current:   string(current),
			Requested: string(requested),
		}
	}

	incident.Status = requested
	s.touch(&incident)

	saved, err := s.Repo.Save(ctx, incident)
	if err != nil {
		return entities.Incident{}, err
	}

	s.logger().Info("incident status changed",
		"event", "incident_status_changed",
		"module", "incident-response/incident-service",
		"layer", "application",
		"incident_id", saved.ID,
		"from", string(current),
		"to", string(requested),
		"correlation_id", correlationID,
	)

	s.Publisher.Publish(ctx, events.TypeIncidentStatusChanged, saved.ID, saved.ID, correlationID, map[string]any{
		"id":             saved.ID,
		"previousStatus": string(current),
		"newStatus":      string(requested),
		"reason":         input.Reason,
		"changedBy":      input.ChangedBy,
	})
	return saved, nil
}

// touch records genuine activity: refreshes timestamps and clears any stale
// mark left by the detector.
func (s Service) touch(incident *entities.Incident) {
	now := s.now()
	incident.UpdatedAt = now
	incident.LastActivityAt = now
	incident.Stale = false
	incident.StaleDetectedAt = nil
}

func (s Service) newIncidentID(ctx context.Context) (string, error) {
	raw, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return "", err
	}
	compact := strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	if len(compact) > 20 {
		compact = compact[:20]
	}
	return "INC_" + compact, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
