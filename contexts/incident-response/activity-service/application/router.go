package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pulseops/contexts/incident-response/activity-service/ports"
	"pulseops/internal/shared/events"
)

// relevantEventTypes is the static allow-list of envelope types the activity
// feed projects. Everything else is discarded without side effect.
var relevantEventTypes = map[string]struct{}{
	events.TypeIncidentCreated:       {},
	events.TypeIncidentUpdated:       {},
	events.TypeIncidentStatusChanged: {},
	events.TypeIncidentStaleDetected: {},
	events.TypeEvidenceUploaded:      {},
}

// Router subscribes to the domain-event topic, projects relevant envelopes
// into activity records and forwards them, unmodified, to the broadcast hub.
// Consumption is at-least-once: the repository's event-id uniqueness makes
// redelivery a no-op.
type Router struct {
	Repo          ports.Repository
	Hub           *Hub
	Subscriber    ports.EventSubscriber
	IDGenerator   ports.IDGenerator
	DeadLetter    ports.DeadLetter
	Topic         string
	ConsumerGroup string
	Logger        *slog.Logger
}

const defaultConsumerGroup = "activity-service-cg"

func (r Router) Start(ctx context.Context) error {
	topic := r.Topic
	if topic == "" {
		topic = events.Topic
	}
	group := r.ConsumerGroup
	if group == "" {
		group = defaultConsumerGroup
	}
	return r.Subscriber.Subscribe(ctx, topic, group, r.Handle)
}

// Handle processes one envelope. Errors are per-message: the caller logs and
// keeps consuming.
func (r Router) Handle(ctx context.Context, event events.Envelope) error {
	logger := r.logger()

	if _, ok := relevantEventTypes[event.Type]; !ok {
		logger.Debug("ignoring irrelevant event type",
			"event", "activity_event_ignored",
			"module", "incident-response/activity-service",
			"layer", "application",
			"event_type", event.Type,
			"correlation_id", event.CorrelationID,
		)
		return nil
	}

	id, err := r.IDGenerator.NewID(ctx)
	if err != nil {
		return fmt.Errorf("generate activity id: %w", err)
	}

	inserted, err := r.Repo.Insert(ctx, ports.ActivityItem{
		ID:         id,
		EventID:    event.EventID,
		Type:       event.Type,
		IncidentID: event.IncidentID,
		OccurredAt: event.OccurredAt,
		Payload:    event.Payload,
	})
	if err != nil {
		r.park(ctx, event, err)
		return fmt.Errorf("project activity: %w", err)
	}
	if !inserted {
		logger.Debug("duplicate delivery ignored",
			"event", "activity_event_replayed",
			"module", "incident-response/activity-service",
			"layer", "application",
			"event_id", event.EventID,
			"correlation_id", event.CorrelationID,
		)
		return nil
	}

	logger.Info("activity stored",
		"event", "activity_stored",
		"module", "incident-response/activity-service",
		"layer", "application",
		"activity_id", id,
		"event_id", event.EventID,
		"event_type", event.Type,
		"incident_id", event.IncidentID,
		"correlation_id", event.CorrelationID,
	)

	r.Hub.Publish(event)
	return nil
}

func (r Router) park(ctx context.Context, event events.Envelope, cause error) {
	if r.DeadLetter == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	r.DeadLetter.Push(ctx, payload, cause)
}

func (r Router) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}
