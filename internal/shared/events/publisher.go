package events

import (
	"context"
	"log/slog"
)

// Bus is the transport side of publishing. Implementations live in
// internal/platform/messaging.
type Bus interface {
	Publish(ctx context.Context, topic string, event Envelope) error
}

// Publisher builds envelopes and hands them to the bus. Publishing is
// fire-and-forget: domain state is already durably committed by the time an
// event is emitted, so a transport failure degrades observability, not
// correctness. Failures are logged and swallowed, never retried.
type Publisher struct {
	Producer string
	Topic    string
	Bus      Bus
	Logger   *slog.Logger
}

func (p Publisher) Publish(ctx context.Context, eventType, incidentID, entityID, correlationID string, payload map[string]any) {
	topic := p.Topic
	if topic == "" {
		topic = Topic
	}

	event := New(eventType, p.Producer, incidentID, entityID, correlationID, payload)
	if err := p.Bus.Publish(ctx, topic, event); err != nil {
		if p.Logger != nil {
			p.Logger.Error("event publish failed",
				"event", "event_publish_failed",
				"module", "internal/shared/events",
				"layer", "application",
				"event_id", event.EventID,
				"event_type", eventType,
				"incident_id", incidentID,
				"correlation_id", correlationID,
				"error", err.Error(),
			)
		}
		return
	}
	if p.Logger != nil {
		p.Logger.Debug("event published",
			"event", "event_published",
			"module", "internal/shared/events",
			"layer", "application",
			"event_id", event.EventID,
			"event_type", eventType,
			"incident_id", incidentID,
			"correlation_id", correlationID,
		)
	}
}
