package ports

import (
	"context"
	"time"

	"pulseops/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ActivityItem is the feed projection of one consumed envelope. Immutable
// once written.
type ActivityItem struct {
	ID         string
	EventID    string
	Type       string
	IncidentID string
	OccurredAt time.Time
	Payload    map[string]any
}

// Repository is the activity feed storage port. Insert reports false when the
// event id was already projected, which makes at-least-once consumption
// idempotent.
type Repository interface {
	Insert(ctx context.Context, item ActivityItem) (bool, error)
	ListRecent(ctx context.Context, limit int) ([]ActivityItem, error)
	ListByIncident(ctx context.Context, incidentID string, limit int) ([]ActivityItem, error)
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, events.Envelope) error,
	) error
}

// DeadLetter parks envelopes whose projection failed. Implementations are
// best-effort; a nil DeadLetter disables parking.
type DeadLetter interface {
	Push(ctx context.Context, payload []byte, cause error)
}
