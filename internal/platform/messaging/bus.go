package messaging

import (
	"context"
	"log/slog"
	"sync"

	"pulseops/internal/platform/metrics"
	"pulseops/internal/shared/events"
)

// Bus is the in-process event bus used for single-process deployments and
// tests. Broadcast semantics: every subscriber of a topic receives every
// event published after it attached, in publish order. Each subscriber owns
// a bounded buffer; a full buffer drops the delivery for that subscriber only
// and never blocks the publisher.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	logger      *slog.Logger
}

const subscriberBuffer = 128

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	subs := append([]chan events.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			metrics.BusDropped.Inc()
			if b.logger != nil {
				b.logger.Warn("dropping event for slow subscriber",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
					"event_type", event.Type,
				)
			}
		}
	}

	metrics.EventsPublished.WithLabelValues(event.Type).Inc()
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	ch := make(chan events.Envelope, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				b.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil {
					// Per-message errors are isolated: log and keep consuming.
					if b.logger != nil {
						b.logger.Error("consumer handler failed",
							"event", "bus_consume_failed",
							"module", "internal/platform/messaging",
							"layer", "platform",
							"topic", topic,
							"consumer_group", consumerGroup,
							"event_id", event.EventID,
							"event_type", event.Type,
							"correlation_id", event.CorrelationID,
							"error", err.Error(),
						)
					}
					continue
				}
				metrics.EventsConsumed.WithLabelValues(event.Type).Inc()
			}
		}
	}()
	return nil
}

func (b *Bus) removeSubscriber(topic string, target chan events.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
