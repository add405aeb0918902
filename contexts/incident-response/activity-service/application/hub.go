package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pulseops/internal/shared/events"
)

// Hub multicasts envelopes to live observers. Each subscription owns a
// bounded channel; publishing never blocks, and a full observer buffer drops
// that observer's delivery only. There is no replay: an observer sees only
// envelopes published after it attached.
type Hub struct {
	mu        sync.Mutex
	subs      map[*Subscription]struct{}
	buffer    int
	heartbeat time.Duration
	logger    *slog.Logger

	// OnSubscribe/OnUnsubscribe/OnDrop are optional instrumentation hooks
	// wired at bootstrap.
	OnSubscribe   func()
	OnUnsubscribe func()
	OnDrop        func()
}

// Subscription is the per-observer handle. Close is idempotent and releases
// the observer's resources without affecting other observers.
type Subscription struct {
	ch   chan events.Envelope
	hub  *Hub
	once sync.Once
}

// Events is the lazy sequence of envelopes for this observer.
func (s *Subscription) Events() <-chan events.Envelope {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.detach(s)
	})
}

func NewHub(buffer int, heartbeat time.Duration, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Hub{
		subs:      make(map[*Subscription]struct{}),
		buffer:    buffer,
		heartbeat: heartbeat,
		logger:    logger,
	}
}

func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan events.Envelope, h.buffer), hub: h}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	count := len(h.subs)
	h.mu.Unlock()

	if h.OnSubscribe != nil {
		h.OnSubscribe()
	}
	if h.logger != nil {
		h.logger.Info("stream observer attached",
			"event", "stream_observer_attached",
			"module", "incident-response/activity-service",
			"layer", "application",
			"observers", count,
		)
	}
	return sub
}

func (h *Hub) detach(sub *Subscription) {
	h.mu.Lock()
	_, attached := h.subs[sub]
	delete(h.subs, sub)
	count := len(h.subs)
	h.mu.Unlock()

	if !attached {
		return
	}
	if h.OnUnsubscribe != nil {
		h.OnUnsubscribe()
	}
	if h.logger != nil {
		h.logger.Info("stream observer detached",
			"event", "stream_observer_detached",
			"module", "incident-response/activity-service",
			"layer", "application",
			"observers", count,
		)
	}
}

// Publish fans the envelope out to every attached observer. Never blocks the
// caller; a full observer buffer drops the delivery for that observer with a
// warning.
func (h *Hub) Publish(event events.Envelope) {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub.ch <- event:
		default:
			if h.OnDrop != nil {
				h.OnDrop()
			}
			if h.logger != nil {
				h.logger.Warn("dropping stream delivery for slow observer",
					"event", "stream_delivery_dropped",
					"module", "incident-response/activity-service",
					"layer", "application",
					"event_id", event.EventID,
					"event_type", event.Type,
				)
			}
		}
	}
}

// Run drives the heartbeat so idle connections are not reaped by
// intermediaries. Returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Publish(events.Envelope{
				EventID:    fmt.Sprintf("hb-%d", time.Now().UnixMilli()),
				Type:       events.TypeHeartbeat,
				OccurredAt: time.Now().UTC(),
			})
		}
	}
}
