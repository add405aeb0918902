package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pulseops/contexts/incident-response/activity-service/ports"
	"pulseops/internal/shared/events"
)

type feedRepo struct {
	items     []ports.ActivityItem
	seen      map[string]struct{}
	insertErr error
}

func newFeedRepo() *feedRepo {
	return &feedRepo{seen: make(map[string]struct{})}
}

func (r *feedRepo) Insert(_ context.Context, item ports.ActivityItem) (bool, error) {
	if r.insertErr != nil {
		return false, r.insertErr
	}
	if _, dup := r.seen[item.EventID]; dup {
		return false, nil
	}
	r.seen[item.EventID] = struct{}{}
	r.items = append(r.items, item)
	return true, nil
}

func (r *feedRepo) ListRecent(_ context.Context, limit int) ([]ports.ActivityItem, error) {
	return r.items, nil
}

func (r *feedRepo) ListByIncident(_ context.Context, incidentID string, limit int) ([]ports.ActivityItem, error) {
	var out []ports.ActivityItem
	for _, item := range r.items {
		if item.IncidentID == incidentID {
			out = append(out, item)
		}
	}
	return out, nil
}

type feedIDGen struct {
	n int
}

func (g *feedIDGen) NewID(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("act-%d", g.n), nil
}

type recordingDLQ struct {
	parked int
}

func (d *recordingDLQ) Push(context.Context, []byte, error) { d.parked++ }

func domainEvent(eventID, eventType, incidentID string) events.Envelope {
	return events.Envelope{
		EventID:    eventID,
		Type:       eventType,
		IncidentID: incidentID,
		OccurredAt: time.Now().UTC(),
		Payload:    map[string]any{"id": incidentID},
	}
}

func TestRouterProjectsAndBroadcastsRelevantEvents(t *testing.T) {
	repo := newFeedRepo()
	hub := NewHub(8, time.Minute, nil)
	router := Router{Repo: repo, Hub: hub, IDGenerator: &feedIDGen{}}

	sub := hub.Subscribe()
	defer sub.Close()

	event := domainEvent("ev-1", events.TypeIncidentCreated, "INC_1")
	if err := router.Handle(context.Background(), event); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("projected %d items, want 1", len(repo.items))
	}
	if repo.items[0].EventID != "ev-1" || repo.items[0].IncidentID != "INC_1" {
		t.Fatalf("projection mismatch: %+v", repo.items[0])
	}

	select {
	case got := <-sub.Events():
		if got.EventID != "ev-1" {
			t.Fatalf("hub forwarded %q, want ev-1", got.EventID)
		}
	case <-time.After(time.Second):
		t.Fatal("envelope never reached the hub")
	}
}

func TestRouterIgnoresIrrelevantTypes(t *testing.T) {
	repo := newFeedRepo()
	hub := NewHub(8, time.Minute, nil)
	router := Router{Repo: repo, Hub: hub, IDGenerator: &feedIDGen{}}

	sub := hub.Subscribe()
	defer sub.Close()

	if err := router.Handle(context.Background(), domainEvent("ev-1", "billing.invoice_paid", "INC_1")); err != nil {
		t.Fatalf("irrelevant events must be dropped silently, got %v", err)
	}
	if len(repo.items) != 0 {
		t.Fatal("irrelevant event was projected")
	}
	select {
	case <-sub.Events():
		t.Fatal("irrelevant event was broadcast")
	default:
	}
}

func TestRouterDuplicateDeliveryIsNotRebroadcast(t *testing.T) {
	repo := newFeedRepo()
	hub := NewHub(8, time.Minute, nil)
	router := Router{Repo: repo, Hub: hub, IDGenerator: &feedIDGen{}}

	sub := hub.Subscribe()
	defer sub.Close()

	event := domainEvent("ev-1", events.TypeIncidentStatusChanged, "INC_1")
	if err := router.Handle(context.Background(), event); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	if err := router.Handle(context.Background(), event); err != nil {
		t.Fatalf("redelivery must be a no-op, got %v", err)
	}

	if len(repo.items) != 1 {
		t.Fatalf("duplicate projected: %d items", len(repo.items))
	}

	got := drain(t, sub, 1)
	if got[0] != "ev-1" {
		t.Fatalf("broadcast %v", got)
	}
	select {
	case <-sub.Events():
		t.Fatal("duplicate delivery was re-broadcast")
	default:
	}
}

func TestRouterParksFailedProjections(t *testing.T) {
	repo := newFeedRepo()
	repo.insertErr = errors.New("storage offline")
	dlq := &recordingDLQ{}
	router := Router{Repo: repo, Hub: NewHub(8, time.Minute, nil), IDGenerator: &feedIDGen{}, DeadLetter: dlq}

	err := router.Handle(context.Background(), domainEvent("ev-1", events.TypeEvidenceUploaded, "INC_1"))
	if err == nil {
		t.Fatal("expected projection error")
	}
	if dlq.parked != 1 {
		t.Fatalf("parked %d envelopes, want 1", dlq.parked)
	}
}
