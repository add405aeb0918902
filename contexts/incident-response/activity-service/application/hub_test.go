package application

import (
	"context"
	"testing"
	"time"

	"pulseops/internal/shared/events"
)

func envelope(id string) events.Envelope {
	return events.Envelope{EventID: id, Type: events.TypeIncidentCreated}
}

func TestHubObserverSeesOnlyEventsAfterAttach(t *testing.T) {
	hub := NewHub(8, time.Minute, nil)

	hub.Publish(envelope("before"))

	sub := hub.Subscribe()
	defer sub.Close()

	hub.Publish(envelope("after"))

	select {
	case event := <-sub.Events():
		if event.EventID != "after" {
			t.Fatalf("observer received %q, want only post-attach events", event.EventID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case event := <-sub.Events():
		t.Fatalf("unexpected extra delivery %q; there is no replay", event.EventID)
	default:
	}
}

func TestHubObserversAreIndependent(t *testing.T) {
	hub := NewHub(8, time.Minute, nil)

	first := hub.Subscribe()
	second := hub.Subscribe()

	hub.Publish(envelope("e1"))
	first.Close()
	hub.Publish(envelope("e2"))

	got := drain(t, second, 2)
	if got[0] != "e1" || got[1] != "e2" {
		t.Fatalf("second observer saw %v, want [e1 e2]", got)
	}
}

func TestHubPublishNeverBlocksOnSlowObserver(t *testing.T) {
	hub := NewHub(1, time.Minute, nil)
	drops := 0
	hub.OnDrop = func() { drops++ }

	slow := hub.Subscribe()
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		hub.Publish(envelope("e1"))
		hub.Publish(envelope("e2"))
		hub.Publish(envelope("e3"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full observer buffer")
	}
	if drops != 2 {
		t.Fatalf("drops = %d, want 2 (buffer of 1)", drops)
	}
}

func TestHubHeartbeatArrivesWithoutDomainEvents(t *testing.T) {
	hub := NewHub(8, 20*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	sub := hub.Subscribe()
	defer sub.Close()

	deadline := time.After(2 * time.Second)
	beats := 0
	for beats < 2 {
		select {
		case event := <-sub.Events():
			if event.Type != events.TypeHeartbeat {
				t.Fatalf("unexpected event type %q on idle stream", event.Type)
			}
			if event.EventID == "" {
				t.Fatal("heartbeat must carry a frame id")
			}
			beats++
		case <-deadline:
			t.Fatalf("saw %d heartbeats before deadline, want 2", beats)
		}
	}
}

func TestHubCloseIsIdempotent(t *testing.T) {
	hub := NewHub(8, time.Minute, nil)
	detaches := 0
	hub.OnUnsubscribe = func() { detaches++ }

	sub := hub.Subscribe()
	sub.Close()
	sub.Close()

	if detaches != 1 {
		t.Fatalf("detach hook fired %d times, want 1", detaches)
	}
}

func drain(t *testing.T, sub *Subscription, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for len(ids) < n {
		select {
		case event := <-sub.Events():
			ids = append(ids, event.EventID)
		case <-time.After(time.Second):
			t.Fatalf("timed out after %d of %d deliveries", len(ids), n)
		}
	}
	return ids
}
