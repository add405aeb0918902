package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pulseops/contexts/incident-response/activity-service/adapters/memory"
	domainerrors "pulseops/contexts/incident-response/activity-service/domain/errors"
	"pulseops/contexts/incident-response/activity-service/ports"
)

func seedActivity(t *testing.T, store *memory.Store, n int, incidentID string, base time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		inserted, err := store.Insert(context.Background(), ports.ActivityItem{
			ID:         fmt.Sprintf("act-%s-%d", incidentID, i),
			EventID:    fmt.Sprintf("ev-%s-%d", incidentID, i),
			Type:       "incident.updated",
			IncidentID: incidentID,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil || !inserted {
			t.Fatalf("seed insert %d: inserted=%v err=%v", i, inserted, err)
		}
	}
}

func TestRecentActivityIsNewestFirstAndCapped(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	seedActivity(t, store, 60, "INC_1", base)

	service := Service{Repo: store}
	items, err := service.RecentActivity(context.Background())
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 50 {
		t.Fatalf("feed returned %d items, want cap of 50", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i].OccurredAt.After(items[i-1].OccurredAt) {
			t.Fatalf("feed out of order at %d", i)
		}
	}
}

func TestActivityForIncidentValidatesAndScopes(t *testing.T) {
	store := memory.NewStore()
	base := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	seedActivity(t, store, 3, "INC_1", base)
	seedActivity(t, store, 2, "INC_2", base)

	service := Service{Repo: store}

	items, err := service.ActivityForIncident(context.Background(), "INC_2")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("scoped feed returned %d items, want 2", len(items))
	}

	if _, err := service.ActivityForIncident(context.Background(), "  "); !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("blank incident id: got %v", err)
	}
}
