package memory

import (
	"context"
	"sort"
	"sync"

	"pulseops/contexts/incident-response/activity-service/ports"
)

// Store is the in-memory activity repository. Event-id uniqueness is enforced
// here the same way the postgres adapter does with a unique index.
type Store struct {
	mu       sync.RWMutex
	items    []ports.ActivityItem
	eventIDs map[string]struct{}
}

func NewStore() *Store {
	return &Store{eventIDs: make(map[string]struct{})}
}

func (s *Store) Insert(_ context.Context, item ports.ActivityItem) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.eventIDs[item.EventID]; seen {
		return false, nil
	}
	s.eventIDs[item.EventID] = struct{}{}
	s.items = append(s.items, cloneItem(item))
	return true, nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]ports.ActivityItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(func(ports.ActivityItem) bool { return true }, limit), nil
}

func (s *Store) ListByIncident(_ context.Context, incidentID string, limit int) ([]ports.ActivityItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.newestFirst(func(item ports.ActivityItem) bool {
		return item.IncidentID == incidentID
	}, limit), nil
}

func (s *Store) newestFirst(match func(ports.ActivityItem) bool, limit int) []ports.ActivityItem {
	items := make([]ports.ActivityItem, 0, limit)
	for _, item := range s.items {
		if match(item) {
			items = append(items, cloneItem(item))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].OccurredAt.After(items[j].OccurredAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

func cloneItem(item ports.ActivityItem) ports.ActivityItem {
	if item.Payload != nil {
		payload := make(map[string]any, len(item.Payload))
		for k, v := range item.Payload {
			payload[k] = v
		}
		item.Payload = payload
	}
	return item
}
