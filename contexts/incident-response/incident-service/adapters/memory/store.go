package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
	domainerrors "pulseops/contexts/incident-response/incident-service/domain/errors"
	"pulseops/contexts/incident-response/incident-service/ports"
)

// Store is the in-memory incident repository used for tests and single-node
// development runs.
type Store struct {
	mu        sync.RWMutex
	incidents map[string]entities.Incident
}

func NewStore() *Store {
	return &Store{incidents: make(map[string]entities.Incident)}
}

func (s *Store) Save(_ context.Context, incident entities.Incident) (entities.Incident, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents[incident.ID] = cloneIncident(incident)
	return incident, nil
}

func (s *Store) FindByID(_ context.Context, id string) (entities.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	incident, ok := s.incidents[id]
	if !ok {
		return entities.Incident{}, domainerrors.ErrIncidentNotFound
	}
	return cloneIncident(incident), nil
}

func (s *Store) List(_ context.Context, filter ports.ListFilter) ([]entities.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		if filter.Status != nil && incident.Status != *filter.Status {
			continue
		}
		if filter.Severity != "" && incident.Severity != filter.Severity {
			continue
		}
		items = append(items, cloneIncident(incident))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) FindStale(_ context.Context, statuses []entities.Status, threshold time.Time) ([]entities.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[entities.Status]struct{}, len(statuses))
	for _, status := range statuses {
		wanted[status] = struct{}{}
	}

	var items []entities.Incident
	for _, incident := range s.incidents {
		if incident.Stale {
			continue
		}
		if _, ok := wanted[incident.Status]; !ok {
			continue
		}
		if !incident.LastActivityAt.Before(threshold) {
			continue
		}
		items = append(items, cloneIncident(incident))
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastActivityAt.Before(items[j].LastActivityAt)
	})
	return items, nil
}

func cloneIncident(incident entities.Incident) entities.Incident {
	incident.Tags = append([]string(nil), incident.Tags...)
	if incident.StaleDetectedAt != nil {
		at := *incident.StaleDetectedAt
		incident.StaleDetectedAt = &at
	}
	return incident
}
