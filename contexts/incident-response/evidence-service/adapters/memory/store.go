package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	domainerrors "pulseops/contexts/incident-response/evidence-service/domain/errors"
	"pulseops/contexts/incident-response/evidence-service/ports"
)

// Store implements both the metadata repository and the object store in
// memory for tests and single-node development runs.
type Store struct {
	mu       sync.RWMutex
	evidence map[string]ports.Evidence
	objects  map[string][]byte
}

func NewStore() *Store {
	return &Store{
		evidence: make(map[string]ports.Evidence),
		objects:  make(map[string][]byte),
	}
}

func (s *Store) Save(_ context.Context, evidence ports.Evidence) (ports.Evidence, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evidence[evidence.ID] = evidence
	return evidence, nil
}

func (s *Store) FindByID(_ context.Context, id string) (ports.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evidence, ok := s.evidence[id]
	if !ok {
		return ports.Evidence{}, domainerrors.ErrEvidenceNotFound
	}
	return evidence, nil
}

func (s *Store) ListByIncident(_ context.Context, incidentID string) ([]ports.Evidence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []ports.Evidence
	for _, evidence := range s.evidence {
		if evidence.IncidentID == incidentID {
			items = append(items, evidence)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UploadedAt.After(items[j].UploadedAt)
	})
	return items, nil
}

func (s *Store) Put(_ context.Context, key string, reader io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return nil
}

func (s *Store) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
