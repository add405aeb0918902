package memory

import (
	"context"
	"sort"
	"sync"

	domainerrors "pulseops/contexts/identity-access/secrets-service/domain/errors"
	"pulseops/contexts/identity-access/secrets-service/ports"
)

type Store struct {
	mu   sync.RWMutex
	keys map[string]ports.APIKey
}

func NewStore() *Store {
	return &Store{keys: make(map[string]ports.APIKey)}
}

func (s *Store) Save(_ context.Context, key ports.APIKey) (ports.APIKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key.ID] = cloneKey(key)
	return key, nil
}

func (s *Store) FindByHash(_ context.Context, hash string) (ports.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, key := range s.keys {
		if key.KeyHash == hash {
			return cloneKey(key), nil
		}
	}
	return ports.APIKey{}, domainerrors.ErrKeyNotFound
}

func (s *Store) List(_ context.Context) ([]ports.APIKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]ports.APIKey, 0, len(s.keys))
	for _, key := range s.keys {
		keys = append(keys, cloneKey(key))
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].CreatedAt.After(keys[j].CreatedAt)
	})
	return keys, nil
}

func cloneKey(key ports.APIKey) ports.APIKey {
	clone := key
	if key.LastUsedAt != nil {
		lastUsed := *key.LastUsedAt
		clone.LastUsedAt = &lastUsed
	}
	return clone
}
