package session

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMemorySize bounds the number of sessions kept by MemoryStore.
const DefaultMemorySize = 10000

// MemoryStore keeps preferences in a bounded in-process LRU cache.
// It is used when no Redis address is configured; preferences do not survive restarts.
type MemoryStore struct {
	cache *lru.Cache
}

// NewMemoryStore creates a store holding at most size sessions.
func NewMemoryStore(size int) (*MemoryStore, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	return &MemoryStore{cache: cache}, nil
}

// Load returns the preferences stored for id.
func (s *MemoryStore) Load(_ context.Context, id string) (Preferences, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return v.(Preferences), nil
}

// Save stores prefs for id, evicting the least recently used session when full.
func (s *MemoryStore) Save(_ context.Context, id string, prefs Preferences) error {
	s.cache.Add(id, prefs)
	return nil
}

// Delete removes the preferences of id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}
