package kvstore

import (
	"context"
	"sync"

	portsrepo "github.com/SscSPs/expense_tracker_app/internal/core/ports/repositories"
)

// MemoryStore is a process-local KeyValueStore. Values are copied on the
// way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

var _ portsrepo.KeyValueStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// Get implements portsrepo.KeyValueStore.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements portsrepo.KeyValueStore.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}
