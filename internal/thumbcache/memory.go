package thumbcache

import (
	"context"
	"sync"
)

// MemoryStore is the in-process fallback backend. Entries do not survive a
// restart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]Asset
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Asset)}
}

func (s *MemoryStore) Get(_ context.Context, productID string) (Asset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[productID]
	return a, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, productID string, asset Asset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[productID] = asset
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, productID)
	return nil
}

func (s *MemoryStore) Durable() bool { return false }
