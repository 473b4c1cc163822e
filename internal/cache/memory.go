package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	expiresAt time.Time
	value     []byte
}

// MemoryStore is the in-process default when redis is disabled. Expired
// entries are dropped lazily on read.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, nil
	}
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if time.Now().UTC().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	value := append([]byte(nil), entry.value...)
	return value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" || ttl <= 0 {
		return nil
	}
	cloned := append([]byte(nil), value...)
	s.mu.Lock()
	s.items[key] = memoryEntry{
		expiresAt: time.Now().UTC().Add(ttl),
		value:     cloned,
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	return nil
}
