// Package idempotency remembers request keys so a retried checkout is not
// charged twice.
package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps keys in process memory. It is used when no Redis is
// configured and in tests.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore creates a MemoryStore whose keys expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		keys: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Reserve records key and reports whether it was free.
func (s *MemoryStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expires, ok := s.keys[key]; ok && now.Before(expires) {
		return false, nil
	}
	s.keys[key] = now.Add(s.ttl)

	// Drop expired keys so the map does not grow without bound.
	for k, expires := range s.keys {
		if !now.Before(expires) {
			delete(s.keys, k)
		}
	}
	return true, nil
}

// Release forgets key so it can be reserved again.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
