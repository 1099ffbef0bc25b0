package otp

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	hash      string
	expiresAt time.Time
	misses    int
}

type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, entries: make(map[string]entry), now: time.Now}
}

func (s *MemoryStore) Put(_ context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = entry{hash: hash, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending(userID)
	if !ok {
		return "", ErrCodeNotFound
	}
	return e.hash, nil
}

func (s *MemoryStore) Fail(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending(userID)
	if !ok {
		return 0, ErrCodeNotFound
	}
	e.misses++
	s.entries[userID] = e
	return e.misses, nil
}

// pending returns the live entry for userID, dropping it if expired. Caller holds mu.
func (s *MemoryStore) pending(userID string) (entry, bool) {
	e, ok := s.entries[userID]
	if !ok {
		return entry{}, false
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, userID)
		return entry{}, false
	}
	return e, true
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
