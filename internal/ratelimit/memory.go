package ratelimit

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps windows in process memory. It is not shared between
// instances and does not survive a restart; use RedisStore for that.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*entry),
	}
}

var (
	_ Store   = (*MemoryStore)(nil)
	_ Sweeper = (*MemoryStore)(nil)
)

func (s *MemoryStore) Hit(_ context.Context, identifier string, limit int, window time.Duration, now time.Time) (Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entries[identifier]
	if e == nil || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		s.entries[identifier] = e
		return Window{Allowed: true, Count: 1, ResetAt: e.resetAt}, nil
	}

	if e.count >= limit {
		return Window{Allowed: false, Count: e.count, ResetAt: e.resetAt}, nil
	}

	e.count++
	return Window{Allowed: true, Count: e.count, ResetAt: e.resetAt}, nil
}

// Sweep removes every entry whose window elapsed before now.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.After(e.resetAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
