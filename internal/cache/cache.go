package cache

import (
	"sync"
	"time"
)

// Entry wraps a stored value with its insertion time. An entry is valid while
// now - StoredAt < TTL; expired entries are treated as absent and overwritten
// on the next miss, never actively swept.
type Entry struct {
	Value    any
	StoredAt time.Time
}

// Store is a process-wide TTL cache. Concurrent readers/writers on disjoint
// keys are safe; there is no per-key single-flight, so two simultaneous
// misses on the same key both rebuild (accepted stampede).
type Store struct {
	mu  sync.RWMutex
	m   map[string]Entry
	ttl time.Duration
	now func() time.Time // test hook
}

func New(ttl time.Duration) *Store {
	return &Store{
		m:   make(map[string]Entry),
		ttl: ttl,
		now: time.Now,
	}
}

// NewWithClock is New with an injected clock, for deterministic expiry tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Store {
	s := New(ttl)
	s.now = now
	return s
}

func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.now().Sub(e.StoredAt) >= s.ttl {
		return nil, false
	}
	return e.Value, true
}

func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	s.m[key] = Entry{Value: value, StoredAt: s.now()}
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) TTL() time.Duration { return s.ttl }
