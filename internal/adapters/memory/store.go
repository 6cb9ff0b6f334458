package memory

import (
	"context"
	"sync"
	"time"

	"github.com/samirrijal/geovocab/internal/core/domain"
)

type entry struct {
	data    []byte
	expires time.Time
}

// SessionStore keeps session snapshots in a map. Expired entries are dropped
// on read and by Sweep.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]entry), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, id string, state []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = entry{data: append([]byte(nil), state...), expires: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !s.now().Before(e.expires) {
		delete(s.entries, id)
		return nil, domain.ErrSessionNotFound
	}
	return append([]byte(nil), e.data...), nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Ping always succeeds.
func (s *SessionStore) Ping(context.Context) error { return nil }
