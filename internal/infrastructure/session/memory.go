// Package session holds the in-process session store used for tests and
// local development. The Redis-backed store lives in db/redis.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

type entry struct {
	session   domain.Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in a map guarded by a mutex. Expired entries
// are dropped lazily on access and by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, token string, sess *domain.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = entry{session: *sess, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if !e.expiresAt.After(s.now()) {
		delete(s.entries, token)
		return nil, domain.ErrSessionNotFound
	}
	sess := e.session
	return &sess, nil
}

func (s *MemoryStore) Touch(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[token]
	if !ok || !e.expiresAt.After(s.now()) {
		delete(s.entries, token)
		return domain.ErrSessionNotFound
	}
	e.expiresAt = s.now().Add(ttl)
	e.session.ExpiresAt = e.expiresAt.UTC()
	s.entries[token] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}

// Sweep removes every expired entry and reports how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for token, e := range s.entries {
		if !e.expiresAt.After(now) {
			delete(s.entries, token)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is cancelled.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Len reports the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
