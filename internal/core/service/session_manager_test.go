package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

type stubSessionStore struct {
	mu        sync.Mutex
	data      map[string]domain.Session
	saveErr   error
	loadErr   error
	deleteErr error
	touched   int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{data: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, token string, sess *domain.Session, _ time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = *sess
	return nil
}

func (s *stubSessionStore) Load(_ context.Context, token string) (*domain.Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *stubSessionStore) Touch(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.data[token]
	if !ok {
		return domain.ErrSessionNotFound
	}
	sess.ExpiresAt = time.Now().UTC().Add(ttl)
	s.data[token] = sess
	s.touched++
	return nil
}

func (s *stubSessionStore) Delete(_ context.Context, token string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}

func TestSessionManager_CreateResolve(t *testing.T) {
	store := newStubSessionStore()
	m := NewSessionManager(store, 0, false, zerolog.Nop())

	if m.TTL() != 24*time.Hour {
		t.Fatalf("expected default ttl of 24h, got %s", m.TTL())
	}

	token, err := m.Create(context.Background(), "u1", "bob")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(token) < 40 {
		t.Fatalf("token too short: %q", token)
	}

	sess, err := m.Resolve(context.Background(), token)
	if err != nil || sess == nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if sess.UserID != "u1" || sess.Username != "bob" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got := sess.ExpiresAt.Sub(sess.CreatedAt); got != 24*time.Hour {
		t.Fatalf("expected 24h lifetime, got %s", got)
	}
}

func TestSessionManager_TokensAreUnique(t *testing.T) {
	m := NewSessionManager(newStubSessionStore(), time.Hour, false, zerolog.Nop())
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := m.Create(context.Background(), "u1", "bob")
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestSessionManager_ResolveMissingOrUnknown(t *testing.T) {
	m := NewSessionManager(newStubSessionStore(), time.Hour, false, zerolog.Nop())

	for _, tok := range []string{"", "unknown"} {
		sess, err := m.Resolve(context.Background(), tok)
		if err != nil || sess != nil {
			t.Fatalf("token %q: expected nil, nil; got %+v, %v", tok, sess, err)
		}
	}
}

func TestSessionManager_ExpiredNeverResolves(t *testing.T) {
	store := newStubSessionStore()
	m := NewSessionManager(store, time.Hour, false, zerolog.Nop())

	token, _ := m.Create(context.Background(), "u1", "bob")
	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if sess, err := m.Resolve(context.Background(), token); err != nil || sess != nil {
		t.Fatalf("expected expired session to be gone, got %+v, %v", sess, err)
	}
	if _, ok := store.data[token]; ok {
		t.Fatalf("expired session left in store")
	}
}

func TestSessionManager_Sliding(t *testing.T) {
	store := newStubSessionStore()
	m := NewSessionManager(store, time.Hour, true, zerolog.Nop())

	token, _ := m.Create(context.Background(), "u1", "bob")
	if _, err := m.Resolve(context.Background(), token); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if store.touched != 1 {
		t.Fatalf("expected sliding resolve to touch the session")
	}
}

func TestSessionManager_DestroyIsIdempotent(t *testing.T) {
	m := NewSessionManager(newStubSessionStore(), time.Hour, false, zerolog.Nop())
	token, _ := m.Create(context.Background(), "u1", "bob")

	for i := 0; i < 2; i++ {
		if err := m.Destroy(context.Background(), token); err != nil {
			t.Fatalf("destroy #%d failed: %v", i+1, err)
		}
	}
	if sess, _ := m.Resolve(context.Background(), token); sess != nil {
		t.Fatalf("destroyed token resolved")
	}
}

func TestSessionManager_StorageErrors(t *testing.T) {
	store := newStubSessionStore()
	m := NewSessionManager(store, time.Hour, false, zerolog.Nop())

	store.deleteErr = errors.New("boom")
	if err := m.Destroy(context.Background(), "tok"); !errors.Is(err, domain.ErrSessionDestroy) {
		t.Fatalf("expected ErrSessionDestroy, got %v", err)
	}

	store.loadErr = errors.New("boom")
	if _, err := m.Resolve(context.Background(), "tok"); err == nil {
		t.Fatalf("expected resolve to surface storage error")
	}

	store.saveErr = errors.New("boom")
	if _, err := m.Create(context.Background(), "u1", "bob"); err == nil {
		t.Fatalf("expected create to surface storage error")
	}
}
