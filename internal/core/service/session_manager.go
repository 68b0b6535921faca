package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	tokenBytes        = 32
)

// SessionManager issues opaque tokens and keeps the session data in a
// pluggable ports.SessionStore.
type SessionManager struct {
	store   ports.SessionStore
	ttl     time.Duration
	sliding bool
	now     func() time.Time
	log     zerolog.Logger
}

// NewSessionManager returns a manager whose sessions expire ttl after creation,
// or after the last resolve when sliding is set.
func NewSessionManager(store ports.SessionStore, ttl time.Duration, sliding bool, log zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		store:   store,
		ttl:     ttl,
		sliding: sliding,
		now:     time.Now,
		log:     log,
	}
}

// TTL is the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Create(ctx context.Context, userID, username string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	now := m.now().UTC()
	sess := &domain.Session{
		UserID:    userID,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Save(ctx, token, sess, m.ttl); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

func (m *SessionManager) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, nil
	}

	sess, err := m.store.Load(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	now := m.now().UTC()
	if sess.Expired(now) {
		// The store should already have dropped it; make sure it stays gone.
		if err := m.store.Delete(ctx, token); err != nil {
			m.log.Warn().Err(err).Msg("failed to drop expired session")
		}
		return nil, nil
	}

	if m.sliding {
		if err := m.store.Touch(ctx, token, m.ttl); err != nil {
			m.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("failed to extend session")
		} else {
			sess.ExpiresAt = now.Add(m.ttl)
		}
	}
	return sess, nil
}

func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.Delete(ctx, token); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSessionDestroy, err)
	}
	return nil
}

// newToken returns 32 bytes from crypto/rand, base64url encoded.
func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
