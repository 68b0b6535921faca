package ports

import (
	"context"
	"time"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

// SessionStore is the server-side backing for session data, keyed by token.
type SessionStore interface {
	Save(ctx context.Context, token string, session *domain.Session, ttl time.Duration) error
	// Load returns domain.ErrSessionNotFound for unknown or expired tokens.
	Load(ctx context.Context, token string) (*domain.Session, error)
	// Touch moves the expiry of an existing session to ttl from now.
	Touch(ctx context.Context, token string, ttl time.Duration) error
	// Delete succeeds when the token is already gone.
	Delete(ctx context.Context, token string) error
}
