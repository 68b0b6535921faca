package ports

import (
	"context"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

// RegisterInput carries the fields of the registration form.
type RegisterInput struct {
	Email          string
	Username       string
	Password       string
	PasswordRepeat string
	RemoteIP       string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  *domain.User
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password, remoteIP string) (*LoginResult, error)
	Logout(ctx context.Context, token string, session *domain.Session, remoteIP string) error
	Profile(ctx context.Context, userID string) (*domain.User, error)
}

// SessionManager issues, resolves and destroys session tokens.
type SessionManager interface {
	Create(ctx context.Context, userID, username string) (string, error)
	// Resolve returns nil without error when the token is missing, unknown or expired.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	Destroy(ctx context.Context, token string) error
}
