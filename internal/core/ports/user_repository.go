package ports

import (
	"context"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

// UserRepository defines persistence for registered users.
type UserRepository interface {
	// FindByUsername matches the normalized username exactly.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create inserts the user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the email or username is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
