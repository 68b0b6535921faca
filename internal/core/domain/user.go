package domain

import (
	"strings"
	"time"
)

const (
	MinEmailLength    = 3
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// User models a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NormalizeUsername trims and lower-cases a username. Every read and write of
// a username goes through it, which makes uniqueness case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Validate checks the stored fields of a user about to be created.
func (u *User) Validate() error {
	switch {
	case strings.TrimSpace(u.Email) == "":
		return ValidationError("email is required")
	case len(u.Email) < MinEmailLength:
		return ValidationError("email must be at least 3 characters")
	case u.Username == "":
		return ValidationError("username is required")
	case len(u.Username) < MinUsernameLength:
		return ValidationError("username must be at least 3 characters")
	case u.PasswordHash == "":
		return ValidationError("password is required")
	}
	return nil
}
