package domain

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCorruptHash        = errors.New("corrupt password hash")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionDestroy     = errors.New("session destroy failed")
)

// InputError is a validation failure whose message is safe to show the client.
// It matches ErrValidation under errors.Is.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string { return e.Msg }

func (e *InputError) Unwrap() error { return ErrValidation }

// ValidationError returns an *InputError carrying msg.
func ValidationError(msg string) error {
	return &InputError{Msg: msg}
}
