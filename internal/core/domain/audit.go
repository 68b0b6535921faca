package domain

import "time"

// AuthEventKind names what happened in an AuthEvent.
type AuthEventKind string

const (
	EventRegistered     AuthEventKind = "registered"
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
	EventLoggedOut      AuthEventKind = "logged_out"
)

// AuthEvent is an entry of the authentication audit trail.
type AuthEvent struct {
	Kind       AuthEventKind
	Username   string
	UserID     string // empty when the username did not resolve
	RemoteIP   string
	OccurredAt time.Time
}
