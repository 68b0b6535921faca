package ports

import (
	"context"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
)

// AuditRepository persists authentication events.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}

// AuditSink accepts events for asynchronous recording. Record must not block
// the caller.
type AuditSink interface {
	Record(event domain.AuthEvent)
}

// AuditService processes one queued event.
type AuditService interface {
	Process(ctx context.Context, event domain.AuthEvent) error
}
