package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

type auditService struct {
	repo ports.AuditRepository
	log  zerolog.Logger
}

// NewAuditService returns the processor the audit dispatcher workers call.
func NewAuditService(repo ports.AuditRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Process persists a single authentication event.
func (s *auditService) Process(ctx context.Context, event domain.AuthEvent) error {
	if event.Kind == "" {
		return fmt.Errorf("process audit event: %w", domain.ValidationError("event kind is required"))
	}
	if event.OccurredAt.IsZero() {
		return fmt.Errorf("process audit event: %w", domain.ValidationError("event time is required"))
	}

	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process audit event: %w", err)
	}

	s.log.Debug().
		Str("kind", string(event.Kind)).
		Str("username", event.Username).
		Msg("auth event recorded")
	return nil
}
