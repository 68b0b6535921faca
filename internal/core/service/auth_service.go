package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionauth/gatekeeper/internal/core/domain"
	"github.com/sessionauth/gatekeeper/internal/core/ports"
)

// AuthService implements registration, login, logout and profile lookup.
type AuthService struct {
	repo     ports.UserRepository
	hasher   ports.PasswordHasher
	sessions ports.SessionManager
	audit    ports.AuditSink
	log      zerolog.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	repo ports.UserRepository,
	hasher ports.PasswordHasher,
	sessions ports.SessionManager,
	audit ports.AuditSink,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = discardAudit{}
	}
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		sessions: sessions,
		audit:    audit,
		log:      log,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := strings.TrimSpace(in.Email)
	username := domain.NormalizeUsername(in.Username)

	if len(in.Password) < domain.MinPasswordLength {
		return nil, domain.ValidationError("password must be at least 6 characters")
	}
	if in.Password != in.PasswordRepeat {
		return nil, domain.ValidationError("Passwords do not match")
	}

	candidate := &domain.User{Email: email, Username: username, PasswordHash: "pending"}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	_, err := s.repo.FindByUsername(ctx, username)
	switch {
	case err == nil:
		return nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventRegistered,
		Username:   created.Username,
		UserID:     created.ID,
		RemoteIP:   in.RemoteIP,
		OccurredAt: now,
	})
	return created, nil
}

// Login checks the credentials and opens a session. Unknown usernames and
// wrong passwords both yield domain.ErrInvalidCredentials after one bcrypt
// comparison each.
func (s *AuthService) Login(ctx context.Context, username, password, remoteIP string) (*ports.LoginResult, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("login: %w", err)
		}
		s.burnComparison(password)
		s.recordFailure(username, "", remoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !ok {
		s.recordFailure(username, user.ID, remoteIP)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventLoginSucceeded,
		Username:   user.Username,
		UserID:     user.ID,
		RemoteIP:   remoteIP,
		OccurredAt: time.Now().UTC(),
	})
	return &ports.LoginResult{Token: token, User: user}, nil
}

// Logout destroys the session behind token. sess may be nil when the caller
// had no valid session.
func (s *AuthService) Logout(ctx context.Context, token string, sess *domain.Session, remoteIP string) error {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		return err
	}
	if sess != nil {
		s.audit.Record(domain.AuthEvent{
			Kind:       domain.EventLoggedOut,
			Username:   sess.Username,
			UserID:     sess.UserID,
			RemoteIP:   remoteIP,
			OccurredAt: time.Now().UTC(),
		})
	}
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) recordFailure(username, userID, remoteIP string) {
	s.log.Debug().Str("username", username).Str("remote_ip", remoteIP).Msg("login rejected")
	s.audit.Record(domain.AuthEvent{
		Kind:       domain.EventLoginFailed,
		Username:   username,
		UserID:     userID,
		RemoteIP:   remoteIP,
		OccurredAt: time.Now().UTC(),
	})
}

// burnComparison verifies password against a throwaway hash so a miss on the
// username costs as much as a wrong password.
func (s *AuthService) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("not-a-real-password")
		if err != nil {
			s.log.Warn().Err(err).Msg("failed to build dummy hash")
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

type discardAudit struct{}

func (discardAudit) Record(domain.AuthEvent) {}
