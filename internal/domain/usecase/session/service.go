package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
)

// Service creates, resolves and ends server-side sessions
type Service struct {
	repo         persistence.SessionRepository
	tokens       coreport.TokenGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	policy       entity.SessionPolicy
}

// NewSessionService creates a new session service
func NewSessionService(
	repo persistence.SessionRepository,
	tokens coreport.TokenGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	policy entity.SessionPolicy,
) *Service {
	return &Service{
		repo:         repo,
		tokens:       tokens,
		timeProvider: timeProvider,
		logger:       logger,
		policy:       policy,
	}
}

// Policy returns the lifetimes applied to new sessions
func (s *Service) Policy() entity.SessionPolicy {
	return s.policy
}

// Start creates a session for userID
func (s *Service) Start(ctx context.Context, userID uint64) (*entity.Session, error) {
	session, err := entity.NewSession(s.tokens.NewToken(), userID, s.policy, s.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Debug("Session started", map[string]any{
		"user_id":    userID,
		"expires_at": session.ExpiresAt,
	})
	return session, nil
}

// Resolve returns the live session for token and slides its idle expiry.
// Expired sessions are deleted and reported as ErrSessionExpired.
func (s *Service) Resolve(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, errs.ErrSessionNotFound
	}

	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	if session.IsExpired(now) {
		if err := s.repo.Delete(ctx, token); err != nil {
			s.logger.Warn("Failed to delete expired session", map[string]any{
				"user_id": session.UserID,
				"error":   err.Error(),
			})
		}
		return nil, errs.ErrSessionExpired
	}

	session.Touch(now, s.policy)
	if err := s.repo.Touch(ctx, session); err != nil {
		if errors.Is(err, errs.ErrSessionNotFound) {
			return nil, err
		}
		// a failed refresh only shortens the session
		s.logger.Warn("Failed to refresh session", map[string]any{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}

	return session, nil
}

// End deletes the session; empty or unknown tokens are ignored
func (s *Service) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session expired by now
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, s.timeProvider.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Expired sessions removed", map[string]any{
			"count": removed,
		})
	}
	return removed, nil
}
