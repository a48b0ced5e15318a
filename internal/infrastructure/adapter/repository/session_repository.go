package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository stores login sessions using GORM
type SessionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *gorm.DB, logger coreport.Logger) *SessionRepository {
	return &SessionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *SessionRepository) modelToEntity(m *model.Session) *entity.Session {
	return &entity.Session{
		Token:             m.Token,
		UserID:            m.UserID,
		CreatedAt:         m.CreatedAt,
		LastSeenAt:        m.LastSeenAt,
		ExpiresAt:         m.ExpiresAt,
		AbsoluteExpiresAt: m.AbsoluteExpiresAt,
	}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *entity.Session) error {
	sessionModel := model.Session{
		Token:             session.Token,
		UserID:            session.UserID,
		CreatedAt:         session.CreatedAt,
		LastSeenAt:        session.LastSeenAt,
		ExpiresAt:         session.ExpiresAt,
		AbsoluteExpiresAt: session.AbsoluteExpiresAt,
	}

	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(&sessionModel)
	if result.Error != nil {
		r.logger.Error("Failed to create session", map[string]any{
			"user_id": session.UserID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.ToDomainError(result.Error, errs.ErrUserNotFound)
	}

	r.logger.Debug("Session created", map[string]any{
		"user_id":    session.UserID,
		"expires_at": session.ExpiresAt,
	})
	return nil
}

// GetByToken retrieves a session by its token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*entity.Session, error) {
	var sessionModel model.Session
	result := r.db.WithContext(ctx).Where("token = ?", token).First(&sessionModel)
	if result.Error != nil {
		mapped := r.errorClassifier.ToDomainError(result.Error, errs.ErrSessionNotFound)
		if mapped != errs.ErrSessionNotFound {
			r.logger.Error("Failed to load session", map[string]any{
				"error": result.Error.Error(),
			})
		}
		return nil, mapped
	}

	return r.modelToEntity(&sessionModel), nil
}

// Touch persists LastSeenAt and ExpiresAt of an existing session
func (r *SessionRepository) Touch(ctx context.Context, session *entity.Session) error {
	result := r.db.WithContext(ctx).Model(&model.Session{}).
		Where("token = ?", session.Token).
		Updates(map[string]any{
			"last_seen_at": session.LastSeenAt,
			"expires_at":   session.ExpiresAt,
		})
	if result.Error != nil {
		r.logger.Error("Failed to touch session", map[string]any{
			"user_id": session.UserID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.ToDomainError(result.Error, errs.ErrSessionNotFound)
	}

	if result.RowsAffected == 0 {
		return errs.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session; a missing session is not an error
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Where("token = ?", token).Delete(&model.Session{})
	if result.Error != nil {
		r.logger.Error("Failed to delete session", map[string]any{
			"error": result.Error.Error(),
		})
		return r.errorClassifier.ToDomainError(result.Error, errs.ErrSessionNotFound)
	}

	if result.RowsAffected > 0 {
		r.logger.Debug("Session deleted", nil)
	}
	return nil
}

// DeleteExpired removes every session expired at now
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ? OR absolute_expires_at <= ?", now, now).
		Delete(&model.Session{})
	if result.Error != nil {
		r.logger.Error("Failed to clean up expired sessions", map[string]any{
			"error": result.Error.Error(),
		})
		return 0, r.errorClassifier.ToDomainError(result.Error, errs.ErrSessionNotFound)
	}

	if result.RowsAffected > 0 {
		r.logger.Info("Expired sessions cleanup completed", map[string]any{
			"sessions_removed": result.RowsAffected,
		})
	}
	return result.RowsAffected, nil
}
