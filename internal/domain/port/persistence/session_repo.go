package persistence

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// SessionRepository stores server-side login sessions
type SessionRepository interface {
	// Create inserts a new session
	//
	// Possible errors:
	// - ErrUserNotFound: If the session references a missing user
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, session *entity.Session) error

	// GetByToken retrieves a session by its token
	//
	// Possible errors:
	// - ErrSessionNotFound: If no session has this token
	GetByToken(ctx context.Context, token string) (*entity.Session, error)

	// Touch persists LastSeenAt and ExpiresAt of an existing session
	//
	// Possible errors:
	// - ErrSessionNotFound: If the session was deleted meanwhile
	Touch(ctx context.Context, session *entity.Session) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes every session expired at now and returns how many were removed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
