package usecase

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// SessionUseCase manages server-side login sessions
type SessionUseCase interface {
	// Start creates a session for the user
	Start(ctx context.Context, userID uint64) (*entity.Session, error)

	// Resolve returns the live session for token and slides its idle expiry
	Resolve(ctx context.Context, token string) (*entity.Session, error)

	// End deletes the session; unknown tokens are ignored
	End(ctx context.Context, token string) error

	// PurgeExpired deletes every expired session
	PurgeExpired(ctx context.Context) (int64, error)
}
