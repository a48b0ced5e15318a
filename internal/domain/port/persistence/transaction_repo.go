package persistence

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// LedgerTotals is the aggregate of a user's transaction rows
type LedgerTotals struct {
	SumInCents int64
	Count      int64
}

// TransactionRepository defines the methods to record and read balance deltas
type TransactionRepository interface {
	// Create saves a new transaction and assigns its ID
	//
	// Possible errors:
	// - ErrUserNotFound: If referenced user does not exist
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, transaction *entity.Transaction) error

	// ListByUser returns the user's transactions, newest first
	ListByUser(ctx context.Context, userID uint64) ([]*entity.Transaction, error)

	// TotalsByUser sums and counts the user's transactions
	TotalsByUser(ctx context.Context, userID uint64) (LedgerTotals, error)
}
