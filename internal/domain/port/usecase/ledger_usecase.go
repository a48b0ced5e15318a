package usecase

import (
	"context"
	"time"
)

// BalanceUpdateResult describes an accepted balance change
type BalanceUpdateResult struct {
	UserID        uint64
	TransactionID uint64
	Amount        string
	Balance       string
	ProcessedAt   time.Time
}

// LedgerCheck compares a stored balance with the sum of its transactions
type LedgerCheck struct {
	UserID           uint64
	StoredBalance    string
	ComputedBalance  string
	TransactionCount int64
	Consistent       bool
}

// LedgerUseCase defines balance mutation and verification
type LedgerUseCase interface {
	// ApplyTransaction parses rawAmount and applies it to the user's balance
	ApplyTransaction(ctx context.Context, userID uint64, rawAmount string) (*BalanceUpdateResult, error)

	// MaxAmount returns the largest accepted amount magnitude, formatted for display
	MaxAmount() string

	// VerifyBalance checks that the balance equals the sum of the user's transactions
	VerifyBalance(ctx context.Context, userID uint64) (*LedgerCheck, error)
}
