package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	tport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
)

// TransactionKind describes the direction of a balance change
type TransactionKind string

// Transaction kinds
const (
	KindDeposit    TransactionKind = "deposit"
	KindWithdrawal TransactionKind = "withdrawal"
)

// Transaction is a single signed balance delta. It is never modified after insertion.
type Transaction struct {
	ID            uint64    // Unique identifier for the transaction
	UserID        uint64    // ID of the user this transaction belongs to
	AmountInCents int64     // Positive for deposits, negative for withdrawals
	CreatedAt     time.Time // When the transaction was recorded
	UpdatedAt     time.Time // Mirrors CreatedAt; rows are immutable
}

// NewTransaction creates a transaction for the given user
func NewTransaction(userID uint64, amountInCents int64, timeProvider tport.TimeProvider) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	now := timeProvider.Now()
	return &Transaction{
		UserID:        userID,
		AmountInCents: amountInCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Amount returns the signed amount with 2 decimal places
func (t *Transaction) Amount() string {
	return FormatCents(t.AmountInCents)
}

// Kind classifies the transaction; zero amounts count as deposits
func (t *Transaction) Kind() TransactionKind {
	if t.AmountInCents < 0 {
		return KindWithdrawal
	}
	return KindDeposit
}

// IsWithdrawal returns true if this transaction decreases the balance
func (t *Transaction) IsWithdrawal() bool {
	return t.AmountInCents < 0
}
