package usecase

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// RegisterRequest carries validated registration input
type RegisterRequest struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// TransactionView is one history row on the account page
type TransactionView struct {
	ID        uint64
	Amount    string
	Kind      entity.TransactionKind
	CreatedAt time.Time
}

// AccountView is everything the account page shows
type AccountView struct {
	UserID       uint64
	FirstName    string
	LastName     string
	Email        string
	Balance      string // Formatted with 2 decimal places
	Transactions []TransactionView
}

// AccountUseCase defines registration, authentication and account reads
type AccountUseCase interface {
	// Register creates a user with a zero balance
	Register(ctx context.Context, req RegisterRequest) (*entity.User, error)

	// Authenticate returns the user matching email and password
	Authenticate(ctx context.Context, email, password string) (*entity.User, error)

	// GetAccount returns the user's details, balance and transaction history
	GetAccount(ctx context.Context, userID uint64) (*AccountView, error)
}
