package account

import (
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
)

// AccountUseCase handles registration, login and account reads
type AccountUseCase struct {
	userRepo        persistence.UserRepository
	transactionRepo persistence.TransactionRepository
	hasher          coreport.PasswordHasher
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
}

// NewAccountUseCase creates a new AccountUseCase
func NewAccountUseCase(
	userRepo persistence.UserRepository,
	transactionRepo persistence.TransactionRepository,
	hasher coreport.PasswordHasher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *AccountUseCase {
	return &AccountUseCase{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		hasher:          hasher,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}
