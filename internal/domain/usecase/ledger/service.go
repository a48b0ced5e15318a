package ledger

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// Config holds the ledger tunables
type Config struct {
	MaxAmountInCents int64
	QueueSize        int
	Retry            RetryConfig
}

// Service ties together validation, per-user sequencing and the atomic write
type Service struct {
	manager         *TransactionManager
	processor       *BalanceProcessor
	validator       *AmountValidator
	userRepo        persistence.UserRepository
	transactionRepo persistence.TransactionRepository
	logger          coreport.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	uow persistence.UnitOfWork,
	userRepo persistence.UserRepository,
	transactionRepo persistence.TransactionRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	processor := NewBalanceProcessor(uow, timeProvider, logger, cfg.Retry)

	return &Service{
		manager:         NewTransactionManager(logger, processor.Process, cfg.QueueSize),
		processor:       processor,
		validator:       NewAmountValidator(cfg.MaxAmountInCents),
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		logger:          logger,
	}
}

// ApplyTransaction validates rawAmount and applies it to the user's balance.
//
// Possible errors:
// - ErrInvalidAmount, ErrAmountOverflow: If the amount was rejected
// - ErrInsufficientFunds: If the balance would become negative
// - ErrUserNotFound: If the user no longer exists
// - ErrConcurrentUpdate: If every retry lost the version race
func (s *Service) ApplyTransaction(ctx context.Context, userID uint64, rawAmount string) (*usecase.BalanceUpdateResult, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}

	amount, err := s.validator.Validate(rawAmount)
	if err != nil {
		s.logger.Debug("Rejected amount", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	// cheap pre-check; the processor checks again under the row lock
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := user.ProspectiveBalance(amount); err != nil {
		return nil, err
	}
	if !user.CanApply(amount) {
		return nil, errs.NewInsufficientFundsError(userID, entity.FormatCents(amount), user.FormattedBalance())
	}

	return s.manager.Enqueue(ctx, userID, amount)
}

// MaxAmount returns the configured amount limit formatted for display
func (s *Service) MaxAmount() string {
	return s.validator.MaxAmount()
}

// GetManager returns the underlying transaction manager
// Used for graceful shutdown
func (s *Service) GetManager() *TransactionManager {
	return s.manager
}

// Shutdown drains the per-user queues
func (s *Service) Shutdown(ctx context.Context) error {
	return s.manager.Shutdown(ctx)
}
