package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// BalanceProcessor writes one balance change: the transaction row and the new
// balance are committed together or not at all
type BalanceProcessor struct {
	uow          persistence.UnitOfWork
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	retryConfig  RetryConfig
}

// NewBalanceProcessor creates a new BalanceProcessor
func NewBalanceProcessor(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	retryConfig RetryConfig,
) *BalanceProcessor {
	return &BalanceProcessor{
		uow:          uow,
		timeProvider: timeProvider,
		logger:       logger,
		retryConfig:  retryConfig,
	}
}

// Process applies amountInCents to the user's balance, retrying on version
// conflicts and serialization failures
func (p *BalanceProcessor) Process(ctx context.Context, userID uint64, amountInCents int64) (*usecase.BalanceUpdateResult, error) {
	var result *usecase.BalanceUpdateResult
	err := retryOnConflict(ctx, p.retryConfig, func() error {
		var err error
		result, err = p.applyOnce(ctx, userID, amountInCents)
		return err
	}, p.logger)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *BalanceProcessor) applyOnce(ctx context.Context, userID uint64, amountInCents int64) (result *usecase.BalanceUpdateResult, err error) {
	txCtx, err := p.uow.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := p.uow.Rollback(txCtx); rbErr != nil {
			p.logger.Error("Failed to rollback balance update", map[string]any{
				"user_id": userID,
				"error":   rbErr.Error(),
			})
		}
	}()

	userRepo := p.uow.GetUserRepository(txCtx)
	transactionRepo := p.uow.GetTransactionRepository(txCtx)

	user, err := userRepo.GetByIDForUpdate(txCtx, userID)
	if err != nil {
		return nil, err
	}
	expectedVersion := user.Version

	// funds are re-checked under the row lock
	if err := user.ApplyTransaction(amountInCents, p.timeProvider); err != nil {
		return nil, err
	}

	txn, err := entity.NewTransaction(userID, amountInCents, p.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := transactionRepo.Create(txCtx, txn); err != nil {
		return nil, fmt.Errorf("record transaction: %w", err)
	}

	if err := userRepo.UpdateBalance(txCtx, user, expectedVersion); err != nil {
		return nil, err
	}

	if err := p.uow.Commit(txCtx); err != nil {
		return nil, fmt.Errorf("commit balance update: %w", err)
	}
	committed = true

	p.logger.Info("Balance updated", map[string]any{
		"user_id":        userID,
		"transaction_id": txn.ID,
		"amount":         txn.Amount(),
		"balance":        user.FormattedBalance(),
	})

	return &usecase.BalanceUpdateResult{
		UserID:        userID,
		TransactionID: txn.ID,
		Amount:        txn.Amount(),
		Balance:       user.FormattedBalance(),
		ProcessedAt:   txn.CreatedAt,
	}, nil
}
