package repository

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(transaction *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            transaction.ID,
		UserID:        transaction.UserID,
		AmountInCents: transaction.AmountInCents,
		CreatedAt:     transaction.CreatedAt,
		UpdatedAt:     transaction.UpdatedAt,
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		UserID:        m.UserID,
		AmountInCents: m.AmountInCents,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create saves a new transaction and assigns its ID
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.logger.Debug("Creating transaction", map[string]any{
		"user_id": transaction.UserID,
		"amount":  transaction.Amount(),
	})

	transactionModel := r.entityToModel(transaction)

	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(&transactionModel)
	if result.Error != nil {
		r.logger.Error("Failed to create transaction", map[string]any{
			"user_id": transaction.UserID,
			"error":   result.Error.Error(),
		})
		return r.errorClassifier.ToDomainError(result.Error, errs.ErrUserNotFound)
	}

	transaction.ID = transactionModel.ID

	r.logger.Info("Transaction recorded", map[string]any{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
		"amount":         transaction.Amount(),
		"kind":           string(transaction.Kind()),
	})
	return nil
}

// ListByUser returns the user's transactions, newest first
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uint64) ([]*entity.Transaction, error) {
	var models []model.Transaction
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&models)
	if result.Error != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return nil, r.errorClassifier.ToDomainError(result.Error, errs.ErrUserNotFound)
	}

	transactions := make([]*entity.Transaction, 0, len(models))
	for i := range models {
		transactions = append(transactions, r.modelToEntity(&models[i]))
	}
	return transactions, nil
}

// TotalsByUser sums and counts the user's transactions
func (r *TransactionRepository) TotalsByUser(ctx context.Context, userID uint64) (persistence.LedgerTotals, error) {
	var totals struct {
		Total int64
		Count int64
	}
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Select("COALESCE(SUM(amount_in_cents), 0) AS total, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Scan(&totals)
	if result.Error != nil {
		r.logger.Error("Failed to total transactions", map[string]any{
			"user_id": userID,
			"error":   result.Error.Error(),
		})
		return persistence.LedgerTotals{}, r.errorClassifier.ToDomainError(result.Error, errs.ErrUserNotFound)
	}

	return persistence.LedgerTotals{SumInCents: totals.Total, Count: totals.Count}, nil
}
