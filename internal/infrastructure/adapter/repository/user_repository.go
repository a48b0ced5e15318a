package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements UserRepository interface using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts a user model to an entity
func (r *UserRepository) modelToEntity(userModel *model.User) *entity.User {
	return entity.RestoreUser(
		userModel.ID,
		userModel.FirstName,
		userModel.LastName,
		userModel.Email,
		userModel.PasswordHash,
		userModel.Balance,
		userModel.Version,
		userModel.CreatedAt,
		userModel.UpdatedAt,
	)
}

// handleDatabaseError standardizes database error handling
func (r *UserRepository) handleDatabaseError(operation string, err error, fields map[string]any) error {
	mapped := r.errorClassifier.ToDomainError(err, errs.ErrUserNotFound)

	fields["error"] = err.Error()
	switch {
	case errors.Is(mapped, errs.ErrUserNotFound):
		r.logger.Debug(fmt.Sprintf("User not found when %s", operation), fields)
	case errors.Is(mapped, errs.ErrSerializationFailure):
		r.logger.Warn(fmt.Sprintf("Lock conflict when %s", operation), fields)
	default:
		r.logger.Error(fmt.Sprintf("Database error when %s", operation), fields)
	}

	return mapped
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	r.logger.Debug("Getting user by ID", map[string]any{
		"user_id": id,
	})

	var userModel model.User
	result := r.db.WithContext(ctx).First(&userModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user", result.Error, map[string]any{"user_id": id})
	}

	return r.modelToEntity(&userModel), nil
}

// GetByIDForUpdate retrieves a user and holds its row lock until the transaction ends
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error) {
	r.logger.Debug("Locking user row", map[string]any{
		"user_id": id,
	})

	var userModel model.User
	result := lockForUpdate(r.db.WithContext(ctx)).First(&userModel, id)
	if result.Error != nil {
		return nil, r.handleDatabaseError("locking user", result.Error, map[string]any{"user_id": id})
	}

	return r.modelToEntity(&userModel), nil
}

// GetByEmail retrieves a user by exact email match
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var userModel model.User
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&userModel)
	if result.Error != nil {
		return nil, r.handleDatabaseError("getting user by email", result.Error, map[string]any{"email": email})
	}

	return r.modelToEntity(&userModel), nil
}

// EmailExists checks if any user is registered with the email
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ?", email).
		Count(&count)
	if result.Error != nil {
		return false, r.handleDatabaseError("checking email", result.Error, map[string]any{"email": email})
	}

	return count > 0, nil
}

// Create inserts a new user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.logger.Debug("Creating new user", map[string]any{
		"email": user.Email,
	})

	userModel := model.User{
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Balance:      user.Balance(),
		Version:      user.Version,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Omit(clause.Associations).Create(&userModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Email already registered", map[string]any{
				"email": user.Email,
			})
			return errs.ErrEmailInUse
		}
		return r.handleDatabaseError("creating user", result.Error, map[string]any{"email": user.Email})
	}

	user.ID = userModel.ID

	r.logger.Info("User created successfully", map[string]any{
		"user_id": user.ID,
	})
	return nil
}

// UpdateBalance persists balance, version and updatedAt guarded by expectedVersion
func (r *UserRepository) UpdateBalance(ctx context.Context, user *entity.User, expectedVersion uint64) error {
	r.logger.Debug("Updating user balance", map[string]any{
		"user_id":          user.ID,
		"balance":          user.FormattedBalance(),
		"expected_version": expectedVersion,
	})

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND version = ?", user.ID, expectedVersion).
		Updates(map[string]any{
			"balance":    user.Balance(),
			"version":    user.Version,
			"updated_at": user.UpdatedAt,
		})
	if result.Error != nil {
		return r.handleDatabaseError("updating balance", result.Error, map[string]any{"user_id": user.ID})
	}

	if result.RowsAffected == 0 {
		r.logger.Warn("Balance update lost version race", map[string]any{
			"user_id":          user.ID,
			"expected_version": expectedVersion,
		})
		return errs.ErrConcurrentUpdate
	}

	r.logger.Debug("User balance updated", map[string]any{
		"user_id": user.ID,
		"balance": user.FormattedBalance(),
		"version": user.Version,
	})
	return nil
}
