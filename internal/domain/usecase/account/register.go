package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// Register creates a user with a zero balance. The email must not belong to
// another user; the comparison is exact.
func (u *AccountUseCase) Register(ctx context.Context, req usecase.RegisterRequest) (*entity.User, error) {
	email := strings.TrimSpace(req.Email)

	exists, err := u.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		u.logger.Info("Registration rejected, email in use", map[string]any{
			"email": email,
		})
		return nil, errs.ErrEmailInUse
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := entity.NewUser(req.FirstName, req.LastName, email, hash, u.timeProvider)

	// the unique index catches a registration racing past the check above
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, errs.ErrEmailInUse) {
			return nil, errs.ErrEmailInUse
		}
		u.logger.Error("Failed to create user", map[string]any{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}

	u.logger.Info("User registered", map[string]any{
		"userId": user.ID,
	})

	return user, nil
}
