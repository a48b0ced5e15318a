package account

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
)

// Authenticate looks the user up by exact email and checks the password.
// Returns ErrUnknownEmail or ErrWrongPassword, both wrapping ErrInvalidCredentials.
func (u *AccountUseCase) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errs.IsUserNotFoundError(err) {
			return nil, errs.ErrUnknownEmail
		}
		return nil, err
	}

	if !u.hasher.Check(password, user.PasswordHash) {
		u.logger.Warn("Login failed, wrong password", map[string]any{
			"userId": user.ID,
		})
		return nil, errs.ErrWrongPassword
	}

	u.logger.Info("User logged in", map[string]any{
		"userId": user.ID,
	})
	return user, nil
}
