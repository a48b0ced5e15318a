package account

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// GetAccount returns the user's details, formatted balance and transaction
// history, newest first
func (u *AccountUseCase) GetAccount(ctx context.Context, userID uint64) (*usecase.AccountView, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	transactions, err := u.transactionRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	history := make([]usecase.TransactionView, 0, len(transactions))
	for _, txn := range transactions {
		history = append(history, usecase.TransactionView{
			ID:        txn.ID,
			Amount:    txn.Amount(),
			Kind:      txn.Kind(),
			CreatedAt: txn.CreatedAt,
		})
	}

	return &usecase.AccountView{
		UserID:       user.ID,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Email:        user.Email,
		Balance:      user.FormattedBalance(),
		Transactions: history,
	}, nil
}
