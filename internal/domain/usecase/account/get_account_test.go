package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
)

func TestGetAccount(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	stored := entity.RestoreUser(5, "Ada", "Lovelace", "ada@example.com", "hash", 0, 3, created, created)

	t.Run("Returns balance and history", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		history := []*entity.Transaction{
			{ID: 2, UserID: 5, AmountInCents: -10000, CreatedAt: created.Add(time.Minute)},
			{ID: 1, UserID: 5, AmountInCents: 10000, CreatedAt: created},
		}
		m.users.EXPECT().GetByID(mock.Anything, uint64(5)).Return(stored, nil).Once()
		m.transactions.EXPECT().ListByUser(mock.Anything, uint64(5)).Return(history, nil).Once()

		view, err := uc.GetAccount(ctx, 5)

		require.NoError(t, err)
		assert.Equal(t, "0.00", view.Balance)
		assert.Equal(t, "Ada", view.FirstName)
		assert.Equal(t, "ada@example.com", view.Email)
		require.Len(t, view.Transactions, 2)
		assert.Equal(t, "-100.00", view.Transactions[0].Amount)
		assert.Equal(t, entity.KindWithdrawal, view.Transactions[0].Kind)
		assert.Equal(t, "100.00", view.Transactions[1].Amount)
	})

	t.Run("New user has no transactions", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().GetByID(mock.Anything, uint64(5)).Return(stored, nil).Once()
		m.transactions.EXPECT().ListByUser(mock.Anything, uint64(5)).Return(nil, nil).Once()

		view, err := uc.GetAccount(ctx, 5)

		require.NoError(t, err)
		assert.Empty(t, view.Transactions)
	})

	t.Run("Missing user", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().GetByID(mock.Anything, uint64(9)).Return(nil, errs.ErrUserNotFound).Once()

		view, err := uc.GetAccount(ctx, 9)

		assert.ErrorIs(t, err, errs.ErrUserNotFound)
		assert.Nil(t, view)
	})

	t.Run("History failure", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().GetByID(mock.Anything, uint64(5)).Return(stored, nil).Once()
		m.transactions.EXPECT().ListByUser(mock.Anything, uint64(5)).Return(nil, errors.New("boom")).Once()

		_, err := uc.GetAccount(ctx, 5)

		assert.ErrorContains(t, err, "list transactions")
	})
}
