package ledger

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
	mockcore "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
	mockpersistence "github.com/amirhossein-jamali/bank-ledger/mocks/port/persistence"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const txKey contextKey = "tx"

type processorMocks struct {
	uow          *mockpersistence.MockUnitOfWork
	users        *mockpersistence.MockUserRepository
	transactions *mockpersistence.MockTransactionRepository
	time         *mockcore.MockTimeProvider
}

func newProcessor(t *testing.T) (*BalanceProcessor, processorMocks, context.Context) {
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	m := processorMocks{
		uow:          mockpersistence.NewMockUnitOfWork(t),
		users:        mockpersistence.NewMockUserRepository(t),
		transactions: mockpersistence.NewMockTransactionRepository(t),
		time:         mockcore.NewMockTimeProvider(t),
	}
	txCtx := context.WithValue(context.Background(), txKey, "mockTransaction")

	m.time.EXPECT().Now().Return(now).Maybe()
	m.uow.EXPECT().Begin(mock.Anything).Return(txCtx, nil).Maybe()
	m.uow.EXPECT().GetUserRepository(txCtx).Return(m.users).Maybe()
	m.uow.EXPECT().GetTransactionRepository(txCtx).Return(m.transactions).Maybe()

	return NewBalanceProcessor(m.uow, m.time, quietLogger(t), fastRetry()), m, txCtx
}

func storedUser(balance int64, version uint64) *entity.User {
	return entity.RestoreUser(1, "Ada", "Lovelace", "ada@example.com", "hash", balance, version, time.Time{}, time.Time{})
}

func TestBalanceProcessor_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("Deposit commits transaction and balance together", func(t *testing.T) {
		p, m, txCtx := newProcessor(t)

		m.users.EXPECT().GetByIDForUpdate(txCtx, uint64(1)).Return(storedUser(0, 1), nil).Once()
		m.transactions.EXPECT().Create(txCtx, mock.MatchedBy(func(txn *entity.Transaction) bool {
			return txn.UserID == 1 && txn.AmountInCents == 10000
		})).RunAndReturn(func(_ context.Context, txn *entity.Transaction) error {
			txn.ID = 11
			return nil
		}).Once()
		m.users.EXPECT().UpdateBalance(txCtx, mock.MatchedBy(func(u *entity.User) bool {
			return u.Balance() == 10000 && u.Version == 2
		}), uint64(1)).Return(nil).Once()
		m.uow.EXPECT().Commit(txCtx).Return(nil).Once()

		result, err := p.Process(ctx, 1, 10000)

		require.NoError(t, err)
		assert.Equal(t, uint64(11), result.TransactionID)
		assert.Equal(t, "100.00", result.Amount)
		assert.Equal(t, "100.00", result.Balance)
		m.uow.AssertNotCalled(t, "Rollback", mock.Anything)
	})

	t.Run("Insufficient funds rolls back without writes", func(t *testing.T) {
		p, m, txCtx := newProcessor(t)

		m.users.EXPECT().GetByIDForUpdate(txCtx, uint64(1)).Return(storedUser(10000, 2), nil).Once()
		m.uow.EXPECT().Rollback(txCtx).Return(nil).Once()

		result, err := p.Process(ctx, 1, -15000)

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Nil(t, result)
		m.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		m.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Version conflict is retried with a fresh read", func(t *testing.T) {
		p, m, txCtx := newProcessor(t)

		versions := []uint64{3, 4}
		reads := 0
		m.users.EXPECT().GetByIDForUpdate(txCtx, uint64(1)).RunAndReturn(func(context.Context, uint64) (*entity.User, error) {
			u := storedUser(5000, versions[reads])
			reads++
			return u, nil
		}).Times(2)
		m.transactions.EXPECT().Create(txCtx, mock.Anything).Return(nil).Times(2)
		m.users.EXPECT().UpdateBalance(txCtx, mock.Anything, uint64(3)).Return(errs.ErrConcurrentUpdate).Once()
		m.users.EXPECT().UpdateBalance(txCtx, mock.Anything, uint64(4)).Return(nil).Once()
		m.uow.EXPECT().Rollback(txCtx).Return(nil).Once()
		m.uow.EXPECT().Commit(txCtx).Return(nil).Once()

		result, err := p.Process(ctx, 1, -2000)

		require.NoError(t, err)
		assert.Equal(t, "30.00", result.Balance)
	})

	t.Run("Missing user", func(t *testing.T) {
		p, m, txCtx := newProcessor(t)

		m.users.EXPECT().GetByIDForUpdate(txCtx, uint64(1)).Return(nil, errs.ErrUserNotFound).Once()
		m.uow.EXPECT().Rollback(txCtx).Return(nil).Once()

		_, err := p.Process(ctx, 1, 100)

		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})

	t.Run("Begin failure", func(t *testing.T) {
		uow := mockpersistence.NewMockUnitOfWork(t)
		uow.EXPECT().Begin(mock.Anything).Return(nil, errs.ErrDatabaseConnection).Once()
		p := NewBalanceProcessor(uow, mockcore.NewMockTimeProvider(t), quietLogger(t), fastRetry())

		_, err := p.Process(ctx, 1, 100)

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
	})

	t.Run("Transaction insert failure rolls back", func(t *testing.T) {
		p, m, txCtx := newProcessor(t)

		m.users.EXPECT().GetByIDForUpdate(txCtx, uint64(1)).Return(storedUser(0, 1), nil).Once()
		m.transactions.EXPECT().Create(txCtx, mock.Anything).Return(errors.New("disk full")).Once()
		m.uow.EXPECT().Rollback(txCtx).Return(nil).Once()

		_, err := p.Process(ctx, 1, 100)

		assert.ErrorContains(t, err, "record transaction")
	})
}
