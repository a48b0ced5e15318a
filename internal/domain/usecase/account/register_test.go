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
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
	coremocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
	persistencemocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/persistence"
)

type accountMocks struct {
	users        *persistencemocks.MockUserRepository
	transactions *persistencemocks.MockTransactionRepository
	hasher       *coremocks.MockPasswordHasher
	time         *coremocks.MockTimeProvider
	logger       *coremocks.MockLogger
}

func newAccountUseCase(t *testing.T) (*AccountUseCase, accountMocks) {
	m := accountMocks{
		users:        persistencemocks.NewMockUserRepository(t),
		transactions: persistencemocks.NewMockTransactionRepository(t),
		hasher:       coremocks.NewMockPasswordHasher(t),
		time:         coremocks.NewMockTimeProvider(t),
		logger:       coremocks.NewMockLogger(t),
	}
	m.logger.EXPECT().Info(mock.Anything, mock.Anything).Maybe()
	m.logger.EXPECT().Warn(mock.Anything, mock.Anything).Maybe()
	m.logger.EXPECT().Error(mock.Anything, mock.Anything).Maybe()

	return NewAccountUseCase(m.users, m.transactions, m.hasher, m.time, m.logger), m
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	fixedTime := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	req := usecase.RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse",
	}

	t.Run("Successful registration", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.hasher.EXPECT().Hash("correct horse").Return("$2a$10$hash", nil).Once()
		m.time.EXPECT().Now().Return(fixedTime).Once()
		m.users.EXPECT().Create(mock.Anything, mock.MatchedBy(func(user *entity.User) bool {
			return user.Email == "ada@example.com" &&
				user.PasswordHash == "$2a$10$hash" &&
				user.Balance() == 0
		})).RunAndReturn(func(_ context.Context, user *entity.User) error {
			user.ID = 17
			return nil
		}).Once()

		user, err := uc.Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, uint64(17), user.ID)
		assert.Equal(t, "0.00", user.FormattedBalance())
		assert.NotEqual(t, req.Password, user.PasswordHash)
	})

	t.Run("Email already in use", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(true, nil).Once()

		user, err := uc.Register(ctx, req)

		assert.ErrorIs(t, err, errs.ErrEmailInUse)
		assert.Nil(t, user)
		m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Unique index violation maps to email in use", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.hasher.EXPECT().Hash(mock.Anything).Return("hash", nil).Once()
		m.time.EXPECT().Now().Return(fixedTime).Once()
		m.users.EXPECT().Create(mock.Anything, mock.Anything).
			Return(errors.Join(errs.ErrConstraintViolation, errs.ErrEmailInUse)).Once()

		user, err := uc.Register(ctx, req)

		assert.Equal(t, errs.ErrEmailInUse, err)
		assert.Nil(t, user)
	})

	t.Run("Error checking email", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(false, errs.ErrDatabaseConnection).Once()

		user, err := uc.Register(ctx, req)

		assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
		assert.Nil(t, user)
	})

	t.Run("Hashing failure", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.hasher.EXPECT().Hash(mock.Anything).Return("", errors.New("cost out of range")).Once()

		user, err := uc.Register(ctx, req)

		assert.ErrorContains(t, err, "hash password")
		assert.Nil(t, user)
	})

	t.Run("Password too long for the hasher", func(t *testing.T) {
		uc, m := newAccountUseCase(t)

		m.users.EXPECT().EmailExists(mock.Anything, "ada@example.com").Return(false, nil).Once()
		m.hasher.EXPECT().Hash(mock.Anything).Return("", errs.ErrPasswordTooLong).Once()

		user, err := uc.Register(ctx, req)

		assert.ErrorIs(t, err, errs.ErrPasswordTooLong)
		assert.Nil(t, user)
		m.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
