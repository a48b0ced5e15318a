package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	mockcore "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
)

func fastRetry() RetryConfig {
	return RetryConfig{MaxRetries: 3, RetryInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func quietLogger(t *testing.T) *mockcore.MockLogger {
	logger := mockcore.NewMockLogger(t)
	logger.On("Debug", mock.Anything, mock.Anything).Maybe()
	logger.On("Info", mock.Anything, mock.Anything).Maybe()
	logger.On("Warn", mock.Anything, mock.Anything).Maybe()
	logger.On("Error", mock.Anything, mock.Anything).Maybe()
	return logger
}

func TestRetryOnConflict(t *testing.T) {
	ctx := context.Background()

	t.Run("Succeeds after conflicts", func(t *testing.T) {
		calls := 0
		err := retryOnConflict(ctx, fastRetry(), func() error {
			calls++
			if calls < 3 {
				return errs.ErrConcurrentUpdate
			}
			return nil
		}, quietLogger(t))

		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retryOnConflict(ctx, fastRetry(), func() error {
			calls++
			return errs.ErrSerializationFailure
		}, quietLogger(t))

		assert.ErrorIs(t, err, errs.ErrSerializationFailure)
		assert.Equal(t, 3, calls)
	})

	t.Run("Business errors are not retried", func(t *testing.T) {
		calls := 0
		err := retryOnConflict(ctx, fastRetry(), func() error {
			calls++
			return errs.ErrInsufficientFunds
		}, quietLogger(t))

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, 1, calls)
	})

	t.Run("Canceled context stops retrying", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		cfg := RetryConfig{MaxRetries: 5, RetryInterval: time.Hour}
		err := retryOnConflict(canceled, cfg, func() error {
			return errs.ErrConcurrentUpdate
		}, quietLogger(t))

		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestBackoffWithJitter(t *testing.T) {
	cfg := RetryConfig{RetryInterval: 10 * time.Millisecond, MaxInterval: 50 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, backoffWithJitter(0, cfg))
	assert.Equal(t, 40*time.Millisecond, backoffWithJitter(2, cfg))
	assert.Equal(t, 50*time.Millisecond, backoffWithJitter(5, cfg))

	cfg.JitterFactor = 0.5
	for i := 0; i < 20; i++ {
		d := backoffWithJitter(1, cfg)
		assert.GreaterOrEqual(t, d, 20*time.Millisecond)
		assert.LessOrEqual(t, d, 30*time.Millisecond)
	}
}
