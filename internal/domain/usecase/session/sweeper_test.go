package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	coremocks "github.com/amirhossein-jamali/bank-ledger/mocks/port/core"
)

func TestSweeper(t *testing.T) {
	t.Run("Sweeps until stopped", func(t *testing.T) {
		svc, m := newSessionService(t)
		m.time.EXPECT().Now().Return(time.Now()).Maybe()

		swept := make(chan struct{}, 10)
		m.repo.EXPECT().DeleteExpired(mock.Anything, mock.Anything).RunAndReturn(func(_ context.Context, _ time.Time) (int64, error) {
			select {
			case swept <- struct{}{}:
			default:
			}
			return 0, nil
		})

		logger := coremocks.NewMockLogger(t)
		logger.On("Info", mock.Anything, mock.Anything).Maybe()
		logger.On("Error", mock.Anything, mock.Anything).Maybe()

		sweeper := NewSweeper(svc, logger, time.Second)
		sweeper.Start(5 * time.Millisecond)

		for i := 0; i < 2; i++ {
			select {
			case <-swept:
			case <-time.After(time.Second):
				t.Fatal("sweeper did not run")
			}
		}

		sweeper.Stop()
		sweeper.Stop()
	})

	t.Run("Non-positive interval disables sweeping", func(t *testing.T) {
		svc, m := newSessionService(t)

		logger := coremocks.NewMockLogger(t)
		logger.On("Warn", mock.Anything, mock.Anything).Once()

		sweeper := NewSweeper(svc, logger, 0)
		sweeper.Start(0)
		sweeper.Stop()

		m.repo.AssertNotCalled(t, "DeleteExpired", mock.Anything, mock.Anything)
		assert.Equal(t, 10*time.Second, sweeper.timeout)
	})
}
