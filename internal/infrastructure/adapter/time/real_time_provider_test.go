package time

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealTimeProvider(t *testing.T) {
	provider := NewRealTimeProvider()

	t.Run("Now is UTC", func(t *testing.T) {
		assert.Equal(t, time.UTC, provider.Now().Location())
	})

	t.Run("Since measures elapsed time", func(t *testing.T) {
		start := provider.Now().Add(-time.Second)
		assert.GreaterOrEqual(t, provider.Since(start), time.Second)
	})

	t.Run("WithTimeout sets a deadline", func(t *testing.T) {
		ctx, cancel := provider.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
	})
}
