package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
)

func TestNewSession(t *testing.T) {
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := SessionPolicy{IdleTimeout: 30 * time.Minute, AbsoluteTimeout: 24 * time.Hour}

	t.Run("Valid session", func(t *testing.T) {
		s, err := NewSession("token-1", 9, policy, now)

		require.NoError(t, err)
		assert.Equal(t, "token-1", s.Token)
		assert.Equal(t, uint64(9), s.UserID)
		assert.Equal(t, now, s.CreatedAt)
		assert.Equal(t, now, s.LastSeenAt)
		assert.Equal(t, now.Add(30*time.Minute), s.ExpiresAt)
		assert.Equal(t, now.Add(24*time.Hour), s.AbsoluteExpiresAt)
	})

	t.Run("Missing user or token", func(t *testing.T) {
		_, err := NewSession("token-1", 0, policy, now)
		assert.ErrorIs(t, err, errs.ErrInvalidUserID)

		_, err = NewSession("", 9, policy, now)
		assert.ErrorIs(t, err, errs.ErrSessionNotFound)
	})
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	policy := SessionPolicy{IdleTimeout: 30 * time.Minute, AbsoluteTimeout: time.Hour}

	s, err := NewSession("token-1", 9, policy, now)
	require.NoError(t, err)

	t.Run("Idle expiry", func(t *testing.T) {
		assert.False(t, s.IsExpired(now.Add(29*time.Minute)))
		assert.True(t, s.IsExpired(now.Add(30*time.Minute)))
	})

	t.Run("Touch slides idle expiry", func(t *testing.T) {
		s.Touch(now.Add(20*time.Minute), policy)
		assert.Equal(t, now.Add(50*time.Minute), s.ExpiresAt)
		assert.False(t, s.IsExpired(now.Add(45*time.Minute)))
	})

	t.Run("Touch never passes absolute expiry", func(t *testing.T) {
		s.Touch(now.Add(50*time.Minute), policy)
		assert.Equal(t, now.Add(time.Hour), s.ExpiresAt)
		assert.True(t, s.IsExpired(now.Add(time.Hour)))
	})
}
