package entity

import (
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
)

// SessionPolicy holds the lifetimes applied to every session
type SessionPolicy struct {
	IdleTimeout     time.Duration // Expiry after inactivity, slides on each access
	AbsoluteTimeout time.Duration // Hard cap measured from creation
}

// Session is server-side login state referenced by an opaque cookie token
type Session struct {
	Token             string
	UserID            uint64
	CreatedAt         time.Time
	LastSeenAt        time.Time
	ExpiresAt         time.Time
	AbsoluteExpiresAt time.Time
}

// NewSession starts a session for userID at now
func NewSession(token string, userID uint64, policy SessionPolicy, now time.Time) (*Session, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if token == "" {
		return nil, errs.ErrSessionNotFound
	}

	s := &Session{
		Token:             token,
		UserID:            userID,
		CreatedAt:         now,
		AbsoluteExpiresAt: now.Add(policy.AbsoluteTimeout),
	}
	s.Touch(now, policy)
	return s, nil
}

// IsExpired reports whether the session is no longer usable at now
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt) || !now.Before(s.AbsoluteExpiresAt)
}

// Touch slides the idle expiry forward, never past the absolute expiry
func (s *Session) Touch(now time.Time, policy SessionPolicy) {
	s.LastSeenAt = now
	expires := now.Add(policy.IdleTimeout)
	if policy.IdleTimeout <= 0 || expires.After(s.AbsoluteExpiresAt) {
		expires = s.AbsoluteExpiresAt
	}
	s.ExpiresAt = expires
}
