package model

import (
	"time"
)

// Session represents a server-side login session
type Session struct {
	Token             string    `gorm:"primaryKey;size:64"`
	UserID            uint64    `gorm:"not null;index:idx_sessions_user_id"`
	CreatedAt         time.Time `gorm:"not null"`
	LastSeenAt        time.Time `gorm:"not null"`
	ExpiresAt         time.Time `gorm:"not null;index:idx_sessions_expires_at"`
	AbsoluteExpiresAt time.Time `gorm:"not null"`

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for Session
func (Session) TableName() string {
	return "sessions"
}
