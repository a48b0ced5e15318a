package model

import (
	"time"
)

// User represents the database model for users
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	FirstName    string    `gorm:"not null;size:100"`
	LastName     string    `gorm:"not null;size:100"`
	Email        string    `gorm:"not null;size:255;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"not null;size:255"`
	Balance      int64     `gorm:"not null;default:0;check:chk_users_balance_non_negative,balance >= 0"` // Balance in cents
	Version      uint64    `gorm:"not null;default:1"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`

	Transactions []Transaction `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
