package entity

import (
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
)

// User represents an account holder with a single balance
type User struct {
	ID           uint64    // Unique identifier for the user
	FirstName    string    // Given name
	LastName     string    // Family name
	Email        string    // Login email, matched exactly
	PasswordHash string    // bcrypt hash, never the raw password
	balance      int64     // Balance stored in cents to avoid floating point precision issues (private)
	Version      uint64    // Optimistic concurrency counter, bumped on every balance change
	CreatedAt    time.Time // When the user was created
	UpdatedAt    time.Time // When the user was last updated
}

// NewUser creates a user with a zero balance
func NewUser(firstName, lastName, email, passwordHash string, timeProvider coreport.TimeProvider) *User {
	now := timeProvider.Now()
	return &User{
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Email:        strings.TrimSpace(email),
		PasswordHash: passwordHash,
		balance:      0,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// RestoreUser rebuilds a persisted user (for repositories)
func RestoreUser(id uint64, firstName, lastName, email, passwordHash string, balanceInCents int64, version uint64, createdAt, updatedAt time.Time) *User {
	return &User{
		ID:           id,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
		balance:      balanceInCents,
		Version:      version,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
}

// Balance returns the current balance in cents (for internal use)
func (u *User) Balance() int64 {
	return u.balance
}

// FormattedBalance returns the balance as a string with 2 decimal places
func (u *User) FormattedBalance() string {
	return FormatCents(u.balance)
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// ProspectiveBalance returns the balance after applying amountInCents
func (u *User) ProspectiveBalance(amountInCents int64) (int64, error) {
	return SumCents(u.balance, amountInCents)
}

// CanApply reports whether amountInCents keeps the balance non-negative
func (u *User) CanApply(amountInCents int64) bool {
	prospective, err := u.ProspectiveBalance(amountInCents)
	return err == nil && prospective >= 0
}

// ApplyTransaction adds a signed amount to the balance and bumps the version.
// Returns an InsufficientFundsError if the result would be negative.
func (u *User) ApplyTransaction(amountInCents int64, timeProvider coreport.TimeProvider) error {
	prospective, err := u.ProspectiveBalance(amountInCents)
	if err != nil {
		return err
	}
	if prospective < 0 {
		return errs.NewInsufficientFundsError(u.ID, FormatCents(amountInCents), u.FormattedBalance())
	}

	u.balance = prospective
	u.Version++
	u.UpdatedAt = timeProvider.Now()
	return nil
}
