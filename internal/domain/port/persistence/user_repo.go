package persistence

import (
	"context"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// UserRepository defines the methods needed to register, authenticate and
// update account holders
type UserRepository interface {
	// GetByID retrieves a user by ID
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrDatabaseConnection: If database connection fails
	GetByID(ctx context.Context, id uint64) (*entity.User, error)

	// GetByIDForUpdate retrieves a user and locks the row until the surrounding
	// transaction ends. Drivers without row locks fall back to a plain read.
	//
	// Possible errors:
	// - ErrUserNotFound: If user with specified ID doesn't exist
	// - ErrSerializationFailure: If the database aborted the lock attempt
	GetByIDForUpdate(ctx context.Context, id uint64) (*entity.User, error)

	// GetByEmail retrieves a user by exact email match
	//
	// Possible errors:
	// - ErrUserNotFound: If no user has this email
	// - ErrDatabaseConnection: If database connection fails
	GetByEmail(ctx context.Context, email string) (*entity.User, error)

	// EmailExists checks if any user is registered with the email
	EmailExists(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and assigns its ID
	//
	// Possible errors:
	// - ErrEmailInUse: If the unique email index rejected the row
	// - ErrDatabaseConnection: If database connection fails
	Create(ctx context.Context, user *entity.User) error

	// UpdateBalance persists balance, version and updatedAt, but only if the
	// stored version still equals expectedVersion
	//
	// Possible errors:
	// - ErrConcurrentUpdate: If the version guard matched no row
	// - ErrDatabaseConnection: If database connection fails
	UpdateBalance(ctx context.Context, user *entity.User, expectedVersion uint64) error
}
