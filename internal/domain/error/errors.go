package error

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes used in logs and on the error page
const (
	// 4xxx - Client errors
	CodeInsufficientFunds  = 4001
	CodeInvalidAmount      = 4002
	CodeInvalidUserID      = 4003
	CodeEmailInUse         = 4004
	CodeValidation         = 4005
	CodeAmountOverflow     = 4006
	CodeInvalidCredentials = 4010
	CodeSessionExpired     = 4011
	CodeUserNotFound       = 4040
	CodeSessionNotFound    = 4041
	CodeConcurrentUpdate   = 4090

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5030
	CodeShuttingDown       = 5031
)

// Base error types
var (
	// ErrInsufficientFunds is returned when a withdrawal would take the balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when the submitted amount cannot be parsed
	ErrInvalidAmount = errors.New("invalid amount format")

	// ErrAmountOverflow is returned when the amount exceeds the allowed magnitude
	ErrAmountOverflow = errors.New("amount is too large")

	// ErrInvalidUserID is returned when the user ID is zero
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrEmailInUse is returned when registering an email that already belongs to a user
	ErrEmailInUse = errors.New("email already in use")

	// ErrPasswordTooLong is returned when a password exceeds what the hasher accepts
	ErrPasswordTooLong = errors.New("password is too long")

	// ErrInvalidCredentials is the base for every failed login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnknownEmail is returned when no user matches the login email
	ErrUnknownEmail = fmt.Errorf("%w: unknown email", ErrInvalidCredentials)

	// ErrWrongPassword is returned when the password does not match the stored hash
	ErrWrongPassword = fmt.Errorf("%w: wrong password", ErrInvalidCredentials)

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrSessionNotFound is returned when no session matches the token
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session passed its idle or absolute expiry
	ErrSessionExpired = errors.New("session expired")

	// ErrConcurrentUpdate is returned when a guarded balance update lost the version race
	ErrConcurrentUpdate = errors.New("account was modified concurrently")

	// ErrSerializationFailure is returned when the database aborted a transaction to keep it serializable
	ErrSerializationFailure = errors.New("transaction serialization failure")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrShuttingDown is returned when work is submitted after shutdown started
	ErrShuttingDown = errors.New("service is shutting down")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	var validationErrs ValidationErrors
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrEmailInUse):
		return CodeEmailInUse
	case errors.Is(err, ErrPasswordTooLong):
		return CodeValidation
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, ErrSessionExpired):
		return CodeSessionExpired
	case errors.Is(err, ErrConcurrentUpdate), errors.Is(err, ErrSerializationFailure):
		return CodeConcurrentUpdate
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	case errors.Is(err, ErrShuttingDown):
		return CodeShuttingDown
	case errors.As(err, &validationErrs):
		return CodeValidation
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError provides detailed error information for a rejected withdrawal
type InsufficientFundsError struct {
	UserID         uint64
	Amount         string
	CurrentBalance string
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for user %d: amount %s, available %s",
		e.UserID, e.Amount, e.CurrentBalance)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_funds",
		"user_id":         e.UserID,
		"amount":          e.Amount,
		"current_balance": e.CurrentBalance,
		"error_code":      CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(userID uint64, amount, currentBalance string) error {
	return &InsufficientFundsError{
		UserID:         userID,
		Amount:         amount,
		CurrentBalance: currentBalance,
	}
}

// FieldError attaches a user-facing message to a single form field
type FieldError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error
func (e *FieldError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *FieldError) LogFields() map[string]any {
	fields := map[string]any{
		"error_type": "field_error",
		"field":      e.Field,
		"message":    e.Message,
		"error_code": ErrorCode(e.Err),
	}
	if e.Err != nil {
		fields["error"] = e.Err.Error()
	}
	return fields
}

// NewFieldError creates a field error wrapping err
func NewFieldError(field, message string, err error) *FieldError {
	return &FieldError{Field: field, Message: message, Err: err}
}

// ValidationErrors collects field errors of one submitted form
type ValidationErrors []*FieldError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields returns the first message per field, keyed by form field name
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		if _, exists := out[fe.Field]; !exists {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsInvalidAmountError checks if the error is any rejected amount
func IsInvalidAmountError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrAmountOverflow)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsSessionError checks if the error means the caller has no usable session
func IsSessionError(err error) bool {
	return errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired)
}

// IsRetryableError checks if the failed write can be attempted again
func IsRetryableError(err error) bool {
	return errors.Is(err, ErrConcurrentUpdate) || errors.Is(err, ErrSerializationFailure)
}
