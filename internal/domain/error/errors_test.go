package error

import (
	"errors"
	"fmt"
	"testing"
)

func TestBaseErrorTypes(t *testing.T) {
	if ErrInsufficientFunds.Error() != "insufficient funds" {
		t.Errorf("ErrInsufficientFunds has unexpected message: %s", ErrInsufficientFunds.Error())
	}
	if ErrInvalidAmount.Error() != "invalid amount format" {
		t.Errorf("ErrInvalidAmount has unexpected message: %s", ErrInvalidAmount.Error())
	}
	if !errors.Is(ErrUnknownEmail, ErrInvalidCredentials) {
		t.Errorf("ErrUnknownEmail should wrap ErrInvalidCredentials")
	}
	if !errors.Is(ErrWrongPassword, ErrInvalidCredentials) {
		t.Errorf("ErrWrongPassword should wrap ErrInvalidCredentials")
	}
	if errors.Is(ErrUnknownEmail, ErrWrongPassword) {
		t.Errorf("login failures must stay distinguishable")
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{"InsufficientFunds", ErrInsufficientFunds, 4001},
		{"InvalidAmount", ErrInvalidAmount, 4002},
		{"InvalidUserID", ErrInvalidUserID, 4003},
		{"EmailInUse", ErrEmailInUse, 4004},
		{"PasswordTooLong", fmt.Errorf("hash password: %w", ErrPasswordTooLong), 4005},
		{"AmountOverflow", ErrAmountOverflow, 4006},
		{"WrongPassword", ErrWrongPassword, 4010},
		{"SessionExpired", ErrSessionExpired, 4011},
		{"UserNotFound", ErrUserNotFound, 4040},
		{"SessionNotFound", ErrSessionNotFound, 4041},
		{"ConcurrentUpdate", ErrConcurrentUpdate, 4090},
		{"SerializationFailure", ErrSerializationFailure, 4090},
		{"DatabaseConnection", ErrDatabaseConnection, 5030},
		{"Validation", ValidationErrors{NewFieldError("Email", "bad", nil)}, 4005},
		{"UnknownError", errors.New("unknown error"), 5000},
		{"WrappedError", fmt.Errorf("wrapped: %w", ErrInvalidUserID), 4003},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code := ErrorCode(tc.err)
			if code != tc.expected {
				t.Errorf("ErrorCode(%v) = %d, want %d", tc.err, code, tc.expected)
			}
		})
	}
}

func TestInsufficientFundsError(t *testing.T) {
	err := NewInsufficientFundsError(42, "-150.00", "100.00")

	expectedErrMsg := "insufficient funds for user 42: amount -150.00, available 100.00"
	if err.Error() != expectedErrMsg {
		t.Errorf("InsufficientFundsError.Error() = %s, want %s", err.Error(), expectedErrMsg)
	}

	if !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("errors.Is(err, ErrInsufficientFunds) = false, want true")
	}
	if !IsInsufficientFundsError(fmt.Errorf("apply: %w", err)) {
		t.Errorf("IsInsufficientFundsError should see through wrapping")
	}

	var detailed *InsufficientFundsError
	if !errors.As(err, &detailed) {
		t.Fatalf("errors.As should extract *InsufficientFundsError")
	}
	fields := detailed.LogFields()
	if fields["user_id"] != uint64(42) || fields["error_code"] != CodeInsufficientFunds {
		t.Errorf("unexpected log fields: %v", fields)
	}
}

func TestFieldErrorAndValidationErrors(t *testing.T) {
	emailErr := NewFieldError("Email", "Email already in use!", ErrEmailInUse)
	if !errors.Is(emailErr, ErrEmailInUse) {
		t.Errorf("FieldError should unwrap to its cause")
	}
	if emailErr.Error() != "Email: Email already in use!" {
		t.Errorf("FieldError.Error() = %s", emailErr.Error())
	}

	validation := ValidationErrors{
		emailErr,
		NewFieldError("Email", "second message", nil),
		NewFieldError("Password", "Password is required.", nil),
	}
	fields := validation.Fields()
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields["Email"] != "Email already in use!" {
		t.Errorf("first message per field should win, got %q", fields["Email"])
	}

	var target ValidationErrors
	if !errors.As(fmt.Errorf("register: %w", validation), &target) {
		t.Errorf("errors.As should extract ValidationErrors")
	}
}

func TestHelpers(t *testing.T) {
	if !IsInvalidAmountError(ErrAmountOverflow) || !IsInvalidAmountError(ErrInvalidAmount) {
		t.Errorf("IsInvalidAmountError should cover both amount errors")
	}
	if !IsSessionError(ErrSessionExpired) || IsSessionError(ErrUserNotFound) {
		t.Errorf("IsSessionError misclassified")
	}
	if !IsRetryableError(fmt.Errorf("update: %w", ErrConcurrentUpdate)) {
		t.Errorf("version conflicts should be retryable")
	}
	if IsRetryableError(ErrInsufficientFunds) {
		t.Errorf("business rejections must not be retried")
	}
	if !IsUserNotFoundError(ErrUserNotFound) {
		t.Errorf("IsUserNotFoundError misclassified")
	}
}
