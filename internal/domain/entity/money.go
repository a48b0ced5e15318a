package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/bank-ledger/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// DefaultMaxAmountInCents bounds the magnitude of a single transaction (1,000,000,000.00)
const DefaultMaxAmountInCents int64 = 100_000_000_000

// ParseAmount converts a signed decimal string such as "-12.5" into cents.
// The amount may carry at most two decimal places and must fit in maxCents
// by absolute value; a non-positive maxCents disables the magnitude check.
func ParseAmount(raw string, maxCents int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	// decimal accepts exponents; a form field never should
	if strings.ContainsAny(raw, "eE") {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidAmount, raw)
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidAmount, raw)
	}

	if !amount.Equal(amount.Truncate(MaxDecimalPlaces)) {
		return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}

	cents := amount.Shift(MaxDecimalPlaces)
	if maxCents > 0 && cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, fmt.Errorf("%w: limit is %s", errs.ErrAmountOverflow, FormatCents(maxCents))
	}
	if !cents.Abs().LessThanOrEqual(decimal.NewFromInt(maxInt64)) {
		return 0, errs.ErrAmountOverflow
	}

	return cents.IntPart(), nil
}

// FormatCents renders cents as a decimal string with exactly two places.
// For example 1015 becomes "10.15" and -5 becomes "-0.05".
func FormatCents(cents int64) string {
	return decimal.New(cents, -MaxDecimalPlaces).StringFixed(MaxDecimalPlaces)
}

// SumCents adds b to a, failing instead of wrapping around
func SumCents(a, b int64) (int64, error) {
	if (b > 0 && a > maxInt64-b) || (b < 0 && a < minInt64-b) {
		return 0, errs.ErrAmountOverflow
	}
	return a + b, nil
}

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)
