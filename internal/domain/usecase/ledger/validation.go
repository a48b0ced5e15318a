package ledger

import (
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

// AmountValidator turns submitted amounts into cents
type AmountValidator struct {
	maxAmountInCents int64
}

// NewAmountValidator creates a validator bounding amounts to maxAmountInCents.
// A non-positive limit falls back to entity.DefaultMaxAmountInCents.
func NewAmountValidator(maxAmountInCents int64) *AmountValidator {
	if maxAmountInCents <= 0 {
		maxAmountInCents = entity.DefaultMaxAmountInCents
	}
	return &AmountValidator{maxAmountInCents: maxAmountInCents}
}

// Validate parses raw into signed cents.
// Returns ErrInvalidAmount or ErrAmountOverflow.
func (v *AmountValidator) Validate(raw string) (int64, error) {
	return entity.ParseAmount(raw, v.maxAmountInCents)
}

// MaxAmount returns the configured limit formatted for display
func (v *AmountValidator) MaxAmount() string {
	return entity.FormatCents(v.maxAmountInCents)
}
