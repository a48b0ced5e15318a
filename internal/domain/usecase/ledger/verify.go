package ledger

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/usecase"
)

// VerifyBalance compares the stored balance with the sum of the user's
// transactions and logs a warning when they drift apart
func (s *Service) VerifyBalance(ctx context.Context, userID uint64) (*usecase.LedgerCheck, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals, err := s.transactionRepo.TotalsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	check := &usecase.LedgerCheck{
		UserID:           userID,
		StoredBalance:    user.FormattedBalance(),
		ComputedBalance:  entity.FormatCents(totals.SumInCents),
		TransactionCount: totals.Count,
		Consistent:       user.Balance() == totals.SumInCents,
	}

	if !check.Consistent {
		s.logger.Warn("Ledger drift detected", map[string]any{
			"user_id":           userID,
			"stored_balance":    check.StoredBalance,
			"computed_balance":  check.ComputedBalance,
			"transaction_count": check.TransactionCount,
		})
	}

	return check, nil
}
