package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const sqlSelectReferralsByReferrer = `
SELECT
    id,
    referrer_id,
    referee_id,
    commission,
    created_at
FROM referrals
WHERE referrer_id = $1
ORDER BY created_at DESC`

const sqlAddReferralCommission = `
UPDATE referrals
SET commission = commission + $3
WHERE referrer_id = $1 AND referee_id = $2`

func (s *Store) GetReferralsByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Referral, error) {
	referrals := []Referral{}
	if err := s.db.SelectContext(ctx, &referrals, sqlSelectReferralsByReferrer, referrerID); err != nil {
		s.logger.Error(ctx, "failed to list referrals", err)
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return referrals, nil
}

// AddReferralCommission accumulates amount into the (referrer, referee) row; ErrNotFound when no row exists
func (s *Store) AddReferralCommission(ctx context.Context, referrerID, refereeID uuid.UUID, amount decimal.Decimal) error {
	res, err := s.db.ExecContext(ctx, sqlAddReferralCommission, referrerID, refereeID, amount)
	if err != nil {
		s.logger.Error(ctx, "failed to add referral commission", err)
		return fmt.Errorf("failed to add referral commission: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to add referral commission: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
