package processor

import (
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaimResult carries the amount moved into the withdrawable balance
type ClaimResult struct {
	Claimed decimal.Decimal
	User    store.User
}

// ClaimedString renders the claimed amount with AmountPlaces digits
func (r ClaimResult) ClaimedString() string {
	return r.Claimed.StringFixed(AmountPlaces)
}

// ClaimEarnings moves all of today's unclaimed earnings into the withdrawable
// balance in one step. A second call right after finds nothing to claim.
func (p *LedgerProcessor) ClaimEarnings(ctx context.Context, userID uuid.UUID) (ClaimResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	var claimed decimal.Decimal
	unlock := p.locks.Lock(userID)
	updated, err := p.store.MutateUser(ctx, userID, func(u *store.User) error {
		if u.Banned {
			return ErrBanned
		}
		if !u.DailyEarnings.IsPositive() {
			return ErrNothingToClaim
		}
		claimed = u.DailyEarnings
		u.WithdrawBalance = u.WithdrawBalance.Add(claimed)
		u.DailyEarnings = decimal.Zero
		return nil
	})
	unlock()
	if err != nil {
		err = p.mapUserErr(ctx, err)
		observability.ClaimsTotal.WithLabelValues(outcomeOf(err)).Inc()
		return ClaimResult{}, err
	}

	if p.events != nil {
		p.events.DispatchEarningsClaimed(ctx, updated, claimed)
	}
	observability.ClaimsTotal.WithLabelValues("claimed").Inc()
	p.logger.Info(ctx, "earnings claimed", observability.Field{Key: "claimed", Value: claimed.String()})

	return ClaimResult{Claimed: claimed, User: updated}, nil
}
