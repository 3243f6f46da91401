package processor

import (
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdCallbackStatusCompleted is the only ad-network status that credits the user
const AdCallbackStatusCompleted = "completed"

// AdWatchResult is the credit applied by one successful ad watch
type AdWatchResult struct {
	Earned decimal.Decimal
	User   store.User
}

// RecordAdWatch credits one ad watch to userID. The cooldown, daily reset and
// daily cap are evaluated and applied under the user's lock so concurrent
// calls produce at most one credit per cooldown window.
func (p *LedgerProcessor) RecordAdWatch(ctx context.Context, userID uuid.UUID) (AdWatchResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		err = p.mapUserErr(ctx, err)
		p.recordAdOutcome(err)
		return AdWatchResult{}, err
	}
	if user.Banned {
		p.recordAdOutcome(ErrBanned)
		return AdWatchResult{}, ErrBanned
	}
	if err := p.checkMembership(ctx, user); err != nil {
		p.recordAdOutcome(err)
		return AdWatchResult{}, err
	}

	settings, err := p.store.GetSettings(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to read settings", err)
		return AdWatchResult{}, err
	}
	earned := settings.EarningsPerAd

	unlock := p.locks.Lock(userID)
	now := p.now()
	updated, err := p.store.MutateUser(ctx, userID, func(u *store.User) error {
		if u.Banned {
			return ErrBanned
		}
		if u.LastAdWatch != nil {
			if elapsed := now.Sub(*u.LastAdWatch); elapsed < Cooldown {
				retryAfter := Cooldown - elapsed
				if retryAfter > Cooldown {
					retryAfter = Cooldown
				}
				return cooldownError(retryAfter)
			}
		}

		effectiveDaily := 0
		if u.LastAdWatch != nil && sameDay(*u.LastAdWatch, now, p.location) {
			effectiveDaily = u.DailyAdsWatched
		}
		if effectiveDaily >= settings.DailyAdLimit {
			return dailyLimitError(now, startOfNextDay(now, p.location))
		}

		u.DailyEarnings = u.DailyEarnings.Add(earned)
		u.TotalEarnings = u.TotalEarnings.Add(earned)
		u.AdsWatched++
		u.DailyAdsWatched = effectiveDaily + 1
		watchedAt := now
		u.LastAdWatch = &watchedAt
		return nil
	})
	unlock()
	if err != nil {
		err = p.mapUserErr(ctx, err)
		p.recordAdOutcome(err)
		var ledgerErr *Error
		if errors.As(err, &ledgerErr) {
			p.logger.Info(ctx, "ad watch rejected", observability.Field{Key: "reason", Value: ledgerErr.Reason})
		}
		return AdWatchResult{}, err
	}

	if err := p.store.IncrementStats(ctx, store.StatsDelta{AdsWatched: 1, Earnings: earned}); err != nil {
		p.logger.Error(ctx, "failed to increment ad stats", err)
	}
	p.creditReferrer(ctx, updated, earned)

	if p.events != nil {
		p.events.DispatchAdWatched(ctx, updated, earned)
	}
	observability.AdWatchesTotal.WithLabelValues("credited").Inc()
	p.logger.Info(ctx, "ad watch credited",
		observability.Field{Key: "earned", Value: earned.String()},
		observability.Field{Key: "daily_ads_watched", Value: updated.DailyAdsWatched},
	)

	return AdWatchResult{Earned: earned, User: updated}, nil
}

// checkMembership runs the external channel check before any lock is taken
func (p *LedgerProcessor) checkMembership(ctx context.Context, user store.User) error {
	if p.membership == nil {
		return nil
	}
	checkCtx, cancel := context.WithTimeout(ctx, p.membershipTimeout)
	defer cancel()

	member, err := p.membership.IsMember(checkCtx, user.ExternalID)
	if err != nil {
		p.logger.WarnWithError(ctx, "membership check failed, treating as non-member", err)
		return ErrMembershipRequired
	}
	if !member {
		return ErrMembershipRequired
	}
	return nil
}

// creditReferrer pays the referral commission as its own atomic update on the
// referrer. It runs after the referee's lock is released, so the two user
// locks are never held together. Failures are logged and never undo the
// referee's credit.
func (p *LedgerProcessor) creditReferrer(ctx context.Context, referee store.User, earned decimal.Decimal) {
	if referee.ReferredBy == nil {
		return
	}
	referrerID := *referee.ReferredBy
	commission := earned.Mul(ReferralCommissionRate)
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "referrer_id", Value: referrerID.String()},
		observability.Field{Key: "commission", Value: commission.String()},
	)

	unlock := p.locks.Lock(referrerID)
	_, err := p.store.MutateUser(ctx, referrerID, func(u *store.User) error {
		u.DailyEarnings = u.DailyEarnings.Add(commission)
		u.TotalEarnings = u.TotalEarnings.Add(commission)
		return nil
	})
	unlock()
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Warn(ctx, "referrer not found, skipping commission")
			observability.ReferralCommissionsTotal.WithLabelValues("referrer_missing").Inc()
			return
		}
		p.logger.Error(ctx, "failed to credit referral commission", err)
		observability.ReferralCommissionsTotal.WithLabelValues("error").Inc()
		return
	}

	if err := p.store.AddReferralCommission(ctx, referrerID, referee.ID, commission); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Warn(ctx, "referral record missing for referred user")
			observability.ReferralCommissionsTotal.WithLabelValues("record_missing").Inc()
			return
		}
		p.logger.Error(ctx, "failed to accumulate referral commission", err)
		observability.ReferralCommissionsTotal.WithLabelValues("error").Inc()
		return
	}
	observability.ReferralCommissionsTotal.WithLabelValues("credited").Inc()
}

func (p *LedgerProcessor) recordAdOutcome(err error) {
	observability.AdWatchesTotal.WithLabelValues(outcomeOf(err)).Inc()
}

// AdCallbackRequest is the ad network's completion signal; it is trusted input
type AdCallbackRequest struct {
	UserID uuid.UUID
	Status string
}

// AdCallbackResult reports whether the callback produced a credit
type AdCallbackResult struct {
	Credited bool
	Earned   decimal.Decimal
	User     *store.User
}

// HandleAdCallback credits a completed ad through the same path as RecordAdWatch.
// Any other status is acknowledged without touching the ledger.
func (p *LedgerProcessor) HandleAdCallback(ctx context.Context, req AdCallbackRequest) (AdCallbackResult, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "ad_status", Value: req.Status})
	if req.Status != AdCallbackStatusCompleted {
		p.logger.Info(ctx, "ignoring ad callback")
		return AdCallbackResult{}, nil
	}

	result, err := p.RecordAdWatch(ctx, req.UserID)
	if err != nil {
		return AdCallbackResult{}, err
	}
	return AdCallbackResult{Credited: true, Earned: result.Earned, User: &result.User}, nil
}
