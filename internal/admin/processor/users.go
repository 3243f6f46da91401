package processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultBanReason         = "Banned by admin"
	defaultFlagReason        = "Flagged by admin"
	defaultClaimRejectReason = "Claim rejected by admin"
)

// Moderation actions reported to the event stream
const (
	ActionBanned        = "banned"
	ActionUnbanned      = "unbanned"
	ActionFlagged       = "flagged"
	ActionUnflagged     = "unflagged"
	ActionClaimApproved = "claim_approved"
	ActionClaimRejected = "claim_rejected"
)

// BanUserRequest sets or clears a ban
type BanUserRequest struct {
	UserID uuid.UUID
	Banned bool
	Reason string
}

// BanUser sets the ban flag. Banning also flags the user with the reason;
// unbanning leaves the flag and its reason untouched.
func (p *AdminProcessor) BanUser(ctx context.Context, callerID string, req BanUserRequest) (store.User, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return store.User{}, err
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: req.UserID.String()},
		observability.Field{Key: "banned", Value: req.Banned},
	)

	reason := reasonOrDefault(req.Reason, defaultBanReason)
	unlock := p.locks.Lock(req.UserID)
	user, err := p.store.MutateUser(ctx, req.UserID, func(u *store.User) error {
		u.Banned = req.Banned
		if req.Banned {
			u.Flagged = true
			u.FlagReason = &reason
		}
		return nil
	})
	unlock()
	if err != nil {
		return store.User{}, p.mapUserErr(ctx, err)
	}

	action := ActionUnbanned
	if req.Banned {
		action = ActionBanned
	}
	p.moderated(ctx, user, action)
	return user, nil
}

// FlagUserRequest sets or clears the administrative flag
type FlagUserRequest struct {
	UserID  uuid.UUID
	Flagged bool
	Reason  string
}

// FlagUser marks a user for review without banning. Clearing the flag also
// clears its reason.
func (p *AdminProcessor) FlagUser(ctx context.Context, callerID string, req FlagUserRequest) (store.User, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return store.User{}, err
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: req.UserID.String()},
		observability.Field{Key: "flagged", Value: req.Flagged},
	)

	reason := reasonOrDefault(req.Reason, defaultFlagReason)
	unlock := p.locks.Lock(req.UserID)
	user, err := p.store.MutateUser(ctx, req.UserID, func(u *store.User) error {
		u.Flagged = req.Flagged
		if req.Flagged {
			u.FlagReason = &reason
		} else {
			u.FlagReason = nil
		}
		return nil
	})
	unlock()
	if err != nil {
		return store.User{}, p.mapUserErr(ctx, err)
	}

	action := ActionUnflagged
	if req.Flagged {
		action = ActionFlagged
	}
	p.moderated(ctx, user, action)
	return user, nil
}

// ApproveClaim runs the user's claim on their behalf with the same rules
func (p *AdminProcessor) ApproveClaim(ctx context.Context, callerID string, userID uuid.UUID) (ledger.ClaimResult, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return ledger.ClaimResult{}, err
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})

	result, err := p.claims.ClaimEarnings(ctx, userID)
	if err != nil {
		return ledger.ClaimResult{}, err
	}
	p.moderated(ctx, result.User, ActionClaimApproved)
	return result, nil
}

// RejectClaimRequest discards a user's unclaimed earnings
type RejectClaimRequest struct {
	UserID uuid.UUID
	Reason string
}

// RejectClaimResult carries the discarded amount
type RejectClaimResult struct {
	Rejected decimal.Decimal
	User     store.User
}

// RejectClaim zeroes dailyEarnings without crediting the withdrawable balance
// and flags the user with the rejection reason.
func (p *AdminProcessor) RejectClaim(ctx context.Context, callerID string, req RejectClaimRequest) (RejectClaimResult, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return RejectClaimResult{}, err
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: req.UserID.String()})

	reason := reasonOrDefault(req.Reason, defaultClaimRejectReason)
	var rejected decimal.Decimal
	unlock := p.locks.Lock(req.UserID)
	user, err := p.store.MutateUser(ctx, req.UserID, func(u *store.User) error {
		rejected = u.DailyEarnings
		u.DailyEarnings = decimal.Zero
		u.Flagged = true
		u.FlagReason = &reason
		return nil
	})
	unlock()
	if err != nil {
		return RejectClaimResult{}, p.mapUserErr(ctx, err)
	}

	p.logger.Info(ctx, "claim rejected", observability.Field{Key: "rejected", Value: rejected.String()})
	p.moderated(ctx, user, ActionClaimRejected)
	return RejectClaimResult{Rejected: rejected, User: user}, nil
}

func (p *AdminProcessor) moderated(ctx context.Context, user store.User, action string) {
	p.logger.Info(ctx, "user moderated", observability.Field{Key: "action", Value: action})
	if p.events != nil {
		p.events.DispatchUserModerated(ctx, user, action)
	}
}

func reasonOrDefault(reason, fallback string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return fallback
}
