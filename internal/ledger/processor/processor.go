package processor

import (
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"adledger-server/internal/userlock"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// Cooldown is the minimum gap between two credited ad watches of one user
	Cooldown = 3 * time.Second

	referralCodePrefix  = "LS"
	referralCodeLength  = 8
	referralCodeRetries = 5
	referralCodeChars   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// AmountPlaces is the number of fractional digits shown for money amounts
	// and the most a withdrawal request may carry
	AmountPlaces = 5

	defaultNotifyTimeout = 5 * time.Second
)

// ReferralCommissionRate is the share of a referee's ad earnings credited to the referrer
var ReferralCommissionRate = decimal.RequireFromString("0.10")

// Config holds the ledger parameters that come from the environment
type Config struct {
	Location          *time.Location
	MinWithdrawal     decimal.Decimal
	MembershipTimeout time.Duration
	NotifyTimeout     time.Duration
	Now               func() time.Time
}

type LedgerProcessor struct {
	store             store.Repository
	locks             *userlock.Locker
	membership        MembershipChecker
	events            EventDispatcher
	notifier          WithdrawalNotifier
	logger            *observability.Logger
	location          *time.Location
	minWithdrawal     decimal.Decimal
	membershipTimeout time.Duration
	notifyTimeout     time.Duration
	now               func() time.Time
}

// New wires a LedgerProcessor. membership, events and notifier may be nil.
func New(
	repo store.Repository,
	locks *userlock.Locker,
	membership MembershipChecker,
	events EventDispatcher,
	notifier WithdrawalNotifier,
	logger *observability.Logger,
	cfg Config,
) *LedgerProcessor {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.MembershipTimeout <= 0 {
		cfg.MembershipTimeout = 3 * time.Second
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	if !cfg.MinWithdrawal.IsPositive() {
		cfg.MinWithdrawal = decimal.NewFromInt(1)
	}
	return &LedgerProcessor{
		store:             repo,
		locks:             locks,
		membership:        membership,
		events:            events,
		notifier:          notifier,
		logger:            logger,
		location:          cfg.Location,
		minWithdrawal:     cfg.MinWithdrawal,
		membershipTimeout: cfg.MembershipTimeout,
		notifyTimeout:     cfg.NotifyTimeout,
		now:               cfg.Now,
	}
}

// MinWithdrawal returns the configured withdrawal floor
func (p *LedgerProcessor) MinWithdrawal() decimal.Decimal {
	return p.minWithdrawal
}

// GetOrCreateUserRequest identifies the caller and optionally the code they were invited with
type GetOrCreateUserRequest struct {
	ExternalID   string
	DisplayName  string
	ReferralCode string
}

// GetOrCreateUser returns the user for an external identity, creating it on first sight.
// A referral code of an existing user links referredBy and the Referral row atomically;
// unknown codes are ignored.
func (p *LedgerProcessor) GetOrCreateUser(ctx context.Context, req GetOrCreateUserRequest) (store.User, bool, error) {
	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		return store.User{}, false, ErrExternalIDRequired
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "external_id", Value: externalID})

	existing, err := p.store.GetUserByExternalID(ctx, externalID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		p.logger.Error(ctx, "failed to look up user", err)
		return store.User{}, false, fmt.Errorf("failed to look up user: %w", err)
	}

	referrerID := p.resolveReferrer(ctx, strings.TrimSpace(req.ReferralCode))

	for attempt := 0; attempt < referralCodeRetries; attempt++ {
		code, err := generateReferralCode()
		if err != nil {
			return store.User{}, false, fmt.Errorf("failed to generate referral code: %w", err)
		}

		user, err := p.store.CreateUser(ctx, store.CreateUserParams{
			ExternalID:   externalID,
			DisplayName:  strings.TrimSpace(req.DisplayName),
			ReferralCode: code,
			ReferrerID:   referrerID,
		})
		if err == nil {
			p.afterUserCreated(ctx, user)
			return user, true, nil
		}
		if !errors.Is(err, store.ErrConflict) {
			p.logger.Error(ctx, "failed to create user", err)
			return store.User{}, false, fmt.Errorf("failed to create user: %w", err)
		}

		// A concurrent request may have created the same identity first.
		if existing, lookupErr := p.store.GetUserByExternalID(ctx, externalID); lookupErr == nil {
			return existing, false, nil
		}
	}
	return store.User{}, false, fmt.Errorf("failed to create user: %w", store.ErrConflict)
}

func (p *LedgerProcessor) resolveReferrer(ctx context.Context, code string) *uuid.UUID {
	if code == "" {
		return nil
	}
	referrer, err := p.store.GetUserByReferralCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			p.logger.Info(ctx, "ignoring unknown referral code", observability.Field{Key: "referral_code", Value: code})
		} else {
			p.logger.Error(ctx, "failed to resolve referral code", err)
		}
		return nil
	}
	return &referrer.ID
}

func (p *LedgerProcessor) afterUserCreated(ctx context.Context, user store.User) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: user.ID.String()})
	if err := p.store.IncrementStats(ctx, store.StatsDelta{Users: 1}); err != nil {
		p.logger.Error(ctx, "failed to increment user count", err)
	}
	if p.events != nil {
		p.events.DispatchUserCreated(ctx, user)
	}
	p.logger.Info(ctx, "user created", observability.Field{Key: "referred", Value: user.ReferredBy != nil})
}

func generateReferralCode() (string, error) {
	var b strings.Builder
	b.WriteString(referralCodePrefix)
	alphabet := big.NewInt(int64(len(referralCodeChars)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		b.WriteByte(referralCodeChars[n.Int64()])
	}
	return b.String(), nil
}

// GetUser returns the current snapshot of a user
func (p *LedgerProcessor) GetUser(ctx context.Context, userID uuid.UUID) (store.User, error) {
	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		return store.User{}, p.mapUserErr(ctx, err)
	}
	return user, nil
}

// ListUserWithdrawals returns a user's withdrawal requests, newest first
func (p *LedgerProcessor) ListUserWithdrawals(ctx context.Context, userID uuid.UUID) ([]store.WithdrawalRequest, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	if _, err := p.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	withdrawals, err := p.store.ListWithdrawalsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return withdrawals, nil
}

// ReferralView is a Referral enriched with the referee's public progress
type ReferralView struct {
	store.Referral
	RefereeDisplayName   string          `json:"referee_display_name"`
	RefereeTotalEarnings decimal.Decimal `json:"referee_total_earnings"`
	RefereeAdsWatched    int64           `json:"referee_ads_watched"`
}

// ListUserReferrals returns the users referred by userID with their progress
func (p *LedgerProcessor) ListUserReferrals(ctx context.Context, userID uuid.UUID) ([]ReferralView, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: userID.String()})
	if _, err := p.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	referrals, err := p.store.GetReferralsByReferrer(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]ReferralView, 0, len(referrals))
	for _, r := range referrals {
		view := ReferralView{Referral: r}
		referee, err := p.store.GetUserByID(ctx, r.RefereeID)
		switch {
		case err == nil:
			view.RefereeDisplayName = referee.DisplayName
			view.RefereeTotalEarnings = referee.TotalEarnings
			view.RefereeAdsWatched = referee.AdsWatched
		case errors.Is(err, store.ErrNotFound):
			p.logger.Warn(ctx, "referral points at missing referee",
				observability.Field{Key: "referee_id", Value: r.RefereeID.String()})
		default:
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (p *LedgerProcessor) mapUserErr(ctx context.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) {
		return err
	}
	p.logger.Error(ctx, "ledger store failure", err)
	return fmt.Errorf("ledger store failure: %w", err)
}

func sameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func startOfNextDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}
