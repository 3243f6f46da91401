package processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"adledger-server/internal/userlock"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	activeUsersWindow    = 24 * time.Hour
	defaultNotifyTimeout = 5 * time.Second
)

// Config holds the admin identity and the clock
type Config struct {
	AdminID       string
	NotifyTimeout time.Duration
	Now           func() time.Time
}

type AdminProcessor struct {
	store         store.Repository
	claims        ClaimApprover
	locks         *userlock.Locker
	events        EventDispatcher
	notifier      WithdrawalNotifier
	logger        *observability.Logger
	adminID       string
	notifyTimeout time.Duration
	now           func() time.Time
}

// New wires an AdminProcessor. events and notifier may be nil.
func New(
	repo store.Repository,
	claims ClaimApprover,
	locks *userlock.Locker,
	events EventDispatcher,
	notifier WithdrawalNotifier,
	logger *observability.Logger,
	cfg Config,
) *AdminProcessor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}
	return &AdminProcessor{
		store:         repo,
		claims:        claims,
		locks:         locks,
		events:        events,
		notifier:      notifier,
		logger:        logger,
		adminID:       strings.TrimSpace(cfg.AdminID),
		notifyTimeout: cfg.NotifyTimeout,
		now:           cfg.Now,
	}
}

// verifyAdmin rejects every caller except the configured administrator.
// It runs before any state is read.
func (p *AdminProcessor) verifyAdmin(ctx context.Context, callerID string) (context.Context, error) {
	callerID = strings.TrimSpace(callerID)
	if p.adminID == "" || callerID != p.adminID {
		p.logger.Warn(ctx, "admin access denied", observability.Field{Key: "caller_id", Value: callerID})
		return ctx, ErrNotAdmin
	}
	return observability.WithFields(ctx, observability.Field{Key: "admin_id", Value: callerID}), nil
}

// StatsResult is the settings record with live counters for the dashboard
type StatsResult struct {
	store.Settings
	PendingWithdrawals int             `json:"pending_withdrawals"`
	TotalPendingAmount decimal.Decimal `json:"total_pending_amount"`
}

// Stats recomputes activeUsers24h, persists it, and reports pending withdrawals
func (p *AdminProcessor) Stats(ctx context.Context, callerID string) (StatsResult, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return StatsResult{}, err
	}

	active, err := p.store.CountActiveUsersSince(ctx, p.now().Add(-activeUsersWindow))
	if err != nil {
		p.logger.Error(ctx, "failed to count active users", err)
		return StatsResult{}, fmt.Errorf("failed to count active users: %w", err)
	}
	if err := p.store.SetActiveUsers24h(ctx, active); err != nil {
		p.logger.Error(ctx, "failed to persist active users", err)
		return StatsResult{}, fmt.Errorf("failed to persist active users: %w", err)
	}

	settings, err := p.store.GetSettings(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to read settings", err)
		return StatsResult{}, fmt.Errorf("failed to read settings: %w", err)
	}

	pending, err := p.store.ListPendingWithdrawals(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to list pending withdrawals", err)
		return StatsResult{}, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	total := decimal.Zero
	for _, w := range pending {
		total = total.Add(w.Amount)
	}

	return StatsResult{
		Settings:           settings,
		PendingWithdrawals: len(pending),
		TotalPendingAmount: total,
	}, nil
}

// ListUsersRequest filters the admin user list
type ListUsersRequest struct {
	Filter string
	Search string
	Limit  int
}

// ListUsers returns users matching the filter and search, most recently active first
func (p *AdminProcessor) ListUsers(ctx context.Context, callerID string, req ListUsersRequest) ([]store.User, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}

	filter := strings.ToLower(strings.TrimSpace(req.Filter))
	if !store.ValidUserFilter(filter) {
		return nil, ErrInvalidFilter
	}
	if filter == store.UserFilterAll {
		filter = ""
	}

	users, err := p.store.ListUsers(ctx, store.ListUsersParams{
		Search: strings.TrimSpace(req.Search),
		Filter: filter,
		Limit:  req.Limit,
	})
	if err != nil {
		p.logger.Error(ctx, "failed to list users", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// PendingWithdrawalView is a pending request with its owner's identity
type PendingWithdrawalView struct {
	store.WithdrawalRequest
	UserDisplayName string `json:"user_display_name,omitempty"`
	UserExternalID  string `json:"user_external_id,omitempty"`
}

// ListPendingWithdrawals returns pending requests oldest first
func (p *AdminProcessor) ListPendingWithdrawals(ctx context.Context, callerID string) ([]PendingWithdrawalView, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return nil, err
	}

	pending, err := p.store.ListPendingWithdrawals(ctx)
	if err != nil {
		p.logger.Error(ctx, "failed to list pending withdrawals", err)
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}

	owners := make(map[uuid.UUID]store.User)
	views := make([]PendingWithdrawalView, 0, len(pending))
	for _, w := range pending {
		view := PendingWithdrawalView{WithdrawalRequest: w}
		owner, ok := owners[w.UserID]
		if !ok {
			owner, err = p.store.GetUserByID(ctx, w.UserID)
			switch {
			case err == nil:
				owners[w.UserID] = owner
				ok = true
			case errors.Is(err, store.ErrNotFound):
				p.logger.Warn(ctx, "pending withdrawal owner missing",
					observability.Field{Key: "withdrawal_id", Value: w.ID.String()})
			default:
				return nil, fmt.Errorf("failed to load withdrawal owner: %w", err)
			}
		}
		if ok {
			view.UserDisplayName = owner.DisplayName
			view.UserExternalID = owner.ExternalID
		}
		views = append(views, view)
	}
	return views, nil
}

func (p *AdminProcessor) mapUserErr(ctx context.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ledger.ErrUserNotFound
	}
	var ledgerErr *ledger.Error
	if errors.As(err, &ledgerErr) {
		return err
	}
	p.logger.Error(ctx, "admin store failure", err)
	return fmt.Errorf("admin store failure: %w", err)
}
