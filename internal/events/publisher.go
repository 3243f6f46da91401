package events

//go:generate go run go.uber.org/mock/mockgen@latest -source=publisher.go -destination=mocks_test.go -package=events

import (
	"adledger-server/internal/clients/kafka"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TypeUserCreated         = "user.created"
	TypeAdWatched           = "ad.watched"
	TypeEarningsClaimed     = "earnings.claimed"
	TypeWithdrawalRequested = "withdrawal.requested"
	TypeWithdrawalProcessed = "withdrawal.processed"
	TypeUserModerated       = "user.moderated"
	TypeSettingsUpdated     = "settings.updated"

	publishTimeout = 3 * time.Second
	amountPlaces   = 5
)

// EventProducer writes one event to the broker
type EventProducer interface {
	PublishEvent(ctx context.Context, event kafka.EventMessage) error
}

// Publisher turns ledger and admin state changes into Kafka events.
// Publishing is best effort: failures are logged and never reach the caller.
type Publisher struct {
	producer EventProducer
	logger   *observability.Logger
	now      func() time.Time
}

// NewPublisher creates a new event publisher. A nil producer disables publishing.
func NewPublisher(producer EventProducer, logger *observability.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// DispatchUserCreated publishes a user.created event
func (p *Publisher) DispatchUserCreated(ctx context.Context, user store.User) {
	data := map[string]any{
		"external_id":   user.ExternalID,
		"referral_code": user.ReferralCode,
	}
	if user.ReferredBy != nil {
		data["referred_by"] = user.ReferredBy.String()
	}
	p.publish(ctx, TypeUserCreated, user.ID, data)
}

// DispatchAdWatched publishes an ad.watched event
func (p *Publisher) DispatchAdWatched(ctx context.Context, user store.User, earned decimal.Decimal) {
	p.publish(ctx, TypeAdWatched, user.ID, map[string]any{
		"earned":            earned.StringFixed(amountPlaces),
		"daily_ads_watched": user.DailyAdsWatched,
		"ads_watched":       user.AdsWatched,
	})
}

// DispatchEarningsClaimed publishes an earnings.claimed event
func (p *Publisher) DispatchEarningsClaimed(ctx context.Context, user store.User, claimed decimal.Decimal) {
	p.publish(ctx, TypeEarningsClaimed, user.ID, map[string]any{
		"claimed":          claimed.StringFixed(amountPlaces),
		"withdraw_balance": user.WithdrawBalance.String(),
	})
}

// DispatchWithdrawalRequested publishes a withdrawal.requested event
func (p *Publisher) DispatchWithdrawalRequested(ctx context.Context, withdrawal store.WithdrawalRequest) {
	p.publish(ctx, TypeWithdrawalRequested, withdrawal.UserID, withdrawalData(withdrawal))
}

// DispatchWithdrawalProcessed publishes a withdrawal.processed event
func (p *Publisher) DispatchWithdrawalProcessed(ctx context.Context, withdrawal store.WithdrawalRequest) {
	p.publish(ctx, TypeWithdrawalProcessed, withdrawal.UserID, withdrawalData(withdrawal))
}

// DispatchUserModerated publishes a user.moderated event
func (p *Publisher) DispatchUserModerated(ctx context.Context, user store.User, action string) {
	data := map[string]any{
		"action":  action,
		"banned":  user.Banned,
		"flagged": user.Flagged,
	}
	if user.FlagReason != nil {
		data["reason"] = *user.FlagReason
	}
	p.publish(ctx, TypeUserModerated, user.ID, data)
}

// DispatchSettingsUpdated publishes a settings.updated event
func (p *Publisher) DispatchSettingsUpdated(ctx context.Context, settings store.Settings) {
	p.publish(ctx, TypeSettingsUpdated, uuid.Nil, map[string]any{
		"earnings_per_ad": settings.EarningsPerAd.String(),
		"daily_ad_limit":  settings.DailyAdLimit,
		"cpm_rate":        settings.CPMRate.String(),
		"version":         settings.Version,
	})
}

func withdrawalData(w store.WithdrawalRequest) map[string]any {
	data := map[string]any{
		"withdrawal_id": w.ID.String(),
		"amount":        w.Amount.String(),
		"status":        w.Status,
		"method":        w.Method,
	}
	if w.AdminNotes != nil {
		data["admin_notes"] = *w.AdminNotes
	}
	return data
}

func (p *Publisher) publish(ctx context.Context, eventType string, userID uuid.UUID, data map[string]any) {
	if p == nil || p.producer == nil {
		return
	}

	event := kafka.EventMessage{
		ID:        uuid.New().String(),
		Type:      eventType,
		Data:      data,
		Timestamp: p.now().UTC().Format(time.RFC3339),
	}
	if userID != uuid.Nil {
		event.UserID = userID.String()
	}

	// The request may finish before the broker acknowledges
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.producer.PublishEvent(ctx, event); err != nil {
		p.logger.WarnWithError(observability.WithFields(ctx,
			observability.Field{Key: "event_type", Value: eventType},
		), "failed to publish ledger event", err)
	}
}
