package processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

const cpmPlaces = 2

var adsPerMille = decimal.NewFromInt(1000)

// UpdateSettingsRequest carries the optional economic parameters. A nil
// field is left unchanged.
type UpdateSettingsRequest struct {
	EarningsPerAd *decimal.Decimal
	DailyAdLimit  *decimal.Decimal
}

// UpdateSettings validates every provided field and writes them as one
// versioned update. cpmRate follows earningsPerAd.
func (p *AdminProcessor) UpdateSettings(ctx context.Context, callerID string, req UpdateSettingsRequest) (store.Settings, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return store.Settings{}, err
	}
	if req.EarningsPerAd == nil && req.DailyAdLimit == nil {
		return store.Settings{}, ErrNoValidSettings
	}

	var (
		earningsPerAd decimal.Decimal
		dailyAdLimit  int
	)
	if req.EarningsPerAd != nil {
		earningsPerAd = req.EarningsPerAd.Round(ledger.AmountPlaces)
		if !earningsPerAd.IsPositive() {
			return store.Settings{}, ErrInvalidSettings
		}
	}
	if req.DailyAdLimit != nil {
		limit := *req.DailyAdLimit
		if !limit.IsInteger() || limit.LessThan(decimal.NewFromInt(1)) || !limit.LessThanOrEqual(decimal.NewFromInt(1<<31-1)) {
			return store.Settings{}, ErrInvalidSettings
		}
		dailyAdLimit = int(limit.IntPart())
	}

	updated, err := p.store.UpdateSettings(ctx, func(s *store.Settings) error {
		if req.EarningsPerAd != nil {
			s.EarningsPerAd = earningsPerAd
			s.CPMRate = earningsPerAd.Mul(adsPerMille).Round(cpmPlaces)
		}
		if req.DailyAdLimit != nil {
			s.DailyAdLimit = dailyAdLimit
		}
		return nil
	})
	if err != nil {
		p.logger.Error(ctx, "failed to update settings", err)
		return store.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}

	if p.events != nil {
		p.events.DispatchSettingsUpdated(ctx, updated)
	}
	p.logger.Info(ctx, "settings updated",
		observability.Field{Key: "earnings_per_ad", Value: updated.EarningsPerAd.String()},
		observability.Field{Key: "daily_ad_limit", Value: updated.DailyAdLimit},
		observability.Field{Key: "version", Value: updated.Version},
	)
	return updated, nil
}
