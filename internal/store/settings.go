package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const settingsColumns = `
    id,
    earnings_per_ad,
    daily_ad_limit,
    cpm_rate,
    total_users,
    total_ads_watched,
    total_earnings,
    total_withdrawals,
    active_users_24h,
    version,
    updated_at`

const sqlSelectSettings = `
SELECT` + settingsColumns + `
FROM ledger_settings
WHERE id = 'main'`

const sqlSelectSettingsForUpdate = sqlSelectSettings + `
FOR UPDATE`

const sqlUpdateSettings = `
UPDATE ledger_settings
SET earnings_per_ad = $1,
    daily_ad_limit = $2,
    cpm_rate = $3,
    version = version + 1,
    updated_at = NOW()
WHERE id = 'main'
RETURNING` + settingsColumns

const sqlIncrementStats = `
UPDATE ledger_settings
SET total_users = total_users + $1,
    total_ads_watched = total_ads_watched + $2,
    total_earnings = total_earnings + $3,
    total_withdrawals = total_withdrawals + $4,
    updated_at = NOW()
WHERE id = 'main'`

const sqlSetActiveUsers = `
UPDATE ledger_settings
SET active_users_24h = $1
WHERE id = 'main'`

func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	var settings Settings
	if err := s.db.GetContext(ctx, &settings, sqlSelectSettings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get settings", err)
		return Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings replaces the economic parameters as one record and bumps its version
func (s *Store) UpdateSettings(ctx context.Context, fn func(*Settings) error) (Settings, error) {
	var updated Settings
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current Settings
		if err := tx.GetContext(ctx, &current, sqlSelectSettingsForUpdate); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock settings: %w", err)
		}
		if err := fn(&current); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &updated, sqlUpdateSettings,
			current.EarningsPerAd, current.DailyAdLimit, current.CPMRate); err != nil {
			return fmt.Errorf("failed to update settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return Settings{}, err
	}
	return updated, nil
}

func (s *Store) IncrementStats(ctx context.Context, delta StatsDelta) error {
	_, err := s.db.ExecContext(ctx, sqlIncrementStats,
		delta.Users, delta.AdsWatched, delta.Earnings, delta.Withdrawals)
	if err != nil {
		s.logger.Error(ctx, "failed to increment stats", err)
		return fmt.Errorf("failed to increment stats: %w", err)
	}
	return nil
}

func (s *Store) SetActiveUsers24h(ctx context.Context, count int64) error {
	if _, err := s.db.ExecContext(ctx, sqlSetActiveUsers, count); err != nil {
		s.logger.Error(ctx, "failed to set active users", err)
		return fmt.Errorf("failed to set active users: %w", err)
	}
	return nil
}
