package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the ledger record for one messaging-platform identity
type User struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	ExternalID      string          `db:"external_id" json:"external_id"`
	DisplayName     string          `db:"display_name" json:"display_name"`
	ReferralCode    string          `db:"referral_code" json:"referral_code"`
	ReferredBy      *uuid.UUID      `db:"referred_by" json:"referred_by,omitempty"`
	WithdrawBalance decimal.Decimal `db:"withdraw_balance" json:"withdraw_balance"`
	DailyEarnings   decimal.Decimal `db:"daily_earnings" json:"daily_earnings"`
	TotalEarnings   decimal.Decimal `db:"total_earnings" json:"total_earnings"`
	AdsWatched      int64           `db:"ads_watched" json:"ads_watched"`
	DailyAdsWatched int             `db:"daily_ads_watched" json:"daily_ads_watched"`
	LastAdWatch     *time.Time      `db:"last_ad_watch" json:"last_ad_watch,omitempty"`
	Banned          bool            `db:"banned" json:"banned"`
	Flagged         bool            `db:"flagged" json:"flagged"`
	FlagReason      *string         `db:"flag_reason" json:"flag_reason,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// WithdrawalRequest is one user-initiated payout ask
type WithdrawalRequest struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"user_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Status      string          `db:"status" json:"status"`
	Method      string          `db:"method" json:"method"`
	Destination string          `db:"destination" json:"destination"`
	AdminNotes  *string         `db:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// Referral attributes a referee to the user whose code they joined with
type Referral struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	ReferrerID uuid.UUID       `db:"referrer_id" json:"referrer_id"`
	RefereeID  uuid.UUID       `db:"referee_id" json:"referee_id"`
	Commission decimal.Decimal `db:"commission" json:"commission"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Settings is the singleton economic configuration plus aggregate counters.
// EarningsPerAd, DailyAdLimit and CPMRate change only through UpdateSettings;
// the counters change only through IncrementStats and SetActiveUsers24h.
type Settings struct {
	ID               string          `db:"id" json:"-"`
	EarningsPerAd    decimal.Decimal `db:"earnings_per_ad" json:"earnings_per_ad"`
	DailyAdLimit     int             `db:"daily_ad_limit" json:"daily_ad_limit"`
	CPMRate          decimal.Decimal `db:"cpm_rate" json:"cpm_rate"`
	TotalUsers       int64           `db:"total_users" json:"total_users"`
	TotalAdsWatched  int64           `db:"total_ads_watched" json:"total_ads_watched"`
	TotalEarnings    decimal.Decimal `db:"total_earnings" json:"total_earnings"`
	TotalWithdrawals decimal.Decimal `db:"total_withdrawals" json:"total_withdrawals"`
	ActiveUsers24h   int64           `db:"active_users_24h" json:"active_users_24h"`
	Version          int64           `db:"version" json:"version"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// DefaultSettings returns the settings record a fresh repository starts with
func DefaultSettings() Settings {
	epa := decimal.RequireFromString(DefaultEarningsPerAd)
	return Settings{
		ID:               SettingsID,
		EarningsPerAd:    epa,
		DailyAdLimit:     DefaultDailyAdLimit,
		CPMRate:          epa.Mul(decimal.NewFromInt(1000)).Round(2),
		TotalEarnings:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		Version:          1,
	}
}

// CreateUserParams holds the fields set when a user is first seen.
// When ReferrerID is set the matching Referral row is created atomically.
type CreateUserParams struct {
	ExternalID   string
	DisplayName  string
	ReferralCode string
	ReferrerID   *uuid.UUID
}

// ListUsersParams filters the admin user list
type ListUsersParams struct {
	Search string
	Filter string
	Limit  int
}

// CreateWithdrawalParams holds the fields of a new pending withdrawal
type CreateWithdrawalParams struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Method      string
	Destination string
}

// StatsDelta is added atomically to the aggregate counters
type StatsDelta struct {
	Users       int64
	AdsWatched  int64
	Earnings    decimal.Decimal
	Withdrawals decimal.Decimal
}
