package store

// Withdrawal request statuses
const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Withdrawal methods
const (
	WithdrawalMethodTelegram = "telegram"
	WithdrawalMethodWallet   = "wallet"
)

// Admin user list filters
const (
	UserFilterAll           = "all"
	UserFilterBanned        = "banned"
	UserFilterFlagged       = "flagged"
	UserFilterPendingClaims = "pending-claims"
)

// Settings defaults
const (
	SettingsID           = "main"
	DefaultEarningsPerAd = "0.00035"
	DefaultDailyAdLimit  = 250
)

// ValidUserFilter reports whether f is a known admin list filter; empty means all
func ValidUserFilter(f string) bool {
	switch f {
	case "", UserFilterAll, UserFilterBanned, UserFilterFlagged, UserFilterPendingClaims:
		return true
	}
	return false
}
