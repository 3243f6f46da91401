package processor

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a business-rule failure. The HTTP layer maps each kind to one status.
type Kind string

const (
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindRateLimited  Kind = "rate_limited"
	KindInvalidState Kind = "invalid_state"
	KindValidation   Kind = "validation"
)

// Error is an expected ledger failure naming the rule that rejected the call.
// errors.Is matches on Kind and Reason, so a copy carrying RetryAfter or
// Minimum still matches its sentinel.
type Error struct {
	Kind       Kind
	Reason     string
	RetryAfter time.Duration
	ResetAt    *time.Time
	Minimum    *decimal.Decimal
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Reason == e.Reason
}

// NewError builds a detail-free error; the admin processor uses it for its own rules.
func NewError(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

var (
	ErrUserNotFound        = NewError(KindNotFound, "user-not-found")
	ErrBanned              = NewError(KindForbidden, "banned")
	ErrMembershipRequired  = NewError(KindForbidden, "membership-required")
	ErrCooldown            = NewError(KindRateLimited, "cooldown")
	ErrDailyLimit          = NewError(KindRateLimited, "daily-limit")
	ErrNothingToClaim      = NewError(KindInvalidState, "nothing-to-claim")
	ErrInvalidAmount       = NewError(KindValidation, "invalid-amount")
	ErrAmountPrecision     = NewError(KindValidation, "amount-precision")
	ErrBelowMinimum        = NewError(KindValidation, "below-minimum")
	ErrInsufficientBalance = NewError(KindValidation, "insufficient-balance")
	ErrInvalidMethod       = NewError(KindValidation, "invalid-method")
	ErrDestinationRequired = NewError(KindValidation, "destination-required")
	ErrExternalIDRequired  = NewError(KindValidation, "external-id-required")
)

func cooldownError(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Reason: ErrCooldown.Reason, RetryAfter: retryAfter}
}

func dailyLimitError(now, resetAt time.Time) *Error {
	return &Error{Kind: KindRateLimited, Reason: ErrDailyLimit.Reason, RetryAfter: resetAt.Sub(now), ResetAt: &resetAt}
}

func belowMinimumError(minimum decimal.Decimal) *Error {
	return &Error{Kind: KindValidation, Reason: ErrBelowMinimum.Reason, Minimum: &minimum}
}
