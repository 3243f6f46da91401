package apierrors

import (
	"net/http"
	"strings"

	ledger "adledger-server/internal/ledger/processor"
)

// messages holds the user-facing text per rule. Unlisted reasons fall back
// to a message derived from the kind.
var messages = map[string]string{
	"user-not-found":         "User not found",
	"withdrawal-not-found":   "Withdrawal request not found",
	"banned":                 "Account has been banned",
	"membership-required":    "Please join the channel to earn rewards",
	"not-admin":              "Access denied",
	"cooldown":               "Please wait before watching another ad",
	"daily-limit":            "Daily ad limit reached",
	"nothing-to-claim":       "No earnings to claim",
	"already-processed":      "Withdrawal request has already been processed",
	"invalid-settings":       "Invalid settings value",
	"no-valid-settings":      "No valid updates provided",
	"invalid-amount":         "Amount must be a positive number",
	"amount-precision":       "Amount may have at most 5 decimal places",
	"below-minimum":          "Amount is below the minimum withdrawal",
	"insufficient-balance":   "Insufficient balance",
	"invalid-method":         "Invalid withdrawal method. Valid values: telegram, wallet",
	"destination-required":   "Withdrawal destination is required",
	"external-id-required":   "External id is required",
	"invalid-status":         "Invalid status. Valid values: approved, rejected",
	"invalid-filter":         "Invalid filter. Valid values: all, banned, flagged, pending-claims",
	"withdrawal-id-required": "Withdrawal request id is required",
}

// statusFor maps a failure kind to its HTTP status class
func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindForbidden:
		return http.StatusForbidden
	case ledger.KindRateLimited:
		return http.StatusTooManyRequests
	case ledger.KindInvalidState:
		return http.StatusConflict
	case ledger.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// codeFor turns a rule name like "daily-limit" into "DAILY_LIMIT"
func codeFor(reason string) string {
	return strings.ToUpper(strings.ReplaceAll(reason, "-", "_"))
}

func messageFor(e *ledger.Error) string {
	if msg, ok := messages[e.Reason]; ok {
		return msg
	}
	return http.StatusText(statusFor(e.Kind))
}

// detailsFor exposes the numbers a client needs for a countdown or a minimum-amount hint
func detailsFor(e *ledger.Error) map[string]any {
	details := map[string]any{"reason": e.Reason}
	if e.RetryAfter > 0 {
		details["retry_after_seconds"] = retryAfterSeconds(e.RetryAfter)
	}
	if e.ResetAt != nil {
		details["reset_at"] = e.ResetAt.UTC()
	}
	if e.Minimum != nil {
		details["minimum"] = e.Minimum.StringFixed(2)
	}
	return details
}
