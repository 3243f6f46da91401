package apierrors

import (
	"errors"
	"net/http"

	ledger "adledger-server/internal/ledger/processor"

	"github.com/gin-gonic/gin"
)

// RespondWithError sends the response for any error returned by the ledger
// or admin processors. Business-rule failures keep their rule name and
// details; anything else becomes a sanitized 500.
//
// Example usage:
//
//	if err != nil {
//	    apierrors.RespondWithError(c, err)
//	    return
//	}
func RespondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var ledgerErr *ledger.Error
	if !errors.As(err, &ledgerErr) {
		InternalError(c, err)
		return
	}

	code := codeFor(ledgerErr.Reason)
	message := messageFor(ledgerErr)
	details := detailsFor(ledgerErr)

	status := statusFor(ledgerErr.Kind)
	if status == http.StatusTooManyRequests {
		TooManyRequests(c, code, message, ledgerErr.RetryAfter, details)
		return
	}
	respond(c, status, code, message, details)
}
