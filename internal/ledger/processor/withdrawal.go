package processor

import (
	"adledger-server/internal/observability"
	"adledger-server/internal/store"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestWithdrawalRequest is a user's payout ask
type RequestWithdrawalRequest struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Method      string
	Destination string
}

// RequestWithdrawal validates the amount against the fixed floor and the
// current withdrawable balance and records a pending request. The balance is
// debited only when an operator approves the request.
func (p *LedgerProcessor) RequestWithdrawal(ctx context.Context, req RequestWithdrawalRequest) (store.WithdrawalRequest, error) {
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "user_id", Value: req.UserID.String()},
		observability.Field{Key: "amount", Value: req.Amount.String()},
	)

	user, err := p.GetUser(ctx, req.UserID)
	if err != nil {
		return store.WithdrawalRequest{}, err
	}

	if !req.Amount.IsPositive() {
		return store.WithdrawalRequest{}, ErrInvalidAmount
	}
	if !req.Amount.Equal(req.Amount.Truncate(AmountPlaces)) {
		return store.WithdrawalRequest{}, ErrAmountPrecision
	}
	if req.Amount.LessThan(p.minWithdrawal) {
		return store.WithdrawalRequest{}, belowMinimumError(p.minWithdrawal)
	}
	if req.Amount.GreaterThan(user.WithdrawBalance) {
		return store.WithdrawalRequest{}, ErrInsufficientBalance
	}

	method := strings.ToLower(strings.TrimSpace(req.Method))
	if method != store.WithdrawalMethodTelegram && method != store.WithdrawalMethodWallet {
		return store.WithdrawalRequest{}, ErrInvalidMethod
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return store.WithdrawalRequest{}, ErrDestinationRequired
	}

	withdrawal, err := p.store.CreateWithdrawal(ctx, store.CreateWithdrawalParams{
		UserID:      user.ID,
		Amount:      req.Amount,
		Method:      method,
		Destination: destination,
	})
	if err != nil {
		return store.WithdrawalRequest{}, p.mapUserErr(ctx, err)
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "withdrawal_id", Value: withdrawal.ID.String()})

	if p.events != nil {
		p.events.DispatchWithdrawalRequested(ctx, withdrawal)
	}
	if p.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
		if err := p.notifier.NotifyWithdrawalRequested(notifyCtx, user, withdrawal); err != nil {
			p.logger.WarnWithError(ctx, "failed to notify operator of withdrawal request", err)
		}
		cancel()
	}
	observability.WithdrawalsTotal.WithLabelValues(store.WithdrawalStatusPending).Inc()
	p.logger.Info(ctx, "withdrawal requested")

	return withdrawal, nil
}

func outcomeOf(err error) string {
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Reason
	}
	return "error"
}
