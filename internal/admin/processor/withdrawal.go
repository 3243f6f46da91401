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

// ProcessWithdrawalRequest settles one pending withdrawal
type ProcessWithdrawalRequest struct {
	WithdrawalID uuid.UUID
	Status       string
	Notes        string
}

// ProcessWithdrawalResult is the settled request and its owner after the debit
type ProcessWithdrawalResult struct {
	Withdrawal store.WithdrawalRequest
	User       store.User
}

// ProcessWithdrawal moves a pending request to approved or rejected.
// Approval debits the owner's current balance, clamped at zero, and adds the
// request amount to totalWithdrawals. Rejection leaves the balance alone.
func (p *AdminProcessor) ProcessWithdrawal(ctx context.Context, callerID string, req ProcessWithdrawalRequest) (ProcessWithdrawalResult, error) {
	ctx, err := p.verifyAdmin(ctx, callerID)
	if err != nil {
		return ProcessWithdrawalResult{}, err
	}
	if req.WithdrawalID == uuid.Nil {
		return ProcessWithdrawalResult{}, ErrWithdrawalIDRequired
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != store.WithdrawalStatusApproved && status != store.WithdrawalStatusRejected {
		return ProcessWithdrawalResult{}, ErrInvalidStatus
	}
	ctx = observability.WithFields(ctx,
		observability.Field{Key: "withdrawal_id", Value: req.WithdrawalID.String()},
		observability.Field{Key: "status", Value: status},
	)

	current, err := p.store.GetWithdrawalByID(ctx, req.WithdrawalID)
	if err != nil {
		return ProcessWithdrawalResult{}, p.mapWithdrawalErr(ctx, err)
	}
	ctx = observability.WithFields(ctx, observability.Field{Key: "user_id", Value: current.UserID.String()})

	var notes *string
	if n := strings.TrimSpace(req.Notes); n != "" {
		notes = &n
	}
	processedAt := p.now()

	unlock := p.locks.Lock(current.UserID)
	settled, owner, err := p.store.SettleWithdrawal(ctx, req.WithdrawalID, func(w *store.WithdrawalRequest, u *store.User) error {
		if w.Status != store.WithdrawalStatusPending {
			return ErrAlreadyProcessed
		}
		if status == store.WithdrawalStatusApproved {
			remaining := u.WithdrawBalance.Sub(w.Amount)
			if remaining.IsNegative() {
				remaining = decimal.Zero
			}
			u.WithdrawBalance = remaining
		}
		w.Status = status
		w.AdminNotes = notes
		w.ProcessedAt = &processedAt
		return nil
	})
	unlock()
	if err != nil {
		return ProcessWithdrawalResult{}, p.mapWithdrawalErr(ctx, err)
	}

	if status == store.WithdrawalStatusApproved {
		if err := p.store.IncrementStats(ctx, store.StatsDelta{Withdrawals: settled.Amount}); err != nil {
			p.logger.Error(ctx, "failed to increment withdrawal total", err)
		}
	}

	if p.events != nil {
		p.events.DispatchWithdrawalProcessed(ctx, settled)
	}
	if p.notifier != nil {
		notifyCtx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
		if err := p.notifier.NotifyWithdrawalProcessed(notifyCtx, owner, settled); err != nil {
			p.logger.WarnWithError(ctx, "failed to notify user of processed withdrawal", err)
		}
		cancel()
	}
	observability.WithdrawalsTotal.WithLabelValues(status).Inc()
	p.logger.Info(ctx, "withdrawal processed",
		observability.Field{Key: "amount", Value: settled.Amount.String()},
		observability.Field{Key: "remaining_balance", Value: owner.WithdrawBalance.String()},
	)

	return ProcessWithdrawalResult{Withdrawal: settled, User: owner}, nil
}

func (p *AdminProcessor) mapWithdrawalErr(ctx context.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrWithdrawalNotFound
	}
	return p.mapUserErr(ctx, err)
}
