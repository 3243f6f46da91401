package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const withdrawalColumns = `
    id,
    user_id,
    amount,
    status,
    method,
    destination,
    admin_notes,
    created_at,
    processed_at`

const sqlCreateWithdrawal = `
INSERT INTO withdrawal_requests (id, user_id, amount, status, method, destination)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING` + withdrawalColumns

const sqlSelectWithdrawalByID = `
SELECT` + withdrawalColumns + `
FROM withdrawal_requests
WHERE id = $1`

const sqlSelectWithdrawalsByUser = `
SELECT` + withdrawalColumns + `
FROM withdrawal_requests
WHERE user_id = $1
ORDER BY created_at DESC`

const sqlSelectPendingWithdrawals = `
SELECT` + withdrawalColumns + `
FROM withdrawal_requests
WHERE status = 'pending'
ORDER BY created_at ASC`

const sqlSelectWithdrawalForUpdate = `
SELECT` + withdrawalColumns + `
FROM withdrawal_requests
WHERE id = $1
FOR UPDATE`

const sqlUpdateWithdrawalStatus = `
UPDATE withdrawal_requests
SET status = $2,
    admin_notes = $3,
    processed_at = $4
WHERE id = $1
RETURNING` + withdrawalColumns

func (s *Store) CreateWithdrawal(ctx context.Context, params CreateWithdrawalParams) (WithdrawalRequest, error) {
	var w WithdrawalRequest
	err := s.db.GetContext(ctx, &w, sqlCreateWithdrawal,
		uuid.New(), params.UserID, params.Amount, WithdrawalStatusPending, params.Method, params.Destination)
	if err != nil {
		s.logger.Error(ctx, "failed to create withdrawal request", err)
		return WithdrawalRequest{}, fmt.Errorf("failed to create withdrawal request: %w", err)
	}
	return w, nil
}

func (s *Store) GetWithdrawalByID(ctx context.Context, withdrawalID uuid.UUID) (WithdrawalRequest, error) {
	var w WithdrawalRequest
	err := s.db.GetContext(ctx, &w, sqlSelectWithdrawalByID, withdrawalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WithdrawalRequest{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get withdrawal request", err)
		return WithdrawalRequest{}, fmt.Errorf("failed to get withdrawal request: %w", err)
	}
	return w, nil
}

func (s *Store) ListWithdrawalsByUser(ctx context.Context, userID uuid.UUID) ([]WithdrawalRequest, error) {
	withdrawals := []WithdrawalRequest{}
	if err := s.db.SelectContext(ctx, &withdrawals, sqlSelectWithdrawalsByUser, userID); err != nil {
		s.logger.Error(ctx, "failed to list user withdrawals", err)
		return nil, fmt.Errorf("failed to list user withdrawals: %w", err)
	}
	return withdrawals, nil
}

func (s *Store) ListPendingWithdrawals(ctx context.Context) ([]WithdrawalRequest, error) {
	withdrawals := []WithdrawalRequest{}
	if err := s.db.SelectContext(ctx, &withdrawals, sqlSelectPendingWithdrawals); err != nil {
		s.logger.Error(ctx, "failed to list pending withdrawals", err)
		return nil, fmt.Errorf("failed to list pending withdrawals: %w", err)
	}
	return withdrawals, nil
}

// SettleWithdrawal locks the request and then its owner, lets fn transition
// both, and persists them together. Rows are always locked in that order.
func (s *Store) SettleWithdrawal(ctx context.Context, withdrawalID uuid.UUID, fn func(*WithdrawalRequest, *User) error) (WithdrawalRequest, User, error) {
	var (
		settled WithdrawalRequest
		owner   User
	)
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var w WithdrawalRequest
		if err := tx.GetContext(ctx, &w, sqlSelectWithdrawalForUpdate, withdrawalID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock withdrawal request: %w", err)
		}
		var u User
		if err := tx.GetContext(ctx, &u, sqlSelectUserForUpdate, w.UserID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock withdrawal owner: %w", err)
		}

		if err := fn(&w, &u); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &settled, sqlUpdateWithdrawalStatus,
			w.ID, w.Status, w.AdminNotes, w.ProcessedAt); err != nil {
			return fmt.Errorf("failed to update withdrawal request: %w", err)
		}
		if err := tx.GetContext(ctx, &owner, sqlUpdateUserLedger, userUpdateArgs(u)...); err != nil {
			return fmt.Errorf("failed to update withdrawal owner: %w", err)
		}
		return nil
	})
	if err != nil {
		return WithdrawalRequest{}, User{}, err
	}
	return settled, owner, nil
}
