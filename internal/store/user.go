package store

import (
	"adledger-server/internal/observability"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `
    id,
    external_id,
    display_name,
    referral_code,
    referred_by,
    withdraw_balance,
    daily_earnings,
    total_earnings,
    ads_watched,
    daily_ads_watched,
    last_ad_watch,
    banned,
    flagged,
    flag_reason,
    created_at,
    updated_at`

const sqlCreateUser = `
INSERT INTO users (id, external_id, display_name, referral_code, referred_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING` + userColumns

const sqlCreateReferral = `
INSERT INTO referrals (id, referrer_id, referee_id)
VALUES ($1, $2, $3)`

const sqlSelectUserByID = `
SELECT` + userColumns + `
FROM users
WHERE id = $1`

const sqlSelectUserByExternalID = `
SELECT` + userColumns + `
FROM users
WHERE external_id = $1`

const sqlSelectUserByReferralCode = `
SELECT` + userColumns + `
FROM users
WHERE referral_code = $1`

const sqlSelectUserForUpdate = `
SELECT` + userColumns + `
FROM users
WHERE id = $1
FOR UPDATE`

const sqlUpdateUserLedger = `
UPDATE users
SET display_name = $2,
    withdraw_balance = $3,
    daily_earnings = $4,
    total_earnings = $5,
    ads_watched = $6,
    daily_ads_watched = $7,
    last_ad_watch = $8,
    banned = $9,
    flagged = $10,
    flag_reason = $11,
    updated_at = NOW()
WHERE id = $1
RETURNING` + userColumns

const sqlCountActiveUsersSince = `
SELECT COUNT(*)
FROM users
WHERE last_ad_watch >= $1`

// CreateUser inserts a user and, when a referrer is given, the referral row in the same transaction
func (s *Store) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	var user User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &user, sqlCreateUser,
			uuid.New(), params.ExternalID, params.DisplayName, params.ReferralCode, params.ReferrerID); err != nil {
			return err
		}
		if params.ReferrerID == nil {
			return nil
		}
		_, err := tx.ExecContext(ctx, sqlCreateReferral, uuid.New(), *params.ReferrerID, user.ID)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, fmt.Errorf("failed to create user: %w", ErrConflict)
		}
		s.logger.Error(ctx, "failed to create user", err)
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.getUser(ctx, sqlSelectUserByID, userID)
}

func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (User, error) {
	return s.getUser(ctx, sqlSelectUserByExternalID, externalID)
}

func (s *Store) GetUserByReferralCode(ctx context.Context, code string) (User, error) {
	return s.getUser(ctx, sqlSelectUserByReferralCode, code)
}

func (s *Store) getUser(ctx context.Context, query string, arg interface{}) (User, error) {
	var user User
	err := s.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		s.logger.Error(ctx, "failed to get user", err)
		return User{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// MutateUser locks the user row, applies fn and writes the ledger fields back
func (s *Store) MutateUser(ctx context.Context, userID uuid.UUID, fn func(*User) error) (User, error) {
	var updated User
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var current User
		if err := tx.GetContext(ctx, &current, sqlSelectUserForUpdate, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}
		if err := fn(&current); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &updated, sqlUpdateUserLedger, userUpdateArgs(current)...); err != nil {
			return fmt.Errorf("failed to update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

func userUpdateArgs(u User) []interface{} {
	return []interface{}{
		u.ID,
		u.DisplayName,
		u.WithdrawBalance,
		u.DailyEarnings,
		u.TotalEarnings,
		u.AdsWatched,
		u.DailyAdsWatched,
		u.LastAdWatch,
		u.Banned,
		u.Flagged,
		u.FlagReason,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListUsers returns users matching the filter and search, most recently active first
func (s *Store) ListUsers(ctx context.Context, params ListUsersParams) ([]User, error) {
	query, args := buildListUsersQuery(params)

	users := []User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		s.logger.Error(observability.WithFields(ctx,
			observability.Field{Key: "filter", Value: params.Filter}), "failed to list users", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func buildListUsersQuery(params ListUsersParams) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	switch params.Filter {
	case UserFilterBanned:
		conditions = append(conditions, "banned = TRUE")
	case UserFilterFlagged:
		conditions = append(conditions, "flagged = TRUE")
	case UserFilterPendingClaims:
		conditions = append(conditions, "daily_earnings > 0")
	}

	if search := strings.TrimSpace(params.Search); search != "" {
		args = append(args, "%"+likeEscaper.Replace(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(display_name ILIKE $%d OR external_id ILIKE $%d OR id::text ILIKE $%d)", n, n, n))
	}

	var b strings.Builder
	b.WriteString("SELECT" + userColumns + "\nFROM users")
	if len(conditions) > 0 {
		b.WriteString("\nWHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}
	b.WriteString("\nORDER BY last_ad_watch DESC NULLS LAST, created_at DESC")
	if params.Limit > 0 {
		args = append(args, params.Limit)
		fmt.Fprintf(&b, "\nLIMIT $%d", len(args))
	}
	return b.String(), args
}

func (s *Store) CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, sqlCountActiveUsersSince, since); err != nil {
		s.logger.Error(ctx, "failed to count active users", err)
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}
