package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository is the persistence contract shared by the PostgreSQL Store and
// the in-memory implementation. Mutate* callbacks run against a private copy
// of the record; returning an error aborts the write and is returned as is.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (User, error)
	GetUserByReferralCode(ctx context.Context, code string) (User, error)
	MutateUser(ctx context.Context, userID uuid.UUID, fn func(*User) error) (User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]User, error)
	CountActiveUsersSince(ctx context.Context, since time.Time) (int64, error)

	// Withdrawal operations
	CreateWithdrawal(ctx context.Context, params CreateWithdrawalParams) (WithdrawalRequest, error)
	GetWithdrawalByID(ctx context.Context, withdrawalID uuid.UUID) (WithdrawalRequest, error)
	ListWithdrawalsByUser(ctx context.Context, userID uuid.UUID) ([]WithdrawalRequest, error)
	ListPendingWithdrawals(ctx context.Context) ([]WithdrawalRequest, error)
	SettleWithdrawal(ctx context.Context, withdrawalID uuid.UUID, fn func(*WithdrawalRequest, *User) error) (WithdrawalRequest, User, error)

	// Referral operations
	GetReferralsByReferrer(ctx context.Context, referrerID uuid.UUID) ([]Referral, error)
	AddReferralCommission(ctx context.Context, referrerID, refereeID uuid.UUID, amount decimal.Decimal) error

	// Settings operations
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, fn func(*Settings) error) (Settings, error)
	IncrementStats(ctx context.Context, delta StatsDelta) error
	SetActiveUsers24h(ctx context.Context, count int64) error
}

var _ Repository = (*Store)(nil)
