package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=processor

import (
	"adledger-server/internal/store"
	"context"

	"github.com/shopspring/decimal"
)

// MembershipChecker reports whether a messaging identity belongs to the required channel
type MembershipChecker interface {
	IsMember(ctx context.Context, externalID string) (bool, error)
}

// EventDispatcher defines the event operations required by LedgerProcessor
type EventDispatcher interface {
	DispatchUserCreated(ctx context.Context, user store.User)
	DispatchAdWatched(ctx context.Context, user store.User, earned decimal.Decimal)
	DispatchEarningsClaimed(ctx context.Context, user store.User, claimed decimal.Decimal)
	DispatchWithdrawalRequested(ctx context.Context, withdrawal store.WithdrawalRequest)
}

// WithdrawalNotifier tells the operator a new withdrawal request is waiting
type WithdrawalNotifier interface {
	NotifyWithdrawalRequested(ctx context.Context, user store.User, withdrawal store.WithdrawalRequest) error
}
