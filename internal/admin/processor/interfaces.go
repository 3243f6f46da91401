package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=interfaces.go -destination=mocks_test.go -package=processor

import (
	ledger "adledger-server/internal/ledger/processor"
	"adledger-server/internal/store"
	"context"

	"github.com/google/uuid"
)

// ClaimApprover is the ledger operation an approved claim runs through
type ClaimApprover interface {
	ClaimEarnings(ctx context.Context, userID uuid.UUID) (ledger.ClaimResult, error)
}

// EventDispatcher defines the event operations required by AdminProcessor
type EventDispatcher interface {
	DispatchUserModerated(ctx context.Context, user store.User, action string)
	DispatchWithdrawalProcessed(ctx context.Context, withdrawal store.WithdrawalRequest)
	DispatchSettingsUpdated(ctx context.Context, settings store.Settings)
}

// WithdrawalNotifier tells a user their withdrawal has been settled
type WithdrawalNotifier interface {
	NotifyWithdrawalProcessed(ctx context.Context, user store.User, withdrawal store.WithdrawalRequest) error
}
