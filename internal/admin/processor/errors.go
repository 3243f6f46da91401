package processor

import (
	ledger "adledger-server/internal/ledger/processor"
)

var (
	ErrNotAdmin             = ledger.NewError(ledger.KindForbidden, "not-admin")
	ErrWithdrawalNotFound   = ledger.NewError(ledger.KindNotFound, "withdrawal-not-found")
	ErrAlreadyProcessed     = ledger.NewError(ledger.KindInvalidState, "already-processed")
	ErrInvalidSettings      = ledger.NewError(ledger.KindInvalidState, "invalid-settings")
	ErrNoValidSettings      = ledger.NewError(ledger.KindInvalidState, "no-valid-settings")
	ErrInvalidStatus        = ledger.NewError(ledger.KindValidation, "invalid-status")
	ErrInvalidFilter        = ledger.NewError(ledger.KindValidation, "invalid-filter")
	ErrWithdrawalIDRequired = ledger.NewError(ledger.KindValidation, "withdrawal-id-required")
)
