package ledger

import "errors"

// Validation errors: rejected synchronously, no state change.
var (
	ErrAmountMismatch        = errors.New("contribution amount does not match the tournament entry fee")
	ErrDuplicateContribution = errors.New("a paid contribution already exists for this wallet and user")
)

// State errors: a precondition does not hold, no state change.
var (
	ErrWalletNotFound          = errors.New("team wallet not found")
	ErrPrizeNotFound           = errors.New("prize record not found")
	ErrLedgerNotFound          = errors.New("tournament ledger not found")
	ErrProfitRecordNotFound    = errors.New("admin profit record not found")
	ErrWalletNotAcceptingFunds = errors.New("wallet is no longer accepting contributions")
	ErrLedgerAlreadyClosed     = errors.New("tournament ledger has already been closed")
	ErrRegistrationClosed      = errors.New("tournament is closed for new contributions")
	ErrProfitAlreadyCollected  = errors.New("admin profit has already been collected for this tournament")
	ErrProfitNotPending        = errors.New("admin profit record is not pending")
	ErrPrizeNotPending         = errors.New("prize record is not pending distribution")
	ErrPrizeNotRetryable       = errors.New("only failed prize records can be retried")
	ErrWalletNotRefundable     = errors.New("wallet is not in a refundable state")
	ErrIncompleteResults       = errors.New("tournament results do not cover every prize rank")
)

// ErrInvariantViolation means stored balances disagree with contribution
// sums. It aborts the surrounding transaction and is a bug, not a
// recoverable condition.
var ErrInvariantViolation = errors.New("wallet balance does not match paid contributions")
