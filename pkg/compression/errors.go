package compression

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

var (
	ErrNoAccountsAvailable          = errors.New("Could not find accounts to select for transfer.")
	ErrInsufficientBalance          = errors.New("insufficient balance")
	ErrInputLimitExceeded           = errors.New("input limit exceeded")
	ErrConflictingTreeSpecification = errors.New("output state tree cannot be set when input accounts are provided")
	ErrNoTreeAvailable              = errors.New("neither input accounts nor an output state tree were provided")
	ErrMultipleDelegates            = errors.New("input accounts have more than one delegate")
	ErrMultipleOwners               = errors.New("input accounts have more than one owner")
	ErrMultipleMints                = errors.New("input accounts have more than one mint")
	ErrAmountOverflow               = errors.New("amount overflows u64")
	ErrArrayLengthMismatch          = compressedtoken.ErrArrayLengthMismatch
	ErrDecodeLayoutMismatch         = compressedtoken.ErrDecodeLayoutMismatch
)

// InsufficientBalanceError is returned when the candidate accounts can't
// cover the requested amount at all.
type InsufficientBalanceError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance for transfer. Required: %d, available: %d.", e.Required, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool {
	return target == ErrInsufficientBalance
}

// InputLimitExceededError is returned when the balance exists but is spread
// over more accounts than fit in one transaction.
type InputLimitExceededError struct {
	MaxPossible   uint64
	MaxInputs     int
	TotalBalance  uint64
	TotalAccounts int
}

func (e *InputLimitExceededError) Error() string {
	return fmt.Sprintf(
		"Account limit exceeded: max %d (%d accounts) per transaction. Total balance: %d (%d accounts). Consider multiple transfers to spend full balance.",
		e.MaxPossible,
		e.MaxInputs,
		e.TotalBalance,
		e.TotalAccounts,
	)
}

func (e *InputLimitExceededError) Is(target error) bool {
	return target == ErrInputLimitExceeded
}
