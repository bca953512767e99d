// Package output derives the token outputs a transaction creates from the
// inputs it spends.
package output

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
)

// ErrDelegateLamportsExceedInputs is returned when an approval moves more
// lamports into the delegated account than the inputs hold.
var ErrDelegateLamportsExceedInputs = errors.New("delegate lamports exceed input lamports")

// ApproveOutputState is the pair of accounts an approval produces.
type ApproveOutputState struct {
	Delegate  ed25519.PublicKey
	Delegated compression.TokenTransferOutputData
	Change    compression.TokenTransferOutputData
}

// CreateTransferOutputState returns the change output, if any, followed by
// the recipient output. Change keeps every input lamport and is omitted only
// when neither tokens nor lamports remain.
func CreateTransferOutputState(inputs []*compression.CompressedTokenAccount, recipient ed25519.PublicKey, amount uint64) ([]compression.TokenTransferOutputData, error) {
	return CreateMultiTransferOutputState(inputs, []ed25519.PublicKey{recipient}, []uint64{amount})
}

// CreateMultiTransferOutputState is CreateTransferOutputState for several
// recipients at once. recipients and amounts are parallel.
func CreateMultiTransferOutputState(inputs []*compression.CompressedTokenAccount, recipients []ed25519.PublicKey, amounts []uint64) ([]compression.TokenTransferOutputData, error) {
	if len(recipients) != len(amounts) {
		return nil, errors.Wrapf(compression.ErrArrayLengthMismatch, "%d recipients, %d amounts", len(recipients), len(amounts))
	}

	total, err := compression.AddAmounts(amounts...)
	if err != nil {
		return nil, err
	}

	change, err := createChangeOutput(inputs, total)
	if err != nil {
		return nil, err
	}

	outputs := make([]compression.TokenTransferOutputData, 0, len(recipients)+1)
	if change != nil {
		outputs = append(outputs, *change)
	}
	for i, recipient := range recipients {
		outputs = append(outputs, compression.TokenTransferOutputData{
			Owner:  recipient,
			Amount: amounts[i],
		})
	}
	return outputs, nil
}

// CreateDecompressOutputState returns the compressed change left after
// amount is decompressed. It's empty when the inputs are spent entirely.
func CreateDecompressOutputState(inputs []*compression.CompressedTokenAccount, amount uint64) ([]compression.TokenTransferOutputData, error) {
	change, err := createChangeOutput(inputs, amount)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, nil
	}
	return []compression.TokenTransferOutputData{*change}, nil
}

// CreateBurnOutputState returns the change left after amount is burned.
func CreateBurnOutputState(inputs []*compression.CompressedTokenAccount, amount uint64) ([]compression.TokenTransferOutputData, error) {
	return CreateDecompressOutputState(inputs, amount)
}

// CreateApproveOutputState returns the delegated account and the owner's
// change. Input lamports not moved to the delegated account stay with the
// change.
func CreateApproveOutputState(inputs []*compression.CompressedTokenAccount, delegate ed25519.PublicKey, amount uint64, delegateLamports *uint64) (*ApproveOutputState, error) {
	amounts, err := summarize(inputs)
	if err != nil {
		return nil, err
	}

	if amounts.amount < amount {
		return nil, &compression.InsufficientBalanceError{
			Required:  amount,
			Available: amounts.amount,
		}
	}

	delegated := pointer.Uint64OrZero(delegateLamports)
	if amounts.lamports < delegated {
		return nil, errors.Wrapf(ErrDelegateLamportsExceedInputs, "%d > %d", delegated, amounts.lamports)
	}

	return &ApproveOutputState{
		Delegate: delegate,
		Delegated: compression.TokenTransferOutputData{
			Owner:    amounts.owner,
			Amount:   amount,
			Lamports: pointer.Uint64IfNonZero(delegated),
		},
		Change: compression.TokenTransferOutputData{
			Owner:    amounts.owner,
			Amount:   amounts.amount - amount,
			Lamports: pointer.Uint64IfNonZero(amounts.lamports - delegated),
		},
	}, nil
}

// CreateMergeOutputState collapses the inputs into a single account held by
// their owner. Revoking a delegation produces the same output.
func CreateMergeOutputState(inputs []*compression.CompressedTokenAccount) ([]compression.TokenTransferOutputData, error) {
	amounts, err := summarize(inputs)
	if err != nil {
		return nil, err
	}

	return []compression.TokenTransferOutputData{
		{
			Owner:    amounts.owner,
			Amount:   amounts.amount,
			Lamports: pointer.Uint64IfNonZero(amounts.lamports),
		},
	}, nil
}

// ValidateSameOwner returns ErrMultipleOwners unless every input has the
// same owner.
func ValidateSameOwner(inputs []*compression.CompressedTokenAccount) error {
	for _, input := range inputs[min(1, len(inputs)):] {
		if !bytes.Equal(input.Owner, inputs[0].Owner) {
			return compression.ErrMultipleOwners
		}
	}
	return nil
}

// ValidateSameMint returns ErrMultipleMints unless every input has the same
// mint.
func ValidateSameMint(inputs []*compression.CompressedTokenAccount) error {
	for _, input := range inputs[min(1, len(inputs)):] {
		if !bytes.Equal(input.Mint, inputs[0].Mint) {
			return compression.ErrMultipleMints
		}
	}
	return nil
}

func createChangeOutput(inputs []*compression.CompressedTokenAccount, amount uint64) (*compression.TokenTransferOutputData, error) {
	amounts, err := summarize(inputs)
	if err != nil {
		return nil, err
	}

	if amounts.amount < amount {
		return nil, &compression.InsufficientBalanceError{
			Required:  amount,
			Available: amounts.amount,
		}
	}

	change := amounts.amount - amount
	if change == 0 && amounts.lamports == 0 {
		return nil, nil
	}

	return &compression.TokenTransferOutputData{
		Owner:    amounts.owner,
		Amount:   change,
		Lamports: pointer.Uint64IfNonZero(amounts.lamports),
	}, nil
}

type inputAmounts struct {
	owner    ed25519.PublicKey
	amount   uint64
	lamports uint64
}

func summarize(inputs []*compression.CompressedTokenAccount) (*inputAmounts, error) {
	if len(inputs) == 0 {
		return nil, compression.ErrNoAccountsAvailable
	}

	if err := ValidateSameOwner(inputs); err != nil {
		return nil, err
	}
	if err := ValidateSameMint(inputs); err != nil {
		return nil, err
	}

	amount, err := compression.SumAmounts(inputs)
	if err != nil {
		return nil, err
	}
	lamports, err := compression.SumLamports(inputs)
	if err != nil {
		return nil, err
	}

	return &inputAmounts{
		owner:    inputs[0].Owner,
		amount:   amount,
		lamports: lamports,
	}, nil
}
