package pack

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

type Args struct {
	Inputs  []*compression.CompressedTokenAccount
	Outputs []compression.TokenTransferOutputData

	// RootIndices is parallel to Inputs. Inputs proven by index ignore their
	// root index.
	RootIndices []uint16

	// OutputStateTreeInfo picks the output tree when there are no inputs and
	// must be set in that case. Otherwise outputs follow the first input's
	// tree and setting it is an error.
	OutputStateTreeInfo *compression.TreeInfo

	// OutputTrees overrides tree resolution with explicit trees or queues.
	// A single entry applies to every output.
	OutputTrees []ed25519.PublicKey

	// Table continues an existing table instead of starting a new one.
	Table *Table
}

type Result struct {
	InputTokenDataWithContext []compressedtoken.InputTokenDataWithContext
	OutputCompressedAccounts  []compressedtoken.PackedTokenTransferOutputData
	Table                     *Table
}

// RemainingAccounts returns the table as instruction accounts.
func (r *Result) RemainingAccounts() []solana.AccountMeta {
	return r.Table.AccountMetas()
}

// Pack replaces every account referenced by inputs and outputs with its
// index in a shared table. The delegate, if any, is added first, then each
// input's tree followed by its queue, then the output trees.
func Pack(args *Args) (*Result, error) {
	table := args.Table
	if table == nil {
		table = NewTable()
	}

	if len(args.RootIndices) != len(args.Inputs) {
		return nil, errors.Wrapf(compression.ErrArrayLengthMismatch, "%d inputs, %d root indices", len(args.Inputs), len(args.RootIndices))
	}

	// Explicit output trees don't lift either restriction
	if args.OutputStateTreeInfo != nil && len(args.Inputs) > 0 {
		return nil, compression.ErrConflictingTreeSpecification
	}
	if args.OutputStateTreeInfo == nil && len(args.Inputs) == 0 {
		return nil, compression.ErrNoTreeAvailable
	}

	inputs, err := packInputs(table, args.Inputs, args.RootIndices)
	if err != nil {
		return nil, err
	}

	var outputs []compressedtoken.PackedTokenTransferOutputData
	if len(args.Outputs) > 0 {
		trees := args.OutputTrees
		if len(trees) == 0 {
			tree, err := ResolveOutputTree(args.Inputs, args.OutputStateTreeInfo)
			if err != nil {
				return nil, err
			}
			trees = []ed25519.PublicKey{tree}
		}

		padded, err := PadOutputTrees(trees, len(args.Outputs))
		if err != nil {
			return nil, err
		}

		outputs, err = packOutputs(table, args.Outputs, padded)
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		InputTokenDataWithContext: inputs,
		OutputCompressedAccounts:  outputs,
		Table:                     table,
	}, nil
}

// ResolveOutputTree returns the tree, or queue for v2 trees, that new state
// is written to. A tree being rotated out defers to its successor.
func ResolveOutputTree(inputs []*compression.CompressedTokenAccount, outputStateTreeInfo *compression.TreeInfo) (ed25519.PublicKey, error) {
	if outputStateTreeInfo != nil && len(inputs) > 0 {
		return nil, compression.ErrConflictingTreeSpecification
	}

	var treeInfo *compression.TreeInfo
	switch {
	case len(inputs) > 0:
		treeInfo = &inputs[0].MerkleContext.TreeInfo
	case outputStateTreeInfo != nil:
		treeInfo = outputStateTreeInfo
	default:
		return nil, compression.ErrNoTreeAvailable
	}

	return treeInfo.Active().OutputAccount(), nil
}

// PadOutputTrees returns exactly n trees. A short list is extended with its
// last entry and a long one is truncated.
func PadOutputTrees(trees []ed25519.PublicKey, n int) ([]ed25519.PublicKey, error) {
	if len(trees) == 0 {
		return nil, compression.ErrNoTreeAvailable
	}

	padded := make([]ed25519.PublicKey, n)
	for i := range padded {
		if i < len(trees) {
			padded[i] = trees[i]
		} else {
			padded[i] = trees[len(trees)-1]
		}
	}
	return padded, nil
}

// GetDelegate returns the delegate shared by the delegated inputs, or nil if
// none are delegated.
func GetDelegate(inputs []*compression.CompressedTokenAccount) (*ed25519.PublicKey, error) {
	var delegate *ed25519.PublicKey
	for _, input := range inputs {
		if input.Delegate == nil {
			continue
		}
		if delegate == nil {
			delegate = input.Delegate
			continue
		}
		if !bytes.Equal(*delegate, *input.Delegate) {
			return nil, compression.ErrMultipleDelegates
		}
	}
	return delegate, nil
}

func packInputs(table *Table, inputs []*compression.CompressedTokenAccount, rootIndices []uint16) ([]compressedtoken.InputTokenDataWithContext, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	delegate, err := GetDelegate(inputs)
	if err != nil {
		return nil, err
	}

	var delegateIndex uint8
	if delegate != nil {
		delegateIndex, err = table.Insert(*delegate)
		if err != nil {
			return nil, err
		}
	}

	packed := make([]compressedtoken.InputTokenDataWithContext, len(inputs))
	for i, input := range inputs {
		treeIndex, err := table.Insert(input.MerkleContext.TreeInfo.Tree)
		if err != nil {
			return nil, err
		}
		queueIndex, err := table.Insert(input.MerkleContext.TreeInfo.Queue)
		if err != nil {
			return nil, err
		}

		packed[i] = compressedtoken.InputTokenDataWithContext{
			Amount: input.Amount,
			MerkleContext: compressedtoken.PackedMerkleContext{
				MerkleTreePubkeyIndex: treeIndex,
				QueuePubkeyIndex:      queueIndex,
				LeafIndex:             input.MerkleContext.LeafIndex,
				ProveByIndex:          input.MerkleContext.ProveByIndex,
			},
			RootIndex: rootIndices[i],
			Lamports:  pointer.Uint64IfNonZero(input.Lamports),
			Tlv:       input.Tlv,
		}
		if input.Delegate != nil {
			packed[i].DelegateIndex = pointer.Uint8(delegateIndex)
		}
	}
	return packed, nil
}

func packOutputs(table *Table, outputs []compression.TokenTransferOutputData, trees []ed25519.PublicKey) ([]compressedtoken.PackedTokenTransferOutputData, error) {
	packed := make([]compressedtoken.PackedTokenTransferOutputData, len(outputs))
	for i, output := range outputs {
		treeIndex, err := table.Insert(trees[i])
		if err != nil {
			return nil, err
		}

		packed[i] = compressedtoken.PackedTokenTransferOutputData{
			Owner:           output.Owner,
			Amount:          output.Amount,
			Lamports:        pointer.Uint64IfNonZero(pointer.Uint64OrZero(output.Lamports)),
			MerkleTreeIndex: treeIndex,
			Tlv:             output.Tlv,
		}
	}
	return packed, nil
}
