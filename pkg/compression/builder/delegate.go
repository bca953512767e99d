package builder

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/output"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/pack"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/selection"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

// packedInputs are proven inputs for instructions whose outputs are derived
// on chain and only need a tree index.
type packedInputs struct {
	proof           *compression.ValidityProof
	packed          *pack.Result
	outputTreeIndex uint8
}

func (b *Builder) proveAndPackInputs(ctx context.Context, inputs []*compression.CompressedTokenAccount) (*packedInputs, error) {
	proof, err := b.getValidityProof(ctx, inputs)
	if err != nil {
		return nil, err
	}

	packed, err := pack.Pack(&pack.Args{
		Inputs:      inputs,
		RootIndices: proof.RootIndices,
	})
	if err != nil {
		return nil, err
	}

	outputTree, err := pack.ResolveOutputTree(inputs, nil)
	if err != nil {
		return nil, err
	}

	outputTreeIndex, err := packed.Table.Insert(outputTree)
	if err != nil {
		return nil, err
	}

	return &packedInputs{
		proof:           proof,
		packed:          packed,
		outputTreeIndex: outputTreeIndex,
	}, nil
}

type ApproveArgs struct {
	Payer    ed25519.PublicKey
	Owner    ed25519.PublicKey
	Mint     ed25519.PublicKey
	Delegate ed25519.PublicKey
	Amount   uint64

	// DelegateLamports moves lamports from the inputs into the delegated
	// account.
	DelegateLamports *uint64
}

// Approve lets the delegate spend amount of the owner's compressed tokens.
// The delegated amount is split into its own account and any remainder goes
// to an undelegated change account.
func (b *Builder) Approve(ctx context.Context, args *ApproveArgs) (*Result, error) {
	return traced(ctx, "Approve", func() (*Result, error) {
		log := b.newLogger("Approve", args.Owner, args.Mint).WithFields(logrus.Fields{
			"amount":   args.Amount,
			"delegate": base58.Encode(args.Delegate),
		})

		if args.Amount == 0 {
			return nil, ErrInvalidAmount
		}

		accounts, err := b.getSpendableAccounts(ctx, args.Owner, args.Mint)
		if err != nil {
			return nil, err
		}

		selected, err := selection.SelectForApprove(accounts, args.Amount, b.maxInputs(ctx))
		if err != nil {
			log.WithError(err).Warn("failure selecting accounts")
			return nil, err
		}

		state, err := output.CreateApproveOutputState(selected.Selected, args.Delegate, args.Amount, args.DelegateLamports)
		if err != nil {
			return nil, err
		}

		inputs, err := b.proveAndPackInputs(ctx, selected.Selected)
		if err != nil {
			return nil, err
		}

		accountsArgs, err := b.newGenericAccounts(args.Payer, args.Owner, inputs.packed.Table)
		if err != nil {
			return nil, err
		}

		ixn := b.program.NewApproveInstruction(accountsArgs, &compressedtoken.ApproveInstructionArgs{
			Proof:                        inputs.proof.CompressedProofOrZero(),
			Mint:                         args.Mint,
			InputTokenDataWithContext:    inputs.packed.InputTokenDataWithContext,
			Delegate:                     state.Delegate,
			DelegatedAmount:              state.Delegated.Amount,
			DelegateMerkleTreeIndex:      inputs.outputTreeIndex,
			ChangeAccountMerkleTreeIndex: inputs.outputTreeIndex,
			DelegateLamports:             state.Delegated.Lamports,
		})

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Inputs:      selected.Selected,
			Selection:   selected,
		})
	})
}

type RevokeArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Delegate restricts the revocation to a single delegate. When unset,
	// the delegate of the largest delegated account is revoked.
	Delegate ed25519.PublicKey
}

// Revoke merges delegated accounts of a single delegate back into one
// undelegated account held by the owner.
func (b *Builder) Revoke(ctx context.Context, args *RevokeArgs) (*Result, error) {
	return traced(ctx, "Revoke", func() (*Result, error) {
		log := b.newLogger("Revoke", args.Owner, args.Mint)

		accounts, err := b.getSpendableAccounts(ctx, args.Owner, args.Mint)
		if err != nil {
			return nil, err
		}

		delegated := filterDelegated(accounts, args.Delegate)

		selected, err := selection.SelectLargest(delegated, b.maxInputs(ctx))
		if err != nil {
			log.WithError(err).Warn("failure selecting delegated accounts")
			return nil, err
		}

		inputs, err := b.proveAndPackInputs(ctx, selected.Selected)
		if err != nil {
			return nil, err
		}

		accountsArgs, err := b.newGenericAccounts(args.Payer, args.Owner, inputs.packed.Table)
		if err != nil {
			return nil, err
		}

		ixn := b.program.NewRevokeInstruction(accountsArgs, &compressedtoken.RevokeInstructionArgs{
			Proof:                        inputs.proof.CompressedProofOrZero(),
			Mint:                         args.Mint,
			InputTokenDataWithContext:    inputs.packed.InputTokenDataWithContext,
			OutputAccountMerkleTreeIndex: inputs.outputTreeIndex,
		})

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Inputs:      selected.Selected,
			Selection:   selected,
		})
	})
}

// filterDelegated returns the accounts delegated to delegate. Without a
// delegate, the delegate of the largest delegated account is used so the
// result never mixes delegates.
func filterDelegated(accounts []*compression.CompressedTokenAccount, delegate ed25519.PublicKey) []*compression.CompressedTokenAccount {
	if len(delegate) == 0 {
		var largest *compression.CompressedTokenAccount
		for _, account := range accounts {
			if account.Delegate == nil {
				continue
			}
			if largest == nil || account.Amount > largest.Amount {
				largest = account
			}
		}
		if largest == nil {
			return nil
		}
		delegate = *largest.Delegate
	}

	var filtered []*compression.CompressedTokenAccount
	for _, account := range accounts {
		if account.HasDelegate(delegate) {
			filtered = append(filtered, account)
		}
	}
	return filtered
}
