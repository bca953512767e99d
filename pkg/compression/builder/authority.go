package builder

import (
	"context"
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/output"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/selection"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

type BurnArgs struct {
	Payer          ed25519.PublicKey
	Owner          ed25519.PublicKey
	Mint           ed25519.PublicKey
	Amount         uint64
	TokenPoolIndex uint8
}

// Burn destroys amount of the owner's compressed tokens along with the
// matching SPL tokens held by the token pool.
func (b *Builder) Burn(ctx context.Context, args *BurnArgs) (*Result, error) {
	return traced(ctx, "Burn", func() (*Result, error) {
		log := b.newLogger("Burn", args.Owner, args.Mint).WithField("amount", args.Amount)

		if args.Amount == 0 {
			return nil, ErrInvalidAmount
		}

		accounts, err := b.getSpendableAccounts(ctx, args.Owner, args.Mint)
		if err != nil {
			return nil, err
		}

		selected, err := b.selectAccounts(ctx, accounts, args.Amount)
		if err != nil {
			log.WithError(err).Warn("failure selecting accounts")
			return nil, err
		}

		// The program derives change itself, this only validates the inputs
		if _, err := output.CreateBurnOutputState(selected.Selected, args.Amount); err != nil {
			return nil, err
		}

		inputs, err := b.proveAndPackInputs(ctx, selected.Selected)
		if err != nil {
			return nil, err
		}

		cpiAuthority, err := b.getCpiAuthorityAddress()
		if err != nil {
			return nil, err
		}

		tokenPool, _, err := b.getTokenPoolAddress(args.Mint, args.TokenPoolIndex)
		if err != nil {
			return nil, err
		}

		ixn := b.program.NewBurnInstruction(
			&compressedtoken.BurnInstructionAccounts{
				FeePayer:          args.Payer,
				Authority:         args.Owner,
				CpiAuthorityPda:   cpiAuthority,
				Mint:              args.Mint,
				TokenPoolPda:      tokenPool,
				TokenProgram:      b.program.TokenProgram,
				RemainingAccounts: inputs.packed.RemainingAccounts(),
			},
			&compressedtoken.BurnInstructionArgs{
				Proof:                        inputs.proof.CompressedProofOrZero(),
				InputTokenDataWithContext:    inputs.packed.InputTokenDataWithContext,
				BurnAmount:                   args.Amount,
				ChangeAccountMerkleTreeIndex: inputs.outputTreeIndex,
			},
		)

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Inputs:      selected.Selected,
			Selection:   selected,
		})
	})
}

type FreezeArgs struct {
	Payer ed25519.PublicKey

	// Authority is the mint's freeze authority.
	Authority ed25519.PublicKey

	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey
}

// Freeze freezes up to the configured input limit of the owner's accounts,
// largest first.
func (b *Builder) Freeze(ctx context.Context, args *FreezeArgs) (*Result, error) {
	return traced(ctx, "Freeze", func() (*Result, error) {
		return b.buildFreezeOrThaw(ctx, args, false)
	})
}

// Thaw thaws up to the configured input limit of the owner's frozen accounts,
// largest first.
func (b *Builder) Thaw(ctx context.Context, args *FreezeArgs) (*Result, error) {
	return traced(ctx, "Thaw", func() (*Result, error) {
		return b.buildFreezeOrThaw(ctx, args, true)
	})
}

func (b *Builder) buildFreezeOrThaw(ctx context.Context, args *FreezeArgs, isThaw bool) (*Result, error) {
	method := "Freeze"
	if isThaw {
		method = "Thaw"
	}
	log := b.newLogger(method, args.Owner, args.Mint)

	accounts, err := b.accounts.GetCompressedTokenAccountsByOwner(ctx, args.Owner, args.Mint)
	if err != nil {
		log.WithError(err).Warn("failure getting compressed token accounts")
		return nil, err
	}

	var candidates []*compression.CompressedTokenAccount
	for _, account := range accounts {
		if account.IsFrozen == isThaw {
			candidates = append(candidates, account)
		}
	}

	selected, err := selection.SelectLargest(candidates, b.maxInputs(ctx))
	if err != nil {
		log.WithError(err).Warn("failure selecting accounts")
		return nil, err
	}

	inputs, err := b.proveAndPackInputs(ctx, selected.Selected)
	if err != nil {
		return nil, err
	}

	genericAccounts, err := b.newGenericAccounts(args.Payer, args.Authority, inputs.packed.Table)
	if err != nil {
		return nil, err
	}

	accountsArgs := &compressedtoken.FreezeInstructionAccounts{
		GenericInstructionAccounts: *genericAccounts,
		Mint:                       args.Mint,
	}
	instructionArgs := &compressedtoken.FreezeInstructionArgs{
		Proof:                     inputs.proof.CompressedProofOrZero(),
		Owner:                     args.Owner,
		InputTokenDataWithContext: inputs.packed.InputTokenDataWithContext,
		OutputsMerkleTreeIndex:    inputs.outputTreeIndex,
	}

	ixn := b.program.NewFreezeInstruction(accountsArgs, instructionArgs)
	if isThaw {
		ixn = b.program.NewThawInstruction(accountsArgs, instructionArgs)
	}

	return b.finalize(ctx, log, args.Payer, &Result{
		Instruction: ixn,
		Inputs:      selected.Selected,
		Selection:   selected,
	})
}
