package builder

import (
	"context"
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/output"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/pack"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/selection"
	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/token"
)

type TransferArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Recipients and Amounts are parallel.
	Recipients []ed25519.PublicKey
	Amounts    []uint64
}

// Transfer moves compressed tokens from the owner to one or more recipients.
// Change, including every input lamport, stays with the owner.
func (b *Builder) Transfer(ctx context.Context, args *TransferArgs) (*Result, error) {
	return traced(ctx, "Transfer", func() (*Result, error) {
		log := b.newLogger("Transfer", args.Owner, args.Mint)

		if len(args.Recipients) == 0 {
			return nil, ErrNoRecipients
		}
		if len(args.Recipients) != len(args.Amounts) {
			return nil, errors.Wrapf(compression.ErrArrayLengthMismatch, "%d recipients, %d amounts", len(args.Recipients), len(args.Amounts))
		}

		total, err := compression.AddAmounts(args.Amounts...)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			return nil, ErrInvalidAmount
		}
		log = log.WithField("amount", total)

		accounts, err := b.getSpendableAccounts(ctx, args.Owner, args.Mint)
		if err != nil {
			return nil, err
		}

		selected, err := b.selectAccounts(ctx, accounts, total)
		if err != nil {
			log.WithError(err).Warn("failure selecting accounts")
			return nil, err
		}

		outputs, err := output.CreateMultiTransferOutputState(selected.Selected, args.Recipients, args.Amounts)
		if err != nil {
			return nil, err
		}

		result, err := b.buildTransfer(ctx, args.Payer, args.Owner, args.Mint, selected, outputs)
		if err != nil {
			return nil, err
		}
		return b.finalize(ctx, log, args.Payer, result)
	})
}

// buildTransfer proves and packs selected inputs into a plain transfer
// instruction creating outputs.
func (b *Builder) buildTransfer(
	ctx context.Context,
	payer, owner, mint ed25519.PublicKey,
	selected *selection.Result,
	outputs []compression.TokenTransferOutputData,
) (*Result, error) {
	proof, err := b.getValidityProof(ctx, selected.Selected)
	if err != nil {
		return nil, err
	}

	packed, err := pack.Pack(&pack.Args{
		Inputs:      selected.Selected,
		Outputs:     outputs,
		RootIndices: proof.RootIndices,
	})
	if err != nil {
		return nil, err
	}

	cpiAuthority, err := b.getCpiAuthorityAddress()
	if err != nil {
		return nil, err
	}

	ixn := b.program.NewTransferInstruction(
		&compressedtoken.TransferInstructionAccounts{
			FeePayer:          payer,
			Authority:         owner,
			CpiAuthorityPda:   cpiAuthority,
			RemainingAccounts: packed.RemainingAccounts(),
		},
		&compressedtoken.TransferInstructionArgs{
			Proof:                     proof.Proof,
			Mint:                      mint,
			InputTokenDataWithContext: packed.InputTokenDataWithContext,
			OutputCompressedAccounts:  packed.OutputCompressedAccounts,
		},
	)

	return &Result{
		Instruction: ixn,
		Setup:       b.getComputeBudgetInstructions(ctx),
		Inputs:      selected.Selected,
		Selection:   selected,
	}, nil
}

type CompressArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Source is the SPL token account owned by Owner that tokens are taken
	// from.
	Source ed25519.PublicKey

	// Recipients and Amounts are parallel.
	Recipients []ed25519.PublicKey
	Amounts    []uint64

	OutputStateTreeInfo *compression.TreeInfo
	TokenPoolIndex      uint8
}

// Compress moves SPL tokens from the source account into the token pool and
// creates a compressed account per recipient. The cpi authority is approved
// to move the total beforehand.
func (b *Builder) Compress(ctx context.Context, args *CompressArgs) (*Result, error) {
	return traced(ctx, "Compress", func() (*Result, error) {
		log := b.newLogger("Compress", args.Owner, args.Mint)

		if len(args.Recipients) == 0 {
			return nil, ErrNoRecipients
		}
		if len(args.Recipients) != len(args.Amounts) {
			return nil, errors.Wrapf(compression.ErrArrayLengthMismatch, "%d recipients, %d amounts", len(args.Recipients), len(args.Amounts))
		}

		total, err := compression.AddAmounts(args.Amounts...)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			return nil, ErrInvalidAmount
		}
		log = log.WithField("amount", total)

		outputs := make([]compression.TokenTransferOutputData, len(args.Recipients))
		for i, recipient := range args.Recipients {
			outputs[i] = compression.TokenTransferOutputData{
				Owner:  recipient,
				Amount: args.Amounts[i],
			}
		}

		packed, err := pack.Pack(&pack.Args{
			Outputs:             outputs,
			OutputStateTreeInfo: args.OutputStateTreeInfo,
		})
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

		ixn := b.program.NewTransferInstruction(
			&compressedtoken.TransferInstructionAccounts{
				FeePayer:                         args.Payer,
				Authority:                        args.Owner,
				CpiAuthorityPda:                  cpiAuthority,
				TokenPoolPda:                     pointer.PublicKey(tokenPool),
				CompressOrDecompressTokenAccount: pointer.PublicKey(args.Source),
				TokenProgram:                     pointer.PublicKey(b.program.TokenProgram),
				RemainingAccounts:                packed.RemainingAccounts(),
			},
			&compressedtoken.TransferInstructionArgs{
				Mint:                       args.Mint,
				OutputCompressedAccounts:   packed.OutputCompressedAccounts,
				IsCompress:                 true,
				CompressOrDecompressAmount: pointer.Uint64(total),
			},
		)

		setup := b.getComputeBudgetInstructions(ctx)
		setup = append(setup, token.Approve(args.Source, cpiAuthority, args.Owner, total))

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Setup:       setup,
		})
	})
}

type DecompressArgs struct {
	Payer  ed25519.PublicKey
	Owner  ed25519.PublicKey
	Mint   ed25519.PublicKey
	Amount uint64

	// Destination is the SPL token account receiving tokens. When unset, the
	// owner's associated token account is used and created if missing.
	Destination ed25519.PublicKey

	TokenPoolIndex uint8
}

// Decompress moves compressed tokens out of the token pool into an SPL token
// account. Any remainder stays compressed with the owner.
func (b *Builder) Decompress(ctx context.Context, args *DecompressArgs) (*Result, error) {
	return traced(ctx, "Decompress", func() (*Result, error) {
		log := b.newLogger("Decompress", args.Owner, args.Mint).WithField("amount", args.Amount)

		if args.Amount == 0 {
			return nil, ErrInvalidAmount
		}

		setup := b.getComputeBudgetInstructions(ctx)

		destination := args.Destination
		if len(destination) == 0 {
			createAta, ata, err := token.CreateAssociatedTokenAccountIdempotent(args.Payer, args.Owner, args.Mint)
			if err != nil {
				return nil, errors.Wrap(err, "error deriving associated token account")
			}
			setup = append(setup, createAta)
			destination = ata
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

		outputs, err := output.CreateDecompressOutputState(selected.Selected, args.Amount)
		if err != nil {
			return nil, err
		}

		proof, err := b.getValidityProof(ctx, selected.Selected)
		if err != nil {
			return nil, err
		}

		packed, err := pack.Pack(&pack.Args{
			Inputs:      selected.Selected,
			Outputs:     outputs,
			RootIndices: proof.RootIndices,
		})
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

		ixn := b.program.NewTransferInstruction(
			&compressedtoken.TransferInstructionAccounts{
				FeePayer:                         args.Payer,
				Authority:                        args.Owner,
				CpiAuthorityPda:                  cpiAuthority,
				TokenPoolPda:                     pointer.PublicKey(tokenPool),
				CompressOrDecompressTokenAccount: pointer.PublicKey(destination),
				TokenProgram:                     pointer.PublicKey(b.program.TokenProgram),
				RemainingAccounts:                packed.RemainingAccounts(),
			},
			&compressedtoken.TransferInstructionArgs{
				Proof:                      proof.Proof,
				Mint:                       args.Mint,
				InputTokenDataWithContext:  packed.InputTokenDataWithContext,
				OutputCompressedAccounts:   packed.OutputCompressedAccounts,
				CompressOrDecompressAmount: pointer.Uint64(args.Amount),
			},
		)

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Setup:       setup,
			Inputs:      selected.Selected,
			Selection:   selected,
		})
	})
}

type MergeTokenAccountsArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey
}

// MergeTokenAccounts consolidates the owner's spendable accounts. Accounts
// are merged largest first in batches of at most the configured input limit,
// and each batch becomes one self transfer with its own proof. A trailing
// batch of a single account is left as is.
func (b *Builder) MergeTokenAccounts(ctx context.Context, args *MergeTokenAccountsArgs) ([]*Result, error) {
	return traced(ctx, "MergeTokenAccounts", func() ([]*Result, error) {
		log := b.newLogger("MergeTokenAccounts", args.Owner, args.Mint)

		accounts, err := b.getSpendableAccounts(ctx, args.Owner, args.Mint)
		if err != nil {
			return nil, err
		}

		batches, err := selection.SelectBatches(accounts, b.maxInputs(ctx))
		if err != nil {
			return nil, err
		}
		if len(batches[0]) < 2 {
			return nil, ErrNothingToMerge
		}

		var results []*Result
		for _, batch := range batches {
			if len(batch) < 2 {
				continue
			}

			outputs, err := output.CreateMergeOutputState(batch)
			if err != nil {
				return nil, err
			}

			selected := &selection.Result{
				Selected:          batch,
				TotalAmount:       outputs[0].Amount,
				TotalLamports:     pointer.Uint64Copy(outputs[0].Lamports),
				MaxPossibleAmount: outputs[0].Amount,
			}

			result, err := b.buildTransfer(ctx, args.Payer, args.Owner, args.Mint, selected, outputs)
			if err != nil {
				return nil, err
			}

			result, err = b.finalize(ctx, log, args.Payer, result)
			if err != nil {
				return nil, err
			}
			results = append(results, result)
		}
		return results, nil
	})
}

// instruction accounts shared by the instructions that only spend inputs
func (b *Builder) newGenericAccounts(payer, authority ed25519.PublicKey, table *pack.Table) (*compressedtoken.GenericInstructionAccounts, error) {
	cpiAuthority, err := b.getCpiAuthorityAddress()
	if err != nil {
		return nil, err
	}
	return &compressedtoken.GenericInstructionAccounts{
		FeePayer:          payer,
		Authority:         authority,
		CpiAuthorityPda:   cpiAuthority,
		RemainingAccounts: table.AccountMetas(),
	}, nil
}
