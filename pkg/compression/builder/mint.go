package builder

import (
	"context"
	"crypto/ed25519"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/pack"
	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/token"
)

type MintToArgs struct {
	Payer ed25519.PublicKey

	// Authority is the mint authority.
	Authority ed25519.PublicKey

	Mint ed25519.PublicKey

	// Recipients and Amounts are parallel.
	Recipients []ed25519.PublicKey
	Amounts    []uint64

	// Lamports is attached to every created account, funded through the sol
	// pool.
	Lamports *uint64

	OutputStateTreeInfo *compression.TreeInfo
	TokenPoolIndex      uint8
}

// MintTo mints new tokens into the token pool and creates a compressed
// account per recipient.
func (b *Builder) MintTo(ctx context.Context, args *MintToArgs) (*Result, error) {
	return traced(ctx, "MintTo", func() (*Result, error) {
		log := b.newLogger("MintTo", args.Authority, args.Mint)

		if len(args.Recipients) == 0 {
			return nil, ErrNoRecipients
		}

		if _, err := compression.AddAmounts(args.Amounts...); err != nil {
			return nil, err
		}

		merkleTree, err := pack.ResolveOutputTree(nil, args.OutputStateTreeInfo)
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

		solPool, err := b.getSolPoolAddressIfNeeded(args.Lamports)
		if err != nil {
			return nil, err
		}

		ixn, err := b.program.NewMintToInstruction(
			&compressedtoken.MintToInstructionAccounts{
				FeePayer:        args.Payer,
				Authority:       args.Authority,
				CpiAuthorityPda: cpiAuthority,
				Mint:            pointer.PublicKey(args.Mint),
				TokenPoolPda:    tokenPool,
				TokenProgram:    b.program.TokenProgram,
				MerkleTree:      merkleTree,
				SolPoolPda:      solPool,
			},
			&compressedtoken.MintToInstructionArgs{
				PublicKeys: args.Recipients,
				Amounts:    args.Amounts,
				Lamports:   args.Lamports,
			},
		)
		if err != nil {
			return nil, err
		}

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
		})
	})
}

type BatchCompressArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Source is the SPL token account owned by Owner that tokens are taken
	// from.
	Source ed25519.PublicKey

	Recipients []ed25519.PublicKey

	// Exactly one of Amounts, parallel to Recipients, or Amount, sent to
	// every recipient, must be set.
	Amounts []uint64
	Amount  *uint64

	Lamports *uint64

	OutputStateTreeInfo *compression.TreeInfo
	TokenPoolIndex      uint8
}

// BatchCompress compresses SPL tokens from the source account into many
// recipients with a compact encoding.
func (b *Builder) BatchCompress(ctx context.Context, args *BatchCompressArgs) (*Result, error) {
	return traced(ctx, "BatchCompress", func() (*Result, error) {
		log := b.newLogger("BatchCompress", args.Owner, args.Mint)

		if len(args.Recipients) == 0 {
			return nil, ErrNoRecipients
		}

		instructionArgs := &compressedtoken.BatchCompressInstructionArgs{
			PublicKeys: args.Recipients,
			Amounts:    args.Amounts,
			Lamports:   args.Lamports,
			Amount:     args.Amount,
			Index:      args.TokenPoolIndex,
		}
		if err := instructionArgs.Validate(); err != nil {
			return nil, err
		}

		total, err := batchCompressTotal(args)
		if err != nil {
			return nil, err
		}
		if total == 0 {
			return nil, ErrInvalidAmount
		}
		log = log.WithField("amount", total)

		merkleTree, err := pack.ResolveOutputTree(nil, args.OutputStateTreeInfo)
		if err != nil {
			return nil, err
		}

		cpiAuthority, err := b.getCpiAuthorityAddress()
		if err != nil {
			return nil, err
		}

		tokenPool, bump, err := b.getTokenPoolAddress(args.Mint, args.TokenPoolIndex)
		if err != nil {
			return nil, err
		}
		instructionArgs.Bump = bump

		solPool, err := b.getSolPoolAddressIfNeeded(args.Lamports)
		if err != nil {
			return nil, err
		}

		ixn, err := b.program.NewBatchCompressInstruction(
			&compressedtoken.BatchCompressInstructionAccounts{
				FeePayer:           args.Payer,
				Authority:          args.Owner,
				CpiAuthorityPda:    cpiAuthority,
				TokenPoolPda:       tokenPool,
				TokenProgram:       b.program.TokenProgram,
				MerkleTree:         merkleTree,
				SolPoolPda:         solPool,
				SenderTokenAccount: args.Source,
			},
			instructionArgs,
		)
		if err != nil {
			return nil, err
		}

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
			Setup: []solana.Instruction{
				token.Approve(args.Source, cpiAuthority, args.Owner, total),
			},
		})
	})
}

func batchCompressTotal(args *BatchCompressArgs) (uint64, error) {
	if args.Amount == nil {
		return compression.AddAmounts(args.Amounts...)
	}

	hi, total := bits.Mul64(*args.Amount, uint64(len(args.Recipients)))
	if hi != 0 {
		return 0, compression.ErrAmountOverflow
	}
	return total, nil
}

type CompressSplTokenAccountArgs struct {
	Payer ed25519.PublicKey
	Owner ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Source is the SPL token account to compress.
	Source ed25519.PublicKey

	// RemainingAmount is left behind in the source account. When unset, the
	// whole balance is compressed.
	RemainingAmount *uint64

	OutputStateTreeInfo *compression.TreeInfo
	TokenPoolIndex      uint8
}

// CompressSplTokenAccount compresses an SPL token account's balance into a
// single compressed account held by the owner.
func (b *Builder) CompressSplTokenAccount(ctx context.Context, args *CompressSplTokenAccountArgs) (*Result, error) {
	return traced(ctx, "CompressSplTokenAccount", func() (*Result, error) {
		log := b.newLogger("CompressSplTokenAccount", args.Owner, args.Mint)

		outputTree, err := pack.ResolveOutputTree(nil, args.OutputStateTreeInfo)
		if err != nil {
			return nil, err
		}

		table := pack.NewTable()
		if _, err := table.Insert(outputTree); err != nil {
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

		ixn := b.program.NewCompressSplTokenAccountInstruction(
			&compressedtoken.TransferInstructionAccounts{
				FeePayer:                         args.Payer,
				Authority:                        args.Owner,
				CpiAuthorityPda:                  cpiAuthority,
				TokenPoolPda:                     pointer.PublicKey(tokenPool),
				CompressOrDecompressTokenAccount: pointer.PublicKey(args.Source),
				TokenProgram:                     pointer.PublicKey(b.program.TokenProgram),
				RemainingAccounts:                table.AccountMetas(),
			},
			&compressedtoken.CompressSplTokenAccountInstructionArgs{
				Owner:           args.Owner,
				RemainingAmount: args.RemainingAmount,
			},
		)

		return b.finalize(ctx, log, args.Payer, &Result{
			Instruction: ixn,
		})
	})
}

type TokenPoolArgs struct {
	Payer ed25519.PublicKey
	Mint  ed25519.PublicKey

	// Index 0 creates the mint's first pool. Later pools require the pool
	// before them to exist.
	Index uint8
}

// CreateTokenPool registers a mint with the compressed token program by
// creating one of its token pools.
func (b *Builder) CreateTokenPool(ctx context.Context, args *TokenPoolArgs) (*Result, error) {
	return traced(ctx, "CreateTokenPool", func() (*Result, error) {
		log := b.newLogger("CreateTokenPool", args.Payer, args.Mint).WithField("index", args.Index)

		if args.Index >= compressedtoken.MaxTokenPools {
			return nil, errors.Errorf("token pool index must be less than %d", compressedtoken.MaxTokenPools)
		}

		cpiAuthority, err := b.getCpiAuthorityAddress()
		if err != nil {
			return nil, err
		}

		tokenPool, _, err := b.getTokenPoolAddress(args.Mint, args.Index)
		if err != nil {
			return nil, err
		}

		if args.Index == 0 {
			ixn := b.program.NewCreateTokenPoolInstruction(&compressedtoken.CreateTokenPoolInstructionAccounts{
				FeePayer:        args.Payer,
				TokenPoolPda:    tokenPool,
				Mint:            args.Mint,
				TokenProgram:    b.program.TokenProgram,
				CpiAuthorityPda: cpiAuthority,
			})
			return b.finalize(ctx, log, args.Payer, &Result{Instruction: ixn})
		}

		existingTokenPool, _, err := b.getTokenPoolAddress(args.Mint, args.Index-1)
		if err != nil {
			return nil, err
		}

		ixn, err := b.program.NewAddTokenPoolInstruction(
			&compressedtoken.AddTokenPoolInstructionAccounts{
				FeePayer:             args.Payer,
				TokenPoolPda:         tokenPool,
				ExistingTokenPoolPda: existingTokenPool,
				Mint:                 args.Mint,
				TokenProgram:         b.program.TokenProgram,
				CpiAuthorityPda:      cpiAuthority,
			},
			&compressedtoken.AddTokenPoolInstructionArgs{
				TokenPoolIndex: args.Index,
			},
		)
		if err != nil {
			return nil, err
		}
		return b.finalize(ctx, log, args.Payer, &Result{Instruction: ixn})
	})
}

func (b *Builder) getSolPoolAddressIfNeeded(lamports *uint64) (*ed25519.PublicKey, error) {
	if lamports == nil || *lamports == 0 {
		return nil, nil
	}

	solPool, _, err := b.program.GetSolPoolAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving sol pool address")
	}
	return &solPool, nil
}
