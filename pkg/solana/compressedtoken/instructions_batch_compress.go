package compressedtoken

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

var (
	ErrAmountsAndAmountProvided = errors.New("both amounts and amount provided")
	ErrNoAmount                 = errors.New("neither amounts nor amount provided")
)

// BatchCompressInstructionArgs compresses SPL tokens from a single sender
// token account to many recipients. Exactly one of Amounts (per recipient)
// or Amount (same for every recipient) is set. Index and Bump identify the
// token pool the tokens are moved into.
type BatchCompressInstructionArgs struct {
	PublicKeys []ed25519.PublicKey
	Amounts    []uint64
	Lamports   *uint64
	Amount     *uint64
	Index      uint8
	Bump       uint8
}

// BatchCompressInstructionAccounts are the mint to accounts without a mint,
// followed by the sender token account.
type BatchCompressInstructionAccounts struct {
	FeePayer           ed25519.PublicKey
	Authority          ed25519.PublicKey
	CpiAuthorityPda    ed25519.PublicKey
	TokenPoolPda       ed25519.PublicKey
	TokenProgram       ed25519.PublicKey
	MerkleTree         ed25519.PublicKey
	SolPoolPda         *ed25519.PublicKey
	SenderTokenAccount ed25519.PublicKey
}

func (args *BatchCompressInstructionArgs) Validate() error {
	if args.Amounts != nil && args.Amount != nil {
		return ErrAmountsAndAmountProvided
	}
	if args.Amounts == nil && args.Amount == nil {
		return ErrNoAmount
	}
	if args.Amounts != nil && len(args.Amounts) != len(args.PublicKeys) {
		return errors.Wrapf(ErrArrayLengthMismatch, "%d recipients, %d amounts", len(args.PublicKeys), len(args.Amounts))
	}
	return nil
}

func GetBatchCompressInstructionArgsSize(args *BatchCompressInstructionArgs) int {
	size := binary.SizeOfVec(args.PublicKeys, binary.FixedSize[ed25519.PublicKey](ed25519.PublicKeySize)) // pubkeys

	// amounts
	size += binary.OptionFlagSize
	if args.Amounts != nil {
		size += binary.SizeOfVec(args.Amounts, binary.FixedSize[uint64](8))
	}

	return size +
		binary.SizeOfOption(args.Lamports, binary.FixedSize[uint64](8)) + // lamports
		binary.SizeOfOption(args.Amount, binary.FixedSize[uint64](8)) + // amount
		1 + // index
		1 // bump
}

func (args *BatchCompressInstructionArgs) Marshal() []byte {
	return encodeWithPayloadLength(batchCompressDiscriminator, GetBatchCompressInstructionArgsSize(args), func(dst []byte, offset *int) {
		binary.PutVec(dst, args.PublicKeys, offset, binary.Key32Putter)
		if args.Amounts == nil {
			binary.PutUint8(dst, 0, offset)
		} else {
			binary.PutUint8(dst, 1, offset)
			binary.PutVec(dst, args.Amounts, offset, binary.Uint64Putter)
		}
		binary.PutOption(dst, args.Lamports, offset, binary.Uint64Putter)
		binary.PutOption(dst, args.Amount, offset, binary.Uint64Putter)
		binary.PutUint8(dst, args.Index, offset)
		binary.PutUint8(dst, args.Bump, offset)
	})
}

func (args *BatchCompressInstructionArgs) Unmarshal(data []byte) error {
	return decodeWithPayloadLength(data, batchCompressDiscriminator, func(src []byte, offset *int) error {
		if err := binary.GetVec(src, &args.PublicKeys, offset, binary.Key32Getter); err != nil {
			return err
		}

		var amounts *[]uint64
		if err := binary.GetOption(src, &amounts, offset, func(src []byte, dst *[]uint64, offset *int) error {
			return binary.GetVec(src, dst, offset, binary.Uint64Getter)
		}); err != nil {
			return err
		}
		args.Amounts = nil
		if amounts != nil {
			args.Amounts = *amounts
			if args.Amounts == nil {
				args.Amounts = []uint64{}
			}
		}

		if err := binary.GetOption(src, &args.Lamports, offset, binary.Uint64Getter); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.Amount, offset, binary.Uint64Getter); err != nil {
			return err
		}
		if err := binary.GetUint8(src, &args.Index, offset); err != nil {
			return err
		}
		return binary.GetUint8(src, &args.Bump, offset)
	})
}

func (p *Program) NewBatchCompressInstruction(
	accounts *BatchCompressInstructionAccounts,
	args *BatchCompressInstructionArgs,
) (solana.Instruction, error) {
	if err := args.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	metas := p.mintToAccountMetas(&MintToInstructionAccounts{
		FeePayer:        accounts.FeePayer,
		Authority:       accounts.Authority,
		CpiAuthorityPda: accounts.CpiAuthorityPda,
		TokenPoolPda:    accounts.TokenPoolPda,
		TokenProgram:    accounts.TokenProgram,
		MerkleTree:      accounts.MerkleTree,
		SolPoolPda:      accounts.SolPoolPda,
		RemainingAccounts: []solana.AccountMeta{
			solana.NewAccountMeta(accounts.SenderTokenAccount, false),
		},
	})

	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: metas,
	}, nil
}

type DecompiledBatchCompress struct {
	Accounts BatchCompressInstructionAccounts
	Args     BatchCompressInstructionArgs
}

func (p *Program) DecompileBatchCompress(m solana.Message, index int) (*DecompiledBatchCompress, error) {
	i, err := p.getCompiledInstruction(m, index, mintToInstructionFixedAccounts+1)
	if err != nil {
		return nil, err
	}

	var res DecompiledBatchCompress
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}

	mintTo := decompileMintToAccounts(p, m, i.accounts)
	res.Accounts = BatchCompressInstructionAccounts{
		FeePayer:           mintTo.FeePayer,
		Authority:          mintTo.Authority,
		CpiAuthorityPda:    mintTo.CpiAuthorityPda,
		TokenPoolPda:       mintTo.TokenPoolPda,
		TokenProgram:       mintTo.TokenProgram,
		MerkleTree:         mintTo.MerkleTree,
		SolPoolPda:         mintTo.SolPoolPda,
		SenderTokenAccount: i.accounts[mintToInstructionFixedAccounts],
	}
	return &res, nil
}
