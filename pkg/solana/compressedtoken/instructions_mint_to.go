package compressedtoken

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const mintToInstructionFixedAccounts = 15

// MintToInstructionArgs mints Amounts[i] to PublicKeys[i]. Every output also
// receives Lamports, when set.
type MintToInstructionArgs struct {
	PublicKeys []ed25519.PublicKey
	Amounts    []uint64
	Lamports   *uint64
}

// MintToInstructionAccounts is also used by batch compress, which leaves Mint
// unset.
type MintToInstructionAccounts struct {
	FeePayer        ed25519.PublicKey
	Authority       ed25519.PublicKey
	CpiAuthorityPda ed25519.PublicKey
	Mint            *ed25519.PublicKey
	TokenPoolPda    ed25519.PublicKey
	TokenProgram    ed25519.PublicKey
	MerkleTree      ed25519.PublicKey
	SolPoolPda      *ed25519.PublicKey

	RemainingAccounts []solana.AccountMeta
}

func (args *MintToInstructionArgs) Validate() error {
	if len(args.PublicKeys) != len(args.Amounts) {
		return errors.Wrapf(ErrArrayLengthMismatch, "%d recipients, %d amounts", len(args.PublicKeys), len(args.Amounts))
	}
	return nil
}

func GetMintToInstructionArgsSize(args *MintToInstructionArgs) int {
	return binary.SizeOfVec(args.PublicKeys, binary.FixedSize[ed25519.PublicKey](ed25519.PublicKeySize)) + // public_keys
		binary.SizeOfVec(args.Amounts, binary.FixedSize[uint64](8)) + // amounts
		binary.SizeOfOption(args.Lamports, binary.FixedSize[uint64](8)) // lamports
}

// Marshal encodes args with the discriminator. Empty vectors encode the same
// whether nil or not and decode as nil, the canonical empty form used by
// every payload in this package.
func (args *MintToInstructionArgs) Marshal() []byte {
	data := make([]byte, DiscriminatorSize+GetMintToInstructionArgsSize(args))

	var offset int
	putDiscriminator(data, mintToDiscriminator, &offset)
	binary.PutVec(data, args.PublicKeys, &offset, binary.Key32Putter)
	binary.PutVec(data, args.Amounts, &offset, binary.Uint64Putter)
	binary.PutOption(data, args.Lamports, &offset, binary.Uint64Putter)

	return data
}

func (args *MintToInstructionArgs) Unmarshal(data []byte) error {
	var offset int
	if err := expectDiscriminator(data, mintToDiscriminator, &offset); err != nil {
		return err
	}

	return decodeExact(data, offset, func(src []byte, offset *int) error {
		if err := binary.GetVec(src, &args.PublicKeys, offset, binary.Key32Getter); err != nil {
			return err
		}
		if err := binary.GetVec(src, &args.Amounts, offset, binary.Uint64Getter); err != nil {
			return err
		}
		return binary.GetOption(src, &args.Lamports, offset, binary.Uint64Getter)
	})
}

func (p *Program) mintToAccountMetas(accounts *MintToInstructionAccounts) []solana.AccountMeta {
	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.FeePayer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Authority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.CpiAuthorityPda,
			IsWritable: false,
			IsSigner:   false,
		},
		p.getOptionalAccountMeta(accounts.Mint, true),
		{
			PublicKey:  accounts.TokenPoolPda,
			IsWritable: true,
			IsSigner:   false,
		},
		{
			PublicKey:  accounts.TokenProgram,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	metas = append(metas, p.lightSystemAccountMetas()...)
	metas = append(metas,
		solana.NewAccountMeta(accounts.MerkleTree, false),
		solana.NewReadonlyAccountMeta(p.ID, false),
		solana.NewReadonlyAccountMeta(p.SystemProgram, false),
		p.getOptionalAccountMeta(accounts.SolPoolPda, true),
	)
	return append(metas, accounts.RemainingAccounts...)
}

func decompileMintToAccounts(p *Program, m solana.Message, accounts []ed25519.PublicKey) MintToInstructionAccounts {
	return MintToInstructionAccounts{
		FeePayer:          accounts[0],
		Authority:         accounts[1],
		CpiAuthorityPda:   accounts[2],
		Mint:              p.getOptionalAccount(accounts[3]),
		TokenPoolPda:      accounts[4],
		TokenProgram:      accounts[5],
		MerkleTree:        accounts[11],
		SolPoolPda:        p.getOptionalAccount(accounts[14]),
		RemainingAccounts: remainingAccountMetas(m, accounts[mintToInstructionFixedAccounts:]),
	}
}

// NewMintToInstruction fails with ErrArrayLengthMismatch before encoding
// when recipients and amounts differ in length.
func (p *Program) NewMintToInstruction(
	accounts *MintToInstructionAccounts,
	args *MintToInstructionArgs,
) (solana.Instruction, error) {
	if err := args.Validate(); err != nil {
		return solana.Instruction{}, err
	}

	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: p.mintToAccountMetas(accounts),
	}, nil
}

type DecompiledMintTo struct {
	Accounts MintToInstructionAccounts
	Args     MintToInstructionArgs
}

func (p *Program) DecompileMintTo(m solana.Message, index int) (*DecompiledMintTo, error) {
	i, err := p.getCompiledInstruction(m, index, mintToInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledMintTo
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}
	res.Accounts = decompileMintToAccounts(p, m, i.accounts)
	return &res, nil
}
