package compressedtoken

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const (
	createTokenPoolInstructionFixedAccounts = 6
	addTokenPoolInstructionFixedAccounts    = 7
)

type CreateTokenPoolInstructionAccounts struct {
	FeePayer        ed25519.PublicKey
	TokenPoolPda    ed25519.PublicKey
	Mint            ed25519.PublicKey
	TokenProgram    ed25519.PublicKey
	CpiAuthorityPda ed25519.PublicKey
}

// NewCreateTokenPoolInstruction creates pool 0 for a mint. The instruction
// takes no arguments.
func (p *Program) NewCreateTokenPoolInstruction(accounts *CreateTokenPoolInstructionAccounts) solana.Instruction {
	data := make([]byte, DiscriminatorSize)

	var offset int
	putDiscriminator(data, createTokenPoolDiscriminator, &offset)

	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.FeePayer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TokenPoolPda,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  p.SystemProgram,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TokenProgram,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CpiAuthorityPda,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

type DecompiledCreateTokenPool struct {
	Accounts CreateTokenPoolInstructionAccounts
}

func (p *Program) DecompileCreateTokenPool(m solana.Message, index int) (*DecompiledCreateTokenPool, error) {
	i, err := p.getCompiledInstruction(m, index, createTokenPoolInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var offset int
	if err := expectDiscriminator(i.data, createTokenPoolDiscriminator, &offset); err != nil {
		return nil, err
	}
	if err := binary.ExpectEnd(i.data, offset); err != nil {
		return nil, errors.Wrap(ErrDecodeLayoutMismatch, err.Error())
	}

	return &DecompiledCreateTokenPool{
		Accounts: CreateTokenPoolInstructionAccounts{
			FeePayer:        i.accounts[0],
			TokenPoolPda:    i.accounts[1],
			Mint:            i.accounts[3],
			TokenProgram:    i.accounts[4],
			CpiAuthorityPda: i.accounts[5],
		},
	}, nil
}

type AddTokenPoolInstructionArgs struct {
	TokenPoolIndex uint8
}

// AddTokenPoolInstructionAccounts references the pool at TokenPoolIndex-1,
// which must already exist.
type AddTokenPoolInstructionAccounts struct {
	FeePayer             ed25519.PublicKey
	TokenPoolPda         ed25519.PublicKey
	ExistingTokenPoolPda ed25519.PublicKey
	Mint                 ed25519.PublicKey
	TokenProgram         ed25519.PublicKey
	CpiAuthorityPda      ed25519.PublicKey
}

func (args *AddTokenPoolInstructionArgs) Marshal() []byte {
	data := make([]byte, DiscriminatorSize+1)

	var offset int
	putDiscriminator(data, addTokenPoolDiscriminator, &offset)
	binary.PutUint8(data, args.TokenPoolIndex, &offset)

	return data
}

func (args *AddTokenPoolInstructionArgs) Unmarshal(data []byte) error {
	var offset int
	if err := expectDiscriminator(data, addTokenPoolDiscriminator, &offset); err != nil {
		return err
	}
	return decodeExact(data, offset, func(src []byte, offset *int) error {
		return binary.GetUint8(src, &args.TokenPoolIndex, offset)
	})
}

func (p *Program) NewAddTokenPoolInstruction(
	accounts *AddTokenPoolInstructionAccounts,
	args *AddTokenPoolInstructionArgs,
) (solana.Instruction, error) {
	if args.TokenPoolIndex == 0 || args.TokenPoolIndex >= MaxTokenPools {
		return solana.Instruction{}, errors.Errorf("token pool index must be in [1, %d]", MaxTokenPools-1)
	}

	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.FeePayer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.TokenPoolPda,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.ExistingTokenPoolPda,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  p.SystemProgram,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.TokenProgram,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CpiAuthorityPda,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}, nil
}

type DecompiledAddTokenPool struct {
	Accounts AddTokenPoolInstructionAccounts
	Args     AddTokenPoolInstructionArgs
}

func (p *Program) DecompileAddTokenPool(m solana.Message, index int) (*DecompiledAddTokenPool, error) {
	i, err := p.getCompiledInstruction(m, index, addTokenPoolInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledAddTokenPool
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}

	res.Accounts = AddTokenPoolInstructionAccounts{
		FeePayer:             i.accounts[0],
		TokenPoolPda:         i.accounts[1],
		ExistingTokenPoolPda: i.accounts[2],
		Mint:                 i.accounts[4],
		TokenProgram:         i.accounts[5],
		CpiAuthorityPda:      i.accounts[6],
	}
	return &res, nil
}
