package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const burnInstructionFixedAccounts = 13

type BurnInstructionArgs struct {
	Proof                        CompressedProof
	InputTokenDataWithContext    []InputTokenDataWithContext
	CpiContext                   *CompressedCpiContext
	BurnAmount                   uint64
	ChangeAccountMerkleTreeIndex uint8
	DelegatedTransfer            *DelegatedTransfer
}

// BurnInstructionAccounts burns from the token pool backing Mint, so the pool
// and mint are both writable.
type BurnInstructionAccounts struct {
	FeePayer        ed25519.PublicKey
	Authority       ed25519.PublicKey
	CpiAuthorityPda ed25519.PublicKey
	Mint            ed25519.PublicKey
	TokenPoolPda    ed25519.PublicKey
	TokenProgram    ed25519.PublicKey

	RemainingAccounts []solana.AccountMeta
}

func GetBurnInstructionArgsSize(args *BurnInstructionArgs) int {
	return CompressedProofSize + // proof
		sizeOfInputTokenDataVec(args.InputTokenDataWithContext) + // input_token_data_with_context
		sizeOfOptionalCpiContext(args.CpiContext) + // cpi_context
		8 + // burn_amount
		1 + // change_account_merkle_tree_index
		binary.SizeOfOption(args.DelegatedTransfer, sizeOfDelegatedTransfer) // delegated_transfer
}

func (args *BurnInstructionArgs) Marshal() []byte {
	return encodeWithPayloadLength(burnDiscriminator, GetBurnInstructionArgsSize(args), func(dst []byte, offset *int) {
		putCompressedProof(dst, args.Proof, offset)
		putInputTokenDataVec(dst, args.InputTokenDataWithContext, offset)
		binary.PutOption(dst, args.CpiContext, offset, putCompressedCpiContext)
		binary.PutUint64(dst, args.BurnAmount, offset)
		binary.PutUint8(dst, args.ChangeAccountMerkleTreeIndex, offset)
		binary.PutOption(dst, args.DelegatedTransfer, offset, putDelegatedTransfer)
	})
}

func (args *BurnInstructionArgs) Unmarshal(data []byte) error {
	return decodeWithPayloadLength(data, burnDiscriminator, func(src []byte, offset *int) error {
		if err := getCompressedProof(src, &args.Proof, offset); err != nil {
			return err
		}
		if err := getInputTokenDataVec(src, &args.InputTokenDataWithContext, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.CpiContext, offset, getCompressedCpiContext); err != nil {
			return err
		}
		if err := binary.GetUint64(src, &args.BurnAmount, offset); err != nil {
			return err
		}
		if err := binary.GetUint8(src, &args.ChangeAccountMerkleTreeIndex, offset); err != nil {
			return err
		}
		return binary.GetOption(src, &args.DelegatedTransfer, offset, getDelegatedTransfer)
	})
}

func (p *Program) NewBurnInstruction(
	accounts *BurnInstructionAccounts,
	args *BurnInstructionArgs,
) solana.Instruction {
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
		{
			PublicKey:  accounts.Mint,
			IsWritable: true,
			IsSigner:   false,
		},
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
		solana.NewReadonlyAccountMeta(p.ID, false),
		solana.NewReadonlyAccountMeta(p.SystemProgram, false),
	)
	metas = append(metas, accounts.RemainingAccounts...)

	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: metas,
	}
}

type DecompiledBurn struct {
	Accounts BurnInstructionAccounts
	Args     BurnInstructionArgs
}

func (p *Program) DecompileBurn(m solana.Message, index int) (*DecompiledBurn, error) {
	i, err := p.getCompiledInstruction(m, index, burnInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledBurn
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}

	res.Accounts = BurnInstructionAccounts{
		FeePayer:          i.accounts[0],
		Authority:         i.accounts[1],
		CpiAuthorityPda:   i.accounts[2],
		Mint:              i.accounts[3],
		TokenPoolPda:      i.accounts[4],
		TokenProgram:      i.accounts[5],
		RemainingAccounts: remainingAccountMetas(m, i.accounts[burnInstructionFixedAccounts:]),
	}
	return &res, nil
}
