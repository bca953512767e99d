package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const freezeInstructionFixedAccounts = genericInstructionFixedAccounts + 1

// FreezeInstructionArgs is shared by freeze and thaw. Authority must be the
// mint's freeze authority.
type FreezeInstructionArgs struct {
	Proof                     CompressedProof
	Owner                     ed25519.PublicKey
	InputTokenDataWithContext []InputTokenDataWithContext
	CpiContext                *CompressedCpiContext
	OutputsMerkleTreeIndex    uint8
}

type FreezeInstructionAccounts struct {
	GenericInstructionAccounts

	Mint ed25519.PublicKey
}

func GetFreezeInstructionArgsSize(args *FreezeInstructionArgs) int {
	return CompressedProofSize + // proof
		ed25519.PublicKeySize + // owner
		sizeOfInputTokenDataVec(args.InputTokenDataWithContext) + // input_token_data_with_context
		sizeOfOptionalCpiContext(args.CpiContext) + // cpi_context
		1 // outputs_merkle_tree_index
}

func (args *FreezeInstructionArgs) marshal(discriminator []byte) []byte {
	return encodeWithPayloadLength(discriminator, GetFreezeInstructionArgsSize(args), func(dst []byte, offset *int) {
		putCompressedProof(dst, args.Proof, offset)
		binary.PutKey32(dst, args.Owner, offset)
		putInputTokenDataVec(dst, args.InputTokenDataWithContext, offset)
		binary.PutOption(dst, args.CpiContext, offset, putCompressedCpiContext)
		binary.PutUint8(dst, args.OutputsMerkleTreeIndex, offset)
	})
}

func (args *FreezeInstructionArgs) unmarshal(data []byte, discriminator []byte) error {
	return decodeWithPayloadLength(data, discriminator, func(src []byte, offset *int) error {
		if err := getCompressedProof(src, &args.Proof, offset); err != nil {
			return err
		}
		if err := binary.GetKey32(src, &args.Owner, offset); err != nil {
			return err
		}
		if err := getInputTokenDataVec(src, &args.InputTokenDataWithContext, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.CpiContext, offset, getCompressedCpiContext); err != nil {
			return err
		}
		return binary.GetUint8(src, &args.OutputsMerkleTreeIndex, offset)
	})
}

// MarshalFreeze and MarshalThaw encode the same payload under different
// discriminators.
func (args *FreezeInstructionArgs) MarshalFreeze() []byte {
	return args.marshal(freezeDiscriminator)
}

func (args *FreezeInstructionArgs) MarshalThaw() []byte {
	return args.marshal(thawDiscriminator)
}

func (args *FreezeInstructionArgs) UnmarshalFreeze(data []byte) error {
	return args.unmarshal(data, freezeDiscriminator)
}

func (args *FreezeInstructionArgs) UnmarshalThaw(data []byte) error {
	return args.unmarshal(data, thawDiscriminator)
}

func (p *Program) freezeAccountMetas(accounts *FreezeInstructionAccounts) []solana.AccountMeta {
	metas := p.genericAccountMetas(&accounts.GenericInstructionAccounts)
	metas = append(metas, solana.NewReadonlyAccountMeta(accounts.Mint, false))
	return append(metas, accounts.RemainingAccounts...)
}

func (p *Program) NewFreezeInstruction(
	accounts *FreezeInstructionAccounts,
	args *FreezeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.MarshalFreeze(),

		// Instruction accounts
		Accounts: p.freezeAccountMetas(accounts),
	}
}

func (p *Program) NewThawInstruction(
	accounts *FreezeInstructionAccounts,
	args *FreezeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.MarshalThaw(),

		// Instruction accounts
		Accounts: p.freezeAccountMetas(accounts),
	}
}

type DecompiledFreeze struct {
	Accounts FreezeInstructionAccounts
	Args     FreezeInstructionArgs

	// IsThaw is set when the instruction unfreezes its inputs.
	IsThaw bool
}

// DecompileFreeze accepts both freeze and thaw instructions.
func (p *Program) DecompileFreeze(m solana.Message, index int) (*DecompiledFreeze, error) {
	i, err := p.getCompiledInstruction(m, index, freezeInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledFreeze
	switch GetInstructionType(i.data) {
	case InstructionTypeFreeze:
		err = res.Args.UnmarshalFreeze(i.data)
	case InstructionTypeThaw:
		res.IsThaw = true
		err = res.Args.UnmarshalThaw(i.data)
	default:
		return nil, solana.ErrIncorrectInstruction
	}
	if err != nil {
		return nil, err
	}

	res.Accounts = FreezeInstructionAccounts{
		GenericInstructionAccounts: decompileGenericAccounts(m, i.accounts, freezeInstructionFixedAccounts),
		Mint:                       i.accounts[genericInstructionFixedAccounts],
	}
	return &res, nil
}
