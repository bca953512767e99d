package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// RevokeInstructionArgs merges delegated inputs into a single undelegated
// output.
type RevokeInstructionArgs struct {
	Proof                        CompressedProof
	Mint                         ed25519.PublicKey
	InputTokenDataWithContext    []InputTokenDataWithContext
	CpiContext                   *CompressedCpiContext
	OutputAccountMerkleTreeIndex uint8
}

func GetRevokeInstructionArgsSize(args *RevokeInstructionArgs) int {
	return CompressedProofSize + // proof
		ed25519.PublicKeySize + // mint
		sizeOfInputTokenDataVec(args.InputTokenDataWithContext) + // input_token_data_with_context
		sizeOfOptionalCpiContext(args.CpiContext) + // cpi_context
		1 // output_account_merkle_tree_index
}

func (args *RevokeInstructionArgs) Marshal() []byte {
	return encodeWithPayloadLength(revokeDiscriminator, GetRevokeInstructionArgsSize(args), func(dst []byte, offset *int) {
		putCompressedProof(dst, args.Proof, offset)
		binary.PutKey32(dst, args.Mint, offset)
		putInputTokenDataVec(dst, args.InputTokenDataWithContext, offset)
		binary.PutOption(dst, args.CpiContext, offset, putCompressedCpiContext)
		binary.PutUint8(dst, args.OutputAccountMerkleTreeIndex, offset)
	})
}

func (args *RevokeInstructionArgs) Unmarshal(data []byte) error {
	return decodeWithPayloadLength(data, revokeDiscriminator, func(src []byte, offset *int) error {
		if err := getCompressedProof(src, &args.Proof, offset); err != nil {
			return err
		}
		if err := binary.GetKey32(src, &args.Mint, offset); err != nil {
			return err
		}
		if err := getInputTokenDataVec(src, &args.InputTokenDataWithContext, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.CpiContext, offset, getCompressedCpiContext); err != nil {
			return err
		}
		return binary.GetUint8(src, &args.OutputAccountMerkleTreeIndex, offset)
	})
}

func (p *Program) NewRevokeInstruction(
	accounts *GenericInstructionAccounts,
	args *RevokeInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: append(p.genericAccountMetas(accounts), accounts.RemainingAccounts...),
	}
}

type DecompiledRevoke struct {
	Accounts GenericInstructionAccounts
	Args     RevokeInstructionArgs
}

func (p *Program) DecompileRevoke(m solana.Message, index int) (*DecompiledRevoke, error) {
	i, err := p.getCompiledInstruction(m, index, genericInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledRevoke
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}
	res.Accounts = decompileGenericAccounts(m, i.accounts, genericInstructionFixedAccounts)
	return &res, nil
}
