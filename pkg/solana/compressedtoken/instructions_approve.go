package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// ApproveInstructionArgs delegates DelegatedAmount of the inputs to Delegate.
// The delegated amount lands in a new output owned by the input owner and the
// remainder in a change output.
type ApproveInstructionArgs struct {
	Proof                        CompressedProof
	Mint                         ed25519.PublicKey
	InputTokenDataWithContext    []InputTokenDataWithContext
	CpiContext                   *CompressedCpiContext
	Delegate                     ed25519.PublicKey
	DelegatedAmount              uint64
	DelegateMerkleTreeIndex      uint8
	ChangeAccountMerkleTreeIndex uint8
	DelegateLamports             *uint64
}

func GetApproveInstructionArgsSize(args *ApproveInstructionArgs) int {
	return CompressedProofSize + // proof
		ed25519.PublicKeySize + // mint
		sizeOfInputTokenDataVec(args.InputTokenDataWithContext) + // input_token_data_with_context
		sizeOfOptionalCpiContext(args.CpiContext) + // cpi_context
		ed25519.PublicKeySize + // delegate
		8 + // delegated_amount
		1 + // delegate_merkle_tree_index
		1 + // change_account_merkle_tree_index
		binary.SizeOfOption(args.DelegateLamports, binary.FixedSize[uint64](8)) // delegate_lamports
}

func (args *ApproveInstructionArgs) Marshal() []byte {
	return encodeWithPayloadLength(approveDiscriminator, GetApproveInstructionArgsSize(args), func(dst []byte, offset *int) {
		putCompressedProof(dst, args.Proof, offset)
		binary.PutKey32(dst, args.Mint, offset)
		putInputTokenDataVec(dst, args.InputTokenDataWithContext, offset)
		binary.PutOption(dst, args.CpiContext, offset, putCompressedCpiContext)
		binary.PutKey32(dst, args.Delegate, offset)
		binary.PutUint64(dst, args.DelegatedAmount, offset)
		binary.PutUint8(dst, args.DelegateMerkleTreeIndex, offset)
		binary.PutUint8(dst, args.ChangeAccountMerkleTreeIndex, offset)
		binary.PutOption(dst, args.DelegateLamports, offset, binary.Uint64Putter)
	})
}

func (args *ApproveInstructionArgs) Unmarshal(data []byte) error {
	return decodeWithPayloadLength(data, approveDiscriminator, func(src []byte, offset *int) error {
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
		if err := binary.GetKey32(src, &args.Delegate, offset); err != nil {
			return err
		}
		if err := binary.GetUint64(src, &args.DelegatedAmount, offset); err != nil {
			return err
		}
		if err := binary.GetUint8(src, &args.DelegateMerkleTreeIndex, offset); err != nil {
			return err
		}
		if err := binary.GetUint8(src, &args.ChangeAccountMerkleTreeIndex, offset); err != nil {
			return err
		}
		return binary.GetOption(src, &args.DelegateLamports, offset, binary.Uint64Getter)
	})
}

func (p *Program) NewApproveInstruction(
	accounts *GenericInstructionAccounts,
	args *ApproveInstructionArgs,
) solana.Instruction {
	return solana.Instruction{
		Program: p.ID,

		// Instruction args
		Data: args.Marshal(),

		// Instruction accounts
		Accounts: append(p.genericAccountMetas(accounts), accounts.RemainingAccounts...),
	}
}

type DecompiledApprove struct {
	Accounts GenericInstructionAccounts
	Args     ApproveInstructionArgs
}

func (p *Program) DecompileApprove(m solana.Message, index int) (*DecompiledApprove, error) {
	i, err := p.getCompiledInstruction(m, index, genericInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledApprove
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}
	res.Accounts = decompileGenericAccounts(m, i.accounts, genericInstructionFixedAccounts)
	return &res, nil
}
