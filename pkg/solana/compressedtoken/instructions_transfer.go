package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const transferInstructionFixedAccounts = 13

// TransferInstructionArgs covers transfers as well as compression into and
// decompression out of an SPL token account.
type TransferInstructionArgs struct {
	Proof                                *CompressedProof
	Mint                                 ed25519.PublicKey
	DelegatedTransfer                    *DelegatedTransfer
	InputTokenDataWithContext            []InputTokenDataWithContext
	OutputCompressedAccounts             []PackedTokenTransferOutputData
	IsCompress                           bool
	CompressOrDecompressAmount           *uint64
	CpiContext                           *CompressedCpiContext
	LamportsChangeAccountMerkleTreeIndex *uint8
}

type TransferInstructionAccounts struct {
	FeePayer                         ed25519.PublicKey
	Authority                        ed25519.PublicKey
	CpiAuthorityPda                  ed25519.PublicKey
	TokenPoolPda                     *ed25519.PublicKey
	CompressOrDecompressTokenAccount *ed25519.PublicKey
	TokenProgram                     *ed25519.PublicKey

	// RemainingAccounts is the packed account table referenced by index
	// from the instruction arguments.
	RemainingAccounts []solana.AccountMeta
}

// GetTransferInstructionArgsSize returns the size of the encoded arguments,
// excluding the discriminator and payload length.
func GetTransferInstructionArgsSize(args *TransferInstructionArgs) int {
	return binary.SizeOfOption(args.Proof, binary.FixedSize[CompressedProof](CompressedProofSize)) + // proof
		ed25519.PublicKeySize + // mint
		binary.SizeOfOption(args.DelegatedTransfer, sizeOfDelegatedTransfer) + // delegated_transfer
		sizeOfInputTokenDataVec(args.InputTokenDataWithContext) + // input_token_data_with_context
		binary.SizeOfVec(args.OutputCompressedAccounts, sizeOfPackedTokenTransferOutputData) + // output_compressed_accounts
		1 + // is_compress
		binary.SizeOfOption(args.CompressOrDecompressAmount, binary.FixedSize[uint64](8)) + // compress_or_decompress_amount
		sizeOfOptionalCpiContext(args.CpiContext) + // cpi_context
		binary.SizeOfOption(args.LamportsChangeAccountMerkleTreeIndex, binary.FixedSize[uint8](1)) // lamports_change_account_merkle_tree_index
}

// Marshal encodes the full instruction data.
func (args *TransferInstructionArgs) Marshal() []byte {
	return encodeWithPayloadLength(transferDiscriminator, GetTransferInstructionArgsSize(args), func(dst []byte, offset *int) {
		binary.PutOption(dst, args.Proof, offset, putCompressedProof)
		binary.PutKey32(dst, args.Mint, offset)
		binary.PutOption(dst, args.DelegatedTransfer, offset, putDelegatedTransfer)
		putInputTokenDataVec(dst, args.InputTokenDataWithContext, offset)
		binary.PutVec(dst, args.OutputCompressedAccounts, offset, putPackedTokenTransferOutputData)
		binary.PutBool(dst, args.IsCompress, offset)
		binary.PutOption(dst, args.CompressOrDecompressAmount, offset, binary.Uint64Putter)
		binary.PutOption(dst, args.CpiContext, offset, putCompressedCpiContext)
		binary.PutOption(dst, args.LamportsChangeAccountMerkleTreeIndex, offset, binary.Uint8Putter)
	})
}

// Unmarshal decodes full instruction data produced by Marshal.
func (args *TransferInstructionArgs) Unmarshal(data []byte) error {
	return decodeWithPayloadLength(data, transferDiscriminator, func(src []byte, offset *int) error {
		if err := binary.GetOption(src, &args.Proof, offset, getCompressedProof); err != nil {
			return err
		}
		if err := binary.GetKey32(src, &args.Mint, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.DelegatedTransfer, offset, getDelegatedTransfer); err != nil {
			return err
		}
		if err := getInputTokenDataVec(src, &args.InputTokenDataWithContext, offset); err != nil {
			return err
		}
		if err := binary.GetVec(src, &args.OutputCompressedAccounts, offset, getPackedTokenTransferOutputData); err != nil {
			return err
		}
		if err := binary.GetBool(src, &args.IsCompress, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.CompressOrDecompressAmount, offset, binary.Uint64Getter); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.CpiContext, offset, getCompressedCpiContext); err != nil {
			return err
		}
		return binary.GetOption(src, &args.LamportsChangeAccountMerkleTreeIndex, offset, binary.Uint8Getter)
	})
}

func (p *Program) NewTransferInstruction(
	accounts *TransferInstructionAccounts,
	args *TransferInstructionArgs,
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
	}
	metas = append(metas, p.lightSystemAccountMetas()...)
	metas = append(metas,
		solana.NewReadonlyAccountMeta(p.ID, false),
		p.getOptionalAccountMeta(accounts.TokenPoolPda, true),
		p.getOptionalAccountMeta(accounts.CompressOrDecompressTokenAccount, true),
		p.getOptionalAccountMeta(accounts.TokenProgram, false),
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

type DecompiledTransfer struct {
	Accounts TransferInstructionAccounts
	Args     TransferInstructionArgs
}

func (p *Program) DecompileTransfer(m solana.Message, index int) (*DecompiledTransfer, error) {
	i, err := p.getCompiledInstruction(m, index, transferInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledTransfer
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}

	res.Accounts = p.decompileTransferAccounts(m, i.accounts)
	return &res, nil
}

func (p *Program) decompileTransferAccounts(m solana.Message, accounts []ed25519.PublicKey) TransferInstructionAccounts {
	return TransferInstructionAccounts{
		FeePayer:                         accounts[0],
		Authority:                        accounts[1],
		CpiAuthorityPda:                  accounts[2],
		TokenPoolPda:                     p.getOptionalAccount(accounts[9]),
		CompressOrDecompressTokenAccount: p.getOptionalAccount(accounts[10]),
		TokenProgram:                     p.getOptionalAccount(accounts[11]),
		RemainingAccounts:                remainingAccountMetas(m, accounts[transferInstructionFixedAccounts:]),
	}
}
