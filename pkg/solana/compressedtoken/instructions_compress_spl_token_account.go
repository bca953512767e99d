package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// CompressSplTokenAccountInstructionArgs compresses the full balance of an
// SPL token account to Owner, leaving RemainingAmount behind when set. The
// token account is not closed.
type CompressSplTokenAccountInstructionArgs struct {
	Owner           ed25519.PublicKey
	RemainingAmount *uint64
	CpiContext      *CompressedCpiContext
}

func GetCompressSplTokenAccountInstructionArgsSize(args *CompressSplTokenAccountInstructionArgs) int {
	return ed25519.PublicKeySize + // owner
		binary.SizeOfOption(args.RemainingAmount, binary.FixedSize[uint64](8)) + // remaining_amount
		sizeOfOptionalCpiContext(args.CpiContext) // cpi_context
}

func (args *CompressSplTokenAccountInstructionArgs) Marshal() []byte {
	data := make([]byte, DiscriminatorSize+GetCompressSplTokenAccountInstructionArgsSize(args))

	var offset int
	putDiscriminator(data, compressSplTokenAccountDiscriminator, &offset)
	binary.PutKey32(data, args.Owner, &offset)
	binary.PutOption(data, args.RemainingAmount, &offset, binary.Uint64Putter)
	binary.PutOption(data, args.CpiContext, &offset, putCompressedCpiContext)

	return data
}

func (args *CompressSplTokenAccountInstructionArgs) Unmarshal(data []byte) error {
	var offset int
	if err := expectDiscriminator(data, compressSplTokenAccountDiscriminator, &offset); err != nil {
		return err
	}

	return decodeExact(data, offset, func(src []byte, offset *int) error {
		if err := binary.GetKey32(src, &args.Owner, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &args.RemainingAmount, offset, binary.Uint64Getter); err != nil {
			return err
		}
		return binary.GetOption(src, &args.CpiContext, offset, getCompressedCpiContext)
	})
}

// NewCompressSplTokenAccountInstruction uses the transfer account layout.
// CompressOrDecompressTokenAccount is the SPL token account being compressed
// and RemainingAccounts must hold the output state tree.
func (p *Program) NewCompressSplTokenAccountInstruction(
	accounts *TransferInstructionAccounts,
	args *CompressSplTokenAccountInstructionArgs,
) solana.Instruction {
	ixn := p.NewTransferInstruction(accounts, &TransferInstructionArgs{})
	ixn.Data = args.Marshal()
	return ixn
}

type DecompiledCompressSplTokenAccount struct {
	Accounts TransferInstructionAccounts
	Args     CompressSplTokenAccountInstructionArgs
}

func (p *Program) DecompileCompressSplTokenAccount(m solana.Message, index int) (*DecompiledCompressSplTokenAccount, error) {
	i, err := p.getCompiledInstruction(m, index, transferInstructionFixedAccounts)
	if err != nil {
		return nil, err
	}

	var res DecompiledCompressSplTokenAccount
	if err := res.Args.Unmarshal(i.data); err != nil {
		return nil, err
	}
	res.Accounts = p.decompileTransferAccounts(m, i.accounts)
	return &res, nil
}
