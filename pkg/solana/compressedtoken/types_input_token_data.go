package compressedtoken

import (
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// InputTokenDataWithContext is a compressed token account being spent, with
// every account reference replaced by its remaining accounts index.
type InputTokenDataWithContext struct {
	Amount        uint64
	DelegateIndex *uint8
	MerkleContext PackedMerkleContext
	RootIndex     uint16
	Lamports      *uint64
	Tlv           []byte
}

func putInputTokenDataWithContext(dst []byte, v InputTokenDataWithContext, offset *int) {
	binary.PutUint64(dst, v.Amount, offset)
	binary.PutOption(dst, v.DelegateIndex, offset, binary.Uint8Putter)
	putPackedMerkleContext(dst, v.MerkleContext, offset)
	binary.PutUint16(dst, v.RootIndex, offset)
	binary.PutOption(dst, v.Lamports, offset, binary.Uint64Putter)
	putTlv(dst, v.Tlv, offset)
}
func getInputTokenDataWithContext(src []byte, dst *InputTokenDataWithContext, offset *int) error {
	if err := binary.GetUint64(src, &dst.Amount, offset); err != nil {
		return err
	}
	if err := binary.GetOption(src, &dst.DelegateIndex, offset, binary.Uint8Getter); err != nil {
		return err
	}
	if err := getPackedMerkleContext(src, &dst.MerkleContext, offset); err != nil {
		return err
	}
	if err := binary.GetUint16(src, &dst.RootIndex, offset); err != nil {
		return err
	}
	if err := binary.GetOption(src, &dst.Lamports, offset, binary.Uint64Getter); err != nil {
		return err
	}
	return getTlv(src, &dst.Tlv, offset)
}

func sizeOfInputTokenDataWithContext(v InputTokenDataWithContext) int {
	return 8 + // amount
		binary.SizeOfOption(v.DelegateIndex, binary.FixedSize[uint8](1)) + // delegate_index
		PackedMerkleContextSize + // merkle_context
		2 + // root_index
		binary.SizeOfOption(v.Lamports, binary.FixedSize[uint64](8)) + // lamports
		sizeOfTlv(v.Tlv) // tlv
}

func putInputTokenDataVec(dst []byte, v []InputTokenDataWithContext, offset *int) {
	binary.PutVec(dst, v, offset, putInputTokenDataWithContext)
}
func getInputTokenDataVec(src []byte, dst *[]InputTokenDataWithContext, offset *int) error {
	return binary.GetVec(src, dst, offset, getInputTokenDataWithContext)
}
func sizeOfInputTokenDataVec(v []InputTokenDataWithContext) int {
	return binary.SizeOfVec(v, sizeOfInputTokenDataWithContext)
}
