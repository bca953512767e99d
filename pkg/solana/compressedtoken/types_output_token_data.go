package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// PackedTokenTransferOutputData is a compressed token account being created,
// with its destination tree replaced by a remaining accounts index.
type PackedTokenTransferOutputData struct {
	Owner           ed25519.PublicKey
	Amount          uint64
	Lamports        *uint64
	MerkleTreeIndex uint8
	Tlv             []byte
}

func putPackedTokenTransferOutputData(dst []byte, v PackedTokenTransferOutputData, offset *int) {
	binary.PutKey32(dst, v.Owner, offset)
	binary.PutUint64(dst, v.Amount, offset)
	binary.PutOption(dst, v.Lamports, offset, binary.Uint64Putter)
	binary.PutUint8(dst, v.MerkleTreeIndex, offset)
	putTlv(dst, v.Tlv, offset)
}
func getPackedTokenTransferOutputData(src []byte, dst *PackedTokenTransferOutputData, offset *int) error {
	if err := binary.GetKey32(src, &dst.Owner, offset); err != nil {
		return err
	}
	if err := binary.GetUint64(src, &dst.Amount, offset); err != nil {
		return err
	}
	if err := binary.GetOption(src, &dst.Lamports, offset, binary.Uint64Getter); err != nil {
		return err
	}
	if err := binary.GetUint8(src, &dst.MerkleTreeIndex, offset); err != nil {
		return err
	}
	return getTlv(src, &dst.Tlv, offset)
}

func sizeOfPackedTokenTransferOutputData(v PackedTokenTransferOutputData) int {
	return ed25519.PublicKeySize + // owner
		8 + // amount
		binary.SizeOfOption(v.Lamports, binary.FixedSize[uint64](8)) + // lamports
		1 + // merkle_tree_index
		sizeOfTlv(v.Tlv) // tlv
}
