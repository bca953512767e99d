package compressedtoken

import (
	"fmt"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const PackedMerkleContextSize = (1 + // merkle_tree_pubkey_index
	1 + // queue_pubkey_index
	4 + // leaf_index
	1) // prove_by_index

// PackedMerkleContext locates an input leaf using indices into the
// instruction's remaining accounts.
type PackedMerkleContext struct {
	MerkleTreePubkeyIndex uint8
	QueuePubkeyIndex      uint8
	LeafIndex             uint32
	ProveByIndex          bool
}

func (obj PackedMerkleContext) String() string {
	return fmt.Sprintf(
		"PackedMerkleContext{tree=%d,queue=%d,leaf_index=%d,prove_by_index=%v}",
		obj.MerkleTreePubkeyIndex,
		obj.QueuePubkeyIndex,
		obj.LeafIndex,
		obj.ProveByIndex,
	)
}

func putPackedMerkleContext(dst []byte, v PackedMerkleContext, offset *int) {
	binary.PutUint8(dst, v.MerkleTreePubkeyIndex, offset)
	binary.PutUint8(dst, v.QueuePubkeyIndex, offset)
	binary.PutUint32(dst, v.LeafIndex, offset)
	binary.PutBool(dst, v.ProveByIndex, offset)
}
func getPackedMerkleContext(src []byte, dst *PackedMerkleContext, offset *int) error {
	if err := binary.GetUint8(src, &dst.MerkleTreePubkeyIndex, offset); err != nil {
		return err
	}
	if err := binary.GetUint8(src, &dst.QueuePubkeyIndex, offset); err != nil {
		return err
	}
	if err := binary.GetUint32(src, &dst.LeafIndex, offset); err != nil {
		return err
	}
	return binary.GetBool(src, &dst.ProveByIndex, offset)
}
