package compressedtoken

import (
	"encoding/hex"
	"fmt"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const CompressedProofSize = (32 + // a
	64 + // b
	32) // c

// CompressedProof is a compressed Groth16 validity proof. It's carried
// through unchanged.
type CompressedProof struct {
	A [32]byte
	B [64]byte
	C [32]byte
}

// IsZero reports whether the proof is the all zero placeholder instructions
// use when every input is proven by index.
func (obj CompressedProof) IsZero() bool {
	return obj == CompressedProof{}
}

func (obj CompressedProof) String() string {
	return fmt.Sprintf(
		"CompressedProof{a=%s,b=%s,c=%s}",
		hex.EncodeToString(obj.A[:]),
		hex.EncodeToString(obj.B[:]),
		hex.EncodeToString(obj.C[:]),
	)
}

func putCompressedProof(dst []byte, v CompressedProof, offset *int) {
	binary.PutFixedBytes(dst, v.A[:], offset)
	binary.PutFixedBytes(dst, v.B[:], offset)
	binary.PutFixedBytes(dst, v.C[:], offset)
}
func getCompressedProof(src []byte, dst *CompressedProof, offset *int) error {
	if err := binary.GetFixedBytes(src, dst.A[:], offset); err != nil {
		return err
	}
	if err := binary.GetFixedBytes(src, dst.B[:], offset); err != nil {
		return err
	}
	return binary.GetFixedBytes(src, dst.C[:], offset)
}
