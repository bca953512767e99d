package address_lookup_table

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// GetAddress derives the lookup table created by authority at recentSlot.
func GetAddress(authority ed25519.PublicKey, recentSlot uint64) (ed25519.PublicKey, uint8, error) {
	recentSlotBytes := make([]byte, 8)
	var offset int
	binary.PutUint64(recentSlotBytes, recentSlot, &offset)

	return solana.FindProgramAddress(
		ProgramKey,
		authority,
		recentSlotBytes,
	)
}
