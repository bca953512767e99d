package solana

import (
	"bytes"
	"crypto/ed25519"
)

// AddressLookupTable is the on chain content of a lookup table as needed to
// compile v0 messages against it.
type AddressLookupTable struct {
	PublicKey ed25519.PublicKey
	Addresses []ed25519.PublicKey
}

// Lookup returns the index of address within the table. Only the first 256
// addresses are addressable from a message.
func (t AddressLookupTable) Lookup(address ed25519.PublicKey) (byte, bool) {
	for i, candidate := range t.Addresses {
		if i > 255 {
			break
		}
		if bytes.Equal(candidate, address) {
			return byte(i), true
		}
	}
	return 0, false
}

func compareAddressLookupTables(a, b AddressLookupTable) int {
	return bytes.Compare(a.PublicKey, b.PublicKey)
}
