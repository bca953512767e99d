package compressedtoken

import (
	"crypto/ed25519"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// DelegatedTransfer marks a transfer signed by the delegate of the inputs on
// behalf of Owner. The change output, if any, stays delegated when
// DelegateChangeAccountIndex is set.
type DelegatedTransfer struct {
	Owner                      ed25519.PublicKey
	DelegateChangeAccountIndex *uint8
}

func putDelegatedTransfer(dst []byte, v DelegatedTransfer, offset *int) {
	binary.PutKey32(dst, v.Owner, offset)
	binary.PutOption(dst, v.DelegateChangeAccountIndex, offset, binary.Uint8Putter)
}
func getDelegatedTransfer(src []byte, dst *DelegatedTransfer, offset *int) error {
	if err := binary.GetKey32(src, &dst.Owner, offset); err != nil {
		return err
	}
	return binary.GetOption(src, &dst.DelegateChangeAccountIndex, offset, binary.Uint8Getter)
}

func sizeOfDelegatedTransfer(v DelegatedTransfer) int {
	return ed25519.PublicKeySize + binary.SizeOfOption(v.DelegateChangeAccountIndex, binary.FixedSize[uint8](1))
}
