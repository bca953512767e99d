package compressedtoken

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

type AccountState uint8

const (
	AccountStateInitialized AccountState = iota
	AccountStateFrozen
)

func (s AccountState) String() string {
	switch s {
	case AccountStateInitialized:
		return "initialized"
	case AccountStateFrozen:
		return "frozen"
	}
	return "unknown"
}

// Compressed token accounts carry one of these discriminators depending on
// whether their tree is a v1 or v2 state tree.
var (
	TokenDataDiscriminator   = []byte{2, 0, 0, 0, 0, 0, 0, 0}
	TokenDataV2Discriminator = []byte{0, 0, 0, 0, 0, 0, 0, 3}
)

// IsTokenDataDiscriminator reports whether a compressed account discriminator
// identifies token data.
func IsTokenDataDiscriminator(discriminator []byte) bool {
	return bytes.Equal(discriminator, TokenDataDiscriminator) || bytes.Equal(discriminator, TokenDataV2Discriminator)
}

// TokenData is the state stored in a compressed token account.
type TokenData struct {
	Mint     ed25519.PublicKey
	Owner    ed25519.PublicKey
	Amount   uint64
	Delegate *ed25519.PublicKey
	State    AccountState
	Tlv      []byte
}

func (obj *TokenData) IsFrozen() bool {
	return obj.State == AccountStateFrozen
}

func (obj *TokenData) Marshal() []byte {
	size := 2*ed25519.PublicKeySize +
		8 +
		binary.SizeOfOption(obj.Delegate, binary.FixedSize[ed25519.PublicKey](ed25519.PublicKeySize)) +
		1 +
		sizeOfTlv(obj.Tlv)

	data := make([]byte, size)

	var offset int
	binary.PutKey32(data, obj.Mint, &offset)
	binary.PutKey32(data, obj.Owner, &offset)
	binary.PutUint64(data, obj.Amount, &offset)
	binary.PutOption(data, obj.Delegate, &offset, binary.Key32Putter)
	binary.PutUint8(data, uint8(obj.State), &offset)
	putTlv(data, obj.Tlv, &offset)

	return data
}

// Unmarshal decodes token data without its discriminator.
func (obj *TokenData) Unmarshal(data []byte) error {
	return decodeExact(data, 0, func(src []byte, offset *int) error {
		if err := binary.GetKey32(src, &obj.Mint, offset); err != nil {
			return err
		}
		if err := binary.GetKey32(src, &obj.Owner, offset); err != nil {
			return err
		}
		if err := binary.GetUint64(src, &obj.Amount, offset); err != nil {
			return err
		}
		if err := binary.GetOption(src, &obj.Delegate, offset, binary.Key32Getter); err != nil {
			return err
		}

		var state uint8
		if err := binary.GetUint8(src, &state, offset); err != nil {
			return err
		}
		if state > uint8(AccountStateFrozen) {
			return errors.Errorf("invalid account state %d", state)
		}
		obj.State = AccountState(state)

		return getTlv(src, &obj.Tlv, offset)
	})
}

func (obj *TokenData) String() string {
	delegate := "<nil>"
	if obj.Delegate != nil {
		delegate = base58.Encode(*obj.Delegate)
	}

	return fmt.Sprintf(
		"TokenData{mint=%s,owner=%s,amount=%d,delegate=%s,state=%s}",
		base58.Encode(obj.Mint),
		base58.Encode(obj.Owner),
		obj.Amount,
		delegate,
		obj.State,
	)
}
