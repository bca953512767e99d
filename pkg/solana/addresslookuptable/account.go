package address_lookup_table

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

var (
	ErrInvalidAccountSize = errors.New("invalid address lookup table account size")
	ErrInvalidAccountType = errors.New("invalid account type")
)

const (
	lookupTableAccountType = 1

	metadataSize = 56
	maxAddresses = 256
)

// AddressLookupTableAccount is the on-chain state of a lookup table.
type AddressLookupTableAccount struct {
	DeactivationSlot           uint64
	LastExtendedSlot           uint64
	LastExtendedSlotStartIndex uint8
	Authority                  *ed25519.PublicKey
	Addresses                  []ed25519.PublicKey
}

func (obj *AddressLookupTableAccount) Unmarshal(data []byte) error {
	if len(data) < metadataSize {
		return ErrInvalidAccountSize
	}

	var accountType uint32
	var offset int
	if err := binary.GetUint32(data, &accountType, &offset); err != nil {
		return err
	}
	if accountType != lookupTableAccountType {
		return ErrInvalidAccountType
	}

	if err := binary.GetUint64(data, &obj.DeactivationSlot, &offset); err != nil {
		return err
	}
	if err := binary.GetUint64(data, &obj.LastExtendedSlot, &offset); err != nil {
		return err
	}
	if err := binary.GetUint8(data, &obj.LastExtendedSlotStartIndex, &offset); err != nil {
		return err
	}
	if err := binary.GetOption(data, &obj.Authority, &offset, binary.Key32Getter); err != nil {
		return err
	}

	offset = metadataSize

	addressBufferSize := len(data) - offset
	if addressBufferSize%ed25519.PublicKeySize != 0 || addressBufferSize/ed25519.PublicKeySize > maxAddresses {
		return ErrInvalidAccountSize
	}

	obj.Addresses = make([]ed25519.PublicKey, addressBufferSize/ed25519.PublicKeySize)
	for i := range obj.Addresses {
		if err := binary.GetKey32(data, &obj.Addresses[i], &offset); err != nil {
			return err
		}
	}

	return nil
}

// ToAddressLookupTable returns the table in the form transactions compile
// against.
func (obj *AddressLookupTableAccount) ToAddressLookupTable(address ed25519.PublicKey) solana.AddressLookupTable {
	return solana.AddressLookupTable{
		PublicKey: address,
		Addresses: obj.Addresses,
	}
}

func (obj *AddressLookupTableAccount) String() string {
	authority := "<nil>"
	if obj.Authority != nil {
		authority = base58.Encode(*obj.Authority)
	}

	return fmt.Sprintf(
		"AddressLookupTableAccount{deactivation_slot=%d,last_extended_slot=%d,authority=%s,addresses=%d}",
		obj.DeactivationSlot,
		obj.LastExtendedSlot,
		authority,
		len(obj.Addresses),
	)
}
