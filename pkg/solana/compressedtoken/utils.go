package compressedtoken

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const (
	DiscriminatorSize = 8

	// PayloadLengthSize is the size of the length field written after the
	// discriminator by instructions whose argument is an opaque byte vector.
	PayloadLengthSize = 4
)

func putDiscriminator(dst []byte, v []byte, offset *int) {
	copy(dst[*offset:], v)
	*offset += DiscriminatorSize
}

func expectDiscriminator(src []byte, expected []byte, offset *int) error {
	if len(src)-*offset < DiscriminatorSize {
		return errors.Wrap(ErrDecodeLayoutMismatch, "missing discriminator")
	}
	if !bytes.Equal(src[*offset:*offset+DiscriminatorSize], expected) {
		return errors.Wrapf(ErrDecodeLayoutMismatch, "unexpected discriminator %x", src[*offset:*offset+DiscriminatorSize])
	}
	*offset += DiscriminatorSize
	return nil
}

// encodeWithPayloadLength lays out discriminator, a u32 payload length and
// the payload produced by put.
func encodeWithPayloadLength(discriminator []byte, payloadSize int, put func(dst []byte, offset *int)) []byte {
	data := make([]byte, DiscriminatorSize+PayloadLengthSize+payloadSize)

	var offset int
	putDiscriminator(data, discriminator, &offset)
	binary.PutUint32(data, uint32(payloadSize), &offset)
	put(data, &offset)

	return data
}

// decodeWithPayloadLength is the inverse of encodeWithPayloadLength. The
// payload must exactly fill the declared length.
func decodeWithPayloadLength(data []byte, discriminator []byte, get func(src []byte, offset *int) error) error {
	var offset int
	if err := expectDiscriminator(data, discriminator, &offset); err != nil {
		return err
	}

	var length uint32
	if err := binary.GetUint32(data, &length, &offset); err != nil {
		return errors.Wrap(ErrDecodeLayoutMismatch, err.Error())
	}
	if int(length) != len(data)-offset {
		return errors.Wrapf(ErrDecodeLayoutMismatch, "payload length %d does not match remaining %d bytes", length, len(data)-offset)
	}

	return decodeExact(data, offset, get)
}

// decodeExact runs get from offset and requires it to consume every byte.
func decodeExact(data []byte, offset int, get func(src []byte, offset *int) error) error {
	if err := get(data, &offset); err != nil {
		return errors.Wrap(ErrDecodeLayoutMismatch, err.Error())
	}
	if err := binary.ExpectEnd(data, offset); err != nil {
		return errors.Wrap(ErrDecodeLayoutMismatch, err.Error())
	}
	return nil
}

// putTlv and getTlv encode Option<Vec<u8>>, where nil is None.
func putTlv(dst []byte, v []byte, offset *int) {
	if v == nil {
		binary.PutUint8(dst, 0, offset)
		return
	}
	binary.PutUint8(dst, 1, offset)
	binary.PutBytes(dst, v, offset)
}

func getTlv(src []byte, dst *[]byte, offset *int) error {
	var flag uint8
	if err := binary.GetUint8(src, &flag, offset); err != nil {
		return err
	}
	switch flag {
	case 0:
		*dst = nil
		return nil
	case 1:
		if err := binary.GetBytes(src, dst, offset); err != nil {
			return err
		}
		if *dst == nil {
			*dst = []byte{}
		}
		return nil
	default:
		return errors.Wrapf(binary.ErrInvalidOptionFlag, "got %d", flag)
	}
}

func sizeOfTlv(v []byte) int {
	if v == nil {
		return binary.OptionFlagSize
	}
	return binary.OptionFlagSize + binary.SizeOfBytes(v)
}

func keysEqual(a, b ed25519.PublicKey) bool {
	return bytes.Equal(a, b)
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
