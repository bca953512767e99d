package binary

import (
	"crypto/ed25519"
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// OptionFlagSize is the size of the presence flag that prefixes an
	// optional value.
	OptionFlagSize = 1

	// LengthPrefixSize is the size of the little-endian length that prefixes
	// vectors and byte strings.
	LengthPrefixSize = 4
)

var (
	ErrBufferTooShort     = errors.New("buffer too short")
	ErrInvalidOptionFlag  = errors.New("invalid option flag")
	ErrInvalidBool        = errors.New("invalid bool value")
	ErrLengthOutOfBounds  = errors.New("length prefix exceeds remaining buffer")
	ErrUnexpectedTrailing = errors.New("unexpected trailing bytes")
)

// Putter writes v into dst at offset and advances offset.
type Putter[T any] func(dst []byte, v T, offset *int)

// Getter reads a value from src at offset into dst and advances offset.
type Getter[T any] func(src []byte, dst *T, offset *int) error

// Sizer returns the encoded size of v.
type Sizer[T any] func(v T) int

func PutUint8(dst []byte, v uint8, offset *int) {
	dst[*offset] = v
	*offset += 1
}

func PutBool(dst []byte, v bool, offset *int) {
	if v {
		dst[*offset] = 1
	} else {
		dst[*offset] = 0
	}
	*offset += 1
}

func PutUint16(dst []byte, v uint16, offset *int) {
	binary.LittleEndian.PutUint16(dst[*offset:], v)
	*offset += 2
}

func PutUint32(dst []byte, v uint32, offset *int) {
	binary.LittleEndian.PutUint32(dst[*offset:], v)
	*offset += 4
}

func PutUint64(dst []byte, v uint64, offset *int) {
	binary.LittleEndian.PutUint64(dst[*offset:], v)
	*offset += 8
}

// PutKey32 writes a 32 byte public key. A nil key is written as all zeros.
func PutKey32(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:*offset+ed25519.PublicKeySize], v)
	*offset += ed25519.PublicKeySize
}

// PutFixedBytes writes v without a length prefix.
func PutFixedBytes(dst []byte, v []byte, offset *int) {
	copy(dst[*offset:], v)
	*offset += len(v)
}

// PutBytes writes v with a 4 byte length prefix.
func PutBytes(dst []byte, v []byte, offset *int) {
	PutUint32(dst, uint32(len(v)), offset)
	PutFixedBytes(dst, v, offset)
}

// PutOption writes the presence flag followed by the value, if any.
func PutOption[T any](dst []byte, v *T, offset *int, put Putter[T]) {
	if v == nil {
		PutUint8(dst, 0, offset)
		return
	}
	PutUint8(dst, 1, offset)
	put(dst, *v, offset)
}

// PutVec writes the 4 byte element count followed by every element.
func PutVec[T any](dst []byte, v []T, offset *int, put Putter[T]) {
	PutUint32(dst, uint32(len(v)), offset)
	for _, item := range v {
		put(dst, item, offset)
	}
}

func SizeOfBytes(v []byte) int {
	return LengthPrefixSize + len(v)
}

func SizeOfOption[T any](v *T, size Sizer[T]) int {
	if v == nil {
		return OptionFlagSize
	}
	return OptionFlagSize + size(*v)
}

func SizeOfVec[T any](v []T, size Sizer[T]) int {
	total := LengthPrefixSize
	for _, item := range v {
		total += size(item)
	}
	return total
}

// FixedSize returns a Sizer for types whose encoding never varies.
func FixedSize[T any](n int) Sizer[T] {
	return func(T) int { return n }
}

func checkRemaining(src []byte, offset int, n int) error {
	if offset < 0 || n < 0 || len(src)-offset < n {
		return errors.Wrapf(ErrBufferTooShort, "need %d bytes at offset %d, have %d", n, offset, len(src)-offset)
	}
	return nil
}

func GetUint8(src []byte, dst *uint8, offset *int) error {
	if err := checkRemaining(src, *offset, 1); err != nil {
		return err
	}
	*dst = src[*offset]
	*offset += 1
	return nil
}

func GetBool(src []byte, dst *bool, offset *int) error {
	var v uint8
	if err := GetUint8(src, &v, offset); err != nil {
		return err
	}
	switch v {
	case 0:
		*dst = false
	case 1:
		*dst = true
	default:
		return errors.Wrapf(ErrInvalidBool, "got %d at offset %d", v, *offset-1)
	}
	return nil
}

func GetUint16(src []byte, dst *uint16, offset *int) error {
	if err := checkRemaining(src, *offset, 2); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint16(src[*offset:])
	*offset += 2
	return nil
}

func GetUint32(src []byte, dst *uint32, offset *int) error {
	if err := checkRemaining(src, *offset, 4); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint32(src[*offset:])
	*offset += 4
	return nil
}

func GetUint64(src []byte, dst *uint64, offset *int) error {
	if err := checkRemaining(src, *offset, 8); err != nil {
		return err
	}
	*dst = binary.LittleEndian.Uint64(src[*offset:])
	*offset += 8
	return nil
}

func GetKey32(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if err := checkRemaining(src, *offset, ed25519.PublicKeySize); err != nil {
		return err
	}
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
	return nil
}

// GetFixedBytes fills dst entirely from src.
func GetFixedBytes(src []byte, dst []byte, offset *int) error {
	if err := checkRemaining(src, *offset, len(dst)); err != nil {
		return err
	}
	copy(dst, src[*offset:*offset+len(dst)])
	*offset += len(dst)
	return nil
}

// GetBytes reads a length prefixed byte string. A zero length string is
// decoded as nil.
func GetBytes(src []byte, dst *[]byte, offset *int) error {
	var length uint32
	if err := GetUint32(src, &length, offset); err != nil {
		return err
	}
	if err := checkRemaining(src, *offset, int(length)); err != nil {
		return errors.Wrap(ErrLengthOutOfBounds, err.Error())
	}
	if length == 0 {
		*dst = nil
		return nil
	}
	*dst = make([]byte, length)
	copy(*dst, src[*offset:])
	*offset += int(length)
	return nil
}

func GetOption[T any](src []byte, dst **T, offset *int, get Getter[T]) error {
	var flag uint8
	if err := GetUint8(src, &flag, offset); err != nil {
		return err
	}
	switch flag {
	case 0:
		*dst = nil
		return nil
	case 1:
		var v T
		if err := get(src, &v, offset); err != nil {
			return err
		}
		*dst = &v
		return nil
	default:
		return errors.Wrapf(ErrInvalidOptionFlag, "got %d at offset %d", flag, *offset-1)
	}
}

// GetVec reads a length prefixed vector. Every element occupies at least one
// byte, so a count larger than the remaining buffer is rejected before any
// allocation. A zero length vector is decoded as nil.
func GetVec[T any](src []byte, dst *[]T, offset *int, get Getter[T]) error {
	var length uint32
	if err := GetUint32(src, &length, offset); err != nil {
		return err
	}
	if int(length) > len(src)-*offset {
		return errors.Wrapf(ErrLengthOutOfBounds, "vector of %d elements at offset %d", length, *offset)
	}
	if length == 0 {
		*dst = nil
		return nil
	}
	res := make([]T, length)
	for i := range res {
		if err := get(src, &res[i], offset); err != nil {
			return errors.Wrapf(err, "element %d", i)
		}
	}
	*dst = res
	return nil
}

// ExpectEnd returns an error if src has unread bytes past offset.
func ExpectEnd(src []byte, offset int) error {
	if offset != len(src) {
		return errors.Wrapf(ErrUnexpectedTrailing, "%d bytes", len(src)-offset)
	}
	return nil
}

// Uint8Getter etc. adapt the primitive getters to the Getter signature used by
// the generic helpers.
var (
	Uint8Getter  Getter[uint8]             = GetUint8
	Uint16Getter Getter[uint16]            = GetUint16
	Uint32Getter Getter[uint32]            = GetUint32
	Uint64Getter Getter[uint64]            = GetUint64
	Key32Getter  Getter[ed25519.PublicKey] = GetKey32
	BytesGetter  Getter[[]byte]            = GetBytes

	Uint8Putter  Putter[uint8]             = PutUint8
	Uint16Putter Putter[uint16]            = PutUint16
	Uint32Putter Putter[uint32]            = PutUint32
	Uint64Putter Putter[uint64]            = PutUint64
	Key32Putter  Putter[ed25519.PublicKey] = PutKey32
	BytesPutter  Putter[[]byte]            = PutBytes
)
