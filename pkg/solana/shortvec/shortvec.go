// Package shortvec implements the compact-u16 length prefix used throughout
// the transaction wire format.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// maxEncodedSize is the size of math.MaxUint16 once encoded.
const maxEncodedSize = 3

var (
	ErrLenTooLarge = errors.Errorf("len exceeds %d", math.MaxUint16)
	ErrInvalidLen  = errors.New("invalid compact-u16 encoding")
)

// Size returns the number of bytes n occupies once encoded.
func Size(n int) int {
	size := 1
	for n >>= 7; n > 0; n >>= 7 {
		size++
	}
	return size
}

// EncodeLen writes n to w, seven bits at a time with the high bit set on
// every byte but the last.
func EncodeLen(w io.ByteWriter, n int) (written int, err error) {
	if n < 0 || n > math.MaxUint16 {
		return 0, ErrLenTooLarge
	}

	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}

		if err := w.WriteByte(b); err != nil {
			return written, err
		}
		written++

		if n == 0 {
			return written, nil
		}
	}
}

// DecodeLen reads a length written by EncodeLen.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < maxEncodedSize; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, ErrLenTooLarge
			}
			return val, nil
		}
	}

	return 0, errors.Wrapf(ErrInvalidLen, "continues past %d bytes", maxEncodedSize)
}
