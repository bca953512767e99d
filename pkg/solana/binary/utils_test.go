package binary

import (
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrimitives_RoundTrip(t *testing.T) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	for i := range key {
		key[i] = byte(i)
	}

	buf := make([]byte, 1+1+2+4+8+32)

	var offset int
	PutUint8(buf, 7, &offset)
	PutBool(buf, true, &offset)
	PutUint16(buf, 0x0102, &offset)
	PutUint32(buf, 0x01020304, &offset)
	PutUint64(buf, 0x0102030405060708, &offset)
	PutKey32(buf, key, &offset)
	require.Equal(t, len(buf), offset)

	assert.Equal(t, []byte{0x02, 0x01}, buf[2:4])
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf[4:8])

	var u8 uint8
	var b bool
	var u16 uint16
	var u32 uint32
	var u64 uint64
	var k ed25519.PublicKey

	offset = 0
	require.NoError(t, GetUint8(buf, &u8, &offset))
	require.NoError(t, GetBool(buf, &b, &offset))
	require.NoError(t, GetUint16(buf, &u16, &offset))
	require.NoError(t, GetUint32(buf, &u32, &offset))
	require.NoError(t, GetUint64(buf, &u64, &offset))
	require.NoError(t, GetKey32(buf, &k, &offset))
	require.NoError(t, ExpectEnd(buf, offset))

	assert.EqualValues(t, 7, u8)
	assert.True(t, b)
	assert.EqualValues(t, 0x0102, u16)
	assert.EqualValues(t, 0x01020304, u32)
	assert.EqualValues(t, uint64(0x0102030405060708), u64)
	assert.Equal(t, key, k)
}

func TestOption(t *testing.T) {
	value := uint64(42)

	size := SizeOfOption(&value, FixedSize[uint64](8))
	require.Equal(t, 9, size)
	require.Equal(t, 1, SizeOfOption[uint64](nil, FixedSize[uint64](8)))

	buf := make([]byte, size+1)
	var offset int
	PutOption(buf, &value, &offset, Uint64Putter)
	PutOption[uint64](buf, nil, &offset, Uint64Putter)
	assert.Equal(t, []byte{1, 42, 0, 0, 0, 0, 0, 0, 0, 0}, buf)

	var some, none *uint64
	offset = 0
	require.NoError(t, GetOption(buf, &some, &offset, Uint64Getter))
	require.NoError(t, GetOption(buf, &none, &offset, Uint64Getter))
	require.NotNil(t, some)
	assert.EqualValues(t, 42, *some)
	assert.Nil(t, none)
}

func TestOption_InvalidFlag(t *testing.T) {
	var dst *uint8
	var offset int
	err := GetOption([]byte{2, 0}, &dst, &offset, Uint8Getter)
	assert.True(t, errors.Is(err, ErrInvalidOptionFlag))
}

func TestBool_InvalidValue(t *testing.T) {
	var dst bool
	var offset int
	err := GetBool([]byte{3}, &dst, &offset)
	assert.True(t, errors.Is(err, ErrInvalidBool))
}

func TestVec(t *testing.T) {
	values := []uint16{1, 2, 3}

	size := SizeOfVec(values, FixedSize[uint16](2))
	require.Equal(t, 10, size)

	buf := make([]byte, size)
	var offset int
	PutVec(buf, values, &offset, Uint16Putter)
	assert.Equal(t, []byte{3, 0, 0, 0, 1, 0, 2, 0, 3, 0}, buf)

	var actual []uint16
	offset = 0
	require.NoError(t, GetVec(buf, &actual, &offset, Uint16Getter))
	assert.Equal(t, values, actual)

	empty := make([]byte, LengthPrefixSize)
	offset = 0
	require.NoError(t, GetVec(empty, &actual, &offset, Uint16Getter))
	assert.Nil(t, actual)
}

func TestVec_LengthOutOfBounds(t *testing.T) {
	buf := []byte{0xff, 0xff, 0xff, 0x7f, 1}

	var actual []uint8
	var offset int
	err := GetVec(buf, &actual, &offset, Uint8Getter)
	assert.True(t, errors.Is(err, ErrLengthOutOfBounds))
}

func TestBytes(t *testing.T) {
	value := []byte{9, 8, 7}

	buf := make([]byte, SizeOfBytes(value))
	var offset int
	PutBytes(buf, value, &offset)
	assert.Equal(t, []byte{3, 0, 0, 0, 9, 8, 7}, buf)

	var actual []byte
	offset = 0
	require.NoError(t, GetBytes(buf, &actual, &offset))
	assert.Equal(t, value, actual)

	offset = 0
	err := GetBytes(buf[:5], &actual, &offset)
	assert.True(t, errors.Is(err, ErrLengthOutOfBounds))
}

func TestTruncatedInput(t *testing.T) {
	var u64 uint64
	var offset int
	err := GetUint64([]byte{1, 2, 3}, &u64, &offset)
	assert.True(t, errors.Is(err, ErrBufferTooShort))
	assert.Equal(t, 0, offset)

	var key ed25519.PublicKey
	err = GetKey32(make([]byte, 31), &key, &offset)
	assert.True(t, errors.Is(err, ErrBufferTooShort))
}

func TestExpectEnd(t *testing.T) {
	assert.NoError(t, ExpectEnd([]byte{1, 2}, 2))
	assert.True(t, errors.Is(ExpectEnd([]byte{1, 2}, 1), ErrUnexpectedTrailing))
}
