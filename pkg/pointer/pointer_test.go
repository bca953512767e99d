package pointer

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64Helpers(t *testing.T) {
	assert.Nil(t, Uint64IfNonZero(0))
	require.NotNil(t, Uint64IfNonZero(5))
	assert.EqualValues(t, 5, *Uint64IfNonZero(5))

	assert.EqualValues(t, 0, Uint64OrZero(nil))
	assert.EqualValues(t, 7, Uint64OrZero(Uint64(7)))

	original := Uint64(1)
	copied := Uint64Copy(original)
	*original = 2
	assert.EqualValues(t, 1, *copied)
	assert.Nil(t, Uint64Copy(nil))
}

func TestUint8Helpers(t *testing.T) {
	assert.EqualValues(t, 3, *Uint8OrDefault(nil, 3))
	assert.EqualValues(t, 1, *Uint8OrDefault(Uint8(1), 3))
	assert.Nil(t, Uint8Copy(nil))
}

func TestPublicKeyCopy(t *testing.T) {
	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	key[0] = 1

	copied := PublicKeyCopy(&key)
	key[0] = 2
	require.NotNil(t, copied)
	assert.EqualValues(t, 1, (*copied)[0])

	assert.Nil(t, PublicKeyCopy(nil))
	assert.Nil(t, PublicKeyIfValid(false, key))
}
