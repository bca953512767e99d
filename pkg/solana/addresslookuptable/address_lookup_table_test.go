package address_lookup_table

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
	"github.com/code-payments/compressed-token-sdk/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "AddressLookupTab1e1111111111111111111111111", base58.Encode(ProgramKey))
}

func TestCreate(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	alt, bump, err := GetAddress(keys[0], 42)
	require.NoError(t, err)

	instruction := Create(alt, keys[0], keys[1], 42, bump)
	assert.Equal(t, ProgramKey, instruction.Program)
	require.Len(t, instruction.Data, 13)
	assert.Equal(t, []byte{0, 0, 0, 0, 42, 0, 0, 0, 0, 0, 0, 0, bump}, instruction.Data)

	require.Len(t, instruction.Accounts, 4)
	assert.Equal(t, alt, instruction.Accounts[0].PublicKey)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.True(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[1].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)
	assert.True(t, instruction.Accounts[2].IsWritable)
}

func TestExtend(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 5)

	instruction := Extend(keys[0], keys[1], keys[2], keys[3], keys[4])
	require.Len(t, instruction.Data, 4+8+2*32)
	assert.Equal(t, []byte{2, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0}, instruction.Data[:12])
	assert.EqualValues(t, keys[3], instruction.Data[12:44])
	assert.EqualValues(t, keys[4], instruction.Data[44:76])
}

func encodeAccount(authority *ed25519.PublicKey, addresses []ed25519.PublicKey) []byte {
	data := make([]byte, metadataSize+len(addresses)*ed25519.PublicKeySize)

	var offset int
	binary.PutUint32(data, lookupTableAccountType, &offset)
	binary.PutUint64(data, 100, &offset)
	binary.PutUint64(data, 7, &offset)
	binary.PutUint8(data, 3, &offset)
	binary.PutOption(data, authority, &offset, binary.Key32Putter)

	offset = metadataSize
	for _, address := range addresses {
		binary.PutKey32(data, address, &offset)
	}
	return data
}

func TestAddressLookupTableAccount_Unmarshal(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	authority := keys[0]

	var account AddressLookupTableAccount
	require.NoError(t, account.Unmarshal(encodeAccount(&authority, keys[1:])))

	assert.EqualValues(t, 100, account.DeactivationSlot)
	assert.EqualValues(t, 7, account.LastExtendedSlot)
	assert.EqualValues(t, 3, account.LastExtendedSlotStartIndex)
	require.NotNil(t, account.Authority)
	assert.Equal(t, authority, *account.Authority)
	assert.Equal(t, keys[1:], account.Addresses)

	table := account.ToAddressLookupTable(keys[0])
	assert.Equal(t, solana.AddressLookupTable{PublicKey: keys[0], Addresses: keys[1:]}, table)

	require.NoError(t, account.Unmarshal(encodeAccount(nil, nil)))
	assert.Nil(t, account.Authority)
	assert.Empty(t, account.Addresses)
}

func TestAddressLookupTableAccount_Invalid(t *testing.T) {
	var account AddressLookupTableAccount

	assert.Equal(t, ErrInvalidAccountSize, account.Unmarshal(make([]byte, metadataSize-1)))

	data := encodeAccount(nil, nil)
	assert.Equal(t, ErrInvalidAccountSize, account.Unmarshal(append(data, 1)))

	data[0] = 2
	assert.Equal(t, ErrInvalidAccountType, account.Unmarshal(data))
}
