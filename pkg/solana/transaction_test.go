package solana

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Taken from: https://github.com/solana-labs/solana/blob/14339dec0a960e8161d1165b6a8e5cfb73e78f23/sdk/src/transaction.rs#L523
const rustGenerated = "AUc7Cbu+gZalFSGeSFdukHhP7oSGaSdmdNEd5ZokaSysdoMWfIOzjrAbdaBZZuDMAfyNAogAJdrhgVya+jthsgoBAAEDnON0wdcmjhYIDuXvd10F2qEjAyEAJGSe/CGhYbk+WWMBAQEEBQYHCAkJCQkJCQkJCQkJCQkJCQkIBwYFBAEBAQICAgQFBgcICQEBAQEBAQEBAQEBAQEBCQgHBgUEAgICAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAABAgIAAQMBAgM="

func TestLegacyTransaction_CrossImplMessage(t *testing.T) {
	keypair := ed25519.PrivateKey{48, 83, 2, 1, 1, 48, 5, 6, 3, 43, 101, 112, 4, 34, 4, 32, 255, 101, 36, 24, 124, 23,
		167, 21, 132, 204, 155, 5, 185, 58, 121, 75, 156, 227, 116, 193, 215, 38, 142, 22, 8,
		14, 229, 239, 119, 93, 5, 218, 161, 35, 3, 33, 0, 36, 100, 158, 252, 33, 161, 97, 185,
		62, 89, 99}
	programID := ed25519.PublicKey{2, 2, 2, 4, 5, 6, 7, 8, 9, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 8, 7, 6, 5, 4,
		2, 2, 2}
	to := ed25519.PublicKey{1, 1, 1, 4, 5, 6, 7, 8, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 8, 7, 6, 5, 4, 1, 1, 1}

	tx := NewTransaction(
		keypair.Public().(ed25519.PublicKey),
		NewInstruction(
			programID,
			[]byte{1, 2, 3},
			NewAccountMeta(keypair.Public().(ed25519.PublicKey), true),
			NewAccountMeta(to, false),
		),
	)

	generated, err := base64.StdEncoding.DecodeString(rustGenerated)
	require.NoError(t, err)

	// Skip the signature count and the single signature
	assert.Equal(t, generated[1+ed25519.SignatureSize:], tx.Message.Marshal())
	assert.Equal(t, len(generated), tx.Size())
	assert.Equal(t, MessageVersionLegacy, tx.Version())
}

func TestLegacyTransaction_EmptyAccount(t *testing.T) {
	keys := generateKeys(t, 2)

	tx := NewTransaction(
		public(keys[0]),
		NewInstruction(
			public(keys[1]),
			[]byte{1},
			NewAccountMeta(nil, false),
		),
	)

	require.Len(t, tx.Message.Accounts, 3)
	for _, account := range tx.Message.Accounts {
		assert.Len(t, account, ed25519.PublicKeySize)
	}

	var rtt Transaction
	assert.NoError(t, rtt.Unmarshal(tx.Marshal()))
}

func TestLegacyTransaction_MarshalRoundTrip(t *testing.T) {
	decoded, err := base64.StdEncoding.DecodeString(rustGenerated)
	require.NoError(t, err)

	var txn Transaction
	require.NoError(t, txn.Unmarshal(decoded))
	assert.Equal(t, decoded, txn.Marshal())
}

func TestLegacyTransaction_DuplicateKeys(t *testing.T) {
	keys := generateKeys(t, 4)
	payer := public(keys[0])
	program := public(keys[1])
	writable := public(keys[2])
	signer := public(keys[3])

	tx := NewTransaction(
		payer,
		NewInstruction(
			program,
			[]byte{1},
			NewReadonlyAccountMeta(writable, false),
			NewAccountMeta(writable, false),
			NewReadonlyAccountMeta(signer, true),
			NewReadonlyAccountMeta(payer, false),
		),
	)

	require.Len(t, tx.Message.Accounts, 4)
	require.Len(t, tx.Signatures, 2)
	assert.EqualValues(t, 2, tx.Message.Header.NumSignatures)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadonlySigned)
	assert.EqualValues(t, 1, tx.Message.Header.NumReadOnly)

	assert.Equal(t, payer, tx.Message.Accounts[0])
	assert.Equal(t, signer, tx.Message.Accounts[1])
	assert.Equal(t, writable, tx.Message.Accounts[2])
	assert.Equal(t, program, tx.Message.Accounts[3])

	assert.EqualValues(t, 3, tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{2, 2, 1, 0}, tx.Message.Instructions[0].Accounts)
}

func TestV0Transaction_LookupTables(t *testing.T) {
	keys := generateKeys(t, 6)
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(public(keys[i]), public(keys[j])) < 0
	})

	payer := public(keys[0])
	program := public(keys[1])
	signer := public(keys[2])
	readonly := public(keys[3])
	writable := public(keys[4])
	static := public(keys[5])

	altKeys := generateKeys(t, 2)
	sort.Slice(altKeys, func(i, j int) bool {
		return bytes.Compare(public(altKeys[i]), public(altKeys[j])) < 0
	})

	alts := []AddressLookupTable{
		{
			PublicKey: public(altKeys[1]),
			Addresses: []ed25519.PublicKey{payer, program, signer, readonly},
		},
		{
			PublicKey: public(altKeys[0]),
			Addresses: []ed25519.PublicKey{writable, readonly},
		},
	}

	tx := NewVersionedTransaction(payer, alts, []Instruction{
		NewInstruction(
			program,
			[]byte{9},
			NewReadonlyAccountMeta(signer, true),
			NewAccountMeta(writable, false),
			NewReadonlyAccountMeta(readonly, false),
			NewAccountMeta(static, false),
		),
	})

	var bh Blockhash
	rand.Read(bh[:])
	tx.SetBlockhash(bh)

	assert.Equal(t, MessageVersion0, tx.Version())
	assert.Equal(t, bh, tx.Message.RecentBlockhash)

	// Payer, signer and program are never loaded from a table
	require.Len(t, tx.Message.Accounts, 4)
	assert.Equal(t, payer, tx.Message.Accounts[0])
	assert.Equal(t, signer, tx.Message.Accounts[1])
	assert.Equal(t, static, tx.Message.Accounts[2])
	assert.Equal(t, program, tx.Message.Accounts[3])

	// Tables are sorted, so the lower key provides both dynamic accounts
	require.Len(t, tx.Message.AddressTableLookups, 1)
	assert.Equal(t, public(altKeys[0]), tx.Message.AddressTableLookups[0].PublicKey)
	assert.Equal(t, []byte{0}, tx.Message.AddressTableLookups[0].WritableIndexes)
	assert.Equal(t, []byte{1}, tx.Message.AddressTableLookups[0].ReadonlyIndexes)

	assert.EqualValues(t, 3, tx.Message.Instructions[0].ProgramIndex)
	assert.Equal(t, []byte{1, 4, 5, 2}, tx.Message.Instructions[0].Accounts)

	legacy := NewTransaction(payer, NewInstruction(
		program,
		[]byte{9},
		NewReadonlyAccountMeta(signer, true),
		NewAccountMeta(writable, false),
		NewReadonlyAccountMeta(readonly, false),
		NewAccountMeta(static, false),
	))
	assert.Less(t, tx.Size(), legacy.Size())

	message := tx.Message.Marshal()
	assert.EqualValues(t, 0x80, message[0])
}

func public(priv ed25519.PrivateKey) ed25519.PublicKey {
	return priv.Public().(ed25519.PublicKey)
}

func generateKeys(t *testing.T, amount int) []ed25519.PrivateKey {
	keys := make([]ed25519.PrivateKey, amount)

	for i := 0; i < amount; i++ {
		_, priv, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		keys[i] = priv
	}

	return keys
}
