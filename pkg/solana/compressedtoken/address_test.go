package compressedtoken

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCpiAuthorityAddress(t *testing.T) {
	p := DefaultProgram()

	address, bump, err := p.GetCpiAuthorityAddress()
	require.NoError(t, err)
	assert.Equal(t, "GXtd2izAiMJPwMEjfgTRH3d7k9mjn4Jq3JrWFv9gySYy", base58.Encode(address))
	assert.EqualValues(t, 254, bump)
}

func TestGetSolPoolAddress(t *testing.T) {
	p := DefaultProgram()

	address, bump, err := p.GetSolPoolAddress()
	require.NoError(t, err)
	assert.Equal(t, "CHK57ywWSDncAoRu1F8QgwYJeXuAJyyBYT4LixLXvMZ1", base58.Encode(address))
	assert.EqualValues(t, 255, bump)
}

func TestGetTokenPoolAddress(t *testing.T) {
	p := DefaultProgram()

	mint, err := base58.Decode("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	require.NoError(t, err)

	address, bump, err := p.GetTokenPoolAddress(&GetTokenPoolAddressArgs{Mint: mint})
	require.NoError(t, err)
	assert.Equal(t, "F3HRaXW5kDwnFcZ2AJXH2RajbJDK7iFxSYqdLKSdNq1R", base58.Encode(address))
	assert.EqualValues(t, 255, bump)

	address, bump, err = p.GetTokenPoolAddress(&GetTokenPoolAddressArgs{Mint: mint, Index: 1})
	require.NoError(t, err)
	assert.Equal(t, "BFWCLHSFc5Z2cZ3a3QjUDgnHWkNAXfdMLqXBe6fo9Wow", base58.Encode(address))
	assert.EqualValues(t, 254, bump)

	_, _, err = p.GetTokenPoolAddress(&GetTokenPoolAddressArgs{Mint: mint, Index: MaxTokenPools})
	assert.Error(t, err)
}

func TestAddressCache(t *testing.T) {
	p := DefaultProgram()
	require.Equal(t, 0, p.pdas.GetWeight())

	first, _, err := p.GetCpiAuthorityAddress()
	require.NoError(t, err)
	assert.Equal(t, 1, p.pdas.GetWeight())

	second, _, err := p.GetCpiAuthorityAddress()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, p.pdas.GetWeight())

	// Distinct program identities never share derivations.
	other := NewProgram(&Program{ID: LIGHT_SYSTEM_PROGRAM_ID, LightSystemProgram: LIGHT_SYSTEM_PROGRAM_ID})
	otherAddress, _, err := other.GetCpiAuthorityAddress()
	require.NoError(t, err)
	assert.NotEqual(t, first, otherAddress)
	assert.Equal(t, 1, p.pdas.GetWeight())
}
