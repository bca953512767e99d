package compression

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAmounts(t *testing.T) {
	accounts := []*CompressedTokenAccount{
		{Amount: 10, Lamports: 1},
		{Amount: 20, Lamports: 2},
	}

	total, err := SumAmounts(accounts)
	require.NoError(t, err)
	assert.EqualValues(t, 30, total)

	lamports, err := SumLamports(accounts)
	require.NoError(t, err)
	assert.EqualValues(t, 3, lamports)

	total, err = SumAmounts(nil)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSum_Overflow(t *testing.T) {
	accounts := []*CompressedTokenAccount{
		{Amount: math.MaxUint64, Lamports: math.MaxUint64},
		{Amount: 1, Lamports: 1},
	}

	_, err := SumAmounts(accounts)
	assert.Equal(t, ErrAmountOverflow, err)

	_, err = SumLamports(accounts)
	assert.Equal(t, ErrAmountOverflow, err)
}

func TestAddAmounts(t *testing.T) {
	total, err := AddAmounts(1, 2, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)

	_, err = AddAmounts(math.MaxUint64, 1)
	assert.Equal(t, ErrAmountOverflow, err)
}
