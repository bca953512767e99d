package compute_budget

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "ComputeBudget111111111111111111111111111111", base58.Encode(ProgramKey))
}

func TestSetComputeUnitLimit(t *testing.T) {
	instruction := SetComputeUnitLimit(1_000_000)
	assert.Equal(t, ProgramKey, instruction.Program)
	assert.Empty(t, instruction.Accounts)
	assert.Equal(t, []byte{2, 0x40, 0x42, 0x0f, 0x00}, instruction.Data)

	limit, err := ParseSetComputeUnitLimitIxnData(instruction.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 1_000_000, limit)

	_, err = ParseSetComputeUnitLimitIxnData(SetComputeUnitPrice(1).Data)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestSetComputeUnitPrice(t *testing.T) {
	instruction := SetComputeUnitPrice(5000)
	assert.Equal(t, []byte{3, 0x88, 0x13, 0, 0, 0, 0, 0, 0}, instruction.Data)

	price, err := ParseSetComputeUnitPriceIxnData(instruction.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 5000, price)

	_, err = ParseSetComputeUnitPriceIxnData(instruction.Data[:8])
	assert.Equal(t, ErrInvalidInstructionData, err)
}
