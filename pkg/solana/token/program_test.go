package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
)

func TestApprove(t *testing.T) {
	keys := generateKeys(t, 3)

	instruction := Approve(keys[0], keys[1], keys[2], 500)
	assert.Equal(t, ProgramKey, instruction.Program)
	assert.Equal(t, []byte{byte(CommandApprove), 0xf4, 0x01, 0, 0, 0, 0, 0, 0}, instruction.Data)

	require.Len(t, instruction.Accounts, 3)
	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[1].IsWritable)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.True(t, instruction.Accounts[2].IsSigner)

	txn := solana.NewTransaction(keys[2], instruction)

	command, err := GetCommand(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, CommandApprove, command)

	decompiled, err := DecompileApprove(txn.Message, 0)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Delegate)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 500, decompiled.Amount)
}

func TestGetCommand_Error(t *testing.T) {
	keys := generateKeys(t, 2)

	_, err := GetCommand(solana.NewTransaction(keys[0]).Message, 0)
	assert.Error(t, err)

	wrongProgram := solana.NewInstruction(keys[1], []byte{byte(CommandApprove)})
	_, err = GetCommand(solana.NewTransaction(keys[0], wrongProgram).Message, 0)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	noData := solana.NewInstruction(ProgramKey, nil)
	_, err = GetCommand(solana.NewTransaction(keys[0], noData).Message, 0)
	assert.Error(t, err)

	transfer := solana.NewInstruction(ProgramKey, []byte{byte(CommandTransfer), 0, 0, 0, 0, 0, 0, 0, 0})
	_, err = DecompileApprove(solana.NewTransaction(keys[0], transfer).Message, 0)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}
