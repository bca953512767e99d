package compression

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestInsufficientBalanceError(t *testing.T) {
	var err error = &InsufficientBalanceError{Required: 75, Available: 30}
	assert.Equal(t, "Insufficient balance for transfer. Required: 75, available: 30.", err.Error())
	assert.True(t, errors.Is(err, ErrInsufficientBalance))
	assert.True(t, errors.Is(errors.Wrap(err, "select"), ErrInsufficientBalance))
	assert.False(t, errors.Is(err, ErrInputLimitExceeded))

	var typed *InsufficientBalanceError
	assert.True(t, errors.As(errors.Wrap(err, "select"), &typed))
	assert.EqualValues(t, 30, typed.Available)
}

func TestInputLimitExceededError(t *testing.T) {
	var err error = &InputLimitExceededError{MaxPossible: 80, MaxInputs: 2, TotalBalance: 105, TotalAccounts: 3}
	assert.Equal(
		t,
		"Account limit exceeded: max 80 (2 accounts) per transaction. Total balance: 105 (3 accounts). Consider multiple transfers to spend full balance.",
		err.Error(),
	)
	assert.True(t, errors.Is(err, ErrInputLimitExceeded))
	assert.False(t, errors.Is(err, ErrInsufficientBalance))
}
