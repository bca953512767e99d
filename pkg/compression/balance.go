package compression

import (
	"math/bits"
)

// SumAmounts returns the total token amount held by accounts.
func SumAmounts(accounts []*CompressedTokenAccount) (uint64, error) {
	var total uint64
	for _, account := range accounts {
		var carry uint64
		total, carry = bits.Add64(total, account.Amount, 0)
		if carry != 0 {
			return 0, ErrAmountOverflow
		}
	}
	return total, nil
}

// SumLamports returns the total lamports held by accounts.
func SumLamports(accounts []*CompressedTokenAccount) (uint64, error) {
	var total uint64
	for _, account := range accounts {
		var carry uint64
		total, carry = bits.Add64(total, account.Lamports, 0)
		if carry != 0 {
			return 0, ErrAmountOverflow
		}
	}
	return total, nil
}

// AddAmounts returns the sum of amounts.
func AddAmounts(amounts ...uint64) (uint64, error) {
	var total uint64
	for _, amount := range amounts {
		var carry uint64
		total, carry = bits.Add64(total, amount, 0)
		if carry != 0 {
			return 0, ErrAmountOverflow
		}
	}
	return total, nil
}
