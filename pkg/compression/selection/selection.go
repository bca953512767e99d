package selection

import (
	"math"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
)

// DefaultMaxInputs is the number of input accounts that fit in a transfer
// alongside a validity proof.
const DefaultMaxInputs = 4

type Strategy uint8

const (
	StrategyUnknown Strategy = iota
	StrategyMinimal
	StrategySmart
)

func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(value) {
	case "minimal":
		return StrategyMinimal, nil
	case "smart":
		return StrategySmart, nil
	}
	return StrategyUnknown, errors.Errorf("unknown selection strategy %q", value)
}

func (s Strategy) String() string {
	switch s {
	case StrategyMinimal:
		return "minimal"
	case StrategySmart:
		return "smart"
	}
	return "unknown"
}

// Select runs the strategy's failing variant.
func (s Strategy) Select(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	switch s {
	case StrategyMinimal:
		return SelectMinimal(accounts, amount, maxInputs)
	case StrategySmart:
		return SelectSmart(accounts, amount, maxInputs)
	}
	return nil, errors.Errorf("unsupported selection strategy %d", s)
}

// Result is the outcome of a selection. TotalLamports is nil when the
// selected accounts hold no lamports. MaxPossibleAmount is the most that
// could be spent with maxInputs accounts, regardless of the target.
type Result struct {
	Selected          []*compression.CompressedTokenAccount
	TotalAmount       uint64
	TotalLamports     *uint64
	MaxPossibleAmount uint64
}

// SelectMinimal picks the fewest, largest accounts covering amount.
func SelectMinimal(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	return selectAccounts(accounts, amount, maxInputs, false, true)
}

// SelectMinimalIdempotent is SelectMinimal but returns whatever could be
// selected instead of failing when the target can't be reached.
func SelectMinimalIdempotent(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	return selectAccounts(accounts, amount, maxInputs, false, false)
}

// SelectSmart is SelectMinimal plus the smallest remaining account, if room
// is left, so that dust gets consolidated over time.
func SelectSmart(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	return selectAccounts(accounts, amount, maxInputs, true, true)
}

func SelectSmartIdempotent(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	return selectAccounts(accounts, amount, maxInputs, true, false)
}

// SelectForApprove prefers a single account holding exactly amount, which
// avoids a change output, and otherwise falls back to SelectMinimal.
func SelectForApprove(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int) (*Result, error) {
	candidates, err := sortCandidates(accounts)
	if err != nil {
		return nil, err
	}
	maxInputs = normalizeMaxInputs(maxInputs)

	for _, candidate := range candidates {
		if candidate.Amount != amount {
			continue
		}

		maxPossible, err := compression.SumAmounts(candidates[:min(maxInputs, len(candidates))])
		if err != nil {
			return nil, err
		}
		return &Result{
			Selected:          []*compression.CompressedTokenAccount{candidate},
			TotalAmount:       candidate.Amount,
			TotalLamports:     pointer.Uint64IfNonZero(candidate.Lamports),
			MaxPossibleAmount: maxPossible,
		}, nil
	}

	return SelectMinimal(accounts, amount, maxInputs)
}

// SelectLargest picks up to maxInputs of the largest accounts without a
// target amount. It's used where every input is consumed as is, such as
// freezing or revoking.
func SelectLargest(accounts []*compression.CompressedTokenAccount, maxInputs int) (*Result, error) {
	return SelectMinimalIdempotent(accounts, math.MaxUint64, maxInputs)
}

// SelectBatches splits the non-empty accounts, largest first, into batches
// of at most maxInputs accounts.
func SelectBatches(accounts []*compression.CompressedTokenAccount, maxInputs int) ([][]*compression.CompressedTokenAccount, error) {
	candidates, err := sortCandidates(accounts)
	if err != nil {
		return nil, err
	}
	maxInputs = normalizeMaxInputs(maxInputs)

	var batches [][]*compression.CompressedTokenAccount
	for start := 0; start < len(candidates); start += maxInputs {
		end := min(start+maxInputs, len(candidates))
		batches = append(batches, candidates[start:end:end])
	}
	return batches, nil
}

func selectAccounts(accounts []*compression.CompressedTokenAccount, amount uint64, maxInputs int, smart, failOnShortfall bool) (*Result, error) {
	candidates, err := sortCandidates(accounts)
	if err != nil {
		return nil, err
	}
	maxInputs = normalizeMaxInputs(maxInputs)

	maxPossible, err := compression.SumAmounts(candidates[:min(maxInputs, len(candidates))])
	if err != nil {
		return nil, err
	}

	var selected []*compression.CompressedTokenAccount
	var total uint64
	for _, candidate := range candidates {
		if total >= amount || len(selected) >= maxInputs {
			break
		}
		selected = append(selected, candidate)
		total += candidate.Amount
	}

	if total < amount {
		if failOnShortfall {
			return nil, shortfallError(candidates, amount, maxPossible, maxInputs)
		}
	} else if smart && len(selected) < maxInputs && len(selected) < len(candidates) {
		smallest := candidates[len(candidates)-1]
		selected = append(selected, smallest)
		total += smallest.Amount
	}

	lamports, err := compression.SumLamports(selected)
	if err != nil {
		return nil, err
	}

	return &Result{
		Selected:          selected,
		TotalAmount:       total,
		TotalLamports:     pointer.Uint64IfNonZero(lamports),
		MaxPossibleAmount: maxPossible,
	}, nil
}

func shortfallError(candidates []*compression.CompressedTokenAccount, amount, maxPossible uint64, maxInputs int) error {
	totalBalance, err := compression.SumAmounts(candidates)
	if err != nil {
		return err
	}

	if totalBalance < amount {
		return &compression.InsufficientBalanceError{
			Required:  amount,
			Available: totalBalance,
		}
	}
	return &compression.InputLimitExceededError{
		MaxPossible:   maxPossible,
		MaxInputs:     maxInputs,
		TotalBalance:  totalBalance,
		TotalAccounts: len(candidates),
	}
}

// sortCandidates returns the non-empty accounts ordered by amount, largest
// first. The caller's slice is left untouched.
func sortCandidates(accounts []*compression.CompressedTokenAccount) ([]*compression.CompressedTokenAccount, error) {
	candidates := make([]*compression.CompressedTokenAccount, 0, len(accounts))
	for _, account := range accounts {
		if account == nil || account.IsEmpty() {
			continue
		}
		candidates = append(candidates, account)
	}
	if len(candidates) == 0 {
		return nil, compression.ErrNoAccountsAvailable
	}

	slices.SortStableFunc(candidates, func(a, b *compression.CompressedTokenAccount) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		}
		return 0
	})
	return candidates, nil
}

func normalizeMaxInputs(maxInputs int) int {
	if maxInputs <= 0 {
		return DefaultMaxInputs
	}
	return maxInputs
}
