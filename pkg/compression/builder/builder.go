// Package builder assembles compressed token instructions end to end: it
// fetches candidate accounts, selects inputs, requests a validity proof,
// packs account indices and encodes the program instruction.
package builder

import (
	"context"
	"crypto/ed25519"
	"math"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/selection"
	"github.com/code-payments/compressed-token-sdk/pkg/metrics"
	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
	compute_budget "github.com/code-payments/compressed-token-sdk/pkg/solana/computebudget"
)

const (
	metricsStructName      = "compression.builder"
	inputCountMetricName   = "CompressedTokenBuilder/InputCount"
	proofLatencyMetricName = "CompressedTokenBuilder/ProofLatency"
)

var (
	ErrTransactionTooLarge = errors.New("transaction exceeds maximum size")
	ErrNoRecipients        = errors.New("at least one recipient is required")
	ErrNothingToMerge      = errors.New("fewer than two accounts to merge")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrMissingProof        = errors.New("proof service returned no validity proof")
)

// AccountSource provides the compressed token accounts a builder selects
// from.
type AccountSource interface {
	GetCompressedTokenAccountsByOwner(ctx context.Context, owner, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error)
	GetCompressedTokenAccountsByDelegate(ctx context.Context, delegate, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error)
}

// ProofService proves the inclusion of compressed accounts by hash. Root
// indices in the result are parallel to hashes.
type ProofService interface {
	GetValidityProof(ctx context.Context, hashes []compression.Hash) (*compression.ValidityProof, error)
}

// Result is a built compressed token instruction. Setup instructions must
// precede it in the same transaction.
type Result struct {
	Instruction solana.Instruction
	Setup       []solana.Instruction

	// Inputs is nil for instructions that spend no compressed accounts.
	Inputs    []*compression.CompressedTokenAccount
	Selection *selection.Result
}

// Instructions returns the setup instructions followed by the compressed
// token instruction.
func (r *Result) Instructions() []solana.Instruction {
	instructions := make([]solana.Instruction, 0, len(r.Setup)+1)
	instructions = append(instructions, r.Setup...)
	return append(instructions, r.Instruction)
}

type Builder struct {
	log          *logrus.Entry
	conf         *conf
	program      *compressedtoken.Program
	accounts     AccountSource
	proofs       ProofService
	lookupTables []solana.AddressLookupTable
}

func New(program *compressedtoken.Program, accounts AccountSource, proofs ProofService, configProvider ConfigProvider) *Builder {
	return &Builder{
		log:      logrus.StandardLogger().WithField("type", "compression/builder"),
		conf:     configProvider(),
		program:  program,
		accounts: accounts,
		proofs:   proofs,
	}
}

// WithLookupTables returns a builder that checks transaction size against a
// v0 transaction loading accounts from tables.
func (b *Builder) WithLookupTables(tables ...solana.AddressLookupTable) *Builder {
	clone := *b
	clone.lookupTables = append([]solana.AddressLookupTable(nil), tables...)
	return &clone
}

// getSpendableAccounts returns the owner's accounts for mint that can be
// used as inputs. Frozen accounts can't be spent.
func (b *Builder) getSpendableAccounts(ctx context.Context, owner, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error) {
	accounts, err := b.accounts.GetCompressedTokenAccountsByOwner(ctx, owner, mint)
	if err != nil {
		return nil, errors.Wrap(err, "error getting compressed token accounts")
	}

	spendable := make([]*compression.CompressedTokenAccount, 0, len(accounts))
	for _, account := range accounts {
		if account.IsFrozen {
			continue
		}
		spendable = append(spendable, account)
	}
	return spendable, nil
}

func (b *Builder) selectAccounts(ctx context.Context, accounts []*compression.CompressedTokenAccount, amount uint64) (*selection.Result, error) {
	strategy, err := selection.ParseStrategy(b.conf.selectionStrategy.Get(ctx))
	if err != nil {
		return nil, err
	}
	return strategy.Select(accounts, amount, b.maxInputs(ctx))
}

func (b *Builder) maxInputs(ctx context.Context) int {
	return int(min(b.conf.maxInputs.Get(ctx), math.MaxUint8))
}

func (b *Builder) getValidityProof(ctx context.Context, inputs []*compression.CompressedTokenAccount) (*compression.ValidityProof, error) {
	if len(inputs) == 0 {
		return &compression.ValidityProof{}, nil
	}

	hashes := make([]compression.Hash, len(inputs))
	for i, input := range inputs {
		hashes[i] = input.Hash
	}

	start := time.Now()
	proof, err := b.proofs.GetValidityProof(ctx, hashes)
	metrics.RecordDuration(ctx, proofLatencyMetricName, time.Since(start))
	if err != nil {
		return nil, errors.Wrap(err, "error getting validity proof")
	}
	if proof == nil {
		return nil, errors.Wrapf(ErrMissingProof, "%d inputs", len(inputs))
	}
	if len(proof.RootIndices) != len(inputs) {
		return nil, errors.Wrapf(compression.ErrArrayLengthMismatch, "%d inputs, %d root indices", len(inputs), len(proof.RootIndices))
	}
	return proof, nil
}

func (b *Builder) getComputeBudgetInstructions(ctx context.Context) []solana.Instruction {
	var instructions []solana.Instruction
	if limit := b.conf.computeUnitLimit.Get(ctx); limit > 0 {
		instructions = append(instructions, compute_budget.SetComputeUnitLimit(uint32(min(limit, math.MaxUint32))))
	}
	if price := b.conf.computeUnitPrice.Get(ctx); price > 0 {
		instructions = append(instructions, compute_budget.SetComputeUnitPrice(price))
	}
	return instructions
}

// validateTransactionSize compiles the result as the payer would submit it
// and rejects it if it can't fit in a single packet.
func (b *Builder) validateTransactionSize(ctx context.Context, payer ed25519.PublicKey, result *Result) error {
	if !b.conf.enforceTransactionSize.Get(ctx) {
		return nil
	}

	var txn solana.Transaction
	if len(b.lookupTables) > 0 {
		txn = solana.NewVersionedTransaction(payer, b.lookupTables, result.Instructions())
	} else {
		txn = solana.NewTransaction(payer, result.Instructions()...)
	}

	if size := txn.Size(); size > solana.MaxTransactionSize {
		return errors.Wrapf(ErrTransactionTooLarge, "%d bytes with %d inputs", size, len(result.Inputs))
	}
	return nil
}

// finalize applies the checks shared by every operation and records the
// input count.
func (b *Builder) finalize(ctx context.Context, log *logrus.Entry, payer ed25519.PublicKey, result *Result) (*Result, error) {
	if err := b.validateTransactionSize(ctx, payer, result); err != nil {
		log.WithError(err).Warn("transaction too large")
		return nil, err
	}

	metrics.RecordCount(ctx, inputCountMetricName, uint64(len(result.Inputs)))
	log.WithField("inputs", len(result.Inputs)).Debug("built instruction")
	return result, nil
}

func (b *Builder) getTokenPoolAddress(mint ed25519.PublicKey, index uint8) (ed25519.PublicKey, uint8, error) {
	address, bump, err := b.program.GetTokenPoolAddress(&compressedtoken.GetTokenPoolAddressArgs{
		Mint:  mint,
		Index: index,
	})
	if err != nil {
		return nil, 0, errors.Wrap(err, "error deriving token pool address")
	}
	return address, bump, nil
}

func (b *Builder) getCpiAuthorityAddress() (ed25519.PublicKey, error) {
	address, _, err := b.program.GetCpiAuthorityAddress()
	if err != nil {
		return nil, errors.Wrap(err, "error deriving cpi authority address")
	}
	return address, nil
}

func (b *Builder) newLogger(method string, owner, mint ed25519.PublicKey) *logrus.Entry {
	return b.log.WithFields(logrus.Fields{
		"method": method,
		"owner":  base58.Encode(owner),
		"mint":   base58.Encode(mint),
	})
}

// traced runs fn under a method trace, recording any error it returns.
func traced[T any](ctx context.Context, method string, fn func() (T, error)) (T, error) {
	return metrics.Traced(ctx, metricsStructName, method, func(_ *metrics.MethodTracer) (T, error) {
		return fn()
	})
}
