package builder

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	address_lookup_table "github.com/code-payments/compressed-token-sdk/pkg/solana/addresslookuptable"
)

type CreateLookupTableArgs struct {
	Payer      ed25519.PublicKey
	Authority  ed25519.PublicKey
	RecentSlot uint64

	// Addresses are appended after the program's static accounts, typically
	// the state trees and queues in use.
	Addresses []ed25519.PublicKey
}

type LookupTableResult struct {
	Address ed25519.PublicKey

	// Transactions are submitted in order. The first creates the table and
	// every one extends it.
	Transactions [][]solana.Instruction
}

// CreateLookupTable creates an address lookup table holding the accounts
// every compressed token instruction references, so transactions built with
// WithLookupTables only carry their signers and programs statically.
func (b *Builder) CreateLookupTable(ctx context.Context, args *CreateLookupTableArgs) (*LookupTableResult, error) {
	return traced(ctx, "CreateLookupTable", func() (*LookupTableResult, error) {
		log := b.log.WithField("method", "CreateLookupTable")

		address, bump, err := address_lookup_table.GetAddress(args.Authority, args.RecentSlot)
		if err != nil {
			return nil, errors.Wrap(err, "error deriving lookup table address")
		}
		log = log.WithField("address", base58.Encode(address))

		cpiAuthority, err := b.getCpiAuthorityAddress()
		if err != nil {
			return nil, err
		}

		addresses := []ed25519.PublicKey{
			b.program.ID,
			b.program.LightSystemProgram,
			b.program.AccountCompressionProgram,
			b.program.AccountCompressionAuthority,
			b.program.RegisteredProgramPda,
			b.program.NoopProgram,
			b.program.SystemProgram,
			b.program.TokenProgram,
			cpiAuthority,
		}
		addresses = append(addresses, args.Addresses...)

		result := &LookupTableResult{Address: address}
		for start := 0; start < len(addresses); start += address_lookup_table.MaxAddressesPerExtend {
			end := min(start+address_lookup_table.MaxAddressesPerExtend, len(addresses))

			var instructions []solana.Instruction
			if start == 0 {
				instructions = append(instructions, address_lookup_table.Create(address, args.Authority, args.Payer, args.RecentSlot, bump))
			}
			instructions = append(instructions, address_lookup_table.Extend(address, args.Authority, args.Payer, addresses[start:end]...))

			txn := solana.NewTransaction(args.Payer, instructions...)
			if size := txn.Size(); size > solana.MaxTransactionSize {
				return nil, errors.Wrapf(ErrTransactionTooLarge, "%d bytes", size)
			}

			result.Transactions = append(result.Transactions, instructions)
		}

		log.WithField("addresses", len(addresses)).Debug("built lookup table")
		return result, nil
	})
}
