package compressedtoken

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
)

var (
	CpiAuthorityPrefix = []byte("cpi_authority")
	PoolPrefix         = []byte("pool")
	SolPoolPrefix      = []byte("sol_pool_pda")
)

type pda struct {
	address ed25519.PublicKey
	bump    uint8
}

// GetCpiAuthorityAddress returns the PDA the program signs token pool
// transfers with.
func (p *Program) GetCpiAuthorityAddress() (ed25519.PublicKey, uint8, error) {
	return p.findProgramAddress("cpi_authority", p.ID, CpiAuthorityPrefix)
}

type GetTokenPoolAddressArgs struct {
	Mint  ed25519.PublicKey
	Index uint8
}

// GetTokenPoolAddress returns the SPL token account holding the decompressed
// supply for a mint. Pool 0 omits the index seed.
func (p *Program) GetTokenPoolAddress(args *GetTokenPoolAddressArgs) (ed25519.PublicKey, uint8, error) {
	if args.Index >= MaxTokenPools {
		return nil, 0, errors.Errorf("token pool index %d exceeds max of %d", args.Index, MaxTokenPools-1)
	}

	seeds := [][]byte{PoolPrefix, args.Mint}
	if args.Index > 0 {
		seeds = append(seeds, []byte{args.Index})
	}

	key := fmt.Sprintf("pool:%s:%d", base58.Encode(args.Mint), args.Index)
	return p.findProgramAddress(key, p.ID, seeds...)
}

// GetSolPoolAddress returns the light system program PDA that escrows
// lamports attached to compressed accounts.
func (p *Program) GetSolPoolAddress() (ed25519.PublicKey, uint8, error) {
	return p.findProgramAddress("sol_pool", p.LightSystemProgram, SolPoolPrefix)
}

func (p *Program) findProgramAddress(key string, program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	if p.pdas != nil {
		if cached, ok := p.pdas.Retrieve(key); ok {
			res := cached.(pda)
			return res.address, res.bump, nil
		}
	}

	address, bump, err := solana.FindProgramAddress(program, seeds...)
	if err != nil {
		return nil, 0, err
	}

	if p.pdas != nil {
		// Concurrent callers may race to derive the same address, in which
		// case the insert fails harmlessly.
		_ = p.pdas.Insert(key, pda{address: address, bump: bump}, 1)
	}
	return address, bump, nil
}
