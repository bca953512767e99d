package compressedtoken

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/cache"
)

var (
	ErrInvalidProgram       = errors.New("invalid program id")
	ErrDecodeLayoutMismatch = errors.New("instruction data does not match expected layout")
	ErrArrayLengthMismatch  = errors.New("parallel array lengths differ")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("cTokenmWW8bLPjZEBAUgYy3zKxQZW6VKi7bqNFEVv3m")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	LIGHT_SYSTEM_PROGRAM_ID          = ed25519.PublicKey(mustBase58Decode("SySTEM1eSU2p4BGQfQpimFEWWSC1XDFeun3Nqzz3rT7"))
	ACCOUNT_COMPRESSION_PROGRAM_ID   = ed25519.PublicKey(mustBase58Decode("compr6CUsB5m2jS4Y3831ztGSTnDpnKJTKS95d64XVq"))
	NOOP_PROGRAM_ID                  = ed25519.PublicKey(mustBase58Decode("noopb9bkMVfRPU8AsbpTUg8AQkHtKwMYZiFUjNRtMmV"))
	REGISTERED_PROGRAM_PDA           = ed25519.PublicKey(mustBase58Decode("35hkDgaAKwMCaxRz2ocSZ6NaUrtKkyNqU6c4RV3tYJRh"))
	ACCOUNT_COMPRESSION_AUTHORITY_ID = ed25519.PublicKey(mustBase58Decode("HwXnGK3tPkkVY6P439H2p68AxpeuWXd5PcrAxFpbmfbA"))

	SYSTEM_PROGRAM_ID    = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
	SPL_TOKEN_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
)

const (
	// MaxTokenPools is the number of token pools the program allows per mint.
	MaxTokenPools = 5

	pdaCacheBudget = 1024
)

// Program is the identity of a deployed compressed token program along with
// the Light Protocol accounts it cooperates with. Values are passed
// explicitly so callers targeting different deployments never interfere.
type Program struct {
	ID                          ed25519.PublicKey
	LightSystemProgram          ed25519.PublicKey
	AccountCompressionProgram   ed25519.PublicKey
	AccountCompressionAuthority ed25519.PublicKey
	RegisteredProgramPda        ed25519.PublicKey
	NoopProgram                 ed25519.PublicKey
	SystemProgram               ed25519.PublicKey
	TokenProgram                ed25519.PublicKey

	pdas cache.Cache
}

// DefaultProgram returns the mainnet deployment.
func DefaultProgram() *Program {
	return NewProgram(&Program{
		ID:                          PROGRAM_ID,
		LightSystemProgram:          LIGHT_SYSTEM_PROGRAM_ID,
		AccountCompressionProgram:   ACCOUNT_COMPRESSION_PROGRAM_ID,
		AccountCompressionAuthority: ACCOUNT_COMPRESSION_AUTHORITY_ID,
		RegisteredProgramPda:        REGISTERED_PROGRAM_PDA,
		NoopProgram:                 NOOP_PROGRAM_ID,
		SystemProgram:               SYSTEM_PROGRAM_ID,
		TokenProgram:                SPL_TOKEN_PROGRAM_ID,
	})
}

// NewProgram returns a copy of identity with its own PDA cache. Unset
// system or token program fields fall back to the well known addresses.
func NewProgram(identity *Program) *Program {
	p := *identity
	if len(p.SystemProgram) == 0 {
		p.SystemProgram = SYSTEM_PROGRAM_ID
	}
	if len(p.TokenProgram) == 0 {
		p.TokenProgram = SPL_TOKEN_PROGRAM_ID
	}
	p.pdas = cache.NewCache(pdaCacheBudget)
	return &p
}
