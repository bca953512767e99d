package compressedtoken

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
)

// getOptionalAccountMeta follows the Anchor convention of passing the program
// itself in place of an absent optional account.
func (p *Program) getOptionalAccountMeta(account *ed25519.PublicKey, isWritable bool) solana.AccountMeta {
	if account != nil {
		return solana.AccountMeta{
			PublicKey:  *account,
			IsWritable: isWritable,
		}
	}
	return solana.NewReadonlyAccountMeta(p.ID, false)
}

func (p *Program) getOptionalAccount(account ed25519.PublicKey) *ed25519.PublicKey {
	if keysEqual(account, p.ID) {
		return nil
	}
	return &account
}

// lightSystemAccountMetas are the accounts every instruction needs to CPI
// into the light system program, in program order.
func (p *Program) lightSystemAccountMetas() []solana.AccountMeta {
	return []solana.AccountMeta{
		solana.NewReadonlyAccountMeta(p.LightSystemProgram, false),
		solana.NewReadonlyAccountMeta(p.RegisteredProgramPda, false),
		solana.NewReadonlyAccountMeta(p.NoopProgram, false),
		solana.NewReadonlyAccountMeta(p.AccountCompressionAuthority, false),
		solana.NewReadonlyAccountMeta(p.AccountCompressionProgram, false),
	}
}

// compiledInstruction is an instruction of this program pulled from a
// compiled message, with account indices resolved to keys.
type compiledInstruction struct {
	accounts []ed25519.PublicKey
	data     []byte
}

func (p *Program) getCompiledInstruction(m solana.Message, index int, minAccounts int) (*compiledInstruction, error) {
	if index >= len(m.Instructions) {
		return nil, errors.Errorf("instruction doesn't exist at %d", index)
	}

	i := m.Instructions[index]
	if int(i.ProgramIndex) >= len(m.Accounts) || !keysEqual(m.Accounts[i.ProgramIndex], p.ID) {
		return nil, solana.ErrIncorrectProgram
	}
	if len(i.Accounts) < minAccounts {
		return nil, errors.Errorf("invalid number of accounts: %d (expected at least %d)", len(i.Accounts), minAccounts)
	}

	accounts := make([]ed25519.PublicKey, len(i.Accounts))
	for j, accountIndex := range i.Accounts {
		if int(accountIndex) >= len(m.Accounts) {
			return nil, errors.Errorf("account index out of range: %d", accountIndex)
		}
		accounts[j] = m.Accounts[accountIndex]
	}

	return &compiledInstruction{
		accounts: accounts,
		data:     i.Data,
	}, nil
}

// remainingAccountMetas rebuilds the metas that follow the fixed accounts
// using the permissions recorded in the message header.
func remainingAccountMetas(m solana.Message, keys []ed25519.PublicKey) []solana.AccountMeta {
	if len(keys) == 0 {
		return nil
	}

	metas := make([]solana.AccountMeta, len(keys))
	for i, key := range keys {
		metas[i] = solana.AccountMeta{
			PublicKey:  key,
			IsSigner:   isSigner(m, key),
			IsWritable: isWritable(m, key),
		}
	}
	return metas
}

func isSigner(m solana.Message, key ed25519.PublicKey) bool {
	for i := 0; i < int(m.Header.NumSignatures) && i < len(m.Accounts); i++ {
		if keysEqual(m.Accounts[i], key) {
			return true
		}
	}
	return false
}

func isWritable(m solana.Message, key ed25519.PublicKey) bool {
	numSigners := int(m.Header.NumSignatures)
	numWritableSigners := numSigners - int(m.Header.NumReadonlySigned)
	numWritableUnsigned := len(m.Accounts) - numSigners - int(m.Header.NumReadOnly)

	for i, account := range m.Accounts {
		if !keysEqual(account, key) {
			continue
		}
		if i < numSigners {
			return i < numWritableSigners
		}
		return i-numSigners < numWritableUnsigned
	}
	return false
}

// GenericInstructionAccounts are the accounts approve and revoke operate on.
// Freeze, thaw and burn extend them.
type GenericInstructionAccounts struct {
	FeePayer        ed25519.PublicKey
	Authority       ed25519.PublicKey
	CpiAuthorityPda ed25519.PublicKey

	RemainingAccounts []solana.AccountMeta
}

const genericInstructionFixedAccounts = 10

// genericAccountMetas lays out fee payer, authority, cpi authority, the light
// system accounts, the program itself and the system program.
func (p *Program) genericAccountMetas(accounts *GenericInstructionAccounts) []solana.AccountMeta {
	metas := []solana.AccountMeta{
		{
			PublicKey:  accounts.FeePayer,
			IsWritable: true,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.Authority,
			IsWritable: false,
			IsSigner:   true,
		},
		{
			PublicKey:  accounts.CpiAuthorityPda,
			IsWritable: false,
			IsSigner:   false,
		},
	}
	metas = append(metas, p.lightSystemAccountMetas()...)
	metas = append(metas,
		solana.NewReadonlyAccountMeta(p.ID, false),
		solana.NewReadonlyAccountMeta(p.SystemProgram, false),
	)
	return metas
}

func decompileGenericAccounts(m solana.Message, accounts []ed25519.PublicKey, fixed int) GenericInstructionAccounts {
	return GenericInstructionAccounts{
		FeePayer:          accounts[0],
		Authority:         accounts[1],
		CpiAuthorityPda:   accounts[2],
		RemainingAccounts: remainingAccountMetas(m, accounts[fixed:]),
	}
}
