package solana

import (
	"bytes"
	"crypto/ed25519"

	"github.com/pkg/errors"
)

var (
	ErrIncorrectProgram     = errors.New("incorrect program")
	ErrIncorrectInstruction = errors.New("incorrect instruction")
)

// AccountMeta represents the account information required
// for building transactions.
type AccountMeta struct {
	PublicKey  ed25519.PublicKey
	IsSigner   bool
	IsWritable bool
	isPayer    bool
	isProgram  bool
}

// NewAccountMeta creates a new AccountMeta representing a writable
// account.
func NewAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: true,
	}
}

// NewReadonlyAccountMeta creates a new AccountMeta representing a readonly
// account.
func NewReadonlyAccountMeta(pub ed25519.PublicKey, isSigner bool) AccountMeta {
	return AccountMeta{
		PublicKey:  pub,
		IsSigner:   isSigner,
		IsWritable: false,
	}
}

// NewWritableAccountMetas returns a writable, non-signer AccountMeta for each
// key, preserving order.
func NewWritableAccountMetas(keys ...ed25519.PublicKey) []AccountMeta {
	metas := make([]AccountMeta, len(keys))
	for i, key := range keys {
		metas[i] = NewAccountMeta(key, false)
	}
	return metas
}

// compareAccountMetas orders accounts as messages list them: payer first,
// programs last, and otherwise signers before non-signers and writable
// before readonly. Ties are broken by key.
//
// Reference: https://docs.solana.com/transaction#account-addresses-format
func compareAccountMetas(a, b AccountMeta) int {
	switch {
	case a.isPayer != b.isPayer:
		return boolOrder(a.isPayer)
	case a.isProgram != b.isProgram:
		return -boolOrder(a.isProgram)
	case a.IsSigner != b.IsSigner:
		return boolOrder(a.IsSigner)
	case a.IsWritable != b.IsWritable:
		return boolOrder(a.IsWritable)
	}
	return bytes.Compare(a.PublicKey, b.PublicKey)
}

// boolOrder sorts true first.
func boolOrder(first bool) int {
	if first {
		return -1
	}
	return 1
}

// Instruction represents a transaction instruction.
type Instruction struct {
	Program  ed25519.PublicKey
	Accounts []AccountMeta
	Data     []byte
}

// NewInstruction creates a new instruction.
func NewInstruction(program ed25519.PublicKey, data []byte, accounts ...AccountMeta) Instruction {
	return Instruction{
		Program:  program,
		Data:     data,
		Accounts: accounts,
	}
}

// CompiledInstruction represents an instruction that has been compiled into a transaction.
type CompiledInstruction struct {
	ProgramIndex byte
	Accounts     []byte
	Data         []byte
}
