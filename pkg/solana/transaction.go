package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"

	"golang.org/x/exp/slices"
)

const (
	// MaxTransactionSize taken from: https://github.com/solana-labs/solana/blob/39b3ac6a8d29e14faa1de73d8b46d390ad41797b/sdk/src/packet.rs#L9-L13
	MaxTransactionSize = 1232
)

type Signature [ed25519.SignatureSize]byte
type Blockhash [sha256.Size]byte

type MessageVersion uint8

const (
	MessageVersionLegacy MessageVersion = iota
	MessageVersion0
)

type Header struct {
	NumSignatures     byte
	NumReadonlySigned byte
	NumReadOnly       byte
}

type MessageAddressTableLookup struct {
	PublicKey       ed25519.PublicKey
	WritableIndexes []byte
	ReadonlyIndexes []byte
}

type Message struct {
	version             MessageVersion
	Header              Header
	Accounts            []ed25519.PublicKey
	RecentBlockhash     Blockhash
	Instructions        []CompiledInstruction
	AddressTableLookups []MessageAddressTableLookup
}

type Transaction struct {
	Signatures []Signature
	Message    Message
}

// NewTransaction compiles a legacy transaction where every account is
// referenced statically.
func NewTransaction(payer ed25519.PublicKey, instructions ...Instruction) Transaction {
	return compileTransaction(payer, nil, instructions)
}

// NewVersionedTransaction compiles a v0 transaction. Accounts that are neither
// signers nor programs are loaded from the first lookup table containing them,
// which is how large compressed token account tables fit in a single packet.
func NewVersionedTransaction(payer ed25519.PublicKey, addressLookupTables []AddressLookupTable, instructions []Instruction) Transaction {
	return compileTransaction(payer, addressLookupTables, instructions)
}

// tableLoads tracks the accounts a single lookup table contributes to a
// message.
type tableLoads struct {
	table    AddressLookupTable
	writable []byte
	readonly []byte
}

func compileTransaction(payer ed25519.PublicKey, addressLookupTables []AddressLookupTable, instructions []Instruction) Transaction {
	accounts := collectAccounts(payer, instructions)

	tables := make([]AddressLookupTable, len(addressLookupTables))
	copy(tables, addressLookupTables)
	slices.SortFunc(tables, compareAddressLookupTables)

	loads := make([]tableLoads, len(tables))
	for i := range tables {
		loads[i].table = tables[i]
	}

	var m Message
	for _, account := range accounts {
		if loadFromTable(loads, account) {
			continue
		}

		m.Accounts = append(m.Accounts, account.PublicKey)

		switch {
		case account.IsSigner && !account.IsWritable:
			m.Header.NumSignatures++
			m.Header.NumReadonlySigned++
		case account.IsSigner:
			m.Header.NumSignatures++
		case !account.IsWritable:
			m.Header.NumReadOnly++
		}
	}

	// Index references resolve against static accounts, then every table's
	// writable loads, then every table's readonly loads.
	resolved := append([]ed25519.PublicKey{}, m.Accounts...)
	for _, l := range loads {
		for _, index := range l.writable {
			resolved = append(resolved, l.table.Addresses[index])
		}
	}
	for _, l := range loads {
		for _, index := range l.readonly {
			resolved = append(resolved, l.table.Addresses[index])
		}
	}

	for _, ix := range instructions {
		compiled := CompiledInstruction{
			ProgramIndex: byte(indexOf(resolved, ix.Program)),
			Data:         ix.Data,
		}
		for _, a := range ix.Accounts {
			compiled.Accounts = append(compiled.Accounts, byte(indexOf(resolved, a.PublicKey)))
		}
		m.Instructions = append(m.Instructions, compiled)
	}

	for _, l := range loads {
		if len(l.writable) == 0 && len(l.readonly) == 0 {
			continue
		}
		m.AddressTableLookups = append(m.AddressTableLookups, MessageAddressTableLookup{
			PublicKey:       l.table.PublicKey,
			WritableIndexes: l.writable,
			ReadonlyIndexes: l.readonly,
		})
	}
	if len(m.AddressTableLookups) > 0 {
		m.version = MessageVersion0
	}

	// Optional accounts that were left unset still occupy a slot.
	for i := range m.Accounts {
		if len(m.Accounts[i]) == 0 {
			m.Accounts[i] = make([]byte, ed25519.PublicKeySize)
		}
	}

	return Transaction{
		Signatures: make([]Signature, m.Header.NumSignatures),
		Message:    m,
	}
}

// collectAccounts returns the unique accounts referenced by the payer and
// instructions in message order: payer first, then signers before
// non-signers, writable before readonly and programs last.
func collectAccounts(payer ed25519.PublicKey, instructions []Instruction) []AccountMeta {
	accounts := []AccountMeta{
		{
			PublicKey:  payer,
			IsSigner:   true,
			IsWritable: true,
			isPayer:    true,
		},
	}
	for _, ix := range instructions {
		accounts = append(accounts, AccountMeta{
			PublicKey: ix.Program,
			isProgram: true,
		})
		accounts = append(accounts, ix.Accounts...)
	}

	accounts = filterUnique(accounts)
	slices.SortFunc(accounts, compareAccountMetas)
	return accounts
}

func loadFromTable(loads []tableLoads, account AccountMeta) bool {
	if account.isPayer || account.IsSigner || account.isProgram {
		return false
	}

	for i := range loads {
		index, ok := loads[i].table.Lookup(account.PublicKey)
		if !ok {
			continue
		}

		if account.IsWritable {
			loads[i].writable = append(loads[i].writable, index)
		} else {
			loads[i].readonly = append(loads[i].readonly, index)
		}
		return true
	}
	return false
}

func (t *Transaction) SetBlockhash(bh Blockhash) {
	t.Message.RecentBlockhash = bh
}

// Size returns the size of the wire encoded transaction, including space for
// every required signature.
func (t Transaction) Size() int {
	return len(t.Marshal())
}

// Version returns the message version the transaction compiled to.
func (t Transaction) Version() MessageVersion {
	return t.Message.version
}

func filterUnique(accounts []AccountMeta) []AccountMeta {
	filtered := make([]AccountMeta, 0, len(accounts))

	for i := range accounts {
		existing := -1
		for j := range filtered {
			if bytes.Equal(accounts[i].PublicKey, filtered[j].PublicKey) {
				existing = j
				break
			}
		}

		if existing < 0 {
			filtered = append(filtered, accounts[i])
			continue
		}

		// Promote permissions when the same account is referenced again
		filtered[existing].IsSigner = filtered[existing].IsSigner || accounts[i].IsSigner
		filtered[existing].IsWritable = filtered[existing].IsWritable || accounts[i].IsWritable
		filtered[existing].isPayer = filtered[existing].isPayer || accounts[i].isPayer
	}

	return filtered
}

func indexOf(slice []ed25519.PublicKey, item ed25519.PublicKey) int {
	for i, val := range slice {
		if bytes.Equal(val, item) {
			return i
		}
	}

	return -1
}

func (v MessageVersion) String() string {
	switch v {
	case MessageVersionLegacy:
		return "legacy"
	case MessageVersion0:
		return "v0"
	}
	return "unknown"
}
