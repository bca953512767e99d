package pack

import (
	"crypto/ed25519"
	"math"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
)

// MaxTableSize is the number of keys addressable by a u8 index.
const MaxTableSize = math.MaxUint8 + 1

var ErrTableFull = errors.New("remaining accounts table is full")

// Table maps account keys to the u8 indices instruction data uses to refer
// to them. Indices are assigned in insertion order, starting at zero, and a
// key keeps the index it was first given.
//
// A table belongs to a single instruction and isn't safe for concurrent use.
type Table struct {
	entries *linkedhashmap.Map
}

func NewTable() *Table {
	return &Table{
		entries: linkedhashmap.New(),
	}
}

// Insert returns the index of key, adding it if it isn't present yet.
func (t *Table) Insert(key ed25519.PublicKey) (uint8, error) {
	if index, ok := t.Index(key); ok {
		return index, nil
	}

	size := t.entries.Size()
	if size >= MaxTableSize {
		return 0, ErrTableFull
	}

	stored := make(ed25519.PublicKey, len(key))
	copy(stored, key)

	index := uint8(size)
	t.entries.Put(string(stored), index)
	return index, nil
}

func (t *Table) Index(key ed25519.PublicKey) (uint8, bool) {
	value, ok := t.entries.Get(string(key))
	if !ok {
		return 0, false
	}
	return value.(uint8), true
}

func (t *Table) Len() int {
	return t.entries.Size()
}

// Keys returns the keys ordered by index.
func (t *Table) Keys() []ed25519.PublicKey {
	keys := make([]ed25519.PublicKey, 0, t.entries.Size())
	it := t.entries.Iterator()
	for it.Next() {
		keys = append(keys, ed25519.PublicKey(it.Key().(string)))
	}
	return keys
}

// AccountMetas converts the table into the remaining accounts of an
// instruction. Every entry is writable and none sign.
func (t *Table) AccountMetas() []solana.AccountMeta {
	return solana.NewWritableAccountMetas(t.Keys()...)
}
