package compression

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

type TreeType uint8

const (
	TreeTypeUnknown TreeType = iota
	TreeTypeStateV1
	TreeTypeStateV2
)

func (t TreeType) String() string {
	switch t {
	case TreeTypeStateV1:
		return "state_v1"
	case TreeTypeStateV2:
		return "state_v2"
	}
	return "unknown"
}

// TreeInfo identifies a state tree and its queue. NextTreeInfo is set while a
// tree is being rotated out, in which case new state goes to the successor.
type TreeInfo struct {
	Tree         ed25519.PublicKey
	Queue        ed25519.PublicKey
	TreeType     TreeType
	CpiContext   *ed25519.PublicKey
	NextTreeInfo *TreeInfo
}

// Active returns the tree new outputs should be written to.
func (t *TreeInfo) Active() *TreeInfo {
	if t.NextTreeInfo != nil {
		return t.NextTreeInfo
	}
	return t
}

// OutputAccount returns the account outputs reference. V2 trees are appended
// to through their queue.
func (t *TreeInfo) OutputAccount() ed25519.PublicKey {
	if t.TreeType == TreeTypeStateV2 {
		return t.Queue
	}
	return t.Tree
}

func (t *TreeInfo) String() string {
	return fmt.Sprintf(
		"TreeInfo{tree=%s,queue=%s,type=%s}",
		base58.Encode(t.Tree),
		base58.Encode(t.Queue),
		t.TreeType,
	)
}

// MerkleContext locates a compressed account leaf.
type MerkleContext struct {
	TreeInfo     TreeInfo
	LeafIndex    uint32
	ProveByIndex bool
}

type Hash [32]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

// CompressedTokenAccount is a compressed token account as returned by the
// indexer. It is read only once fetched.
type CompressedTokenAccount struct {
	Hash          Hash
	Mint          ed25519.PublicKey
	Owner         ed25519.PublicKey
	Amount        uint64
	Delegate      *ed25519.PublicKey
	IsFrozen      bool
	Lamports      uint64
	Tlv           []byte
	MerkleContext MerkleContext
}

// IsEmpty reports whether the account holds neither tokens nor lamports.
func (a *CompressedTokenAccount) IsEmpty() bool {
	return a.Amount == 0 && a.Lamports == 0
}

func (a *CompressedTokenAccount) HasDelegate(delegate ed25519.PublicKey) bool {
	return a.Delegate != nil && bytes.Equal(*a.Delegate, delegate)
}

func (a *CompressedTokenAccount) String() string {
	return fmt.Sprintf(
		"CompressedTokenAccount{hash=%s,owner=%s,amount=%d,lamports=%d,leaf=%d}",
		a.Hash,
		base58.Encode(a.Owner),
		a.Amount,
		a.Lamports,
		a.MerkleContext.LeafIndex,
	)
}

// TokenTransferOutputData is an output before its tree has been packed.
type TokenTransferOutputData struct {
	Owner    ed25519.PublicKey
	Amount   uint64
	Lamports *uint64
	Tlv      []byte
}

// ValidityProof proves inclusion of a set of input accounts. RootIndices is
// parallel to the inputs the proof was requested for. Proof is nil when every
// input is proven by index.
type ValidityProof struct {
	Proof       *compressedtoken.CompressedProof
	RootIndices []uint16
}

// CompressedProofOrZero returns the proof, or the zero proof that the
// instructions requiring a proof accept in its place.
func (v *ValidityProof) CompressedProofOrZero() compressedtoken.CompressedProof {
	if v == nil || v.Proof == nil {
		return compressedtoken.CompressedProof{}
	}
	return *v.Proof
}
