package photon

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"strconv"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
)

// Tree types as numbered by the indexer.
const (
	indexerTreeTypeStateV1   = 1
	indexerTreeTypeAddressV1 = 2
	indexerTreeTypeStateV2   = 3
	indexerTreeTypeAddressV2 = 4
)

const (
	tokenStateInitialized = "initialized"
	tokenStateFrozen      = "frozen"
)

// uint64Value accepts integers encoded either as JSON numbers or strings.
// The indexer uses strings for values that may exceed 2^53.
type uint64Value uint64

func (v *uint64Value) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = 0
		return nil
	}

	parsed, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return errors.Wrap(err, "invalid u64 value")
	}
	*v = uint64Value(parsed)
	return nil
}

type rpcContext struct {
	Slot uint64 `json:"slot"`
}

type tokenAccountsResponse struct {
	Context rpcContext `json:"context"`
	Value   struct {
		Cursor *string            `json:"cursor"`
		Items  []tokenAccountItem `json:"items"`
	} `json:"value"`
}

type tokenAccountItem struct {
	Account   accountJSON    `json:"account"`
	TokenData *tokenDataJSON `json:"tokenData"`
}

type accountJSON struct {
	Hash         string           `json:"hash"`
	Lamports     uint64Value      `json:"lamports"`
	LeafIndex    uint32           `json:"leafIndex"`
	ProveByIndex bool             `json:"proveByIndex"`
	Data         *accountDataJSON `json:"data"`
	TreeInfo     treeInfoJSON     `json:"treeInfo"`
}

type accountDataJSON struct {
	Discriminator uint64Value `json:"discriminator"`
	Data          string      `json:"data"`
	DataHash      string      `json:"dataHash"`
}

type treeInfoJSON struct {
	Tree         string        `json:"tree"`
	Queue        string        `json:"queue"`
	TreeType     uint8         `json:"treeType"`
	CpiContext   *string       `json:"cpiContext"`
	NextTreeInfo *treeInfoJSON `json:"nextTreeInfo"`
}

type tokenDataJSON struct {
	Mint     string      `json:"mint"`
	Owner    string      `json:"owner"`
	Amount   uint64Value `json:"amount"`
	Delegate *string     `json:"delegate"`
	State    string      `json:"state"`
	Tlv      *string     `json:"tlv"`
}

type validityProofResponse struct {
	Context rpcContext        `json:"context"`
	Value   validityProofJSON `json:"value"`
}

type validityProofJSON struct {
	CompressedProof *compressedProofJSON `json:"compressedProof"`
	Accounts        []provenAccountJSON  `json:"accounts"`
}

// compressedProofJSON holds the proof points as arrays of byte values.
type compressedProofJSON struct {
	A [32]byte `json:"a"`
	B [64]byte `json:"b"`
	C [32]byte `json:"c"`
}

type provenAccountJSON struct {
	Hash      string `json:"hash"`
	RootIndex struct {
		RootIndex    uint16 `json:"rootIndex"`
		ProveByIndex bool   `json:"proveByIndex"`
	} `json:"rootIndex"`
}

func (item *tokenAccountItem) toCompressedTokenAccount() (*compression.CompressedTokenAccount, error) {
	hash, err := decodeHash(item.Account.Hash)
	if err != nil {
		return nil, err
	}

	treeInfo, err := item.Account.TreeInfo.toTreeInfo()
	if err != nil {
		return nil, err
	}

	tokenData, err := item.tokenData()
	if err != nil {
		return nil, err
	}

	return &compression.CompressedTokenAccount{
		Hash:     hash,
		Mint:     tokenData.Mint,
		Owner:    tokenData.Owner,
		Amount:   tokenData.Amount,
		Delegate: tokenData.Delegate,
		IsFrozen: tokenData.IsFrozen(),
		Lamports: uint64(item.Account.Lamports),
		Tlv:      tokenData.Tlv,
		MerkleContext: compression.MerkleContext{
			TreeInfo:     *treeInfo,
			LeafIndex:    item.Account.LeafIndex,
			ProveByIndex: item.Account.ProveByIndex,
		},
	}, nil
}

// tokenData prefers the account's raw data, which is what the account hash
// commits to, over the indexer's parsed view.
func (item *tokenAccountItem) tokenData() (*compressedtoken.TokenData, error) {
	if item.Account.Data != nil && len(item.Account.Data.Data) > 0 {
		raw, err := base64.StdEncoding.DecodeString(item.Account.Data.Data)
		if err != nil {
			return nil, errors.Wrap(err, "invalid account data encoding")
		}

		var tokenData compressedtoken.TokenData
		if err := tokenData.Unmarshal(raw); err != nil {
			return nil, err
		}
		return &tokenData, nil
	}

	if item.TokenData == nil {
		return nil, errors.Wrap(ErrInvalidTokenData, "account has no token data")
	}
	return item.TokenData.toTokenData()
}

func (t *tokenDataJSON) toTokenData() (*compressedtoken.TokenData, error) {
	mint, err := decodePublicKey(t.Mint)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mint")
	}

	owner, err := decodePublicKey(t.Owner)
	if err != nil {
		return nil, errors.Wrap(err, "invalid owner")
	}

	tokenData := &compressedtoken.TokenData{
		Mint:   mint,
		Owner:  owner,
		Amount: uint64(t.Amount),
	}

	if t.Delegate != nil {
		delegate, err := decodePublicKey(*t.Delegate)
		if err != nil {
			return nil, errors.Wrap(err, "invalid delegate")
		}
		tokenData.Delegate = &delegate
	}

	switch t.State {
	case tokenStateInitialized:
		tokenData.State = compressedtoken.AccountStateInitialized
	case tokenStateFrozen:
		tokenData.State = compressedtoken.AccountStateFrozen
	default:
		return nil, errors.Wrapf(ErrInvalidTokenData, "unknown state %q", t.State)
	}

	if t.Tlv != nil && len(*t.Tlv) > 0 {
		tlv, err := base64.StdEncoding.DecodeString(*t.Tlv)
		if err != nil {
			return nil, errors.Wrap(err, "invalid tlv encoding")
		}
		tokenData.Tlv = tlv
	}

	return tokenData, nil
}

func (t *treeInfoJSON) toTreeInfo() (*compression.TreeInfo, error) {
	var treeType compression.TreeType
	switch t.TreeType {
	case indexerTreeTypeStateV1:
		treeType = compression.TreeTypeStateV1
	case indexerTreeTypeStateV2:
		treeType = compression.TreeTypeStateV2
	case indexerTreeTypeAddressV1, indexerTreeTypeAddressV2:
		return nil, errors.Wrap(ErrUnsupportedTree, "address trees don't hold token accounts")
	default:
		return nil, errors.Wrapf(ErrUnsupportedTree, "tree type %d", t.TreeType)
	}

	tree, err := decodePublicKey(t.Tree)
	if err != nil {
		return nil, errors.Wrap(err, "invalid tree")
	}

	queue, err := decodePublicKey(t.Queue)
	if err != nil {
		return nil, errors.Wrap(err, "invalid queue")
	}

	treeInfo := &compression.TreeInfo{
		Tree:     tree,
		Queue:    queue,
		TreeType: treeType,
	}

	if t.CpiContext != nil {
		cpiContext, err := decodePublicKey(*t.CpiContext)
		if err != nil {
			return nil, errors.Wrap(err, "invalid cpi context")
		}
		treeInfo.CpiContext = &cpiContext
	}

	if t.NextTreeInfo != nil {
		next, err := t.NextTreeInfo.toTreeInfo()
		if err != nil {
			return nil, errors.Wrap(err, "invalid next tree info")
		}
		treeInfo.NextTreeInfo = next
	}

	return treeInfo, nil
}

func (v *validityProofJSON) toValidityProof(hashes []compression.Hash) (*compression.ValidityProof, error) {
	if len(v.Accounts) != len(hashes) {
		return nil, errors.Wrapf(ErrProofMismatch, "requested %d hashes, got %d accounts", len(hashes), len(v.Accounts))
	}

	proof := &compression.ValidityProof{
		RootIndices: make([]uint16, len(hashes)),
	}

	for i, account := range v.Accounts {
		hash, err := decodeHash(account.Hash)
		if err != nil {
			return nil, err
		}
		if hash != hashes[i] {
			return nil, errors.Wrapf(ErrProofMismatch, "expected %s at position %d, got %s", hashes[i], i, hash)
		}

		if !account.RootIndex.ProveByIndex {
			proof.RootIndices[i] = account.RootIndex.RootIndex
		}
	}

	if v.CompressedProof != nil {
		proof.Proof = &compressedtoken.CompressedProof{
			A: v.CompressedProof.A,
			B: v.CompressedProof.B,
			C: v.CompressedProof.C,
		}
	}

	return proof, nil
}

func decodePublicKey(encoded string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(encoded)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid public key length %d", len(decoded))
	}
	return decoded, nil
}

func decodeHash(encoded string) (compression.Hash, error) {
	var hash compression.Hash

	decoded, err := base58.Decode(encoded)
	if err != nil {
		return hash, errors.Wrap(err, "invalid hash")
	}
	if len(decoded) != len(hash) {
		return hash, errors.Errorf("invalid hash length %d", len(decoded))
	}

	copy(hash[:], decoded)
	return hash, nil
}
