package photon

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/compression/builder"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
	"github.com/code-payments/compressed-token-sdk/pkg/testutil"
)

var (
	_ builder.AccountSource = (*Client)(nil)
	_ builder.ProofService  = (*Client)(nil)
)

type rpcRequest struct {
	ID     int                    `json:"id"`
	Method string                 `json:"method"`
	Params map[string]interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type handlerFunc func(req *rpcRequest) (interface{}, *rpcError)

type fakeIndexer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []*rpcRequest
	handler  handlerFunc
}

func newFakeIndexer(t *testing.T, handler handlerFunc) *fakeIndexer {
	f := &fakeIndexer{handler: handler}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		f.mu.Lock()
		f.requests = append(f.requests, &req)
		f.mu.Unlock()

		result, rpcErr := f.handler(&req)

		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeIndexer) getRequests() []*rpcRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*rpcRequest(nil), f.requests...)
}

func newTestClient(f *fakeIndexer, pageLimit uint64) *Client {
	return New(f.server.URL, withManualTestOverrides(&testOverrides{
		pageLimit:      pageLimit,
		requestTimeout: 5 * time.Second,
	}))
}

func context42() map[string]interface{} {
	return map[string]interface{}{"slot": 42}
}

func treeInfoValue(tree, queue ed25519.PublicKey, treeType int) map[string]interface{} {
	return map[string]interface{}{
		"tree":         base58.Encode(tree),
		"queue":        base58.Encode(queue),
		"treeType":     treeType,
		"cpiContext":   nil,
		"nextTreeInfo": nil,
	}
}

func newHash(b byte) compression.Hash {
	var hash compression.Hash
	hash[0] = b
	hash[31] = b
	return hash
}

func TestGetCompressedTokenAccountsByOwner_Paginated(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 7)
	owner, mint, delegate, tree, queue, nextTree, nextQueue := keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], keys[6]

	rawTokenData := (&compressedtoken.TokenData{
		Mint:     mint,
		Owner:    owner,
		Amount:   100,
		Delegate: &delegate,
		State:    compressedtoken.AccountStateFrozen,
		Tlv:      []byte{1, 2, 3},
	}).Marshal()

	rotatingTree := treeInfoValue(tree, queue, indexerTreeTypeStateV1)
	rotatingTree["nextTreeInfo"] = treeInfoValue(nextTree, nextQueue, indexerTreeTypeStateV2)

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		if req.Method != methodGetCompressedTokenAccountsByOwner {
			return nil, &rpcError{Code: -32601, Message: "method not found"}
		}

		if req.Params["cursor"] == nil {
			return map[string]interface{}{
				"context": context42(),
				"value": map[string]interface{}{
					"cursor": "page-2",
					"items": []interface{}{
						map[string]interface{}{
							"account": map[string]interface{}{
								"hash":         newHash(1).String(),
								"lamports":     0,
								"leafIndex":    7,
								"proveByIndex": false,
								"treeInfo":     rotatingTree,
								"data": map[string]interface{}{
									"discriminator": 2,
									"data":          base64.StdEncoding.EncodeToString(rawTokenData),
									"dataHash":      newHash(9).String(),
								},
							},
							"tokenData": nil,
						},
					},
				},
			}, nil
		}

		return map[string]interface{}{
			"context": context42(),
			"value": map[string]interface{}{
				"cursor": nil,
				"items": []interface{}{
					map[string]interface{}{
						"account": map[string]interface{}{
							"hash":         newHash(2).String(),
							"lamports":     "18446744073709551615",
							"leafIndex":    8,
							"proveByIndex": true,
							"treeInfo":     treeInfoValue(tree, queue, indexerTreeTypeStateV2),
						},
						"tokenData": map[string]interface{}{
							"mint":     base58.Encode(mint),
							"owner":    base58.Encode(owner),
							"amount":   "50",
							"delegate": nil,
							"state":    tokenStateInitialized,
							"tlv":      base64.StdEncoding.EncodeToString([]byte{4}),
						},
					},
				},
			},
		}, nil
	})
	client := newTestClient(f, 1)

	accounts, err := client.GetCompressedTokenAccountsByOwner(context.Background(), owner, mint)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	first := accounts[0]
	assert.Equal(t, newHash(1), first.Hash)
	assert.EqualValues(t, mint, first.Mint)
	assert.EqualValues(t, owner, first.Owner)
	assert.EqualValues(t, 100, first.Amount)
	require.NotNil(t, first.Delegate)
	assert.EqualValues(t, delegate, *first.Delegate)
	assert.True(t, first.IsFrozen)
	assert.Equal(t, []byte{1, 2, 3}, first.Tlv)
	assert.EqualValues(t, 7, first.MerkleContext.LeafIndex)
	assert.False(t, first.MerkleContext.ProveByIndex)
	assert.Equal(t, compression.TreeTypeStateV1, first.MerkleContext.TreeInfo.TreeType)
	require.NotNil(t, first.MerkleContext.TreeInfo.NextTreeInfo)
	assert.EqualValues(t, nextTree, first.MerkleContext.TreeInfo.NextTreeInfo.Tree)
	assert.Equal(t, compression.TreeTypeStateV2, first.MerkleContext.TreeInfo.NextTreeInfo.TreeType)
	assert.EqualValues(t, nextQueue, first.MerkleContext.TreeInfo.Active().OutputAccount())

	second := accounts[1]
	assert.Equal(t, newHash(2), second.Hash)
	assert.EqualValues(t, 50, second.Amount)
	assert.EqualValues(t, uint64(18446744073709551615), second.Lamports)
	assert.Nil(t, second.Delegate)
	assert.False(t, second.IsFrozen)
	assert.Equal(t, []byte{4}, second.Tlv)
	assert.True(t, second.MerkleContext.ProveByIndex)
	assert.Equal(t, compression.TreeTypeStateV2, second.MerkleContext.TreeInfo.TreeType)
	assert.EqualValues(t, queue, second.MerkleContext.TreeInfo.OutputAccount())

	requests := f.getRequests()
	require.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, base58.Encode(owner), req.Params["owner"])
		assert.Equal(t, base58.Encode(mint), req.Params["mint"])
		assert.EqualValues(t, 1, req.Params["limit"])
	}
	assert.Nil(t, requests[0].Params["cursor"])
	assert.Equal(t, "page-2", requests[1].Params["cursor"])
}

func TestGetCompressedTokenAccountsByDelegate(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)
	owner, mint, delegate, tree := keys[0], keys[1], keys[2], keys[3]

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return map[string]interface{}{
			"context": context42(),
			"value": map[string]interface{}{
				"cursor": "",
				"items": []interface{}{
					map[string]interface{}{
						"account": map[string]interface{}{
							"hash":      newHash(3).String(),
							"lamports":  1,
							"leafIndex": 0,
							"treeInfo":  treeInfoValue(tree, tree, indexerTreeTypeStateV1),
						},
						"tokenData": map[string]interface{}{
							"mint":     base58.Encode(mint),
							"owner":    base58.Encode(owner),
							"amount":   10,
							"delegate": base58.Encode(delegate),
							"state":    tokenStateInitialized,
						},
					},
				},
			},
		}, nil
	})
	client := newTestClient(f, 0)

	accounts, err := client.GetCompressedTokenAccountsByDelegate(context.Background(), delegate, nil)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.True(t, accounts[0].HasDelegate(delegate))
	assert.EqualValues(t, 1, accounts[0].Lamports)

	requests := f.getRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, methodGetCompressedTokenAccountsByDelegate, requests[0].Method)
	assert.Equal(t, base58.Encode(delegate), requests[0].Params["delegate"])
	assert.NotContains(t, requests[0].Params, "mint")
	assert.NotContains(t, requests[0].Params, "limit")
}

func TestGetCompressedTokenAccounts_RepeatedCursor(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	owner, mint, tree := keys[0], keys[1], keys[2]

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return map[string]interface{}{
			"context": context42(),
			"value": map[string]interface{}{
				"cursor": "stuck",
				"items": []interface{}{
					map[string]interface{}{
						"account": map[string]interface{}{
							"hash":     newHash(4).String(),
							"treeInfo": treeInfoValue(tree, tree, indexerTreeTypeStateV1),
						},
						"tokenData": map[string]interface{}{
							"mint":  base58.Encode(mint),
							"owner": base58.Encode(owner),
							"state": tokenStateInitialized,
						},
					},
				},
			},
		}, nil
	})
	client := newTestClient(f, 1)

	_, err := client.GetCompressedTokenAccountsByOwner(context.Background(), owner, mint)
	assert.True(t, errors.Is(err, ErrRepeatedCursor))
	assert.Len(t, f.getRequests(), 2)
}

func TestGetCompressedTokenAccounts_InvalidItems(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)
	owner, mint, tree := keys[0], keys[1], keys[2]

	validTokenData := func() map[string]interface{} {
		return map[string]interface{}{
			"mint":  base58.Encode(mint),
			"owner": base58.Encode(owner),
			"state": tokenStateInitialized,
		}
	}

	for _, tc := range []struct {
		name      string
		account   map[string]interface{}
		tokenData map[string]interface{}
		expected  error
	}{
		{
			name: "address tree",
			account: map[string]interface{}{
				"hash":     newHash(5).String(),
				"treeInfo": treeInfoValue(tree, tree, indexerTreeTypeAddressV2),
			},
			tokenData: validTokenData(),
			expected:  ErrUnsupportedTree,
		},
		{
			name: "unknown tree",
			account: map[string]interface{}{
				"hash":     newHash(5).String(),
				"treeInfo": treeInfoValue(tree, tree, 9),
			},
			tokenData: validTokenData(),
			expected:  ErrUnsupportedTree,
		},
		{
			name: "unknown state",
			account: map[string]interface{}{
				"hash":     newHash(5).String(),
				"treeInfo": treeInfoValue(tree, tree, indexerTreeTypeStateV1),
			},
			tokenData: func() map[string]interface{} {
				tokenData := validTokenData()
				tokenData["state"] = "closed"
				return tokenData
			}(),
			expected: ErrInvalidTokenData,
		},
		{
			name: "missing token data",
			account: map[string]interface{}{
				"hash":     newHash(5).String(),
				"treeInfo": treeInfoValue(tree, tree, indexerTreeTypeStateV1),
			},
			expected: ErrInvalidTokenData,
		},
		{
			name: "truncated raw data",
			account: map[string]interface{}{
				"hash":     newHash(5).String(),
				"treeInfo": treeInfoValue(tree, tree, indexerTreeTypeStateV1),
				"data": map[string]interface{}{
					"data": base64.StdEncoding.EncodeToString([]byte{1, 2, 3}),
				},
			},
			tokenData: validTokenData(),
			expected:  compressedtoken.ErrDecodeLayoutMismatch,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
				item := map[string]interface{}{"account": tc.account}
				if tc.tokenData != nil {
					item["tokenData"] = tc.tokenData
				}
				return map[string]interface{}{
					"context": context42(),
					"value": map[string]interface{}{
						"cursor": nil,
						"items":  []interface{}{item},
					},
				}, nil
			})
			client := newTestClient(f, 0)

			_, err := client.GetCompressedTokenAccountsByOwner(context.Background(), owner, mint)
			assert.True(t, errors.Is(err, tc.expected), err)
		})
	}
}

func TestGetValidityProof(t *testing.T) {
	hashes := []compression.Hash{newHash(1), newHash(2), newHash(3)}

	var a [32]byte
	var b [64]byte
	var c [32]byte
	a[0], b[63], c[31] = 1, 2, 3

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return map[string]interface{}{
			"context": context42(),
			"value": map[string]interface{}{
				"compressedProof": map[string]interface{}{"a": a, "b": b, "c": c},
				"accounts": []interface{}{
					map[string]interface{}{
						"hash":      hashes[0].String(),
						"rootIndex": map[string]interface{}{"rootIndex": 11, "proveByIndex": false},
					},
					map[string]interface{}{
						"hash":      hashes[1].String(),
						"rootIndex": map[string]interface{}{"rootIndex": 99, "proveByIndex": true},
					},
					map[string]interface{}{
						"hash":      hashes[2].String(),
						"rootIndex": map[string]interface{}{"rootIndex": 13, "proveByIndex": false},
					},
				},
				"addresses": []interface{}{},
			},
		}, nil
	})
	client := newTestClient(f, 0)

	proof, err := client.GetValidityProof(context.Background(), hashes)
	require.NoError(t, err)
	require.NotNil(t, proof.Proof)
	assert.Equal(t, a, proof.Proof.A)
	assert.Equal(t, b, proof.Proof.B)
	assert.Equal(t, c, proof.Proof.C)
	assert.Equal(t, []uint16{11, 0, 13}, proof.RootIndices)

	requests := f.getRequests()
	require.Len(t, requests, 1)
	assert.Equal(t, methodGetValidityProof, requests[0].Method)
	assert.Equal(t, []interface{}{hashes[0].String(), hashes[1].String(), hashes[2].String()}, requests[0].Params["hashes"])
}

func TestGetValidityProof_AllProvenByIndex(t *testing.T) {
	hashes := []compression.Hash{newHash(1)}

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return map[string]interface{}{
			"context": context42(),
			"value": map[string]interface{}{
				"compressedProof": nil,
				"accounts": []interface{}{
					map[string]interface{}{
						"hash":      hashes[0].String(),
						"rootIndex": map[string]interface{}{"rootIndex": 0, "proveByIndex": true},
					},
				},
			},
		}, nil
	})
	client := newTestClient(f, 0)

	proof, err := client.GetValidityProof(context.Background(), hashes)
	require.NoError(t, err)
	assert.Nil(t, proof.Proof)
	assert.True(t, proof.CompressedProofOrZero().IsZero())
	assert.Equal(t, []uint16{0}, proof.RootIndices)
}

func TestGetValidityProof_Mismatch(t *testing.T) {
	hashes := []compression.Hash{newHash(1), newHash(2)}

	for _, accounts := range [][]compression.Hash{
		{newHash(1)},
		{newHash(2), newHash(1)},
	} {
		f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
			var values []interface{}
			for _, hash := range accounts {
				values = append(values, map[string]interface{}{
					"hash":      hash.String(),
					"rootIndex": map[string]interface{}{"rootIndex": 1},
				})
			}
			return map[string]interface{}{
				"context": context42(),
				"value":   map[string]interface{}{"accounts": values},
			}, nil
		})
		client := newTestClient(f, 0)

		_, err := client.GetValidityProof(context.Background(), hashes)
		assert.True(t, errors.Is(err, ErrProofMismatch))
	}
}

func TestGetIndexerSlot(t *testing.T) {
	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return 1234, nil
	})
	client := newTestClient(f, 0)

	slot, err := client.GetIndexerSlot(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1234, slot)
	assert.Equal(t, methodGetIndexerSlot, f.getRequests()[0].Method)
}

func TestRPCErrors(t *testing.T) {
	for _, tc := range []struct {
		code     int
		expected error
	}{
		{code: http.StatusTooManyRequests, expected: ErrRateLimited},
		{code: rpcNodeUnhealthyCode, expected: ErrServiceError},
		{code: http.StatusServiceUnavailable, expected: ErrServiceError},
	} {
		f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
			return nil, &rpcError{Code: tc.code, Message: "failure"}
		})
		client := newTestClient(f, 0)

		_, err := client.GetIndexerSlot(context.Background())
		assert.True(t, errors.Is(err, tc.expected), err)
	}

	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return nil, &rpcError{Code: -32602, Message: "invalid params"}
	})
	client := newTestClient(f, 0)

	_, err := client.GetIndexerSlot(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrServiceError))
}

func TestCanceledContext(t *testing.T) {
	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return 1, nil
	})
	client := newTestClient(f, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetValidityProof(ctx, []compression.Hash{newHash(1)})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, f.getRequests())
}

func TestRequestRateLimit(t *testing.T) {
	f := newFakeIndexer(t, func(req *rpcRequest) (interface{}, *rpcError) {
		return 1, nil
	})
	client := New(f.server.URL, withManualTestOverrides(&testOverrides{
		requestTimeout:    5 * time.Second,
		requestsPerSecond: 1,
	}))

	_, err := client.GetIndexerSlot(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = client.GetIndexerSlot(ctx)
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Len(t, f.getRequests(), 1)
}
