package compression

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/code-payments/compressed-token-sdk/pkg/pointer"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/compressedtoken"
	"github.com/code-payments/compressed-token-sdk/pkg/testutil"
)

func TestTreeInfo(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	v1 := &TreeInfo{Tree: keys[0], Queue: keys[1], TreeType: TreeTypeStateV1}
	assert.Equal(t, v1, v1.Active())
	assert.Equal(t, keys[0], v1.OutputAccount())

	v2 := &TreeInfo{Tree: keys[2], Queue: keys[3], TreeType: TreeTypeStateV2}
	assert.Equal(t, keys[3], v2.OutputAccount())

	v1.NextTreeInfo = v2
	assert.Equal(t, v2, v1.Active())
}

func TestCompressedTokenAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	account := &CompressedTokenAccount{}
	assert.True(t, account.IsEmpty())

	account.Lamports = 1
	assert.False(t, account.IsEmpty())

	assert.False(t, account.HasDelegate(keys[0]))
	account.Delegate = pointer.PublicKey(keys[0])
	assert.True(t, account.HasDelegate(keys[0]))
	assert.False(t, account.HasDelegate(keys[1]))
}

func TestValidityProof_CompressedProofOrZero(t *testing.T) {
	var nilProof *ValidityProof
	assert.True(t, nilProof.CompressedProofOrZero().IsZero())
	assert.True(t, (&ValidityProof{}).CompressedProofOrZero().IsZero())

	proof := compressedtoken.CompressedProof{}
	proof.A[0] = 1
	assert.Equal(t, proof, (&ValidityProof{Proof: &proof}).CompressedProofOrZero())
}
