// Package photon is a client for the Photon compression indexer. It serves
// the compressed token accounts and validity proofs the instruction builder
// consumes.
package photon

import (
	"context"
	"crypto/ed25519"
	"net/http"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/ybbus/jsonrpc"

	"github.com/code-payments/compressed-token-sdk/pkg/compression"
	"github.com/code-payments/compressed-token-sdk/pkg/metrics"
	"github.com/code-payments/compressed-token-sdk/pkg/rate"
)

const (
	metricsStructName = "photon.client"

	methodGetCompressedTokenAccountsByOwner    = "getCompressedTokenAccountsByOwnerV2"
	methodGetCompressedTokenAccountsByDelegate = "getCompressedTokenAccountsByDelegateV2"
	methodGetValidityProof                     = "getValidityProofV2"
	methodGetIndexerSlot                       = "getIndexerSlot"

	// Reference: https://github.com/solana-labs/solana/blob/71e9958e061493d7545bd28d4ac7a85aaed6ffbb/client/src/rpc_custom_error.rs#L11
	rpcNodeUnhealthyCode = -32005
)

var (
	ErrRateLimited      = errors.New("rate limited")
	ErrServiceError     = errors.New("service error")
	ErrRepeatedCursor   = errors.New("indexer returned a cursor it already served")
	ErrProofMismatch    = errors.New("validity proof does not match the requested hashes")
	ErrUnsupportedTree  = errors.New("unsupported tree type")
	ErrInvalidTokenData = errors.New("invalid token data")
)

// Client fetches compressed state from a Photon indexer.
type Client struct {
	log      *logrus.Entry
	conf     *conf
	endpoint string
	client   jsonrpc.RPCClient
	limiter  rate.Limiter
}

// New returns a client for the indexer at endpoint.
func New(endpoint string, configProvider ConfigProvider) *Client {
	return NewWithRPCOptions(endpoint, nil, configProvider)
}

// NewWithRPCOptions returns a client configured with the specified RPC
// options. Without an HTTP client, one bounded by the configured request
// timeout is used.
func NewWithRPCOptions(endpoint string, opts *jsonrpc.RPCClientOpts, configProvider ConfigProvider) *Client {
	conf := configProvider()

	if opts == nil {
		opts = &jsonrpc.RPCClientOpts{}
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: conf.requestTimeout.Get(context.Background()),
		}
	}

	return &Client{
		log:      logrus.StandardLogger().WithField("type", "photon/client"),
		conf:     conf,
		endpoint: endpoint,
		client:   jsonrpc.NewClientWithOpts(endpoint, opts),
		limiter:  rate.NewLimiter(float64(conf.requestsPerSecond.Get(context.Background()))),
	}
}

// GetCompressedTokenAccountsByOwner returns every compressed token account
// held by owner, optionally restricted to a mint, following the indexer's
// cursor until it's exhausted.
func (c *Client) GetCompressedTokenAccountsByOwner(ctx context.Context, owner, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error) {
	return metrics.Traced(ctx, metricsStructName, "GetCompressedTokenAccountsByOwner", func(tracer *metrics.MethodTracer) ([]*compression.CompressedTokenAccount, error) {
		accounts, err := c.getTokenAccounts(ctx, methodGetCompressedTokenAccountsByOwner, "owner", owner, mint)
		tracer.AddAttribute("accounts", len(accounts))
		return accounts, err
	})
}

// GetCompressedTokenAccountsByDelegate returns every compressed token account
// delegated to delegate, optionally restricted to a mint.
func (c *Client) GetCompressedTokenAccountsByDelegate(ctx context.Context, delegate, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error) {
	return metrics.Traced(ctx, metricsStructName, "GetCompressedTokenAccountsByDelegate", func(tracer *metrics.MethodTracer) ([]*compression.CompressedTokenAccount, error) {
		accounts, err := c.getTokenAccounts(ctx, methodGetCompressedTokenAccountsByDelegate, "delegate", delegate, mint)
		tracer.AddAttribute("accounts", len(accounts))
		return accounts, err
	})
}

func (c *Client) getTokenAccounts(ctx context.Context, method, keyName string, key, mint ed25519.PublicKey) ([]*compression.CompressedTokenAccount, error) {
	log := c.log.WithFields(logrus.Fields{
		"method": method,
		keyName:  base58.Encode(key),
	})

	params := map[string]interface{}{
		keyName: base58.Encode(key),
	}
	if len(mint) > 0 {
		params["mint"] = base58.Encode(mint)
	}
	if limit := c.conf.pageLimit.Get(ctx); limit > 0 {
		params["limit"] = limit
	}

	var accounts []*compression.CompressedTokenAccount
	seen := make(map[string]struct{})
	for page := 0; ; page++ {
		var resp tokenAccountsResponse
		if err := c.call(ctx, &resp, method, params); err != nil {
			return nil, errors.Wrapf(err, "%s() failed to send request", method)
		}

		for _, item := range resp.Value.Items {
			account, err := item.toCompressedTokenAccount()
			if err != nil {
				log.WithError(err).Warn("failure parsing compressed token account")
				return nil, errors.Wrapf(err, "%s() returned an invalid account", method)
			}
			accounts = append(accounts, account)
		}

		if resp.Value.Cursor == nil || len(*resp.Value.Cursor) == 0 || len(resp.Value.Items) == 0 {
			log.WithFields(logrus.Fields{
				"pages":    page + 1,
				"accounts": len(accounts),
				"slot":     resp.Context.Slot,
			}).Trace("fetched compressed token accounts")
			return accounts, nil
		}

		cursor := *resp.Value.Cursor
		if _, ok := seen[cursor]; ok {
			return nil, errors.Wrapf(ErrRepeatedCursor, "cursor %s", cursor)
		}
		seen[cursor] = struct{}{}
		params["cursor"] = cursor
	}
}

// GetValidityProof requests a proof of inclusion for the accounts with the
// given hashes. Root indices in the result are parallel to hashes. Accounts
// the indexer proves by index get no root index and, if every account is
// proven by index, the proof itself is nil.
func (c *Client) GetValidityProof(ctx context.Context, hashes []compression.Hash) (*compression.ValidityProof, error) {
	return metrics.Traced(ctx, metricsStructName, "GetValidityProof", func(tracer *metrics.MethodTracer) (*compression.ValidityProof, error) {
		tracer.AddAttribute("hashes", len(hashes))
		return c.getValidityProof(ctx, hashes)
	})
}

func (c *Client) getValidityProof(ctx context.Context, hashes []compression.Hash) (*compression.ValidityProof, error) {
	encoded := make([]string, len(hashes))
	for i, hash := range hashes {
		encoded[i] = hash.String()
	}

	params := map[string]interface{}{
		"hashes":                encoded,
		"newAddressesWithTrees": []interface{}{},
	}

	var resp validityProofResponse
	if err := c.call(ctx, &resp, methodGetValidityProof, params); err != nil {
		return nil, errors.Wrapf(err, "%s() failed to send request", methodGetValidityProof)
	}

	return resp.Value.toValidityProof(hashes)
}

// GetIndexerSlot returns the latest slot the indexer has processed.
func (c *Client) GetIndexerSlot(ctx context.Context) (uint64, error) {
	return metrics.Traced(ctx, metricsStructName, "GetIndexerSlot", func(_ *metrics.MethodTracer) (uint64, error) {
		var slot uint64
		if err := c.call(ctx, &slot, methodGetIndexerSlot); err != nil {
			return 0, errors.Wrapf(err, "%s() failed to send request", methodGetIndexerSlot)
		}
		return slot, nil
	})
}

func (c *Client) call(ctx context.Context, out interface{}, method string, params ...interface{}) error {
	// The underlying client has no context support, so cancellation is only
	// observed between requests.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx, c.endpoint); err != nil {
		return errors.Wrap(ErrRateLimited, err.Error())
	}

	err := c.client.CallFor(out, method, params...)
	if err == nil {
		return nil
	}
	return c.handleRpcError(method, err)
}

func (c *Client) handleRpcError(method string, err error) error {
	rpcErr, ok := err.(*jsonrpc.RPCError)
	if !ok {
		if httpErr, ok := err.(*jsonrpc.HTTPError); ok {
			return c.handleStatusCode(method, httpErr.Code, err)
		}
		return err
	}
	return c.handleStatusCode(method, rpcErr.Code, err)
}

func (c *Client) handleStatusCode(method string, code int, err error) error {
	if code == http.StatusTooManyRequests {
		c.log.WithField("method", method).Error("rate limited")
		return errors.Wrap(ErrRateLimited, err.Error())
	}
	if code >= http.StatusInternalServerError || code == rpcNodeUnhealthyCode {
		return errors.Wrap(ErrServiceError, err.Error())
	}
	return err
}
