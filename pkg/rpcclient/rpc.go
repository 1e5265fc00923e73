package rpcclient

import (
	"context"

	"github.com/ManticoreTechnologies/evrmore-rpc/pkg/rpc/result"
)

// The wrappers below are thin, strongly-typed shims over CallContext for the
// most commonly used node methods. Anything not covered here can be invoked
// through Invoke/CallContext directly.

// GetBlockCount returns the number of blocks in the longest blockchain.
func (c *Client) GetBlockCount(ctx context.Context) (int64, error) {
	var resp int64
	if err := c.performRequest(ctx, "getblockcount", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// GetBestBlockHash returns the hash of the best (tip) block in the most
// work-heavy chain.
func (c *Client) GetBestBlockHash(ctx context.Context) (string, error) {
	var resp string
	if err := c.performRequest(ctx, "getbestblockhash", nil, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// GetBlockHash returns the hash of the block at the given height.
func (c *Client) GetBlockHash(ctx context.Context, height int64) (string, error) {
	var resp string
	if err := c.performRequest(ctx, "getblockhash", []any{height}, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// GetBlock returns the block with the given hash with transactions
// represented by their IDs.
func (c *Client) GetBlock(ctx context.Context, hash string) (*result.Block, error) {
	var resp = new(result.Block)
	if err := c.performRequest(ctx, "getblock", []any{hash, 1}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBlockVerbose returns the block with the given hash with fully expanded
// transactions.
func (c *Client) GetBlockVerbose(ctx context.Context, hash string) (*result.BlockVerbose, error) {
	var resp = new(result.BlockVerbose)
	if err := c.performRequest(ctx, "getblock", []any{hash, 2}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetBlockHex returns the serialized block with the given hash as a hex
// string. The payload is immutable for a given hash, so it's served from the
// client's cache when possible.
func (c *Client) GetBlockHex(ctx context.Context, hash string) (string, error) {
	key := "block:" + hash
	if v, ok := c.rawCache.Get(key); ok {
		return v.(string), nil
	}
	var resp string
	if err := c.performRequest(ctx, "getblock", []any{hash, 0}, &resp); err != nil {
		return resp, err
	}
	c.rawCache.Add(key, resp)
	return resp, nil
}

// GetBlockchainInfo returns the current state of the blockchain.
func (c *Client) GetBlockchainInfo(ctx context.Context) (*result.BlockchainInfo, error) {
	var resp = new(result.BlockchainInfo)
	if err := c.performRequest(ctx, "getblockchaininfo", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetRawTransaction returns the decoded transaction with the given ID.
func (c *Client) GetRawTransaction(ctx context.Context, txid string) (*result.TransactionVerbose, error) {
	var resp = new(result.TransactionVerbose)
	if err := c.performRequest(ctx, "getrawtransaction", []any{txid, true}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetRawTransactionHex returns the serialized transaction with the given ID
// as a hex string, served from the cache when possible (a txid commits to
// the serialized form, so the payload never changes).
func (c *Client) GetRawTransactionHex(ctx context.Context, txid string) (string, error) {
	key := "tx:" + txid
	if v, ok := c.rawCache.Get(key); ok {
		return v.(string), nil
	}
	var resp string
	if err := c.performRequest(ctx, "getrawtransaction", []any{txid, false}, &resp); err != nil {
		return resp, err
	}
	c.rawCache.Add(key, resp)
	return resp, nil
}

// SendRawTransaction submits a serialized transaction to the node and
// returns the resulting transaction ID.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx string) (string, error) {
	var resp string
	if err := c.performRequest(ctx, "sendrawtransaction", []any{rawTx}, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// GetNetworkInfo returns information about the node's p2p network state.
func (c *Client) GetNetworkInfo(ctx context.Context) (*result.NetworkInfo, error) {
	var resp = new(result.NetworkInfo)
	if err := c.performRequest(ctx, "getnetworkinfo", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetMempoolInfo returns the active state of the transaction memory pool.
func (c *Client) GetMempoolInfo(ctx context.Context) (*result.MempoolInfo, error) {
	var resp = new(result.MempoolInfo)
	if err := c.performRequest(ctx, "getmempoolinfo", nil, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// ValidateAddress checks the given Evrmore address.
func (c *Client) ValidateAddress(ctx context.Context, address string) (*result.ValidateAddress, error) {
	var resp = new(result.ValidateAddress)
	if err := c.performRequest(ctx, "validateaddress", []any{address}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetAssetData returns metadata of the named Evrmore asset.
func (c *Client) GetAssetData(ctx context.Context, name string) (*result.AssetData, error) {
	var resp = new(result.AssetData)
	if err := c.performRequest(ctx, "getassetdata", []any{name}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
