// Package rpcproof fetches eth_getProof results and raw block headers
// from an Ethereum JSON-RPC endpoint and hands them to package verify,
// so a caller never has to trust the RPC provider's own account or
// storage-value claims.
package rpcproof

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// StorageProofEntry is a single entry of an eth_getProof response's
// storageProof array.
type StorageProofEntry struct {
	Key   common.Hash `json:"key"`
	Proof [][]byte    `json:"proof"`
}

// Proof is the result of an eth_getProof call: the claimed account
// fields plus the Merkle proofs that back them. Nothing in Proof is
// trusted until package verify has walked its proofs.
type Proof struct {
	Address      common.Address
	Balance      *big.Int
	Nonce        uint64
	CodeHash     common.Hash
	StorageRoot  common.Hash
	AccountProof [][]byte
	StorageProof []*StorageProofEntry
}

func (p *Proof) UnmarshalJSON(msg []byte) error {
	var raw struct {
		Address      common.Address `json:"address"`
		Balance      *hexutil.Big   `json:"balance"`
		Nonce        hexutil.Uint64 `json:"nonce"`
		CodeHash     common.Hash    `json:"codeHash"`
		StorageRoot  common.Hash    `json:"storageHash"`
		AccountProof []string       `json:"accountProof"`
		StorageProof []struct {
			Key   common.Hash `json:"key"`
			Proof []string    `json:"proof"`
		} `json:"storageProof"`
	}
	if err := json.Unmarshal(msg, &raw); err != nil {
		return err
	}

	accountProof, err := decodeProofNodes(raw.AccountProof)
	if err != nil {
		return fmt.Errorf("account proof: %w", err)
	}

	storageProof := make([]*StorageProofEntry, len(raw.StorageProof))
	for i, sp := range raw.StorageProof {
		nodes, err := decodeProofNodes(sp.Proof)
		if err != nil {
			return fmt.Errorf("storage proof %d: %w", i, err)
		}
		storageProof[i] = &StorageProofEntry{Key: sp.Key, Proof: nodes}
	}

	p.Address = raw.Address
	p.Balance = raw.Balance.ToInt()
	p.Nonce = uint64(raw.Nonce)
	p.CodeHash = raw.CodeHash
	p.StorageRoot = raw.StorageRoot
	p.AccountProof = accountProof
	p.StorageProof = storageProof
	return nil
}

func decodeProofNodes(nodes []string) ([][]byte, error) {
	out := make([][]byte, len(nodes))
	for i, n := range nodes {
		b, err := hex.DecodeString(strings.TrimPrefix(n, "0x"))
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// Client is a thin wrapper around an Ethereum JSON-RPC endpoint,
// wrapping the three calls a storage-inclusion proof needs:
// eth_getProof, debug_getRawHeader and eth_getBlockByNumber.
type Client struct {
	c *rpc.Client
}

// NewClient connects to an Ethereum RPC provider at the given URL.
func NewClient(ctx context.Context, url string) (*Client, error) {
	c, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("rpcproof: dial %s: %w", url, err)
	}
	return &Client{c: c}, nil
}

// Close shuts down the underlying RPC connection.
func (c *Client) Close() error {
	c.c.Close()
	return nil
}

// GetProof fetches an eth_getProof result for the given account and
// storage slots at the given block.
func (c *Client) GetProof(ctx context.Context, account common.Address, slots []common.Hash, blockHash common.Hash) (*Proof, error) {
	slotStrings := make([]string, len(slots))
	for i, s := range slots {
		slotStrings[i] = s.Hex()
	}

	var resp *Proof
	if err := c.c.CallContext(ctx, &resp, "eth_getProof", account.Hex(), slotStrings, blockHash.Hex()); err != nil {
		return nil, fmt.Errorf("rpcproof: eth_getProof: %w", err)
	}
	return resp, nil
}

// GetHeaderRLP fetches the raw RLP encoding of the block header
// identified by blockHash, using the debug_getRawHeader method most
// full nodes expose alongside eth_getProof.
func (c *Client) GetHeaderRLP(ctx context.Context, blockHash common.Hash) ([]byte, error) {
	var resp hexutil.Bytes
	if err := c.c.CallContext(ctx, &resp, "debug_getRawHeader", blockHash.Hex()); err != nil {
		return nil, fmt.Errorf("rpcproof: debug_getRawHeader: %w", err)
	}
	return resp, nil
}

// GetBlockHash resolves a block tag ("latest", "finalized", "safe", or
// a 0x-prefixed block number) to the hash of that block.
func (c *Client) GetBlockHash(ctx context.Context, tag string) (common.Hash, error) {
	var resp struct {
		Hash common.Hash `json:"hash"`
	}
	if err := c.c.CallContext(ctx, &resp, "eth_getBlockByNumber", tag, false); err != nil {
		return common.Hash{}, fmt.Errorf("rpcproof: eth_getBlockByNumber: %w", err)
	}
	if resp.Hash == (common.Hash{}) {
		return common.Hash{}, fmt.Errorf("rpcproof: no block for tag %q", tag)
	}
	return resp.Hash, nil
}
