package rpcproof

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"sparseth/store"
	"sparseth/verify"
)

// Provider fetches and verifies a storage-inclusion proof for a
// single (address, slot) watchlist entry at a given block. Unlike
// Client, whatever it returns has already been walked against the
// block's own state root.
type Provider struct {
	c       *Client
	headers *store.HeaderCache
}

// NewProvider wraps an RPC client with proof verification. headers
// may be nil, in which case every header is re-fetched over RPC.
func NewProvider(c *Client, headers *store.HeaderCache) *Provider {
	return &Provider{c: c, headers: headers}
}

// VerifySlotAtBlock fetches the account and storage proofs for addr's
// slot at blockHash and verifies them against the block header.
// verify.ErrAccountNotFound means the proof establishes the account
// does not exist; a zero value with a non-nil account means the slot
// is unset.
func (p *Provider) VerifySlotAtBlock(ctx context.Context, addr common.Address, slot common.Hash, blockHash common.Hash) (*verify.Account, *big.Int, error) {
	headerRLP, err := p.headerRLP(ctx, blockHash)
	if err != nil {
		return nil, nil, err
	}

	proof, err := p.c.GetProof(ctx, addr, []common.Hash{slot}, blockHash)
	if err != nil {
		return nil, nil, err
	}

	var storageProof [][]byte
	slotKey := crypto.Keccak256Hash(slot[:])
	for _, sp := range proof.StorageProof {
		if sp.Key == slot {
			storageProof = sp.Proof
			break
		}
	}
	if storageProof == nil && len(proof.StorageProof) > 0 {
		return nil, nil, fmt.Errorf("rpcproof: response missing storage proof for slot %s", slot)
	}

	return verify.Verify(headerRLP, blockHash, addr, proof.AccountProof, slotKey, storageProof)
}

// headerRLP returns the raw header RLP for blockHash, consulting and
// populating the header cache if one is configured.
func (p *Provider) headerRLP(ctx context.Context, blockHash common.Hash) ([]byte, error) {
	if p.headers != nil {
		if raw, ok, err := p.headers.Get(blockHash); err == nil && ok {
			return raw, nil
		}
	}

	raw, err := p.c.GetHeaderRLP(ctx, blockHash)
	if err != nil {
		return nil, err
	}
	if p.headers != nil {
		if err = p.headers.Put(blockHash, raw); err != nil {
			return nil, fmt.Errorf("rpcproof: cache header %s: %w", blockHash, err)
		}
	}
	return raw, nil
}
