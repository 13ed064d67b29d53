// Package verify composes the hex-prefix/RLP decoders and the trie
// walker in package mpt into the account- and storage-shaped checks a
// storage-inclusion proof needs: binding a header to a state root,
// an account to that state root, and a storage slot to the account's
// storage root.
package verify

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"sparseth/internal/rlp"
	"sparseth/mpt"
)

// Account is the decoded content of a state trie leaf.
type Account struct {
	Nonce       uint64
	Balance     *big.Int
	StorageRoot common.Hash
	CodeHash    common.Hash
}

// VerifyAccountProof verifies a Merkle proof for an Ethereum account
// against a given state root. If the account does not exist, but the
// proof establishes that, (nil, nil) is returned.
func VerifyAccountProof(stateRoot common.Hash, address common.Address, proofNodes [][]byte) (*Account, error) {
	key := crypto.Keccak256(address[:])
	value, found, err := mpt.Walk(keyNibbles(key), proofNodes, stateRoot, crypto.Keccak256Hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return decodeAccount(value)
}

func decodeAccount(data []byte) (*Account, error) {
	item, err := rlp.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountRLP, err)
	}
	fields, err := item.AsList()
	if err != nil || len(fields) != 4 {
		return nil, fmt.Errorf("%w: expected a 4-item list", ErrInvalidAccountRLP)
	}

	nonce, err := fields[0].AsUint()
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrInvalidAccountRLP, err)
	}
	balance, err := fields[1].AsUint()
	if err != nil {
		return nil, fmt.Errorf("%w: balance: %v", ErrInvalidAccountRLP, err)
	}
	storageRoot := fields[2].AsBytes()
	codeHash := fields[3].AsBytes()
	if len(storageRoot) != common.HashLength || len(codeHash) != common.HashLength {
		return nil, fmt.Errorf("%w: storageRoot/codeHash must be 32 bytes", ErrInvalidAccountRLP)
	}

	return &Account{
		Nonce:       nonce.Uint64(),
		Balance:     balance.ToBig(),
		StorageRoot: common.BytesToHash(storageRoot),
		CodeHash:    common.BytesToHash(codeHash),
	}, nil
}

// keyNibbles expands a byte-string trie key into its nibble sequence.
func keyNibbles(b []byte) []byte {
	out := make([]byte, 0, 2*len(b))
	for _, c := range b {
		out = append(out, c>>4, c&0x0F)
	}
	return out
}
