package verify

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"sparseth/internal/rlp"
	"sparseth/mpt"
)

// VerifySlot verifies a Merkle proof for a storage slot against a
// storage root. If the account has no storage at all, its storage
// root equals the empty trie root and is accompanied by a single
// placeholder proof node rather than a real trie node; that case is
// resolved here rather than in mpt.Walk, which only ever walks real
// nodes. An absent slot is not an error: it returns the integer 0,
// the same as a slot that was explicitly set to 0.
func VerifySlot(storageRoot common.Hash, slotKey common.Hash, proofNodes [][]byte) (*big.Int, error) {
	if storageRoot == types.EmptyRootHash {
		return big.NewInt(0), nil
	}

	value, found, err := mpt.Walk(keyNibbles(slotKey[:]), proofNodes, storageRoot, crypto.Keccak256Hash)
	if err != nil {
		return nil, err
	}
	if !found {
		return big.NewInt(0), nil
	}

	item, err := rlp.Decode(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountRLP, err)
	}
	v, err := item.AsUint()
	if err != nil {
		return nil, fmt.Errorf("%w: storage value is not a byte string", ErrInvalidAccountRLP)
	}
	return v.ToBig(), nil
}

// Verify performs the full storage-inclusion check a watchlist entry
// needs: the header's hash binds it to the requested block, the
// header's state root binds the account, and the account's storage
// root binds the requested slot. ErrAccountNotFound is returned when
// the account proof establishes that the address has no account at
// this block; the returned value is the integer 0, not an error, when
// the slot itself is unset.
func Verify(headerRLP []byte, blockHash common.Hash, address common.Address, accountProof [][]byte, slotKey common.Hash, storageProof [][]byte) (*Account, *big.Int, error) {
	stateRoot, err := VerifyHeader(headerRLP, blockHash)
	if err != nil {
		return nil, nil, err
	}

	account, err := VerifyAccountProof(stateRoot, address, accountProof)
	if err != nil {
		return nil, nil, err
	}
	if account == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
	}

	value, err := VerifySlot(account.StorageRoot, slotKey, storageProof)
	if err != nil {
		return account, nil, err
	}
	return account, value, nil
}
