package store

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"sparseth/verify"
)

// ProofCache memoizes a verified watchlist result by the
// (block, address, slot) triple that produced it, so a block already
// walked once is never re-walked for the same entry.
type ProofCache struct {
	kv KeyValStore
}

// NewProofCache wraps an existing key-val store as a proof cache.
func NewProofCache(kv KeyValStore) *ProofCache {
	return &ProofCache{kv: kv}
}

// Close closes the underlying store.
func (c *ProofCache) Close() error {
	return c.kv.Close()
}

// Get returns the cached result for the given triple, and whether an
// entry was present at all.
func (c *ProofCache) Get(blockHash common.Hash, address common.Address, slotKey common.Hash) (*verify.Account, *big.Int, bool, error) {
	raw, err := c.kv.Get(cacheKey(blockHash, address, slotKey))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil, false, nil
	}
	if err != nil {
		return nil, nil, false, err
	}
	account, value, err := decodeCacheEntry(raw)
	if err != nil {
		return nil, nil, false, err
	}
	return account, value, true, nil
}

// Put stores a verified result. A nil account records that the
// address had no account at this block; a nil value with a non-nil
// account records that the slot was unset.
func (c *ProofCache) Put(blockHash common.Hash, address common.Address, slotKey common.Hash, account *verify.Account, value *big.Int) error {
	return c.kv.Put(cacheKey(blockHash, address, slotKey), encodeCacheEntry(account, value))
}

// proofKeyPrefix namespaces ProofCache's keys within a KeyValStore
// that may also hold a HeaderCache's entries.
var proofKeyPrefix = []byte("proof:")

func cacheKey(blockHash common.Hash, address common.Address, slotKey common.Hash) []byte {
	key := make([]byte, 0, len(proofKeyPrefix)+common.HashLength+common.AddressLength+common.HashLength)
	key = append(key, proofKeyPrefix...)
	key = append(key, blockHash[:]...)
	key = append(key, address[:]...)
	key = append(key, slotKey[:]...)
	return key
}

// encodeCacheEntry packs a verified result into a flat byte layout:
// a presence byte, followed by the account's four fields and an
// optional storage value, each fixed-width.
func encodeCacheEntry(account *verify.Account, value *big.Int) []byte {
	if account == nil {
		return []byte{0}
	}

	out := make([]byte, 0, 1+8+32+32+32+1+32)
	out = append(out, 1)

	var nonceBuf [8]byte
	for i := 0; i < 8; i++ {
		nonceBuf[7-i] = byte(account.Nonce >> (8 * i))
	}
	out = append(out, nonceBuf[:]...)

	balance32 := uint256.MustFromBig(account.Balance).Bytes32()
	out = append(out, balance32[:]...)
	out = append(out, account.StorageRoot[:]...)
	out = append(out, account.CodeHash[:]...)

	if value == nil {
		return append(out, 0)
	}
	out = append(out, 1)
	value32 := uint256.MustFromBig(value).Bytes32()
	out = append(out, value32[:]...)
	return out
}

func decodeCacheEntry(raw []byte) (*verify.Account, *big.Int, error) {
	if len(raw) == 0 {
		return nil, nil, fmt.Errorf("store: empty cache entry")
	}
	if raw[0] == 0 {
		return nil, nil, nil
	}

	const accountLen = 1 + 8 + 32 + 32 + 32 + 1
	if len(raw) < accountLen {
		return nil, nil, fmt.Errorf("store: truncated cache entry")
	}

	var nonce uint64
	for _, b := range raw[1:9] {
		nonce = nonce<<8 | uint64(b)
	}
	balance := new(uint256.Int).SetBytes(raw[9:41]).ToBig()
	storageRoot := common.BytesToHash(raw[41:73])
	codeHash := common.BytesToHash(raw[73:105])

	account := &verify.Account{
		Nonce:       nonce,
		Balance:     balance,
		StorageRoot: storageRoot,
		CodeHash:    codeHash,
	}

	hasValue := raw[105]
	if hasValue == 0 {
		return account, nil, nil
	}
	if len(raw) < accountLen+32 {
		return nil, nil, fmt.Errorf("store: truncated cache entry value")
	}
	value := new(uint256.Int).SetBytes(raw[106:138]).ToBig()
	return account, value, nil
}
