package store

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// headerKeyPrefix namespaces HeaderCache's keys within a KeyValStore
// that may also hold a ProofCache's entries.
var headerKeyPrefix = []byte("hdr:")

// HeaderCache memoizes the raw RLP encoding of a block header by its
// hash, so a watcher never re-fetches debug_getRawHeader for a block
// it has already bound to its own hash once.
type HeaderCache struct {
	kv KeyValStore
}

// NewHeaderCache wraps an existing key-val store as a header cache.
func NewHeaderCache(kv KeyValStore) *HeaderCache {
	return &HeaderCache{kv: kv}
}

// Get returns the cached raw header RLP for hash, if present.
func (c *HeaderCache) Get(hash common.Hash) ([]byte, bool, error) {
	raw, err := c.kv.Get(headerKey(hash))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get header %s: %w", hash, err)
	}
	return raw, true, nil
}

// Put stores the raw header RLP for hash.
func (c *HeaderCache) Put(hash common.Hash, headerRLP []byte) error {
	if err := c.kv.Put(headerKey(hash), headerRLP); err != nil {
		return fmt.Errorf("store: put header %s: %w", hash, err)
	}
	return nil
}

// headerKey generates a unique key for a block header.
//
// headerKey = hdr:<hash>
func headerKey(hash common.Hash) []byte {
	key := make([]byte, 0, len(headerKeyPrefix)+common.HashLength)
	key = append(key, headerKeyPrefix...)
	key = append(key, hash[:]...)
	return key
}
