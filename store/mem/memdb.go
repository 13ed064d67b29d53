// Package mem provides an in-memory store.KeyValStore, used as the
// proof cache backend for short-lived processes and tests.
package mem

import (
	"fmt"
	"sync"

	"sparseth/store"
)

// Database is an in-memory key-value store.
type Database struct {
	db   map[string][]byte
	lock sync.RWMutex
}

// New creates a new in-memory database.
func New() *Database {
	return &Database{db: make(map[string][]byte)}
}

// Close deallocates the database. Any consecutive access fails with
// an error.
func (db *Database) Close() error {
	db.lock.Lock()
	defer db.lock.Unlock()
	db.db = nil
	return nil
}

// Has checks if the specified key exists in the database.
func (db *Database) Has(key []byte) (bool, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return false, store.ErrDbClosed
	}
	_, ok := db.db[string(key)]
	return ok, nil
}

// Get retrieves the value associated with the specified key, if
// present.
func (db *Database) Get(key []byte) ([]byte, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return nil, store.ErrDbClosed
	}
	if val, ok := db.db[string(key)]; ok {
		return store.CopyBytes(val), nil
	}
	return nil, store.ErrKeyNotFound
}

// Put inserts the specified key-value pair into the database.
func (db *Database) Put(key, value []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.db == nil {
		return store.ErrDbClosed
	}
	db.db[string(key)] = store.CopyBytes(value)
	return nil
}

// PutBatch inserts multiple key-value pairs atomically with respect
// to other callers of the store's lock.
func (db *Database) PutBatch(pairs map[string][]byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.db == nil {
		return store.ErrDbClosed
	}
	for k, v := range pairs {
		db.db[k] = store.CopyBytes(v)
	}
	return nil
}

// Delete removes the specified key from the database.
func (db *Database) Delete(key []byte) error {
	db.lock.Lock()
	defer db.lock.Unlock()
	if db.db == nil {
		return store.ErrDbClosed
	}
	delete(db.db, string(key))
	return nil
}

// Stat returns statistic data of the database.
func (db *Database) Stat() (string, error) {
	db.lock.RLock()
	defer db.lock.RUnlock()
	if db.db == nil {
		return "", store.ErrDbClosed
	}
	return fmt.Sprintf("memory proof cache: %d entries", len(db.db)), nil
}

// NewBatch creates a new write-only batch.
func (db *Database) NewBatch() store.Batch {
	return &batch{db: db}
}

// NewBatchWithSize creates a write-only batch with a pre-allocated
// buffer of the specified size.
func (db *Database) NewBatchWithSize(size int) store.Batch {
	return &batch{db: db, pairs: make([]pair, 0, size)}
}

type pair struct {
	key string
	val []byte
	del bool
}

type batch struct {
	db    *Database
	pairs []pair
	size  int
}

func (b *batch) Put(key, val []byte) error {
	b.pairs = append(b.pairs, pair{key: string(key), val: store.CopyBytes(val)})
	b.size += len(key) + len(val)
	return nil
}

func (b *batch) PutBatch(pairs map[string][]byte) error {
	for k, v := range pairs {
		if err := b.Put([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.pairs = append(b.pairs, pair{key: string(key), del: true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	if b.db.db == nil {
		return store.ErrDbClosed
	}
	for _, item := range b.pairs {
		if item.del {
			delete(b.db.db, item.key)
		} else {
			b.db.db[item.key] = item.val
		}
	}
	return nil
}

func (b *batch) Reset() {
	b.pairs = b.pairs[:0]
	b.size = 0
}

func (b *batch) Replay(w store.KeyValWriter) error {
	for _, item := range b.pairs {
		if item.del {
			if err := w.Delete([]byte(item.key)); err != nil {
				return err
			}
		} else if err := w.Put([]byte(item.key), item.val); err != nil {
			return err
		}
	}
	return nil
}
