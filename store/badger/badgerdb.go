// Package badger provides a store.KeyValStore backed by
// github.com/dgraph-io/badger/v4, used as the proof cache backend for
// long-running watchlist processes that should survive a restart
// without re-fetching and re-walking every proof.
package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"sparseth/store"
)

// Database is a badger key-val store.
type Database struct {
	db *badger.DB
}

// New creates a new badger-backed proof cache at the given path.
func New(path string) (*Database, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open proof cache: %w", err)
	}
	return &Database{db: db}, nil
}

// Close closes the underlying datastore.
func (db *Database) Close() error {
	return db.db.Close()
}

// Has checks if the specified key exists in the datastore.
func (db *Database) Has(key []byte) (bool, error) {
	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Get retrieves the value associated with the specified key, if
// present.
func (db *Database) Get(key []byte) ([]byte, error) {
	var val []byte
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrKeyNotFound
	}
	return val, err
}

// Put inserts the specified key-value pair into the datastore.
func (db *Database) Put(key, val []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// PutBatch inserts multiple key-value pairs using a single write
// batch.
func (db *Database) PutBatch(pairs map[string][]byte) error {
	wb := db.db.NewWriteBatch()
	defer wb.Cancel()
	for k, v := range pairs {
		if err := wb.Set([]byte(k), v); err != nil {
			return fmt.Errorf("failed to stage key %x: %w", k, err)
		}
	}
	return wb.Flush()
}

// Delete removes the specified key from the datastore.
func (db *Database) Delete(key []byte) error {
	return db.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Stat returns statistic data of the datastore.
func (db *Database) Stat() (string, error) {
	lsmSize, vlogSize := db.db.Size()
	return fmt.Sprintf("badger proof cache: lsm %d bytes, vlog %d bytes", lsmSize, vlogSize), nil
}
