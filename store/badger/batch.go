package badger

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"sparseth/store"
)

type op struct {
	key []byte
	val []byte
	del bool
}

type batch struct {
	db  *Database
	wb  *badger.WriteBatch
	ops []*op
	sz  int
}

// NewBatch creates a new write-only batch.
func (db *Database) NewBatch() store.Batch {
	return &batch{db: db, wb: db.db.NewWriteBatch()}
}

// NewBatchWithSize creates a new batch with a pre-allocated buffer of
// the specified size.
func (db *Database) NewBatchWithSize(size int) store.Batch {
	return &batch{db: db, wb: db.db.NewWriteBatch(), ops: make([]*op, 0, size)}
}

func (b *batch) Put(key, val []byte) error {
	if err := b.wb.Set(key, val); err != nil {
		return fmt.Errorf("failed to put key %x: %w", key, err)
	}
	b.ops = append(b.ops, &op{key: store.CopyBytes(key), val: store.CopyBytes(val)})
	b.sz += len(key) + len(val)
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
	if err := b.wb.Delete(key); err != nil {
		return fmt.Errorf("failed to delete key %x: %w", key, err)
	}
	b.ops = append(b.ops, &op{key: store.CopyBytes(key), del: true})
	b.sz += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.sz
}

func (b *batch) Write() error {
	return b.wb.Flush()
}

func (b *batch) Reset() {
	b.wb.Cancel()
	b.wb = b.db.db.NewWriteBatch()
	b.ops = b.ops[:0]
	b.sz = 0
}

func (b *batch) Replay(w store.KeyValWriter) error {
	for _, o := range b.ops {
		if o.del {
			if err := w.Delete(o.key); err != nil {
				return fmt.Errorf("failed to delete key %x: %w", o.key, err)
			}
		} else if err := w.Put(o.key, o.val); err != nil {
			return fmt.Errorf("failed to put key %x: %w", o.key, err)
		}
	}
	return nil
}
