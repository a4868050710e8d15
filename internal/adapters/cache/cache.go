// Package cache is the local BadgerDB mirror of the remote game store.
// Records are keyed by their store ID so incremental syncs only fetch the
// tail the mirror has not seen
package cache

import (
	"context"
	"encoding/binary"

	badger "github.com/dgraph-io/badger/v4"

	"atlasmeta/internal/platform/errors"
)

// Options configures the mirror. InMemory is for tests
type Options struct {
	Dir         string
	InMemory    bool
	MaxMemoryMB int64
}

// Store is an append-mostly KV mirror: key is the big-endian record ID,
// value is the raw store document
type Store struct {
	db *badger.DB
}

// Record pairs a store ID with its raw document
type Record struct {
	ID  uint64
	Doc []byte
}

// Open opens (or creates) the mirror at opts.Dir
func Open(opts Options) (*Store, error) {
	bo := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		bo = bo.WithInMemory(true).WithDir("").WithValueDir("")
	}
	// keep the sync cache modest: this runs alongside the aggregation pass
	mem := opts.MaxMemoryMB
	if mem <= 0 {
		mem = 64
	}
	bo = bo.
		WithNumVersionsToKeep(1).
		WithMemTableSize(mem * 1024 * 1024 / 4).
		WithBlockCacheSize(mem * 1024 * 1024 / 4).
		WithIndexCacheSize(mem * 1024 * 1024 / 8).
		WithLogger(nil)

	db, err := badger.Open(bo)
	if err != nil {
		return nil, errors.IOf("cache: open %s: %v", opts.Dir, err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return errors.IOf("cache: close: %v", err)
	}
	return nil
}

// Put upserts one record
func (s *Store) Put(ctx context.Context, rec Record) error {
	return s.PutBatch(ctx, []Record{rec})
}

// PutBatch upserts a page of records in one transaction
func (s *Store) PutBatch(ctx context.Context, recs []Record) error {
	if len(recs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, r := range recs {
			if err := txn.Set(key(r.ID), r.Doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.IOf("cache: put batch of %d: %v", len(recs), err)
	}
	return nil
}

// Get fetches one record by ID; ok is false when the ID is not mirrored
func (s *Store) Get(ctx context.Context, id uint64) (doc []byte, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		ok = true
		doc, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, false, errors.IOf("cache: get %d: %v", id, err)
	}
	return doc, ok, nil
}

// MaxID returns the highest record ID in the mirror; ok is false when the
// mirror is empty
func (s *Store) MaxID(ctx context.Context) (id uint64, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	err = s.db.View(func(txn *badger.Txn) error {
		io := badger.DefaultIteratorOptions
		io.Reverse = true
		io.PrefetchValues = false
		it := txn.NewIterator(io)
		defer it.Close()
		it.Rewind()
		if it.Valid() {
			id = binary.BigEndian.Uint64(it.Item().Key())
			ok = true
		}
		return nil
	})
	if err != nil {
		return 0, false, errors.IOf("cache: max id: %v", err)
	}
	return id, ok, nil
}

// Count returns the number of cached records
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		io := badger.DefaultIteratorOptions
		io.PrefetchValues = false
		it := txn.NewIterator(io)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, errors.IOf("cache: count: %v", err)
	}
	return n, nil
}

// All streams every cached record in ID order. fn returning an error stops
// the scan and surfaces the error
func (s *Store) All(ctx context.Context, fn func(rec Record) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		i := 0
		for it.Rewind(); it.Valid(); it.Next() {
			if i%1024 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			i++
			item := it.Item()
			id := binary.BigEndian.Uint64(item.Key())
			doc, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(Record{ID: id, Doc: doc}); err != nil {
				return err
			}
		}
		return nil
	})
	// fn errors pass through untouched so callers keep their own types
	return err
}

func key(id uint64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], id)
	return k[:]
}
