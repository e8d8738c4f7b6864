package sstpack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
)

const badgerManifest = "MANIFEST"

type badgerStore struct {
	db        *badger.DB
	batchSize int
}

func openBadger(path string, mode openMode, o *Options) (Store, error) {
	if mode == openExisting {
		// badger silently creates missing stores
		if _, err := os.Stat(filepath.Join(path, badgerManifest)); err != nil {
			return nil, fmt.Errorf("badger: no store at %s: %w", path, err)
		}
	}

	opts := badger.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.ReadOnly = mode == openExisting

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db, batchSize: o.BatchSize}, nil
}

func (s *badgerStore) Scan(fn func(key, value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.Key(), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// Ingest replays the tables through update transactions. It is not
// atomic across transactions.
func (s *badgerStore) Ingest(paths []string) error {
	var keys, vals [][]byte
	put := func(key, value []byte) {
		keys = append(keys, append([]byte(nil), key...))
		vals = append(vals, append([]byte(nil), value...))
	}
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		err := s.db.Update(func(txn *badger.Txn) error {
			for i := range keys {
				if err := txn.Set(keys[i], vals[i]); err != nil {
					return err
				}
			}
			return nil
		})
		keys, vals = keys[:0], vals[:0]
		return err
	}
	return loadTables(paths, s.batchSize, put, flush)
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
