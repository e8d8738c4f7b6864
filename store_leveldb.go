package sstpack

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type levelDBStore struct {
	db        *leveldb.DB
	batchSize int
}

func openLevelDB(path string, mode openMode, o *Options) (Store, error) {
	opts := &opt.Options{}
	if mode == openExisting {
		opts.ErrorIfMissing = true
		opts.ReadOnly = true
	}

	db, err := leveldb.OpenFile(path, opts)
	if err != nil {
		return nil, err
	}
	return &levelDBStore{db: db, batchSize: o.BatchSize}, nil
}

func (s *levelDBStore) Scan(fn func(key, value []byte) error) error {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	for iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Ingest replays the tables through write batches. It is not atomic
// across batches.
func (s *levelDBStore) Ingest(paths []string) error {
	batch := new(leveldb.Batch)
	return loadTables(paths, s.batchSize, batch.Put, func() error {
		if batch.Len() == 0 {
			return nil
		}
		if err := s.db.Write(batch, nil); err != nil {
			return err
		}
		batch.Reset()
		return nil
	})
}

func (s *levelDBStore) Close() error {
	return s.db.Close()
}
