package sstpack

import (
	"fmt"
)

// Store is the capability set required from a store engine.
type Store interface {
	// Scan calls fn for every entry in ascending key order. Keys and
	// values are only valid until fn returns. Errors returned by fn
	// abort the scan and are returned unchanged.
	Scan(fn func(key, value []byte) error) error

	// Ingest loads the given tables into the store. Tables are applied
	// in the given order, later tables win for shared keys.
	Ingest(paths []string) error

	// Close releases the store.
	Close() error
}

type openMode uint8

const (
	openExisting openMode = iota // must exist, not modified
	openOrCreate
)

func openStore(path string, mode openMode, o *Options) (Store, error) {
	switch o.Engine {
	case EnginePebble:
		return openPebble(path, mode, o)
	case EngineLevelDB:
		return openLevelDB(path, mode, o)
	case EngineBadger:
		return openBadger(path, mode, o)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownEngine, o.Engine)
}

// loadTables streams the entries of each table into put, calling flush
// after every batchSize entries and at the end of each table. It serves
// engines that cannot ingest tables natively.
func loadTables(paths []string, batchSize int, put func(key, value []byte), flush func() error) error {
	for _, path := range paths {
		if err := loadTable(path, batchSize, put, flush); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func loadTable(path string, batchSize int, put func(key, value []byte), flush func() error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer r.Close()

	iter, err := r.Seek(nil)
	if err != nil {
		return err
	}
	defer iter.Release()

	n := 0
	for iter.Next() {
		put(iter.Key(), iter.Value())
		if n++; n%batchSize == 0 {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}
