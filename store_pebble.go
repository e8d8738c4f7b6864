package sstpack

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

type pebbleStore struct {
	db   *pebble.DB
	path string
}

func openPebble(path string, mode openMode, o *Options) (Store, error) {
	opts := &pebble.Options{
		Logger: pebbleLogger{o.Logger.WithField("engine", EnginePebble)},
	}
	if mode == openExisting {
		opts.ErrorIfNotExists = true
		opts.ReadOnly = true
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &pebbleStore{db: db, path: path}, nil
}

func (s *pebbleStore) Scan(fn func(key, value []byte) error) (err error) {
	iter, err := s.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := iter.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	for iter.First(); iter.Valid(); iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return err
		}
		if err := fn(iter.Key(), val); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Ingest applies all tables atomically. Pebble rejects a set of tables
// with overlapping key ranges.
//
// Pebble moves ingested files into the store, so the tables are staged
// as links (or copies) in a sibling directory first and the source
// paths stay untouched.
func (s *pebbleStore) Ingest(paths []string) error {
	stage, err := os.MkdirTemp(filepath.Dir(filepath.Clean(s.path)), ".sstpack-ingest-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)

	staged := make([]string, 0, len(paths))
	for i, path := range paths {
		dst := filepath.Join(stage, fmt.Sprintf("%06d%s", i, TableExt))
		if err := vfs.LinkOrCopy(vfs.Default, path, dst); err != nil {
			return err
		}
		staged = append(staged, dst)
	}
	return s.db.Ingest(staged)
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}

// pebbleLogger routes engine messages to the package logger, demoting
// informational messages to debug.
type pebbleLogger struct {
	logrus.FieldLogger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.FieldLogger.Debugf(format, args...)
}
