package sstpack

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/hashicorp/go-multierror"
)

// Import loads the table at source, or every table file in the directory
// source, into the store at storePath. The store, including missing
// parent directories, is created if absent.
//
// Tables in a directory are taken in lexical order of their names. When
// their key ranges are disjoint they are ingested in a single call,
// which the pebble engine applies atomically. Otherwise they are
// ingested one by one in that order, later tables winning for shared
// keys, and a failure reports the tables ingested so far in
// Error.Ingested. An empty source directory is not an error.
func Import(storePath, source string, o *Options) (err error) {
	o = o.norm()
	fail := func(kind Kind, path string, err error) *Error {
		return &Error{Kind: kind, Op: "import", Path: path, Err: err}
	}

	if storePath == "" {
		return fail(KindArgument, storePath, errNoPath)
	}
	if source == "" {
		return fail(KindArgument, source, errNoPath)
	}

	if err := vfs.Default.MkdirAll(storePath, 0o755); err != nil {
		return fail(KindIO, storePath, err)
	}

	paths, err := listTables(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fail(KindIngest, source, err)
		}
		return fail(KindIO, source, err)
	}

	tables, err := inspectTables(paths)
	if err != nil {
		return fail(KindIngest, source, err)
	}

	store, err := openStore(storePath, openOrCreate, o)
	if err != nil {
		return fail(KindOpen, storePath, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = multierror.Append(err, fail(KindIO, storePath, cerr))
		}
	}()

	logger := o.Logger.WithField("action", "import").
		WithField("path", storePath).
		WithField("tables", len(tables))

	if len(tables) == 0 {
		logger.Info("no tables to ingest")
		return nil
	}

	if !overlapping(tables) {
		if err := store.Ingest(tablePaths(tables)); err != nil {
			return fail(KindIngest, source, err)
		}
		logger.Info("ingested tables")
		return nil
	}

	logger.Debug("table key ranges overlap, ingesting one by one")
	var ingested []string
	for _, t := range tables {
		if err := store.Ingest([]string{t.path}); err != nil {
			e := fail(KindIngest, t.path, err)
			e.Ingested = ingested
			return e
		}
		ingested = append(ingested, t.path)
	}
	logger.Info("ingested tables")
	return nil
}

// listTables returns source itself if it is a file, or the table files
// within source, sorted by name, if it is a directory.
func listTables(source string) ([]string, error) {
	fi, err := vfs.Default.Stat(source)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return []string{source}, nil
	}

	names, err := vfs.Default.List(source)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var paths []string
	for _, name := range names {
		if filepath.Ext(name) != TableExt {
			continue
		}

		path := filepath.Join(source, name)
		fi, err := vfs.Default.Stat(path)
		if err != nil {
			return nil, err
		}
		if fi.Mode().IsRegular() {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

type tableInfo struct {
	path     string
	smallest []byte
	largest  []byte
}

// inspectTables reads the key range of every table, dropping empty ones.
// It fails on the first missing or malformed table.
func inspectTables(paths []string) ([]tableInfo, error) {
	tables := make([]tableInfo, 0, len(paths))
	for _, path := range paths {
		t, ok, err := inspectTable(path)
		if err != nil {
			return nil, err
		}
		if ok {
			tables = append(tables, t)
		}
	}
	return tables, nil
}

func inspectTable(path string) (tableInfo, bool, error) {
	r, err := Open(path)
	if err != nil {
		return tableInfo{}, false, err
	}
	defer r.Close()

	smallest, largest, ok, err := r.Bounds()
	if err != nil {
		return tableInfo{}, false, err
	}
	return tableInfo{path: path, smallest: smallest, largest: largest}, ok, nil
}

func tablePaths(tables []tableInfo) []string {
	paths := make([]string, 0, len(tables))
	for _, t := range tables {
		paths = append(paths, t.path)
	}
	return paths
}

func overlapping(tables []tableInfo) bool {
	sorted := append([]tableInfo(nil), tables...)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].smallest, sorted[j].smallest) < 0
	})

	for i := 1; i < len(sorted); i++ {
		if bytes.Compare(sorted[i].smallest, sorted[i-1].largest) <= 0 {
			return true
		}
	}
	return false
}
