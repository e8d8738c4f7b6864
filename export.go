package sstpack

import (
	"errors"
	"io/fs"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/hashicorp/go-multierror"
)

// Export writes all entries of the store at storePath into a new table
// file at target, in ascending key order.
//
// The table is written to a temporary file next to target and only
// moved into place once it has been sealed, so a failed export never
// leaves a table at target. An existing target is an error wrapping
// ErrTargetExists, unless Options.Overwrite is set.
func Export(storePath, target string, o *Options) (err error) {
	o = o.norm()

	if storePath == "" {
		return exportError(KindArgument, storePath, errNoPath)
	}
	if target == "" {
		return exportError(KindArgument, target, errNoPath)
	}
	if !o.Overwrite {
		if _, err := vfs.Default.Stat(target); err == nil {
			return exportError(KindWrite, target, ErrTargetExists)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return exportError(KindIO, target, err)
		}
	}

	store, err := openStore(storePath, openExisting, o)
	if err != nil {
		return exportError(KindOpen, storePath, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = multierror.Append(err, exportError(KindIO, storePath, cerr))
		}
	}()

	return exportStore(store, storePath, target, o)
}

// exportStore writes the entries of an open store into target.
func exportStore(store Store, storePath, target string, o *Options) (err error) {
	tmp := target + ".tmp"
	w, err := Create(tmp, o.Writer)
	if err != nil {
		return exportError(KindWrite, tmp, err)
	}
	defer func() {
		if err != nil {
			w.Abort()
			_ = vfs.Default.Remove(tmp)
		}
	}()

	err = store.Scan(func(key, value []byte) error {
		if err := w.Append(key, value); err != nil {
			return exportError(KindWrite, tmp, err)
		}
		return nil
	})
	if err != nil {
		if IsKind(err, KindWrite) {
			return err
		}
		return exportError(KindScan, storePath, err)
	}

	if err := w.Close(); err != nil {
		return exportError(KindWrite, tmp, err)
	}
	if err := publish(tmp, target, o.Overwrite); err != nil {
		return exportError(KindWrite, target, err)
	}

	o.Logger.WithField("action", "export").
		WithField("path", target).
		WithField("entries", w.NumEntries()).
		Info("exported store")
	return nil
}

func exportError(kind Kind, path string, err error) error {
	return &Error{Kind: kind, Op: "export", Path: path, Err: err}
}

// publish moves a sealed table into place. Without overwrite it links
// the table, which fails if target has appeared in the meantime.
func publish(tmp, target string, overwrite bool) error {
	if overwrite {
		return vfs.Default.Rename(tmp, target)
	}

	if err := vfs.Default.Link(tmp, target); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrTargetExists
		}
		return err
	}
	_ = vfs.Default.Remove(tmp)
	return nil
}
