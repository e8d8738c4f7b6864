package sstpack

import (
	"bytes"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/objstorage/objstorageprovider"
	"github.com/cockroachdb/pebble/sstable"
	"github.com/cockroachdb/pebble/vfs"
)

// WriterOptions define writer specific options.
type WriterOptions struct {
	// BlockSize is the minimum uncompressed size in bytes of each table block.
	// Default: 4KiB.
	BlockSize int

	// BlockRestartInterval is the number of keys between restart points
	// for delta encoding of keys.
	//
	// Default: 16.
	BlockRestartInterval int

	// The compression codec to use.
	// Default: SnappyCompression.
	Compression Compression

	// TableFormat is the on-disk format of the table. Newer formats can
	// only be ingested by stores at a matching format major version.
	// Default: sstable.TableFormatRocksDBv2.
	TableFormat sstable.TableFormat
}

func (o *WriterOptions) norm() *WriterOptions {
	var oo WriterOptions
	if o != nil {
		oo = *o
	}

	if oo.BlockSize < 1 {
		oo.BlockSize = 1 << 12
	}
	if oo.BlockRestartInterval < 1 {
		oo.BlockRestartInterval = 16
	}
	if !oo.Compression.isValid() {
		oo.Compression = SnappyCompression
	}
	if oo.TableFormat == sstable.TableFormatUnspecified {
		oo.TableFormat = sstable.TableFormatRocksDBv2
	}

	return &oo
}

func (o *WriterOptions) pebbleOptions() sstable.WriterOptions {
	return sstable.WriterOptions{
		BlockSize:            o.BlockSize,
		BlockRestartInterval: o.BlockRestartInterval,
		Compression:          o.Compression.codec(),
		TableFormat:          o.TableFormat,
		Comparer:             pebble.DefaultComparer,
		MergerName:           pebble.DefaultMerger.Name,
	}
}

// Writer instances can write a table.
type Writer struct {
	tw *sstable.Writer

	last []byte // the last appended key
	num  int    // the number of appended entries
	done bool
}

// Create creates a file at path and returns a Writer for it.
// An existing file at path is truncated.
func Create(path string, o *WriterOptions) (*Writer, error) {
	f, err := vfs.Default.Create(path)
	if err != nil {
		return nil, err
	}
	return NewWriter(f, o), nil
}

// NewWriter wraps a file and returns a Writer. The file is owned by the
// writer from now on and closed by Close or Abort.
func NewWriter(f vfs.File, o *WriterOptions) *Writer {
	return &Writer{
		tw: sstable.NewWriter(objstorageprovider.NewFileWritable(f), o.norm().pebbleOptions()),
	}
}

// Append appends a key/value pair to the table. Keys must be appended
// in strictly increasing order.
func (w *Writer) Append(key, value []byte) error {
	if w.done {
		return errClosed
	}

	if w.num != 0 && bytes.Compare(key, w.last) <= 0 {
		return fmt.Errorf("sstpack: attempted an out-of-order append, %q must be > %q", key, w.last)
	}

	if err := w.tw.Set(key, value); err != nil {
		return err
	}

	w.last = append(w.last[:0], key...)
	w.num++
	return nil
}

// NumEntries returns the number of appended entries.
func (w *Writer) NumEntries() int { return w.num }

// Close seals the table and closes the underlying file.
func (w *Writer) Close() error {
	if w.done {
		return errClosed
	}
	w.done = true
	return w.tw.Close()
}

// Abort discards an unsealed table and releases the underlying file
// together with the writer's background worker. The file contents are
// left undefined. Abort is a no-op after Close.
func (w *Writer) Abort() {
	if w.done {
		return
	}
	w.done = true
	_ = w.tw.Close()
}
