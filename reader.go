package sstpack

import (
	"bytes"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/sstable"
	"github.com/cockroachdb/pebble/vfs"
)

// Reader instances can seek and iterate across data in tables.
type Reader struct {
	r *sstable.Reader
}

// Open opens the table file at path.
func Open(path string) (*Reader, error) {
	f, err := vfs.Default.Open(path)
	if err != nil {
		return nil, err
	}
	return NewReader(f)
}

// NewReader opens a reader. The file is owned by the reader and closed
// by Close, or immediately if the table cannot be opened.
func NewReader(f vfs.File) (*Reader, error) {
	readable, err := sstable.NewSimpleReadable(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	r, err := sstable.NewReader(readable, sstable.ReaderOptions{
		Comparer: pebble.DefaultComparer,
	})
	if err != nil {
		return nil, err
	}
	return &Reader{r: r}, nil
}

// NumEntries returns the number of stored entries.
func (r *Reader) NumEntries() uint64 {
	return r.r.Properties.NumEntries
}

// Bounds returns copies of the smallest and the largest key of the table.
// ok is false when the table is empty.
func (r *Reader) Bounds() (smallest, largest []byte, ok bool, err error) {
	it, err := r.r.NewIter(nil, nil)
	if err != nil {
		return nil, nil, false, err
	}
	defer it.Close()

	if k, _ := it.First(); k != nil {
		smallest = append([]byte{}, k.UserKey...)
		ok = true
	}
	if k, _ := it.Last(); k != nil {
		largest = append([]byte{}, k.UserKey...)
	}
	if err := it.Error(); err != nil {
		return nil, nil, false, err
	}
	return smallest, largest, ok, nil
}

// Append retrieves the value for a key and appends it to dst instead of
// allocating a new byte slice. It may return an ErrNotFound error.
func (r *Reader) Append(dst []byte, key []byte) ([]byte, error) {
	iter, err := r.Seek(key)
	if err != nil {
		return dst, err
	}
	defer iter.Release()

	if !iter.Next() {
		if err := iter.Err(); err != nil {
			return dst, err
		}
		return dst, ErrNotFound
	}
	if !bytes.Equal(iter.Key(), key) {
		return dst, ErrNotFound
	}
	return append(dst, iter.Value()...), nil
}

// Get is a shortcut for Append(nil, key).
// It may return an ErrNotFound error.
func (r *Reader) Get(key []byte) ([]byte, error) {
	return r.Append(nil, key)
}

// Seek returns an iterator starting at the position >= key. A nil key
// starts at the first entry.
func (r *Reader) Seek(key []byte) (*Iterator, error) {
	it, err := r.r.NewIter(nil, nil)
	if err != nil {
		return nil, err
	}
	return &Iterator{it: it, seek: key}, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	return r.r.Close()
}

// --------------------------------------------------------------------

// Iterator can (forward-) iterate over the entries of a table.
type Iterator struct {
	it   sstable.Iterator
	seek []byte
	pos  bool // positioned at least once

	key []byte
	val []byte
	err error
}

// Key returns the key if the current entry.
func (i *Iterator) Key() []byte { return i.key }

// Value returns the value of the current entry. Please note that values
// are temporary buffers and must be copied if used beyond the next cursor move.
func (i *Iterator) Value() []byte { return i.val }

// Next advances the cursor to the next entry and returns true if successful.
func (i *Iterator) Next() bool {
	if i.err != nil {
		return false
	}

	var k *sstable.InternalKey
	var lv pebble.LazyValue
	switch {
	case i.pos:
		k, lv = i.it.Next()
	case i.seek != nil:
		k, lv = i.it.SeekGE(i.seek, 0)
	default:
		k, lv = i.it.First()
	}
	i.pos = true

	if k == nil {
		i.key, i.val = nil, nil
		i.err = i.it.Error()
		return false
	}

	val, _, err := lv.Value(nil)
	if err != nil {
		i.err = err
		return false
	}
	i.key, i.val = k.UserKey, val
	return true
}

// Err exposes iterator errors, if any.
func (i *Iterator) Err() error {
	if i.err == errReleased {
		return nil
	}
	return i.err
}

// Release releases the iterator and frees up resources. The iterator must not be used
// after this method is called.
func (i *Iterator) Release() {
	if i.err == errReleased {
		return
	}
	_ = i.it.Close()
	i.err = errReleased
}
