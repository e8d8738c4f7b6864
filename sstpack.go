package sstpack

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble/sstable"
)

// TableExt is the file extension of sorted table files.
const TableExt = ".sst"

// ErrNotFound is returned by the reader when a key cannot be found.
var ErrNotFound = errors.New("sstpack: not found")

// ErrTargetExists is returned by Export when the target file already exists
// and Options.Overwrite is not set.
var ErrTargetExists = errors.New("sstpack: target already exists")

// ErrUnknownEngine is returned when Options.Engine names no supported engine.
var ErrUnknownEngine = errors.New("sstpack: unknown engine")

var (
	errClosed   = errors.New("sstpack: is closed")
	errReleased = errors.New("sstpack: iterator was released")
	errNoPath   = errors.New("path is required")
)

// --------------------------------------------------------------------

// Kind classifies the failures reported through Error.
type Kind uint8

// Error kinds.
const (
	KindArgument Kind = iota + 1 // invalid arguments, no I/O performed
	KindOpen                     // the store cannot be opened or created
	KindIO                       // filesystem operations
	KindScan                     // reading entries from the store
	KindWrite                    // writing or sealing a table
	KindIngest                   // loading tables into the store
)

func (k Kind) String() string {
	switch k {
	case KindArgument:
		return "invalid argument"
	case KindOpen:
		return "open failed"
	case KindIO:
		return "io failed"
	case KindScan:
		return "scan failed"
	case KindWrite:
		return "write failed"
	case KindIngest:
		return "ingest failed"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Error is the error type returned by Export and Import.
type Error struct {
	Kind Kind
	Op   string // export or import
	Path string
	Err  error

	// Ingested lists the tables that were fully ingested before an
	// ingest failure. Only populated when tables are ingested one by one.
	Ingested []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("sstpack: %s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// --------------------------------------------------------------------

// Compression is the compression codec
type Compression byte

func (c Compression) isValid() bool {
	return c >= SnappyCompression && c < unknownCompression
}

func (c Compression) codec() sstable.Compression {
	switch c {
	case NoCompression:
		return sstable.NoCompression
	case ZstdCompression:
		return sstable.ZstdCompression
	default:
		return sstable.SnappyCompression
	}
}

// Supported compression codecs
const (
	SnappyCompression Compression = iota
	NoCompression
	ZstdCompression
	unknownCompression
)

// ParseCompression parses a codec name, as accepted on the command line.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "snappy":
		return SnappyCompression, nil
	case "none":
		return NoCompression, nil
	case "zstd":
		return ZstdCompression, nil
	}
	return unknownCompression, fmt.Errorf("sstpack: unknown compression %q", s)
}
