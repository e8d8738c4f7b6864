package sstpack

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Engine names a store engine.
type Engine string

// Supported engines.
const (
	EnginePebble  Engine = "pebble"
	EngineLevelDB Engine = "leveldb"
	EngineBadger  Engine = "badger"
)

// Options configure Export and Import.
type Options struct {
	// Engine selects the store engine.
	// Default: EnginePebble.
	Engine Engine

	// Overwrite allows Export to replace an existing target file.
	// Default: false, Export fails with ErrTargetExists.
	Overwrite bool

	// BatchSize is the maximum number of entries written per batch by
	// engines without native table ingestion.
	// Default: 1024.
	BatchSize int

	// Writer options for exported tables.
	Writer *WriterOptions

	// Logger receives progress messages.
	// Default: discards all messages.
	Logger logrus.FieldLogger
}

func (o *Options) norm() *Options {
	var oo Options
	if o != nil {
		oo = *o
	}

	if oo.Engine == "" {
		oo.Engine = EnginePebble
	}
	if oo.BatchSize < 1 {
		oo.BatchSize = 1024
	}
	oo.Writer = oo.Writer.norm()
	if oo.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		oo.Logger = l
	}

	return &oo
}
