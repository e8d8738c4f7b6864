// Command sstpack packs an embedded key-value store into a single SST file
// and unpacks SST files into a store.
//
//	sstpack pack   -d STORE -t FILE.sst
//	sstpack unpack -d STORE -t FILE.sst|DIR
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bsm/sstpack"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const version = "0.2.0"

// Exit codes.
const (
	exitFailure = 1 // the operation failed
	exitUsage   = 2 // invalid invocation, nothing was done
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	err := newApp(stdout, stderr).Run(args)
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, err)

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return exitFailure
}

func newApp(stdout, stderr io.Writer) *cli.App {
	logger := logrus.New()
	logger.SetOutput(stderr)

	return &cli.App{
		Name:      "sstpack",
		Usage:     "packs key-value stores into SST files and back",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		// errors are reported by run
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "log level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: "text",
				Usage: "log format: text or json",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := logrus.ParseLevel(c.String("log-level"))
			if err != nil {
				return cli.Exit(err, exitUsage)
			}
			logger.SetLevel(level)

			switch format := c.String("log-format"); format {
			case "text":
			case "json":
				logger.SetFormatter(&logrus.JSONFormatter{})
			default:
				return cli.Exit(fmt.Sprintf("unknown log format %q", format), exitUsage)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return cli.Exit(fmt.Sprintf("Unknown command: %s", c.Args().First()), exitUsage)
			}
			_ = cli.ShowAppHelp(c)
			return cli.Exit("a command is required", exitUsage)
		},
		Commands: []*cli.Command{
			{
				Name:  "pack",
				Usage: "packs a store directory into an SST file",
				Flags: append(storeFlags(),
					&cli.BoolFlag{
						Name:  "overwrite",
						Usage: "replace an existing target file",
					},
					&cli.StringFlag{
						Name:  "compression",
						Value: "snappy",
						Usage: "table compression: snappy, zstd or none",
					},
				),
				Action: func(c *cli.Context) error {
					if c.String("directory") == "" {
						return cli.Exit("Directory argument is required for pack to point to the DB data", exitUsage)
					}
					if c.String("target") == "" {
						return cli.Exit("Target argument is required for pack to point to where the SST file will be saved", exitUsage)
					}

					compression, err := sstpack.ParseCompression(c.String("compression"))
					if err != nil {
						return cli.Exit(err, exitUsage)
					}

					opts := &sstpack.Options{
						Engine:    sstpack.Engine(c.String("engine")),
						Overwrite: c.Bool("overwrite"),
						Writer:    &sstpack.WriterOptions{Compression: compression},
						Logger:    logger,
					}
					if err := sstpack.Export(c.String("directory"), c.String("target"), opts); err != nil {
						return fmt.Errorf("error packing SST: %w", err)
					}
					return nil
				},
			},
			{
				Name:  "unpack",
				Usage: "unpacks an SST file, or a directory of them, into a store directory",
				Flags: storeFlags(),
				Action: func(c *cli.Context) error {
					if c.String("directory") == "" {
						return cli.Exit("Directory argument is required for unpack", exitUsage)
					}
					if c.String("target") == "" {
						return cli.Exit("Target argument is required for unpack", exitUsage)
					}

					opts := &sstpack.Options{
						Engine: sstpack.Engine(c.String("engine")),
						Logger: logger,
					}
					if err := sstpack.Import(c.String("directory"), c.String("target"), opts); err != nil {
						return fmt.Errorf("error unpacking SST: %w", err)
					}
					return nil
				},
			},
		},
	}
}

// storeFlags returns the flags shared by pack and unpack.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "directory",
			Aliases: []string{"d"},
			Usage:   "the store directory to do the action on",
		},
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "the table file (or directory of tables) for the action",
		},
		&cli.StringFlag{
			Name:  "engine",
			Value: string(sstpack.EnginePebble),
			Usage: "store engine: pebble, leveldb or badger",
		},
	}
}
