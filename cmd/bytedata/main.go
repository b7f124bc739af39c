// bytedata prints tagged binary streams in diagnostic notation, one line
// per top-level value:
//
//	$ bytedata --hex <<< '10 0a 00 00 00 01 00 00 00 0e 01 00 00 00 61'
//	Object{String("a")}
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/RobertWHurst/bytedata"
	"github.com/spf13/pflag"
	"golang.org/x/text/encoding/ianaindex"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var hexMode bool
	var stringsPath string
	var encodingName string
	var logLevel string

	flagSet := pflag.NewFlagSet("bytedata", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.BoolVarP(&hexMode, "hex", "x", false, "treat input as hex (whitespace allowed)")
	flagSet.StringVarP(&stringsPath, "strings", "s", "", "msgpack string cache snapshot used to resolve StringCached ids")
	flagSet.StringVar(&encodingName, "encoding", "UTF-8", "IANA name of the text encoding of String values")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet, stderr)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet, stderr)
		return nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	enc, err := ianaindex.IANA.Encoding(encodingName)
	if err != nil || enc == nil {
		return fmt.Errorf("unsupported --encoding %q", encodingName)
	}
	opts := []bytedata.Option{bytedata.WithLogger(logger), bytedata.WithEncoding(enc)}

	if stringsPath != "" {
		cache, err := readStringCache(stringsPath)
		if err != nil {
			return err
		}
		logger.Debug("loaded string cache", "path", stringsPath, "strings", cache.Len())
		opts = append(opts, bytedata.WithStringCache(cache))
	}

	positional := flagSet.Args()
	if len(positional) > 1 {
		return fmt.Errorf("unexpected argument: %s", positional[1])
	}
	data, err := readInput(positional, stdin, hexMode)
	if err != nil {
		return err
	}
	logger.Debug("read input", "bytes", len(data))

	out, err := bytedata.Diagnose(data, opts...)
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return err
}

func readStringCache(path string) (*bytedata.MapCache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bytedata.ReadStringCache(f)
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `bytedata prints tagged binary streams in diagnostic notation.

Reads the stream from FILE, or from stdin when no file is given, and
prints one line per top-level value.

Usage:
  bytedata [flags] [FILE]

Examples:
  # Inspect a saved object
  bytedata object.bin

  # Inspect hex pasted from a log
  echo '0e 03 00 00 00 61 62 63' | bytedata --hex

  # Resolve cached strings
  bytedata --strings cache.msgpack object.bin

Flags:
`)
	flagSet.PrintDefaults()
}
