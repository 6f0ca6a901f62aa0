// Command metadata inspects SCALE-encoded runtime metadata in any of the
// supported envelopes and can re-wrap it in another one.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/wippyai/merkleized-metadata/metadata"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	hex         string
	file        string
	rewrap      string
	interactive bool
}

func run(args []string, stdin io.Reader, stdout *os.File) error {
	var opts options

	flagSet := pflag.NewFlagSet("metadata", pflag.ContinueOnError)
	flagSet.StringVar(&opts.hex, "hex", "", "hex-encoded metadata (0x prefix optional)")
	flagSet.StringVar(&opts.file, "file", "", "file with hex-encoded metadata, or raw SCALE bytes")
	flagSet.StringVar(&opts.rewrap, "rewrap", "", "print the record re-encoded as option, opaque or prefixed")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "paste metadata hex in a TUI")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: metadata [--hex STR | --file PATH] [--rewrap SHAPE]")
		fmt.Fprintln(os.Stderr, "       metadata -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "With neither --hex nor --file, hex is read from stdin.")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	if opts.interactive {
		return runInteractive()
	}

	var rewrap *metadata.Shape
	if opts.rewrap != "" {
		s, err := metadata.ParseShape(opts.rewrap)
		if err != nil {
			return err
		}
		rewrap = &s
	}

	md, err := load(opts, stdin)
	if err != nil {
		return err
	}

	styled := term.IsTerminal(int(stdout.Fd()))
	fmt.Fprint(stdout, renderReport(describe(md), styled))

	if rewrap != nil {
		fmt.Fprintf(stdout, "%s\n", rewrapHex(md, *rewrap))
	}
	return nil
}

func load(opts options, stdin io.Reader) (*metadata.RuntimeMetadata, error) {
	switch {
	case opts.hex != "" && opts.file != "":
		return nil, fmt.Errorf("--hex and --file are mutually exclusive")
	case opts.hex != "":
		return metadata.FromHex(opts.hex)
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, fmt.Errorf("read file: %w", err)
		}
		return fromFileContents(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return metadata.FromHex(string(data))
	}
}

// fromFileContents accepts either hex text or raw SCALE bytes. Hex is
// tried first since metadata dumps are usually saved from RPC output.
func fromFileContents(data []byte) (*metadata.RuntimeMetadata, error) {
	if raw, err := metadata.DecodeHex(string(data)); err == nil {
		return metadata.FromBytes(raw)
	}
	return metadata.FromBytes(data)
}
