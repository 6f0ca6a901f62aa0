// Command inline-wasm embeds a wasm-bindgen package's wasm binary into
// its JS loader so the package can be imported without a bundler plugin.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/wippyai/merkleized-metadata/inline"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		basic    bool
		verbose  bool
		noVerify bool
		stem     string
	)

	flagSet := pflag.NewFlagSet("inline-wasm", pflag.ContinueOnError)
	flagSet.BoolVar(&basic, "basic", false, "only rewrite the loader and declarations (no manifest patch)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "log each step")
	flagSet.BoolVar(&noVerify, "no-verify", false, "do not inspect the wasm payload before rewriting")
	flagSet.StringVar(&stem, "stem", inline.DefaultStem, "crate stem of the generated files")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: inline-wasm [--basic] [--verbose] <pkg-dir>")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if flagSet.NArg() != 1 {
		flagSet.Usage()
		return fmt.Errorf("expected exactly one package directory, got %d arguments", flagSet.NArg())
	}

	dir, err := filepath.Abs(flagSet.Arg(0))
	if err != nil {
		return fmt.Errorf("resolve package directory: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}
	inline.SetLogger(logger)

	in := inline.New()
	in.Layout = inline.Layout{Stem: stem}
	in.Verify = !noVerify
	if basic {
		in.Variant = inline.VariantBasic
	}

	if err := in.Inline(dir); err != nil {
		return err
	}

	fmt.Printf("Inlined %s into %s\n", in.Layout.Payload(), filepath.Join(dir, in.Layout.Loader()))
	return nil
}
