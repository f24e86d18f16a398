package main

// flags.go parses the qhash-stress command line.  pflag gives us GNU-style
// long options; every knob has a default that produces a sensible smoke run.
//
// © 2025 qhash authors. MIT License.

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

type options struct {
	addr      string
	kind      string
	keys      int
	rounds    int
	readers   int
	seed      int64
	dataset   string
	hashCache bool
	minSize   uint32
	verbose   bool
	version   bool
}

func parseFlags() *options {
	opts := &options{}

	pflag.StringVar(&opts.addr, "addr", ":6060", "HTTP listen address for /metrics and the snapshot endpoint")
	pflag.StringVar(&opts.kind, "kind", "u64", "key kind to stress: u64 or str")
	pflag.IntVar(&opts.keys, "keys", 1<<20, "size of the live key window")
	pflag.IntVar(&opts.rounds, "rounds", 0, "number of mutate+verify rounds (0 = until interrupted)")
	pflag.IntVar(&opts.readers, "readers", 4, "concurrent readers in each verify round")
	pflag.Int64Var(&opts.seed, "seed", 42, "PRNG seed for the key stream")
	pflag.StringVar(&opts.dataset, "dataset", "", "newline-separated uint64 key file (see tools/dataset_gen); overrides --seed")
	pflag.BoolVar(&opts.hashCache, "hash-cache", false, "enable per-slot hash caching")
	pflag.Uint32Var(&opts.minSize, "min-size", 0, "pre-size the table to at least this many slots")
	pflag.BoolVar(&opts.verbose, "verbose", false, "debug logging (resize epochs, seals)")
	pflag.BoolVar(&opts.version, "version", false, "print version and exit")
	pflag.Parse()

	if opts.kind != "u64" && opts.kind != "str" {
		fmt.Fprintf(os.Stderr, "qhash-stress: unknown --kind %q (want u64 or str)\n", opts.kind)
		os.Exit(2)
	}
	if opts.keys <= 0 {
		fmt.Fprintln(os.Stderr, "qhash-stress: --keys must be positive")
		os.Exit(2)
	}
	if opts.readers <= 0 {
		opts.readers = 1
	}
	return opts
}
