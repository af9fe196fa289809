package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"utitriage/internal"
	"utitriage/internal/synthgen"
)

func main() {
	defaults := synthgen.DefaultConfig()
	out := flag.String("out", "data/uti_synthetic_data.csv", "output file path")
	rows := flag.Int("rows", defaults.Rows, "number of records")
	seed := flag.Uint64("seed", defaults.Seed, "RNG seed (deterministic)")
	share := flag.Float64("positive-share", defaults.PositiveShare, "share of UTI-positive records")
	format := flag.String("format", "", "output format: csv or xlsx (default inferred from -out)")
	describe := flag.String("describe", "", "profile an existing CSV/XLSX dataset instead of generating one")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := internal.NewLogger(internal.ParseLogLevel(*logLevel)).With("synthgen")

	if *describe != "" {
		ds, err := synthgen.Load(*describe, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error reading dataset:", err)
			os.Exit(1)
		}
		printProfile(ds)
		return
	}

	if *rows <= 0 {
		fmt.Fprintln(os.Stderr, "rows must be > 0")
		os.Exit(2)
	}

	fmtName := strings.ToLower(strings.TrimSpace(*format))
	if fmtName == "" {
		fmtName = synthgen.FormatFor(*out)
	}

	ds, err := synthgen.Generate(synthgen.Config{Rows: *rows, Seed: *seed, PositiveShare: *share})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error generating dataset:", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "error creating output directory:", err)
		os.Exit(1)
	}
	if err := synthgen.Write(*out, fmtName, ds); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", fmtName, err)
		os.Exit(1)
	}
	logger.Info("wrote %d records to %s", len(ds.Rows), *out)

	fmt.Printf("Synthetic UTI dataset created: %s\n", *out)
	fmt.Printf("Total Columns: %d | Total Rows: %d\n", len(ds.Headers), len(ds.Rows))
	printProfile(ds)
}

func printProfile(ds *synthgen.Dataset) {
	p, err := synthgen.Profile(ds)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error profiling dataset:", err)
		os.Exit(1)
	}
	fmt.Println()
	if err := p.WriteTable(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
