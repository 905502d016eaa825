/*
Skipbench drives the concurrent skip-list benchmark harness.

Usage:

	skipbench [flags]

The flags are:

	-config
		Path to a JSON config file validated against the benchmark config
		schema. When given, every other flag except -l is ignored.
	-variant
		Which list variant to benchmark: sequential, coarse, fine, lockfree.
	-threads
		Number of worker goroutines.
	-runtime
		Wall-clock seconds each worker runs for.
	-insert, -delete, -contains
		Operation mix percentages; must sum to 100.
	-start, -end
		Key range [start, end).
	-disjoint
		True to give each worker a disjoint sub-range of the key range.
	-strategy
		Key-selection strategy: 0 random, 1 linear, 2 shuffled-unique.
	-prefill
		Number of keys to insert before workers start.
	-smoke
		True to run the single-threaded correctness smoke test first.
	-seed
		Base seed for every RNG stream in the run.
	-l
		Logger output level, -1 for debug, 1 for errors only.
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mkleinegger/skiplist-bench/bench"
)

func main() {
	cfg, err := initialize()
	if err != nil {
		return
	}

	result, err := bench.Bench(context.Background(), cfg)
	if err != nil {
		slog.Error("benchmark run failed", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		slog.Error("marshaling result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// initialize parses flags into a bench.Config, loading and validating a
// JSON config file instead when -config is given.
func initialize() (bench.Config, error) {
	configFlag := flag.String("config", "", "Path to a JSON benchmark config file")
	variantFlag := flag.String("variant", "sequential", "sequential, coarse, fine, or lockfree")
	threadsFlag := flag.Int("threads", 1, "Number of worker goroutines")
	runtimeFlag := flag.Float64("runtime", 1, "Wall-clock seconds per worker")
	insertFlag := flag.Int("insert", 34, "Insert percentage")
	deleteFlag := flag.Int("delete", 33, "Delete percentage")
	containsFlag := flag.Int("contains", 33, "Contains percentage")
	startFlag := flag.Int64("start", 0, "Start of key range")
	endFlag := flag.Int64("end", 100000, "End of key range (exclusive)")
	disjointFlag := flag.Bool("disjoint", true, "Give each worker a disjoint key sub-range")
	strategyFlag := flag.Int("strategy", 0, "Key-selection strategy: 0 random, 1 linear, 2 shuffled-unique")
	prefillFlag := flag.Int64("prefill", 0, "Number of keys to insert before workers start")
	smokeFlag := flag.Bool("smoke", false, "Run the single-threaded correctness smoke test first")
	seedFlag := flag.Int64("seed", 1, "Base seed for every RNG stream")
	loggerFlag := flag.Int("l", 0, "Logger output level, -1 for debug, 1 for only errors")
	flag.Parse()

	if *loggerFlag == -1 {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if *loggerFlag == 1 {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	}

	if *configFlag != "" {
		cfg, err := bench.LoadConfig(*configFlag)
		if err != nil {
			slog.Error("invalid config file", "path", *configFlag, "error", err)
			return bench.Config{}, errors.New("invalid config file")
		}
		return cfg, nil
	}

	cfg := bench.Config{
		Variant:       *variantFlag,
		NumThreads:    *threadsFlag,
		RuntimeInSec:  *runtimeFlag,
		InsertPct:     *insertFlag,
		DeletePct:     *deleteFlag,
		ContainsPct:   *containsFlag,
		StartRange:    *startFlag,
		EndRange:      *endFlag,
		DisjointRange: *disjointFlag,
		Strategy:      *strategyFlag,
		PrefillCount:  *prefillFlag,
		BasicTesting:  *smokeFlag,
		Seed:          *seedFlag,
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		return bench.Config{}, err
	}
	return cfg, nil
}
