package bench

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkleinegger/skiplist-bench/skiplist"
)

// Result mirrors spec.md §6's result record.
type Result struct {
	ElapsedSeconds  float64 `json:"elapsed_seconds"`
	TotalOperations int64   `json:"total_operations"`

	TotalInserts       int64 `json:"total_inserts"`
	SuccessfulInserts  int64 `json:"successful_inserts"`
	TotalDeletes       int64 `json:"total_deletes"`
	SuccessfulDeletes  int64 `json:"successful_deletes"`
	TotalContains      int64 `json:"total_contains"`
	SuccessfulContains int64 `json:"successful_contains"`

	OperationsPerWorker []int64 `json:"operations_per_worker"`

	// OracleExact is true when disjoint_range held for this run, meaning
	// Successful* == Total* is a guarantee rather than a lower bound —
	// spec.md's "Open question — oracle under overlapping ranges".
	OracleExact bool `json:"oracle_exact"`

	// SmokeTestPassed is nil when basic_testing was not requested.
	SmokeTestPassed *bool `json:"smoke_test_passed,omitempty"`
}

func parseVariant(name string) (skiplist.Kind, error) {
	switch name {
	case "", "sequential":
		return skiplist.Sequential, nil
	case "coarse":
		return skiplist.CoarseGrained, nil
	case "fine":
		return skiplist.FineGrained, nil
	case "lockfree":
		return skiplist.LockFree, nil
	default:
		return 0, fmt.Errorf("bench: unknown variant %q", name)
	}
}

// Bench implements spec.md §4.7: allocate, optionally smoke-test,
// optionally prefill, fan out workers at a common barrier, aggregate.
func Bench(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	kind, err := parseVariant(cfg.Variant)
	if err != nil {
		return Result{}, err
	}

	list := skiplist.NewList(kind, cfg.Seed)

	var smokePassed *bool
	if cfg.BasicTesting {
		passed := runSmokeTest(skiplist.NewList(kind, cfg.Seed))
		smokePassed = &passed
		if !passed {
			slog.Error("smoke test failed", "variant", kind)
		} else {
			slog.Info("smoke test passed", "variant", kind)
		}
	}

	oracle := NewOracle(cfg.StartRange, cfg.EndRange)
	if cfg.PrefillCount > 0 {
		prefill(list, oracle, cfg)
		slog.Info("prefill complete", "count", cfg.PrefillCount)
	}

	workers := make([]*worker, cfg.NumThreads)
	for i := range workers {
		start, end := workerRange(cfg, i)
		workers[i] = newWorker(int64(i), cfg.Seed, list, oracle, Strategy(cfg.Strategy), start, end, cfg.InsertPct, cfg.DeletePct)
	}

	startGate := make(chan struct{})
	results := make([]Counters, cfg.NumThreads)
	var wg sync.WaitGroup
	for i, w := range workers {
		wg.Add(1)
		go func(i int, w *worker) {
			defer wg.Done()
			results[i] = w.run(ctx, startGate, time.Now().Add(time.Duration(cfg.RuntimeInSec*float64(time.Second))))
		}(i, w)
	}

	slog.Info("workers started", "num_threads", cfg.NumThreads)
	close(startGate)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		<-done // Workers also check ctx between operations; this waits for them to return.
	}

	res := aggregate(results)
	res.OracleExact = cfg.DisjointRange
	res.SmokeTestPassed = smokePassed
	slog.Info("run complete", "total_operations", res.TotalOperations, "elapsed_seconds", res.ElapsedSeconds)
	return res, nil
}

// workerRange computes worker i's assigned key range. Under
// disjoint_range the full range is split into contiguous, roughly equal
// sub-ranges so the oracle's per-key single-writer invariant holds
// (spec.md §5, "Shared resources"); otherwise every worker shares the
// full range and the oracle degrades to a best-effort lower-bound check.
func workerRange(cfg Config, i int) (start, end int64) {
	if !cfg.DisjointRange {
		return cfg.StartRange, cfg.EndRange
	}
	span := cfg.EndRange - cfg.StartRange
	chunk := span / int64(cfg.NumThreads)
	start = cfg.StartRange + int64(i)*chunk
	if i == cfg.NumThreads-1 {
		end = cfg.EndRange
	} else {
		end = start + chunk
	}
	return start, end
}

// runSmokeTest implements spec.md §8 scenario 1 against a fresh,
// single-threaded list instance.
func runSmokeTest(list skiplist.List) bool {
	for k := int64(0); k < 100; k++ {
		if list.Contains(k) {
			return false
		}
		if !list.Add(k, nil) {
			return false
		}
		if !list.Contains(k) {
			return false
		}
	}
	for k := int64(0); k < 100; k++ {
		if !list.Contains(k) {
			return false
		}
		if !list.Remove(k) {
			return false
		}
		if list.Contains(k) {
			return false
		}
	}
	return !list.Contains(999)
}

// prefill inserts prefill_count keys chosen by the configured strategy,
// keeping the oracle in sync with every successful insert.
func prefill(list skiplist.List, oracle *Oracle, cfg Config) {
	w := newWorker(-1, cfg.Seed, list, oracle, Strategy(cfg.Strategy), cfg.StartRange, cfg.EndRange, 100, 0)
	for i := int64(0); i < cfg.PrefillCount; i++ {
		var c Counters
		if !w.step(&c) {
			break
		}
	}
}

// aggregate sums per-worker counters and reports the mean elapsed time
// across workers, per spec.md §4.7 step 5.
func aggregate(results []Counters) Result {
	var res Result
	res.OperationsPerWorker = make([]int64, len(results))

	var totalElapsed float64
	for i, c := range results {
		res.OperationsPerWorker[i] = c.Operations
		res.TotalOperations += c.Operations
		res.TotalInserts += c.TotalInserts
		res.SuccessfulInserts += c.SuccessfulInserts
		res.TotalDeletes += c.TotalDeletes
		res.SuccessfulDeletes += c.SuccessfulDeletes
		res.TotalContains += c.TotalContains
		res.SuccessfulContains += c.SuccessfulContains
		totalElapsed += c.ElapsedSeconds
	}
	if len(results) > 0 {
		res.ElapsedSeconds = totalElapsed / float64(len(results))
	}
	return res
}
