package bench

import (
	"context"
	"time"

	"golang.org/x/exp/rand"

	"github.com/mkleinegger/skiplist-bench/skiplist"
)

// Strategy selects how a worker picks the next key to operate on.
type Strategy int

const (
	StrategyRandom         Strategy = 0
	StrategyLinear         Strategy = 1
	StrategyShuffledUnique Strategy = 2
)

// Counters holds one worker's operation outcomes, scored against the
// shadow oracle exactly per spec.md §4.6.
type Counters struct {
	Operations int64

	TotalInserts       int64
	SuccessfulInserts  int64
	TotalDeletes       int64
	SuccessfulDeletes  int64
	TotalContains      int64
	SuccessfulContains int64

	ElapsedSeconds float64
}

// worker is the per-goroutine state for one benchmark thread. It owns its
// own RNG stream, seeded seed^threadID per spec.md §4.1's RNG-scope rule —
// sharing math/rand's global source here would both serialize workers on
// its internal mutex and make the run's interleaving non-reproducible.
type worker struct {
	id         int64
	list       skiplist.List
	oracle     *Oracle
	rng        *rand.Rand
	strategy   Strategy
	startRange int64
	endRange   int64
	insertPct  int
	deletePct  int

	prevKey    int64
	shuffled   []int64
	shufflePos int
}

func newWorker(id int64, seed int64, list skiplist.List, oracle *Oracle, strategy Strategy, startRange, endRange int64, insertPct, deletePct int) *worker {
	w := &worker{
		id:         id,
		list:       list,
		oracle:     oracle,
		rng:        rand.New(rand.NewSource(uint64(seed ^ id))),
		strategy:   strategy,
		startRange: startRange,
		endRange:   endRange,
		insertPct:  insertPct,
		deletePct:  deletePct,
		prevKey:    startRange - 1,
	}
	if strategy == StrategyShuffledUnique {
		w.shuffled = shuffledRange(w.rng, startRange, endRange)
	}
	return w
}

// shuffledRange returns a Fisher-Yates shuffle of [start, end).
func shuffledRange(rng *rand.Rand, start, end int64) []int64 {
	n := int(end - start)
	keys := make([]int64, n)
	for i := range keys {
		keys[i] = start + int64(i)
	}
	for i := n - 1; i > 0; i-- {
		j := int(rng.Int63n(int64(i + 1)))
		keys[i], keys[j] = keys[j], keys[i]
	}
	return keys
}

// nextKey implements the three key-selection strategies of spec.md §4.6.
// exhausted is true under StrategyShuffledUnique once every key in the range
// has been visited once, and under any strategy when the range is empty.
func (w *worker) nextKey() (key int64, exhausted bool) {
	span := w.endRange - w.startRange
	if span <= 0 {
		// A disjoint-range partition narrower than num_threads hands some
		// workers an empty sub-range; treat that worker as having nothing
		// to do rather than feeding Int63n/% a non-positive span.
		return 0, true
	}
	switch w.strategy {
	case StrategyLinear:
		next := (w.prevKey-w.startRange+1)%span + w.startRange
		w.prevKey = next
		return next, false
	case StrategyShuffledUnique:
		if w.shufflePos >= len(w.shuffled) {
			return 0, true
		}
		key := w.shuffled[w.shufflePos]
		w.shufflePos++
		return key, false
	default: // StrategyRandom
		return w.startRange + w.rng.Int63n(span), false
	}
}

// opKind draws r in [1,100] and maps it to insert/delete/contains per
// spec.md §4.6's cumulative thresholds.
func (w *worker) opKind() (insert, remove bool) {
	r := int(w.rng.Int63n(100)) + 1
	if r <= w.insertPct {
		return true, false
	}
	if r <= w.insertPct+w.deletePct {
		return false, true
	}
	return false, false
}

// step performs one scored operation and updates c. It returns false once
// a StrategyShuffledUnique worker has exhausted its assigned range.
func (w *worker) step(c *Counters) bool {
	key, exhausted := w.nextKey()
	if exhausted {
		return false
	}

	insert, remove := w.opKind()
	switch {
	case insert:
		if !w.oracle.Present(key) {
			c.TotalInserts++
			if w.list.Add(key, nil) {
				w.oracle.MarkPresent(key)
				c.SuccessfulInserts++
			}
		}
	case remove:
		c.TotalDeletes++
		believedPresent := w.oracle.Present(key)
		removed := w.list.Remove(key)
		if removed == believedPresent {
			c.SuccessfulDeletes++
		}
		if removed {
			w.oracle.MarkAbsent(key)
		}
	default:
		c.TotalContains++
		believedPresent := w.oracle.Present(key)
		if w.list.Contains(key) == believedPresent {
			c.SuccessfulContains++
		}
	}
	c.Operations++
	return true
}

// run executes step in a loop from startGate's close until deadline,
// implementing spec.md §4.7 step 4: rendezvous at a barrier, record a
// start timestamp, loop until wall time exceeds the runtime budget. ctx
// gives the caller an additional, idiomatic way to cut the run short
// between operations (spec.md §5's "Cancellation" paragraph describes the
// wall-clock budget alone; ctx is purely additive on top of it).
func (w *worker) run(ctx context.Context, startGate <-chan struct{}, deadline time.Time) Counters {
	<-startGate
	start := time.Now()

	var c Counters
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if !w.step(&c) {
			break
		}
	}
	c.ElapsedSeconds = time.Since(start).Seconds()
	return c
}
