package bench

import (
	"testing"

	"golang.org/x/exp/rand"
)

func TestNextKeyLinearCyclesRange(t *testing.T) {
	w := newWorker(0, 1, nil, nil, StrategyLinear, 10, 15, 100, 0)
	var got []int64
	for i := 0; i < 7; i++ {
		k, exhausted := w.nextKey()
		if exhausted {
			t.Fatalf("linear strategy reported exhausted")
		}
		got = append(got, k)
	}
	want := []int64{10, 11, 12, 13, 14, 10, 11}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("nextKey sequence = %v, want %v", got, want)
		}
	}
}

func TestNextKeyShuffledUniqueExhausts(t *testing.T) {
	w := newWorker(0, 1, nil, nil, StrategyShuffledUnique, 0, 10, 100, 0)

	seen := map[int64]bool{}
	for i := 0; i < 10; i++ {
		k, exhausted := w.nextKey()
		if exhausted {
			t.Fatalf("exhausted after only %d draws, want 10", i)
		}
		if seen[k] {
			t.Fatalf("key %d visited twice before exhaustion", k)
		}
		seen[k] = true
	}
	if _, exhausted := w.nextKey(); !exhausted {
		t.Fatalf("expected exhausted after visiting every key once")
	}
	if len(seen) != 10 {
		t.Fatalf("visited %d distinct keys, want 10", len(seen))
	}
}

func TestNextKeyRandomStaysInRange(t *testing.T) {
	w := newWorker(0, 1, nil, nil, StrategyRandom, 100, 110, 100, 0)
	for i := 0; i < 1000; i++ {
		k, exhausted := w.nextKey()
		if exhausted {
			t.Fatalf("random strategy reported exhausted")
		}
		if k < 100 || k >= 110 {
			t.Fatalf("nextKey() = %d, out of range [100, 110)", k)
		}
	}
}

func TestNextKeyZeroSpanExhaustsImmediately(t *testing.T) {
	for _, strategy := range []Strategy{StrategyRandom, StrategyLinear, StrategyShuffledUnique} {
		w := newWorker(0, 1, nil, nil, strategy, 10, 10, 100, 0)
		if _, exhausted := w.nextKey(); !exhausted {
			t.Fatalf("strategy %v: nextKey() on a zero-length range did not report exhausted", strategy)
		}
	}
}

func TestOpKindRespectsMix(t *testing.T) {
	w := newWorker(0, 1, nil, nil, StrategyRandom, 0, 10, 40, 40)
	var inserts, removes, contains int
	for i := 0; i < 10000; i++ {
		in, rm := w.opKind()
		switch {
		case in:
			inserts++
		case rm:
			removes++
		default:
			contains++
		}
	}
	// Loose check: over enough draws a 40/40/20 mix must produce every
	// operation kind at least once; the proportions are not asserted.
	if inserts == 0 || removes == 0 || contains == 0 {
		t.Fatalf("one operation kind never occurred: inserts=%d removes=%d contains=%d", inserts, removes, contains)
	}
}

func TestShuffledRangeIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := shuffledRange(rng, 5, 15)
	seen := map[int64]bool{}
	for _, k := range got {
		if k < 5 || k >= 15 {
			t.Fatalf("shuffledRange produced out-of-range key %d", k)
		}
		if seen[k] {
			t.Fatalf("shuffledRange produced duplicate key %d", k)
		}
		seen[k] = true
	}
	if len(seen) != 10 {
		t.Fatalf("shuffledRange produced %d distinct keys, want 10", len(seen))
	}
}
