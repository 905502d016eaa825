package skiplist

import (
	"log/slog"
	"os"
	"testing"
)

func init() {
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(h))
}

func allVariants() map[string]func(seed int64) List {
	return map[string]func(seed int64) List{
		"sequential": func(seed int64) List { return NewSequentialList(seed) },
		"coarse":     func(seed int64) List { return NewCoarseGrainedList(seed) },
		"fine":       func(seed int64) List { return NewFineGrainedList(seed) },
		"lockfree":   func(seed int64) List { return NewLockFreeList(seed) },
	}
}

// TestSmoke implements spec.md §8 scenario 1 against every variant.
func TestSmoke(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			for k := int64(0); k < 100; k++ {
				if list.Contains(k) {
					t.Fatalf("contains(%d) = true before insert", k)
				}
				if !list.Add(k, nil) {
					t.Fatalf("add(%d) = false, want true", k)
				}
				if !list.Contains(k) {
					t.Fatalf("contains(%d) = false after insert", k)
				}
			}
			for k := int64(0); k < 100; k++ {
				if !list.Contains(k) {
					t.Fatalf("contains(%d) = false before remove", k)
				}
				if !list.Remove(k) {
					t.Fatalf("remove(%d) = false, want true", k)
				}
				if list.Contains(k) {
					t.Fatalf("contains(%d) = true after remove", k)
				}
			}
			if list.Contains(999) {
				t.Fatalf("contains(999) = true, want false")
			}
		})
	}
}

// TestDuplicateInsert implements spec.md §8 scenario 2.
func TestDuplicateInsert(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			if !list.Add(7, nil) {
				t.Fatalf("add(7) = false, want true")
			}
			if list.Add(7, nil) {
				t.Fatalf("add(7) second call = true, want false")
			}
			if !list.Contains(7) {
				t.Fatalf("contains(7) = false, want true")
			}
			if !list.Remove(7) {
				t.Fatalf("remove(7) = false, want true")
			}
			if list.Contains(7) {
				t.Fatalf("contains(7) = true after remove, want false")
			}
			if list.Remove(7) {
				t.Fatalf("remove(7) second call = true, want false")
			}
		})
	}
}

// TestOrderingUnderRandomInput implements spec.md §8 scenario 3.
func TestOrderingUnderRandomInput(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			for _, k := range []int64{50, 10, 90, 10, 30, 70, 50, 20} {
				list.Add(k, nil)
			}
			want := []int64{10, 20, 30, 50, 70, 90}
			got := levelZeroChain(t, list)
			if len(got) != len(want) {
				t.Fatalf("chain = %v, want %v", got, want)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("chain = %v, want %v", got, want)
				}
			}
		})
	}
}

// levelZeroChain reconstructs the list's members in ascending order by
// probing Contains for every key in [0, 100), which works for every
// variant; the public List interface has no iteration API, so the node
// chain itself is not walked and keys outside [0, 100) are not seen.
func levelZeroChain(t *testing.T, list List) []int64 {
	t.Helper()
	var out []int64
	for k := int64(0); k < 100; k++ {
		if list.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

// TestIdempotence covers P5.
func TestIdempotence(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			list.Add(42, nil)
			lenAfterFirst := list.Len()
			if list.Add(42, nil) {
				t.Fatalf("second add(42) = true, want false")
			}
			if list.Len() != lenAfterFirst {
				t.Fatalf("Len changed on a no-op add: %d vs %d", list.Len(), lenAfterFirst)
			}

			list.Remove(42)
			if list.Remove(42) {
				t.Fatalf("second remove(42) = true, want false")
			}
		})
	}
}

// TestRoundTrip covers P6.
func TestRoundTrip(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			for k := int64(0); k < 50; k++ {
				list.Add(k, nil)
				list.Remove(k)
			}
			if list.Len() != 0 {
				t.Fatalf("Len = %d after matched add/remove pairs, want 0", list.Len())
			}
		})
	}
}

// TestEmptyListOperations covers §4.2's "empty list" edge cases.
func TestEmptyListOperations(t *testing.T) {
	for name, ctor := range allVariants() {
		t.Run(name, func(t *testing.T) {
			list := ctor(0)
			if list.Contains(1) {
				t.Fatalf("contains(1) on empty list = true")
			}
			if list.Remove(1) {
				t.Fatalf("remove(1) on empty list = true")
			}
			if list.Len() != 0 {
				t.Fatalf("Len() on empty list = %d, want 0", list.Len())
			}
		})
	}
}
