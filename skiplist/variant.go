// Package skiplist implements a concurrent ordered set of signed 64-bit
// keys as a skip list, in four interchangeable variants: a sequential
// baseline, a global-lock wrapper, a lazy fine-grained lock-per-node
// variant, and a lock-free marked-pointer variant.
package skiplist

import "log/slog"

// MaxLevel caps the forward-pointer fan-out of every node, across all
// variants. The header's top level is fixed at MaxLevel-1 at construction;
// no variant tracks a dynamic max level.
const MaxLevel = 32

// P is the level-promotion probability used by the level generator.
const P = 0.5

// Value is the opaque, caller-owned handle associated with a key. The list
// never inspects it.
type Value = any

// List is the capability every variant implements. Callers select a
// variant once, at construction, and never branch on which one they got.
type List interface {
	// Add inserts key with the given value. It returns true if key became a
	// member as a result of this call, false if key was already present.
	Add(key int64, value Value) bool
	// Remove deletes key. It returns true if key was a member and is now
	// removed, false if key was absent.
	Remove(key int64) bool
	// Contains reports whether key is currently a member.
	Contains(key int64) bool
	// Len reports the number of live keys. It is an approximation under
	// concurrent mutation for the FineGrained and LockFree variants.
	Len() int
}

// Kind names a variant for NewList.
type Kind int

const (
	Sequential Kind = iota
	CoarseGrained
	FineGrained
	LockFree
)

func (k Kind) String() string {
	switch k {
	case Sequential:
		return "sequential"
	case CoarseGrained:
		return "coarse-grained"
	case FineGrained:
		return "fine-grained"
	case LockFree:
		return "lock-free"
	default:
		return "unknown"
	}
}

// NewList constructs an empty list of the requested variant, seeded for
// the per-variant level generator.
func NewList(kind Kind, seed int64) List {
	slog.Debug("Constructing list", "variant", kind, "seed", seed)
	switch kind {
	case Sequential:
		return NewSequentialList(seed)
	case CoarseGrained:
		return NewCoarseGrainedList(seed)
	case FineGrained:
		return NewFineGrainedList(seed)
	case LockFree:
		return NewLockFreeList(seed)
	default:
		panic("skiplist: unknown variant kind")
	}
}
