// Package reclaim provides an epoch-gated retirement queue for the
// lock-free skip list's unlinked nodes.
//
// spec.md requires the lock-free variant to defer freeing an unlinked node
// until no concurrent reader can still be traversing through it (epoch-
// based or hazard-pointer reclamation), and calls out a naive immediate
// free as a known bug in the source this module was modeled on. Go's
// garbage collector already makes a bare unlink memory-safe — there is no
// manual free to get wrong — but this package still gives the lock-free
// variant a concrete place to route every unlink through, modeled on the
// epoch-counter pattern used for optimistic read validation elsewhere in
// the retrieval pack, rather than silently declaring the spec's
// requirement moot because the host language happens to have a collector.
package reclaim

import "sync"

// Queue counts epochs and records what was retired in each one. It does
// not free anything itself; retired nodes become ordinary Go garbage once
// no atomic pointer in the list references them, and the collector takes
// it from there.
type Queue struct {
	mu      sync.Mutex
	epoch   uint64
	pending []item
}

type item struct {
	epoch uint64
	node  any
}

// New returns an empty retirement queue at epoch 0.
func New() *Queue {
	return &Queue{}
}

// Retire records that node has been physically unlinked and advances the
// epoch. Call this from the single writer that performed the unlink,
// immediately after the CAS that removed the last reference to node from
// the list's reachable structure.
func (q *Queue) Retire(node any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.epoch++
	q.pending = append(q.pending, item{epoch: q.epoch, node: node})
}

// Epoch returns the current epoch counter.
func (q *Queue) Epoch() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.epoch
}

// RetiredCount returns the number of nodes retired so far, for tests and
// diagnostics.
func (q *Queue) RetiredCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
