package skiplist

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"github.com/mkleinegger/skiplist-bench/internal/reclaim"
)

// markedLink is the indirection cell spec.md's Design Notes sanction as the
// fallback representation for a marked pointer in a language, like Go,
// that disallows tagging a real pointer's low bit: a link is replaced
// wholesale (never mutated in place) by a new, immutable markedLink, so a
// concurrent reader always sees either the old link or the new one, never
// a partial update.
type markedLink struct {
	to     *lfNode
	marked bool
}

// lfNode is a single element of the lock-free variant. Every next[i] is an
// atomic pointer to a markedLink; the mark on next[i] describes the
// outgoing link from this node at level i, per spec.md §3.
type lfNode struct {
	key      int64
	value    Value
	topLevel int
	next     []atomic.Pointer[markedLink]
}

func newLFNode(key int64, value Value, topLevel int) *lfNode {
	n := &lfNode{key: key, value: value, topLevel: topLevel, next: make([]atomic.Pointer[markedLink], topLevel+1)}
	for i := range n.next {
		n.next[i].Store(&markedLink{})
	}
	return n
}

// LockFreeList is the marked-pointer lock-free variant: add publishes at
// level 0 via a single CAS, remove marks top-down then at level 0, and any
// traverser that observes a marked outgoing link helps unlink it.
type LockFreeList struct {
	head    *lfNode
	rngMu   sync.Mutex
	rng     *rand.Rand
	count   atomic.Int64
	reclaim *reclaim.Queue
}

// NewLockFreeList returns an empty lock-free skip list.
func NewLockFreeList(seed int64) *LockFreeList {
	head := newLFNode(math.MinInt64, nil, MaxLevel-1)
	return &LockFreeList{head: head, rng: newRNG(seed, 2), reclaim: reclaim.New()}
}

func (l *LockFreeList) chooseLevel() int {
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return randomLevel(l.rng, P, MaxLevel-1)
}

// find descends every level from the header. At each level it walks
// forward, CAS-helping any marked outgoing link out of the chain before
// continuing; a failed helping CAS restarts the whole traversal from the
// header (the retry: label in spec.md §4.5 / skiplist_lockfree.c).
// predLinks[i] is the exact *markedLink object read from preds[i].next[i],
// reused by callers as the CAS "old" value — atomic.Pointer's CAS compares
// pointer identity, so reconstructing an equal-looking markedLink will
// never succeed.
func (l *LockFreeList) find(key int64) (preds, succs [MaxLevel]*lfNode, predLinks [MaxLevel]*markedLink, found bool) {
	for {
		pred := l.head
		restart := false

		for level := MaxLevel - 1; level >= 0 && !restart; level-- {
			predLink := pred.next[level].Load()
			curr := predLink.to

			for curr != nil {
				currLink := curr.next[level].Load()
				succ := currLink.to

				for currLink.marked {
					spliced := &markedLink{to: succ, marked: false}
					if !pred.next[level].CompareAndSwap(predLink, spliced) {
						restart = true
						break
					}
					if level == 0 {
						l.reclaim.Retire(curr)
					}
					predLink = pred.next[level].Load()
					curr = predLink.to
					if curr == nil {
						break
					}
					currLink = curr.next[level].Load()
					succ = currLink.to
				}
				if restart {
					break
				}

				if curr != nil && curr.key < key {
					pred = curr
					predLink = currLink
					curr = succ
				} else {
					break
				}
			}
			if restart {
				break
			}
			preds[level] = pred
			succs[level] = curr
			predLinks[level] = predLink
		}

		if restart {
			continue
		}
		found = succs[0] != nil && succs[0].key == key
		return preds, succs, predLinks, found
	}
}

// Contains descends the levels exactly like find, but never CASes: it
// simply skips past marked nodes. It may observe a node mid-deletion and
// ignore it; that read linearizes before the deletion's level-0 mark.
func (l *LockFreeList) Contains(key int64) bool {
	pred := l.head
	var curr *lfNode
	for level := MaxLevel - 1; level >= 0; level-- {
		curr = pred.next[level].Load().to
		for curr != nil {
			link := curr.next[level].Load()
			for link.marked {
				curr = link.to
				if curr == nil {
					break
				}
				link = curr.next[level].Load()
			}
			if curr != nil && curr.key < key {
				pred = curr
				curr = link.to
			} else {
				break
			}
		}
	}
	return curr != nil && curr.key == key
}

// Add implements spec.md §4.5 "add".
func (l *LockFreeList) Add(key int64, value Value) bool {
	slog.Debug("lock-free: add", "key", key)

	topLevel := l.chooseLevel()
	node := newLFNode(key, value, topLevel)

	preds, succs, predLinks, found := l.find(key)
	if found {
		return false
	}
	for level := 0; level <= topLevel; level++ {
		node.next[level].Store(&markedLink{to: succs[level]})
	}

	for !preds[0].next[0].CompareAndSwap(predLinks[0], &markedLink{to: node}) {
		preds, succs, predLinks, found = l.find(key)
		if found {
			return false
		}
		for level := 0; level <= topLevel; level++ {
			node.next[level].Store(&markedLink{to: succs[level]})
		}
	}
	l.count.Add(1) // Linearization point of a successful add.

	for level := 1; level <= topLevel; level++ {
		for !preds[level].next[level].CompareAndSwap(predLinks[level], &markedLink{to: node}) {
			preds, succs, predLinks, _ = l.find(key)
			node.next[level].Store(&markedLink{to: succs[level]})
		}
	}
	return true
}

// Remove implements spec.md §4.5 "remove".
func (l *LockFreeList) Remove(key int64) bool {
	slog.Debug("lock-free: remove", "key", key)

	_, succs, _, found := l.find(key)
	if !found {
		return false
	}
	victim := succs[0]

	for level := victim.topLevel; level >= 1; level-- {
		for {
			link := victim.next[level].Load()
			if link.marked {
				break
			}
			if victim.next[level].CompareAndSwap(link, &markedLink{to: link.to, marked: true}) {
				break
			}
		}
	}

	for {
		link := victim.next[0].Load()
		if link.marked {
			return false // Another remover already won.
		}
		if victim.next[0].CompareAndSwap(link, &markedLink{to: link.to, marked: true}) {
			// Linearization point of a successful remove.
			l.count.Add(-1)
			l.find(key) // Helping side effect: physically unlinks victim at every level.
			return true
		}
	}
}

// Len reports the current number of live keys. Under concurrent mutation
// this is a snapshot, not a linearizable count.
func (l *LockFreeList) Len() int {
	return int(l.count.Load())
}

// RetiredCount reports how many nodes have been physically unlinked and
// handed to the reclamation queue, for tests and diagnostics.
func (l *LockFreeList) RetiredCount() int {
	return l.reclaim.RetiredCount()
}
