package skiplist

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"
)

// fineNode is a single element of the lazy fine-grained variant. marked and
// fullyLinked are atomic.Bool, and next is a slice of atomic pointers, so
// that concurrent readers never observe a torn read of a field a writer is
// mid-update on — the representation the teacher uses verbatim.
type fineNode struct {
	mu          sync.Mutex
	key         int64
	value       Value
	topLevel    int
	marked      atomic.Bool
	fullyLinked atomic.Bool
	next        []atomic.Pointer[fineNode]
}

func newFineNode(key int64, value Value, topLevel int) *fineNode {
	return &fineNode{
		key:      key,
		value:    value,
		topLevel: topLevel,
		next:     make([]atomic.Pointer[fineNode], topLevel+1),
	}
}

// FineGrainedList is the lazy fine-grained lock-per-node variant (Herlihy,
// Lev, Luchangco, Shavit). Readers (Contains) are wait-free; writers
// (Add, Remove) acquire per-node locks on a validated predecessor set.
type FineGrainedList struct {
	head  *fineNode
	rngMu sync.Mutex
	rng   *rand.Rand
	count atomic.Int64
}

// NewFineGrainedList returns an empty lazy fine-grained skip list.
func NewFineGrainedList(seed int64) *FineGrainedList {
	head := newFineNode(math.MinInt64, nil, MaxLevel-1)
	head.fullyLinked.Store(true)
	return &FineGrainedList{head: head, rng: newRNG(seed, 1)}
}

func (l *FineGrainedList) chooseLevel() int {
	l.rngMu.Lock()
	defer l.rngMu.Unlock()
	return randomLevel(l.rng, P, MaxLevel-1)
}

// find descends every level from the header, collecting the predecessor
// and successor at each level, and records the highest level at which a
// node with a matching key was observed (or -1).
func (l *FineGrainedList) find(key int64, preds, succs *[MaxLevel]*fineNode) int {
	lFound := -1
	pred := l.head
	for level := MaxLevel - 1; level >= 0; level-- {
		curr := pred.next[level].Load()
		for curr != nil && curr.key < key {
			pred = curr
			curr = pred.next[level].Load()
		}
		if lFound == -1 && curr != nil && curr.key == key {
			lFound = level
		}
		preds[level] = pred
		succs[level] = curr
	}
	return lFound
}

// Add implements spec.md §4.4 steps 1-8.
func (l *FineGrainedList) Add(key int64, value Value) bool {
	slog.Debug("fine-grained: add", "key", key)

	topLevel := l.chooseLevel()
	var preds, succs [MaxLevel]*fineNode

	for {
		lFound := l.find(key, &preds, &succs)
		if lFound != -1 {
			found := succs[lFound]
			if !found.marked.Load() {
				for !found.fullyLinked.Load() {
					// Spin until the concurrent inserter publishes it.
				}
				return false
			}
			// The node we found is mid-removal; retry the whole find.
			continue
		}

		locked := lockPredecessors(preds[:topLevel+1])

		valid := true
		for level := 0; valid && level <= topLevel; level++ {
			succOK := succs[level] == nil || !succs[level].marked.Load()
			valid = !preds[level].marked.Load() && succOK && preds[level].next[level].Load() == succs[level]
		}
		if !valid {
			unlockAll(locked)
			continue
		}

		node := newFineNode(key, value, topLevel)
		for level := 0; level <= topLevel; level++ {
			node.next[level].Store(succs[level])
		}
		for level := 0; level <= topLevel; level++ {
			preds[level].next[level].Store(node)
		}
		node.fullyLinked.Store(true) // Linearization point of a successful add.

		unlockAll(locked)
		l.count.Add(1)
		return true
	}
}

// Remove implements spec.md §4.4 "remove" steps 1-6.
func (l *FineGrainedList) Remove(key int64) bool {
	slog.Debug("fine-grained: remove", "key", key)

	isMarked := false
	topLevel := -1
	var victim *fineNode
	var preds, succs [MaxLevel]*fineNode

	for {
		lFound := l.find(key, &preds, &succs)
		if lFound != -1 {
			victim = succs[lFound]
		}

		if !isMarked {
			if lFound == -1 {
				return false
			}
			if !victim.fullyLinked.Load() || victim.marked.Load() || victim.topLevel != lFound {
				return false
			}

			topLevel = victim.topLevel
			victim.mu.Lock()
			if victim.marked.Load() {
				victim.mu.Unlock()
				return false
			}
			victim.marked.Store(true) // Linearization point of a successful remove.
			isMarked = true
		}

		locked := lockPredecessors(preds[:topLevel+1])

		valid := true
		for level := 0; valid && level <= topLevel; level++ {
			valid = !preds[level].marked.Load() && preds[level].next[level].Load() == victim
		}
		if !valid {
			unlockAll(locked)
			continue
		}

		for level := topLevel; level >= 0; level-- {
			preds[level].next[level].Store(victim.next[level].Load())
		}

		victim.mu.Unlock()
		unlockAll(locked)
		l.count.Add(-1)
		return true
	}
}

// Contains is wait-free: it never blocks and never helps.
func (l *FineGrainedList) Contains(key int64) bool {
	node := l.head
	for level := MaxLevel - 1; level >= 0; level-- {
		curr := node.next[level].Load()
		for curr != nil && curr.key < key {
			node = curr
			curr = node.next[level].Load()
		}
	}
	succ := node.next[0].Load()
	return succ != nil && succ.key == key && succ.fullyLinked.Load() && !succ.marked.Load()
}

// Len reports the current number of live keys. Under concurrent mutation
// this is a snapshot, not a linearizable count.
func (l *FineGrainedList) Len() int {
	return int(l.count.Load())
}

// lockPredecessors acquires the locks of the distinct nodes in preds, in
// the order the nodes appear (level 0 upward, skipping a node already
// locked as the previous level's predecessor). Every writer uses this same
// order, which is what makes the scheme deadlock-free (spec.md F3).
func lockPredecessors(preds []*fineNode) []*fineNode {
	locked := make([]*fineNode, 0, len(preds))
	var prev *fineNode
	for _, p := range preds {
		if p != prev {
			p.mu.Lock()
			locked = append(locked, p)
			prev = p
		}
	}
	return locked
}

func unlockAll(nodes []*fineNode) {
	for _, n := range nodes {
		n.mu.Unlock()
	}
}
