package skiplist

import (
	"log/slog"
	"math"

	"golang.org/x/exp/rand"
)

// seqNode is a single-threaded skip-list element. There is nothing to
// synchronize: the sequential variant is never shared across goroutines.
type seqNode struct {
	key      int64
	value    Value
	topLevel int
	next     []*seqNode
}

// SequentialList is the single-threaded baseline variant: no locks, no
// atomics, a direct translation of the classic skip-list algorithm.
type SequentialList struct {
	head  *seqNode
	rng   *rand.Rand
	count int
}

// NewSequentialList returns an empty sequential skip list.
func NewSequentialList(seed int64) *SequentialList {
	head := &seqNode{
		key:      math.MinInt64,
		topLevel: MaxLevel - 1,
		next:     make([]*seqNode, MaxLevel),
	}
	return &SequentialList{head: head, rng: newRNG(seed, 0)}
}

// findPreds descends every level from the header, recording at each level
// the rightmost node whose key is strictly less than key.
func (l *SequentialList) findPreds(key int64) [MaxLevel]*seqNode {
	var preds [MaxLevel]*seqNode
	node := l.head
	for i := MaxLevel - 1; i >= 0; i-- {
		for node.next[i] != nil && node.next[i].key < key {
			node = node.next[i]
		}
		preds[i] = node
	}
	return preds
}

// Add inserts key with value, returning false if key is already present.
func (l *SequentialList) Add(key int64, value Value) bool {
	slog.Debug("sequential: add", "key", key)

	preds := l.findPreds(key)
	if succ := preds[0].next[0]; succ != nil && succ.key == key {
		return false
	}

	topLevel := randomLevel(l.rng, P, MaxLevel-1)
	node := &seqNode{
		key:      key,
		value:    value,
		topLevel: topLevel,
		next:     make([]*seqNode, topLevel+1),
	}
	for i := 0; i <= topLevel; i++ {
		node.next[i] = preds[i].next[i]
		preds[i].next[i] = node
	}
	l.count++
	return true
}

// Remove deletes key, returning false if key was not present.
func (l *SequentialList) Remove(key int64) bool {
	slog.Debug("sequential: remove", "key", key)

	preds := l.findPreds(key)
	victim := preds[0].next[0]
	if victim == nil || victim.key != key {
		return false
	}
	for i := 0; i <= victim.topLevel; i++ {
		preds[i].next[i] = victim.next[i]
	}
	l.count--
	return true
}

// Contains reports whether key is a member.
func (l *SequentialList) Contains(key int64) bool {
	node := l.head
	for i := MaxLevel - 1; i >= 0; i-- {
		for node.next[i] != nil && node.next[i].key < key {
			node = node.next[i]
		}
	}
	succ := node.next[0]
	return succ != nil && succ.key == key
}

// Len reports the current number of live keys.
func (l *SequentialList) Len() int {
	return l.count
}
