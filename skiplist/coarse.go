package skiplist

import "sync"

// CoarseGrainedList wraps a SequentialList with a single exclusive lock
// owned by this list instance (not a package-level lock — each instance
// gets its own, per spec.md's Design Notes). Correctness reduces entirely
// to the sequential baseline; this variant exists as a correctness
// reference and a scalability lower bound for the finer-grained variants.
type CoarseGrainedList struct {
	mu   sync.Mutex
	list *SequentialList
}

// NewCoarseGrainedList returns an empty global-lock skip list.
func NewCoarseGrainedList(seed int64) *CoarseGrainedList {
	return &CoarseGrainedList{list: NewSequentialList(seed)}
}

func (l *CoarseGrainedList) Add(key int64, value Value) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Add(key, value)
}

func (l *CoarseGrainedList) Remove(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Remove(key)
}

func (l *CoarseGrainedList) Contains(key int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Contains(key)
}

func (l *CoarseGrainedList) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Len()
}
