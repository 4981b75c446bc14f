package engine

import "cmp"

// Order selects which end of the score range a ScoredBuffer keeps.
type Order int

const (
	Descending Order = iota // keep the highest scores
	Ascending               // keep the lowest scores
)

type scoredItem[S cmp.Ordered, V any] struct {
	score S
	value V
}

// ScoredBuffer keeps the best K values pushed into it, best first. Equal
// scores keep insertion order. It is not safe for concurrent use.
type ScoredBuffer[S cmp.Ordered, V any] struct {
	capacity int
	order    Order
	items    []scoredItem[S, V]
}

func NewScoredBuffer[S cmp.Ordered, V any](capacity int, order Order) *ScoredBuffer[S, V] {
	capacity = max(capacity, 0)
	return &ScoredBuffer[S, V]{
		capacity: capacity,
		order:    order,
		items:    make([]scoredItem[S, V], 0, capacity),
	}
}

func (b *ScoredBuffer[S, V]) Len() int { return len(b.items) }
func (b *ScoredBuffer[S, V]) Cap() int { return b.capacity }

// better reports whether a ranks strictly ahead of c.
func (b *ScoredBuffer[S, V]) better(a, c S) bool {
	if b.order == Ascending {
		return a < c
	}
	return a > c
}

// Push inserts v unless the buffer is full and score does not beat the
// current worst. NaN scores are dropped. Reports whether v was kept.
func (b *ScoredBuffer[S, V]) Push(v V, score S) bool {
	if score != score || b.capacity == 0 {
		return false
	}
	pos := len(b.items)
	for i := range b.items {
		if b.better(score, b.items[i].score) {
			pos = i
			break
		}
	}
	if pos == len(b.items) && len(b.items) == b.capacity {
		return false
	}
	if len(b.items) == b.capacity {
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, scoredItem[S, V]{})
	copy(b.items[pos+1:], b.items[pos:])
	b.items[pos] = scoredItem[S, V]{score: score, value: v}
	return true
}

// PushBucket is Push with at most one value per key. A value for a key
// already present replaces the incumbent only when it scores strictly
// better.
func PushBucket[S cmp.Ordered, V any, K comparable](b *ScoredBuffer[S, V], v V, score S, key func(V) K) bool {
	if score != score {
		return false
	}
	k := key(v)
	for i := range b.items {
		if key(b.items[i].value) != k {
			continue
		}
		if !b.better(score, b.items[i].score) {
			return false
		}
		b.items = append(b.items[:i], b.items[i+1:]...)
		break
	}
	return b.Push(v, score)
}

// Best returns the top entry.
func (b *ScoredBuffer[S, V]) Best() (V, S, bool) {
	if len(b.items) == 0 {
		var v V
		var s S
		return v, s, false
	}
	return b.items[0].value, b.items[0].score, true
}

// DrainSorted empties the buffer and returns its values best first.
func (b *ScoredBuffer[S, V]) DrainSorted() []V {
	out := make([]V, len(b.items))
	for i, it := range b.items {
		out[i] = it.value
	}
	b.items = b.items[:0]
	return out
}
