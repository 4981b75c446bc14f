package engine

import (
	"math"
	"reflect"
	"testing"
)

func TestScoredBuffer_KeepsTopK(t *testing.T) {
	b := NewScoredBuffer[int, string](3, Descending)
	for i, v := range []string{"a", "b", "c", "d"} {
		b.Push(v, i+1)
		if b.Len() > b.Cap() {
			t.Fatalf("Len %d exceeds capacity %d", b.Len(), b.Cap())
		}
	}
	got := b.DrainSorted()
	if want := []string{"d", "c", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("DrainSorted = %v, want %v", got, want)
	}
	if b.Len() != 0 {
		t.Errorf("Len after drain = %d, want 0", b.Len())
	}
}

func TestScoredBuffer_DiscardsWorseWhenFull(t *testing.T) {
	b := NewScoredBuffer[float64, string](2, Descending)
	b.Push("a", 10)
	b.Push("b", 5)
	if b.Push("c", 5) {
		t.Error("equal to worst should be discarded")
	}
	if b.Push("d", 1) {
		t.Error("worse than worst should be discarded")
	}
	if !b.Push("e", 7) {
		t.Error("better than worst should be kept")
	}
	if got := b.DrainSorted(); !reflect.DeepEqual(got, []string{"a", "e"}) {
		t.Errorf("DrainSorted = %v", got)
	}
}

func TestScoredBuffer_StableTies(t *testing.T) {
	b := NewScoredBuffer[int, string](4, Descending)
	b.Push("first", 1)
	b.Push("second", 1)
	b.Push("top", 2)
	if got := b.DrainSorted(); !reflect.DeepEqual(got, []string{"top", "first", "second"}) {
		t.Errorf("DrainSorted = %v", got)
	}
}

func TestScoredBuffer_Ascending(t *testing.T) {
	b := NewScoredBuffer[int, int](2, Ascending)
	for _, v := range []int{5, 3, 9, 1} {
		b.Push(v, v)
	}
	if got := b.DrainSorted(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("DrainSorted = %v, want [1 3]", got)
	}
}

func TestScoredBuffer_NaNAndZeroCapacity(t *testing.T) {
	b := NewScoredBuffer[float64, int](2, Descending)
	if b.Push(1, math.NaN()) {
		t.Error("NaN score accepted")
	}
	z := NewScoredBuffer[float64, int](0, Descending)
	if z.Push(1, 1) || z.Len() != 0 {
		t.Error("zero-capacity buffer accepted a value")
	}
	if _, _, ok := z.Best(); ok {
		t.Error("Best on empty buffer reported ok")
	}
}

type bucketed struct {
	key  string
	name string
}

func TestPushBucket_OnePerKey(t *testing.T) {
	b := NewScoredBuffer[int, bucketed](5, Descending)
	key := func(v bucketed) string { return v.key }

	PushBucket(b, bucketed{"x", "x1"}, 5, key)
	PushBucket(b, bucketed{"y", "y1"}, 4, key)
	if PushBucket(b, bucketed{"x", "x2"}, 3, key) {
		t.Error("worse value for existing key kept")
	}
	if PushBucket(b, bucketed{"x", "x3"}, 5, key) {
		t.Error("equal value for existing key kept")
	}
	if !PushBucket(b, bucketed{"y", "y2"}, 9, key) {
		t.Error("better value for existing key rejected")
	}

	got := b.DrainSorted()
	want := []bucketed{{"y", "y2"}, {"x", "x1"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("DrainSorted = %v, want %v", got, want)
	}
}

func TestPushBucket_RespectsCapacity(t *testing.T) {
	b := NewScoredBuffer[int, bucketed](2, Descending)
	key := func(v bucketed) string { return v.key }
	for i, k := range []string{"a", "b", "c", "a", "d"} {
		PushBucket(b, bucketed{k, k}, i, key)
		if b.Len() > 2 {
			t.Fatalf("Len = %d after push %d", b.Len(), i)
		}
	}
	seen := map[string]bool{}
	for _, v := range b.DrainSorted() {
		if seen[v.key] {
			t.Errorf("duplicate key %q", v.key)
		}
		seen[v.key] = true
	}
	if !seen["a"] || !seen["d"] {
		t.Errorf("kept %v, want a and d", seen)
	}
}
