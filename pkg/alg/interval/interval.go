// Package interval provides an augmented interval tree for range-overlap
// queries. It supports Insert, Remove, QueryOverlap and QueryPoint with
// O(log N) insert/remove and O(log N + k) query time, where k is the number
// of reported intervals.
//
// Intervals are half-open, [Low, High). Entries live in a caller-owned arena
// and are linked into a balanced tree ordered by Low, then High. Every entry
// stores the maximum High of its subtree (maxHigh), which lets overlap
// queries prune whole subtrees.
package interval

import (
	"cmp"
	"errors"
	"fmt"
	"iter"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
)

// ErrEmptyInterval is returned by Alloc for intervals with Low >= High.
var ErrEmptyInterval = errors.New("empty interval")

// Entry is an interval [Low, High) with an associated Value.
type Entry[K cmp.Ordered, V any] struct {
	Low   K
	High  K
	Value V

	maxHigh K
	hook    bst.Hook
}

// Hook exposes the tree links.
func (e *Entry[K, V]) Hook() *bst.Hook { return &e.hook }

// MaxHigh returns the largest High in the subtree rooted at e.
func (e *Entry[K, V]) MaxHigh() K { return e.maxHigh }

// Key is the lookup key of an entry.
type Key[K cmp.Ordered] struct {
	Low, High K
}

// Options configures a Tree.
type Options[K cmp.Ordered, V any] struct {
	// Strategy selects the balancing strategy. Empty means red-black.
	Strategy strategy.Kind
	// Config carries strategy parameters, such as the rank hash of a
	// hash-ranked zip tree.
	Config strategy.Config[Entry[K, V]]
	// Unique rejects an entry whose bounds equal those of a linked entry.
	// By default equal intervals are all kept, in insertion order.
	Unique bool
}

// Tree is an augmented interval tree over the entries of an arena.
type Tree[K cmp.Ordered, V any] struct {
	store *arena.Arena[Entry[K, V]]
	tree  *bst.Tree[Entry[K, V], Key[K], *Entry[K, V]]
}

// Alloc stores a new unlinked entry in store and returns its index.
func Alloc[K cmp.Ordered, V any](store *arena.Arena[Entry[K, V]], low, high K, value V) (bst.Index, error) {
	if low >= high {
		return bst.Nil, fmt.Errorf("%w: [%v, %v)", ErrEmptyInterval, low, high)
	}

	idx := store.Alloc()
	*store.Get(idx) = Entry[K, V]{Low: low, High: high, Value: value}

	return idx, nil
}

// New creates an empty interval tree over the entries of store.
func New[K cmp.Ordered, V any](store *arena.Arena[Entry[K, V]], opts Options[K, V]) (*Tree[K, V], error) {
	tree, err := strategy.New[Entry[K, V], Key[K], *Entry[K, V]](opts.Strategy, store, ordering[K, V](), opts.Config,
		bst.Options[Entry[K, V], Key[K]]{Multiple: !opts.Unique, Augmenter: maxHighAugmenter[K, V]{}})
	if err != nil {
		return nil, err
	}

	return &Tree[K, V]{store: store, tree: tree}, nil
}

// Len returns the number of intervals in the tree.
func (t *Tree[K, V]) Len() int {
	return t.tree.Len()
}

// Clear unlinks all intervals. The entries stay in the arena.
func (t *Tree[K, V]) Clear() {
	t.tree.Clear()
}

// Tree exposes the underlying search tree, e.g. for export or statistics.
func (t *Tree[K, V]) Tree() *bst.Tree[Entry[K, V], Key[K], *Entry[K, V]] {
	return t.tree
}

// Get resolves an entry index.
func (t *Tree[K, V]) Get(idx bst.Index) *Entry[K, V] {
	return t.store.Get(idx)
}

// Insert links the entry idx. Equal intervals are kept in insertion order,
// unless the tree is Unique, in which case Insert reports false and leaves
// idx unlinked.
func (t *Tree[K, V]) Insert(idx bst.Index) bool {
	return t.tree.Insert(idx)
}

// Remove unlinks the entry idx.
func (t *Tree[K, V]) Remove(idx bst.Index) {
	t.tree.Remove(idx)
}

// Find returns the first entry with exactly the bounds [low, high), or Nil.
func (t *Tree[K, V]) Find(low, high K) bst.Index {
	return t.tree.Find(Key[K]{Low: low, High: high}).Index()
}

// All yields every entry ordered by Low, then High.
func (t *Tree[K, V]) All() iter.Seq2[bst.Index, *Entry[K, V]] {
	return t.tree.All()
}

// QueryOverlap returns the entries overlapping [low, high), in order.
// An interval [a, b) overlaps [low, high) when a < high and low < b.
func (t *Tree[K, V]) QueryOverlap(low, high K) []bst.Index {
	var results []bst.Index

	t.visit(t.tree.Root(), low, high, false, func(idx bst.Index, _ *Entry[K, V]) bool {
		results = append(results, idx)

		return true
	})

	return results
}

// QueryPoint returns the entries containing point, in order.
func (t *Tree[K, V]) QueryPoint(point K) []bst.Index {
	var results []bst.Index

	t.visit(t.tree.Root(), point, point, true, func(idx bst.Index, _ *Entry[K, V]) bool {
		results = append(results, idx)

		return true
	})

	return results
}

// VisitOverlap calls fn for every entry overlapping [low, high), in order,
// until fn returns false.
func (t *Tree[K, V]) VisitOverlap(low, high K, fn func(bst.Index, *Entry[K, V]) bool) {
	t.visit(t.tree.Root(), low, high, false, fn)
}

// visit walks the entries with Low < high (Low <= high when closed) and
// High > low in order. It returns false once fn asked to stop.
func (t *Tree[K, V]) visit(n bst.Index, low, high K, closed bool, fn func(bst.Index, *Entry[K, V]) bool) bool {
	if n == bst.Nil {
		return true
	}

	e := t.store.Get(n)

	// Prune: no interval in this subtree reaches past low.
	if e.maxHigh <= low {
		return true
	}

	if !t.visit(t.tree.Left(n), low, high, closed, fn) {
		return false
	}

	startsBefore := e.Low < high || (closed && e.Low == high)

	if startsBefore && e.High > low && !fn(n, e) {
		return false
	}

	// Prune right: every entry on the right starts at or after e.Low.
	if !startsBefore {
		return true
	}

	return t.visit(t.tree.Right(n), low, high, closed, fn)
}

// Check verifies the tree structure, the balancing invariant and every
// maxHigh value.
func (t *Tree[K, V]) Check() error {
	return t.tree.Check()
}

func ordering[K cmp.Ordered, V any]() bst.Ordering[Entry[K, V], Key[K]] {
	return bst.Ordering[Entry[K, V], Key[K]]{
		Compare: func(a, b *Entry[K, V]) int {
			return compareBounds(a.Low, a.High, b.Low, b.High)
		},
		CompareKey: func(k Key[K], e *Entry[K, V]) int {
			return compareBounds(k.Low, k.High, e.Low, e.High)
		},
	}
}

// compareBounds orders intervals by Low, then High.
func compareBounds[K cmp.Ordered](aLow, aHigh, bLow, bHigh K) int {
	if c := cmp.Compare(aLow, bLow); c != 0 {
		return c
	}

	return cmp.Compare(aHigh, bHigh)
}

// maxHighAugmenter maintains maxHigh.
type maxHighAugmenter[K cmp.Ordered, V any] struct{}

func (maxHighAugmenter[K, V]) Update(n, left, right *Entry[K, V]) bool {
	m := n.High

	if left != nil {
		m = max(m, left.maxHigh)
	}

	if right != nil {
		m = max(m, right.maxHigh)
	}

	if m == n.maxHigh {
		return false
	}

	n.maxHigh = m

	return true
}
