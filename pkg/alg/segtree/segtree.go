// Package segtree implements a dynamic segment tree: a set of weighted
// half-open intervals [lower, upper) that answers "what is the combined value
// of all intervals covering x" in O(log n).
//
// Every interval is stored as two endpoint records in a balanced tree. The
// start contributes the interval's value, the end contributes its inverse,
// and each record keeps the in-order combination of the contributions in its
// subtree. A point query is then a prefix fold along a single root-to-leaf
// path. Values form a commutative group.
//
// When the tree is given an order on values it also keeps, per record, the
// highest coverage reached inside the subtree, which answers "what is the
// largest combined value anywhere in [lower, upper)" in O(log n).
package segtree

import (
	"cmp"
	"errors"
	"fmt"
	"iter"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/augment"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
)

// Errors returned by Alloc, QueryRange and Check.
var (
	ErrEmptyInterval = errors.New("empty interval")
	ErrUnpaired      = errors.New("endpoint without its partner")
	ErrUnordered     = errors.New("range queries need Options.Compare")
)

// Endpoint is one end of an interval. Records are created by Alloc.
type Endpoint[K cmp.Ordered, V comparable] struct {
	point   K
	value   V
	delta   V
	agg     V
	peak    summary[K, V]
	start   bool
	partner bst.Index
	hook    bst.Hook
}

// Hook exposes the tree links.
func (e *Endpoint[K, V]) Hook() *bst.Hook { return &e.hook }

// Point returns the endpoint's coordinate.
func (e *Endpoint[K, V]) Point() K { return e.point }

// Start reports whether this is the lower end of its interval.
func (e *Endpoint[K, V]) Start() bool { return e.start }

// Value returns the value of the endpoint's interval.
func (e *Endpoint[K, V]) Value() V { return e.value }

// Interval is the handle of a stored interval: its two endpoint records.
type Interval struct {
	Start, End bst.Index
}

// Segment is a maximal stretch [From, To) between consecutive endpoints,
// together with the combined value covering it.
type Segment[K cmp.Ordered, V any] struct {
	From, To K
	Value    V
}

// Alloc stores the endpoints of [lower, upper) with value v in store.
func Alloc[K cmp.Ordered, V comparable](store *arena.Arena[Endpoint[K, V]], lower, upper K, v V) (Interval, error) {
	if lower >= upper {
		return Interval{}, fmt.Errorf("%w: [%v, %v)", ErrEmptyInterval, lower, upper)
	}

	start := store.Alloc()
	end := store.Alloc()

	*store.Get(start) = Endpoint[K, V]{point: lower, value: v, start: true, partner: end}
	*store.Get(end) = Endpoint[K, V]{point: upper, value: v, partner: start}

	return Interval{Start: start, End: end}, nil
}

// Free releases both endpoint records of an unlinked interval.
func Free[K cmp.Ordered, V comparable](store *arena.Arena[Endpoint[K, V]], iv Interval) {
	store.Free(iv.Start)
	store.Free(iv.End)
}

// Options configures a Tree.
type Options[K cmp.Ordered, V comparable] struct {
	// Strategy selects the balancing strategy. Empty means red-black.
	Strategy strategy.Kind
	// Config carries strategy parameters.
	Config strategy.Config[Endpoint[K, V]]
	// Compare orders values. When set, the tree maintains the per-record
	// coverage maxima behind QueryRange and Peak.
	Compare func(a, b V) int
}

// Tree is a dynamic segment tree over the endpoints of an arena.
type Tree[K cmp.Ordered, V comparable] struct {
	store   *arena.Arena[Endpoint[K, V]]
	group   augment.Group[V]
	agg     augment.Aggregator[Endpoint[K, V], V]
	peaks   *augment.Aggregator[Endpoint[K, V], summary[K, V]]
	compare func(a, b V) int
	tree    *bst.Tree[Endpoint[K, V], K, *Endpoint[K, V]]
}

// New creates an empty segment tree combining values with group.
func New[K cmp.Ordered, V comparable](
	store *arena.Arena[Endpoint[K, V]], group augment.Group[V], opts Options[K, V],
) (*Tree[K, V], error) {
	agg := augment.Aggregator[Endpoint[K, V], V]{
		Monoid: group,
		Value:  func(e *Endpoint[K, V]) V { return e.delta },
		Agg:    func(e *Endpoint[K, V]) *V { return &e.agg },
	}

	out := &Tree[K, V]{store: store, group: group, agg: agg, compare: opts.Compare}

	var aug bst.Augmenter[Endpoint[K, V]] = agg

	if opts.Compare != nil {
		out.peaks = &augment.Aggregator[Endpoint[K, V], summary[K, V]]{
			Monoid: peakMonoid[K, V]{group: group, compare: opts.Compare},
			Value:  single[K, V],
			Agg:    func(e *Endpoint[K, V]) *summary[K, V] { return &e.peak },
		}
		aug = augment.Compose[Endpoint[K, V]]{agg, *out.peaks}
	}

	tree, err := strategy.New[Endpoint[K, V], K, *Endpoint[K, V]](opts.Strategy, store, ordering[K, V](), opts.Config,
		bst.Options[Endpoint[K, V], K]{Multiple: true, Augmenter: aug})
	if err != nil {
		return nil, err
	}

	out.tree = tree

	return out, nil
}

// ordering sorts endpoints by point. At equal points ends precede starts, so
// [a, b) and [b, c) never cover b together. Equal endpoints keep insertion
// order.
func ordering[K cmp.Ordered, V comparable]() bst.Ordering[Endpoint[K, V], K] {
	return bst.Ordering[Endpoint[K, V], K]{
		Compare: func(a, b *Endpoint[K, V]) int {
			if c := cmp.Compare(a.point, b.point); c != 0 {
				return c
			}

			switch {
			case a.start == b.start:
				return 0
			case b.start:
				return -1
			default:
				return 1
			}
		},
		CompareKey: func(k K, e *Endpoint[K, V]) int {
			return cmp.Compare(k, e.point)
		},
	}
}

// Insert links both endpoints of iv.
func (t *Tree[K, V]) Insert(iv Interval) {
	start, end := t.store.Get(iv.Start), t.store.Get(iv.End)
	start.delta = start.value
	end.delta = t.group.Inverse(end.value)

	t.tree.Insert(iv.Start)
	t.tree.Insert(iv.End)
}

// Remove unlinks both endpoints of iv.
func (t *Tree[K, V]) Remove(iv Interval) {
	t.tree.Remove(iv.Start)
	t.tree.Remove(iv.End)
}

// Bounds returns the bounds and value of iv.
func (t *Tree[K, V]) Bounds(iv Interval) (lower, upper K, v V) {
	start := t.store.Get(iv.Start)

	return start.point, t.store.Get(iv.End).point, start.value
}

// Query combines the values of all intervals containing x. It returns the
// group identity when no interval covers x.
func (t *Tree[K, V]) Query(x K) V {
	acc := t.group.Identity()

	for n := t.tree.Root(); n != bst.Nil; {
		e := t.store.Get(n)

		if e.point <= x {
			left := t.agg.Of(t.node(t.tree.Left(n)))
			acc = t.group.Combine(acc, t.group.Combine(left, e.delta))
			n = t.tree.Right(n)
		} else {
			n = t.tree.Left(n)
		}
	}

	return acc
}

// Segments yields the coverage between consecutive distinct endpoints in
// ascending order. Stretches covered by no interval are reported with the
// identity value.
func (t *Tree[K, V]) Segments() iter.Seq[Segment[K, V]] {
	return func(yield func(Segment[K, V]) bool) {
		acc := t.group.Identity()
		first := true

		var last K

		for _, e := range t.tree.All() {
			if !first && e.point != last {
				if !yield(Segment[K, V]{From: last, To: e.point, Value: acc}) {
					return
				}
			}

			acc = t.group.Combine(acc, e.delta)
			last, first = e.point, false
		}
	}
}

// Len returns the number of stored intervals.
func (t *Tree[K, V]) Len() int {
	return t.tree.Len() / 2
}

// Empty reports whether no interval is stored.
func (t *Tree[K, V]) Empty() bool {
	return t.tree.Empty()
}

// Clear unlinks every interval. The endpoint records stay in the arena.
func (t *Tree[K, V]) Clear() {
	t.tree.Clear()
}

// Tree exposes the underlying search tree, e.g. for export or statistics.
func (t *Tree[K, V]) Tree() *bst.Tree[Endpoint[K, V], K, *Endpoint[K, V]] {
	return t.tree
}

// Check verifies the search tree, every aggregate and that each linked
// endpoint's partner is linked as well.
func (t *Tree[K, V]) Check() error {
	err := t.tree.Check()
	if err != nil {
		return err
	}

	starts := 0

	for n, e := range t.tree.All() {
		p := t.store.Get(e.partner)
		if p.partner != n || p.start == e.start {
			return fmt.Errorf("%w: %d", ErrUnpaired, n)
		}

		if e.start {
			starts++
		}
	}

	if 2*starts != t.tree.Len() {
		return fmt.Errorf("%w: %d starts among %d endpoints", ErrUnpaired, starts, t.tree.Len())
	}

	return nil
}

func (t *Tree[K, V]) node(n bst.Index) *Endpoint[K, V] {
	if n == bst.Nil {
		return nil
	}

	return t.store.Get(n)
}
