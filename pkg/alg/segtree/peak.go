package segtree

import (
	"cmp"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/augment"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
)

// summary describes a run of consecutive endpoints. sum is the combined
// delta of the run. best is the highest prefix of the run that ends on the
// last endpoint at some point, with the run's own last endpoint excluded:
// whether that one closes its point depends on what follows the run.
type summary[K cmp.Ordered, V comparable] struct {
	sum, best   V
	first, last K
	hasBest     bool
	set         bool
}

func single[K cmp.Ordered, V comparable](e *Endpoint[K, V]) summary[K, V] {
	return summary[K, V]{sum: e.delta, first: e.point, last: e.point, set: true}
}

// peakMonoid concatenates runs. The zero summary is the empty run.
type peakMonoid[K cmp.Ordered, V comparable] struct {
	group augment.Group[V]
	compare func(a, b V) int
}

func (peakMonoid[K, V]) Identity() summary[K, V] { return summary[K, V]{} }

func (m peakMonoid[K, V]) Combine(a, b summary[K, V]) summary[K, V] {
	switch {
	case !a.set:
		return b
	case !b.set:
		return a
	}

	out := summary[K, V]{
		sum:   m.group.Combine(a.sum, b.sum),
		first: a.first,
		last:  b.last,
		set:   true,
	}

	offer := func(v V) {
		if !out.hasBest || m.compare(v, out.best) > 0 {
			out.best, out.hasBest = v, true
		}
	}

	if a.hasBest {
		offer(a.best)
	}

	if a.last != b.first {
		offer(a.sum)
	}

	if b.hasBest {
		offer(m.group.Combine(a.sum, b.best))
	}

	return out
}

// QueryRange returns the largest combined value of the intervals covering
// any point x with lower <= x < upper.
func (t *Tree[K, V]) QueryRange(lower, upper K) (V, error) {
	var zero V

	switch {
	case t.peaks == nil:
		return zero, ErrUnordered
	case lower >= upper:
		return zero, fmt.Errorf("%w: [%v, %v)", ErrEmptyInterval, lower, upper)
	}

	base := t.Query(lower)
	best := base

	// Every endpoint strictly inside the range closes a point whose coverage
	// is base followed by the endpoint's prefix within the range.
	inner := t.fold(lower, upper)
	if inner.set {
		best = t.larger(best, t.group.Combine(base, inner.sum))

		if inner.hasBest {
			best = t.larger(best, t.group.Combine(base, inner.best))
		}
	}

	return best, nil
}

// Peak returns the largest combined value at any point, the identity when
// nothing is stored.
func (t *Tree[K, V]) Peak() (V, error) {
	if t.peaks == nil {
		var zero V

		return zero, ErrUnordered
	}

	best := t.group.Identity()

	root := t.node(t.tree.Root())
	if root != nil && root.peak.hasBest {
		best = t.larger(best, root.peak.best)
	}

	return best, nil
}

// fold combines the summaries of the endpoints with lower < point < upper.
// It descends to the first record inside the range, then folds the left and
// right boundary paths below it.
func (t *Tree[K, V]) fold(lower, upper K) summary[K, V] {
	m := t.peaks.Monoid

	split := t.tree.Root()
	for split != bst.Nil {
		p := t.store.Get(split).point
		if p > lower && p < upper {
			break
		}

		if p <= lower {
			split = t.tree.Right(split)
		} else {
			split = t.tree.Left(split)
		}
	}

	if split == bst.Nil {
		return m.Identity()
	}

	// Chunks found on the left path precede everything collected so far.
	left := m.Identity()

	for n := t.tree.Left(split); n != bst.Nil; {
		e := t.store.Get(n)
		if e.point <= lower {
			n = t.tree.Right(n)

			continue
		}

		left = m.Combine(m.Combine(single(e), t.peaks.Of(t.node(t.tree.Right(n)))), left)
		n = t.tree.Left(n)
	}

	// Chunks found on the right path follow everything collected so far.
	right := m.Identity()

	for n := t.tree.Right(split); n != bst.Nil; {
		e := t.store.Get(n)
		if e.point >= upper {
			n = t.tree.Left(n)

			continue
		}

		right = m.Combine(right, m.Combine(t.peaks.Of(t.node(t.tree.Left(n))), single(e)))
		n = t.tree.Right(n)
	}

	return m.Combine(m.Combine(left, single(t.store.Get(split))), right)
}

func (t *Tree[K, V]) larger(a, b V) V {
	if t.compare(b, a) > 0 {
		return b
	}

	return a
}
