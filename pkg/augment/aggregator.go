package augment

// Aggregator is an Augmenter that keeps, in every record, the in-order fold
// of Value over the record's subtree: Combine(Combine(left, value), right).
// The combine order matters for non-commutative monoids.
type Aggregator[T any, A comparable] struct {
	Monoid Monoid[A]
	// Value extracts the record's own contribution.
	Value func(n *T) A
	// Agg addresses the aggregate field inside the record.
	Agg func(n *T) *A
}

// Update recomputes the aggregate of n from its children and reports whether
// it changed.
func (g Aggregator[T, A]) Update(n, left, right *T) bool {
	acc := g.Value(n)

	if left != nil {
		acc = g.Monoid.Combine(*g.Agg(left), acc)
	}

	if right != nil {
		acc = g.Monoid.Combine(acc, *g.Agg(right))
	}

	slot := g.Agg(n)
	if *slot == acc {
		return false
	}

	*slot = acc

	return true
}

// Of returns the aggregate stored in n, or the identity for a nil record.
func (g Aggregator[T, A]) Of(n *T) A {
	if n == nil {
		return g.Monoid.Identity()
	}

	return *g.Agg(n)
}

// Updater is the method set of bst.Augmenter, restated so this package does
// not depend on the tree.
type Updater[T any] interface {
	Update(n, left, right *T) bool
}

// Compose runs several augmenters on every update. It reports a change when
// any of them changed, so propagation only stops once all aggregates settle.
type Compose[T any] []Updater[T]

// Update runs every augmenter on n.
func (c Compose[T]) Update(n, left, right *T) bool {
	changed := false

	for _, u := range c {
		if u.Update(n, left, right) {
			changed = true
		}
	}

	return changed
}
