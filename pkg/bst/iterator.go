package bst

import "iter"

// Iterator points at a linked record or at the end position. It is
// invalidated by any structural change of its tree.
type Iterator[T any, K any, PT Node[T]] struct {
	tree *Tree[T, K, PT]
	node Index
}

// Begin returns an iterator at the smallest record, or End for an empty tree.
func (t *Tree[T, K, PT]) Begin() Iterator[T, K, PT] {
	return Iterator[T, K, PT]{tree: t, node: t.Minimum(t.root)}
}

// Last returns an iterator at the largest record, or End for an empty tree.
func (t *Tree[T, K, PT]) Last() Iterator[T, K, PT] {
	return Iterator[T, K, PT]{tree: t, node: t.Maximum(t.root)}
}

// End returns the past-the-end iterator.
func (t *Tree[T, K, PT]) End() Iterator[T, K, PT] {
	return Iterator[T, K, PT]{tree: t, node: Nil}
}

// At returns an iterator at the linked record n.
func (t *Tree[T, K, PT]) At(n Index) Iterator[T, K, PT] {
	return Iterator[T, K, PT]{tree: t, node: n}
}

// All yields the records in ascending order.
func (t *Tree[T, K, PT]) All() iter.Seq2[Index, PT] {
	return func(yield func(Index, PT) bool) {
		for n := t.Minimum(t.root); n != Nil; n = t.next(n) {
			if !yield(n, t.Node(n)) {
				return
			}
		}
	}
}

// Backward yields the records in descending order.
func (t *Tree[T, K, PT]) Backward() iter.Seq2[Index, PT] {
	return func(yield func(Index, PT) bool) {
		for n := t.Maximum(t.root); n != Nil; n = t.prev(n) {
			if !yield(n, t.Node(n)) {
				return
			}
		}
	}
}

// Valid reports whether the iterator points at a record.
func (it Iterator[T, K, PT]) Valid() bool {
	return it.node != Nil
}

// Index returns the index of the current record, or Nil at the end.
func (it Iterator[T, K, PT]) Index() Index {
	return it.node
}

// Node returns the current record, or nil at the end.
func (it Iterator[T, K, PT]) Node() PT {
	if it.node == Nil {
		return nil
	}

	return it.tree.Node(it.node)
}

// Equal reports whether both iterators point at the same position.
func (it Iterator[T, K, PT]) Equal(other Iterator[T, K, PT]) bool {
	return it.tree == other.tree && it.node == other.node
}

// Next moves to the successor. The successor of the largest record is End.
//
// REQUIRES: it.Valid().
func (it Iterator[T, K, PT]) Next() Iterator[T, K, PT] {
	Assert(it.Valid(), "Next on the end iterator")

	return Iterator[T, K, PT]{tree: it.tree, node: it.tree.next(it.node)}
}

// Prev moves to the predecessor. The predecessor of End is the largest record
// and the predecessor of the smallest record is End.
func (it Iterator[T, K, PT]) Prev() Iterator[T, K, PT] {
	if it.node == Nil {
		return it.tree.Last()
	}

	return Iterator[T, K, PT]{tree: it.tree, node: it.tree.prev(it.node)}
}

// next returns the minimum node that is larger than n, or Nil.
func (t *Tree[T, K, PT]) next(n Index) Index {
	if r := t.hook(n).right; r != Nil {
		return t.Minimum(r)
	}

	for {
		p := t.hook(n).parent
		if p == Nil {
			return Nil
		}

		if t.hook(p).left == n {
			return p
		}

		n = p
	}
}

// prev returns the maximum node that is smaller than n, or Nil.
func (t *Tree[T, K, PT]) prev(n Index) Index {
	if l := t.hook(n).left; l != Nil {
		return t.Maximum(l)
	}

	for {
		p := t.hook(n).parent
		if p == Nil {
			return Nil
		}

		if t.hook(p).right == n {
			return p
		}

		n = p
	}
}
