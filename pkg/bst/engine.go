package bst

// Stats counts the structural work a tree performed.
type Stats struct {
	// Rotations is the number of single rotations.
	Rotations uint64
	// Swaps is the number of successor swaps performed by removals.
	Swaps uint64
	// Updates is the number of aggregate recomputations.
	Updates uint64
	// ShortCircuits is the number of upward walks stopped early because an
	// aggregate did not change.
	ShortCircuits uint64
}

// The methods below are the primitives balancing strategies are built from.
// They keep parent links symmetric and aggregates up to date, but they do
// not maintain any balancing invariant on their own.

// Parent returns the parent of n, or Nil for the root.
func (t *Tree[T, K, PT]) Parent(n Index) Index {
	return t.hook(n).parent
}

// Left returns the left child of n.
func (t *Tree[T, K, PT]) Left(n Index) Index {
	return t.hook(n).left
}

// Right returns the right child of n.
func (t *Tree[T, K, PT]) Right(n Index) Index {
	return t.hook(n).right
}

// Child returns the left child of n when left is true, the right child otherwise.
func (t *Tree[T, K, PT]) Child(n Index, left bool) Index {
	if left {
		return t.hook(n).left
	}

	return t.hook(n).right
}

// IsLeft reports whether n is the left child of its parent.
func (t *Tree[T, K, PT]) IsLeft(n Index) bool {
	p := t.hook(n).parent

	return p != Nil && t.hook(p).left == n
}

// SetParent sets the parent link of n without touching the parent's children.
func (t *Tree[T, K, PT]) SetParent(n, parent Index) {
	t.hook(n).parent = parent
}

// SetChild sets one child link of n without touching the child's parent link.
func (t *Tree[T, K, PT]) SetChild(n Index, left bool, child Index) {
	if left {
		t.hook(n).left = child
	} else {
		t.hook(n).right = child
	}
}

// SetRoot replaces the root index.
func (t *Tree[T, K, PT]) SetRoot(n Index) {
	t.root = n
}

// Meta returns the strategy metadata word of n.
func (t *Tree[T, K, PT]) Meta(n Index) uint64 {
	return t.hook(n).meta
}

// SetMeta stores the strategy metadata word of n.
func (t *Tree[T, K, PT]) SetMeta(n Index, meta uint64) {
	t.hook(n).meta = meta
}

// Compare orders two linked records with the tree's comparator.
func (t *Tree[T, K, PT]) Compare(a, b Index) int {
	return t.ord.Compare(t.Node(a), t.Node(b))
}

// Precedes reports whether a sorts before b. Under Multiple, a record that
// compares equal to a linked one is placed after it, so a linked record
// precedes an equal fresh one.
func (t *Tree[T, K, PT]) Precedes(linked, fresh Index) bool {
	c := t.Compare(linked, fresh)

	return c < 0 || (c == 0 && t.multiple)
}

// Contains reports whether an equal record is linked. It is the duplicate
// check for strategies that do not place nodes with LinkLeaf.
func (t *Tree[T, K, PT]) Contains(n Index) bool {
	rec := t.Node(n)

	for cur := t.root; cur != Nil; {
		c := t.ord.Compare(rec, t.Node(cur))
		if c == 0 {
			return true
		}

		cur = t.Child(cur, c < 0)
	}

	return false
}

// Minimum returns the leftmost node of the subtree rooted at n.
func (t *Tree[T, K, PT]) Minimum(n Index) Index {
	for n != Nil {
		l := t.hook(n).left
		if l == Nil {
			return n
		}

		n = l
	}

	return Nil
}

// Maximum returns the rightmost node of the subtree rooted at n.
func (t *Tree[T, K, PT]) Maximum(n Index) Index {
	for n != Nil {
		r := t.hook(n).right
		if r == Nil {
			return n
		}

		n = r
	}

	return Nil
}

// LinkLeaf descends from the root to an empty child slot and links n there.
// Records equal to a linked one go to its right under Multiple and are
// rejected otherwise, in which case LinkLeaf returns false.
func (t *Tree[T, K, PT]) LinkLeaf(n Index) bool {
	rec := t.Node(n)
	parent, left := Nil, false

	for cur := t.root; cur != Nil; {
		c := t.ord.Compare(rec, t.Node(cur))
		if c == 0 && !t.multiple {
			return false
		}

		parent, left = cur, c < 0
		cur = t.Child(cur, left)
	}

	h := t.hook(n)
	h.parent, h.left, h.right = parent, Nil, Nil

	t.replaceChild(parent, Nil, n, left)
	t.PropagateThrough(n, n)

	return true
}

// Rotate performs a rotation around pivot and returns the node that took its
// place. left=true lifts the right child, left=false lifts the left child.
//
// Left rotation:
//
//	  X              Y
//	A   Y    =>    X   C
//	  B C        A B
//
// Right rotation:
//
//	    Y            X
//	  X   C  =>    A   Y
//	A B              B C
//
// The aggregates of the two repositioned nodes are recomputed, lower one
// first. Ancestors are untouched because the subtree keeps its contents.
func (t *Tree[T, K, PT]) Rotate(pivot Index, left bool) Index {
	ph := t.hook(pivot)
	child := t.Child(pivot, !left)
	Assert(child != Nil, "rotation of node %d without a child to lift", pivot)

	ch := t.hook(child)

	inner := t.Child(child, left)
	t.SetChild(pivot, !left, inner)

	if inner != Nil {
		t.hook(inner).parent = pivot
	}

	parent := ph.parent
	ch.parent = parent
	t.replaceChild(parent, pivot, child, false)

	t.SetChild(child, left, pivot)
	ph.parent = child

	t.stats.Rotations++

	if t.aug != nil {
		t.update(pivot)
		t.update(child)
	}

	return child
}

// SwapWithSuccessor exchanges the tree positions of n, which must have two
// children, and its in-order successor by relinking both records. The
// metadata words are exchanged as well, so positional state stays with the
// position. Afterwards n has no left child. It returns the successor.
func (t *Tree[T, K, PT]) SwapWithSuccessor(n Index) Index {
	hn := t.hook(n)
	Assert(hn.left != Nil && hn.right != Nil, "successor swap of node %d with fewer than two children", n)

	succ := t.Minimum(hn.right)
	hs := t.hook(succ)

	parent, left, right := hn.parent, hn.left, hn.right
	succParent, succRight := hs.parent, hs.right

	t.replaceChild(parent, n, succ, false)
	hs.parent = parent

	hs.left = left
	t.hook(left).parent = succ

	if succParent == n {
		hs.right = n
		hn.parent = succ
	} else {
		hs.right = right
		t.hook(right).parent = succ
		t.hook(succParent).left = n
		hn.parent = succParent
	}

	hn.left = Nil
	hn.right = succRight

	if succRight != Nil {
		t.hook(succRight).parent = n
	}

	hn.meta, hs.meta = hs.meta, hn.meta

	t.stats.Swaps++

	// Every aggregate between the old successor slot and the new successor
	// position is stale, not only changed.
	t.PropagateThrough(n, succ)

	return succ
}

// Splice unlinks n, which must have at most one child, by putting its child
// in its place. The hook of n is zeroed. It returns the former parent of n,
// from which aggregates have already been propagated.
func (t *Tree[T, K, PT]) Splice(n Index) Index {
	h := t.hook(n)
	Assert(h.left == Nil || h.right == Nil, "splice of node %d with two children", n)

	child := h.left
	if child == Nil {
		child = h.right
	}

	parent := h.parent
	t.replaceChild(parent, n, child, false)

	if child != Nil {
		t.hook(child).parent = parent
	}

	*h = Hook{}

	t.Propagate(parent)

	return parent
}

// Propagate recomputes aggregates from n towards the root and stops at the
// first node whose aggregate did not change.
func (t *Tree[T, K, PT]) Propagate(n Index) {
	if t.aug == nil {
		return
	}

	for n != Nil {
		if !t.update(n) {
			t.stats.ShortCircuits++

			return
		}

		n = t.hook(n).parent
	}
}

// PropagateThrough recomputes aggregates from n up to and including stop
// unconditionally, then continues above stop like Propagate. stop must be n
// or an ancestor of n.
func (t *Tree[T, K, PT]) PropagateThrough(n, stop Index) {
	if t.aug == nil {
		return
	}

	for {
		t.update(n)

		if n == stop {
			break
		}

		n = t.hook(n).parent
		Assert(n != Nil, "node %d is not an ancestor", stop)
	}

	t.Propagate(t.hook(stop).parent)
}

// Refresh recomputes the aggregate of n alone.
func (t *Tree[T, K, PT]) Refresh(n Index) {
	if t.aug != nil {
		t.update(n)
	}
}

func (t *Tree[T, K, PT]) update(n Index) bool {
	h := t.hook(n)
	t.stats.Updates++

	return t.aug.Update(t.Node(n), t.nodeOrNil(h.left), t.nodeOrNil(h.right))
}

func (t *Tree[T, K, PT]) nodeOrNil(n Index) *T {
	if n == Nil {
		return nil
	}

	return t.arena.Get(n)
}

// replaceChild makes repl the child of parent in the slot held by old. When
// old is Nil the slot is chosen by left. A Nil parent means the root.
func (t *Tree[T, K, PT]) replaceChild(parent, old, repl Index, left bool) {
	if parent == Nil {
		t.root = repl

		return
	}

	ph := t.hook(parent)

	switch {
	case old == Nil && left, old != Nil && ph.left == old:
		ph.left = repl
	default:
		ph.right = repl
	}
}
