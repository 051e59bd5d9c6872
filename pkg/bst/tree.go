package bst

import (
	"github.com/Sumatoshi-tech/ygg/pkg/arena"
)

// Balancer is a balancing strategy. Insert places a fresh, unlinked node and
// restores the strategy invariant, returning false when the node was rejected
// as a duplicate. Remove unlinks a linked node and restores the invariant.
type Balancer[T any, K any, PT Node[T]] interface {
	Insert(tree *Tree[T, K, PT], n Index) bool
	Remove(tree *Tree[T, K, PT], n Index)
	Check(tree *Tree[T, K, PT]) error
	Name() string
}

// Augmenter maintains a per-node aggregate. Update recomputes the aggregate
// of n from its own contribution and its children (nil when absent), stores
// it in n and reports whether the stored value changed.
type Augmenter[T any] interface {
	Update(n, left, right *T) bool
}

// Recorder observes the operations applied to a tree.
type Recorder[T any, K any] interface {
	RecordInsert(n *T)
	RecordRemove(n *T)
	RecordFind(key K)
}

// Options configures a Tree. The zero value builds a set without
// augmentation.
type Options[T any, K any] struct {
	// Multiple allows records that compare equal. Equal records are kept in
	// insertion order.
	Multiple bool

	// Augmenter, when set, is invoked after every structural change.
	Augmenter Augmenter[T]

	// Recorder, when set, receives every insert, remove and find.
	Recorder Recorder[T, K]
}

// Tree is an intrusive binary search tree over records stored in an arena.
type Tree[T any, K any, PT Node[T]] struct {
	arena    *arena.Arena[T]
	ord      Ordering[T, K]
	bal      Balancer[T, K, PT]
	aug      Augmenter[T]
	rec      Recorder[T, K]
	root     Index
	size     int
	multiple bool
	stats    Stats
}

// New creates an empty tree over the records of store, ordered by ord and
// balanced by bal.
func New[T any, K any, PT Node[T]](
	store *arena.Arena[T], ord Ordering[T, K], bal Balancer[T, K, PT], opts Options[T, K],
) *Tree[T, K, PT] {
	if store == nil || ord.Compare == nil || ord.CompareKey == nil || bal == nil {
		panic("bst: New requires an arena, both comparators and a balancer")
	}

	return &Tree[T, K, PT]{
		arena:    store,
		ord:      ord,
		bal:      bal,
		aug:      opts.Augmenter,
		rec:      opts.Recorder,
		multiple: opts.Multiple,
	}
}

// Arena returns the record storage the tree links.
func (t *Tree[T, K, PT]) Arena() *arena.Arena[T] {
	return t.arena
}

// Strategy returns the name of the balancing strategy.
func (t *Tree[T, K, PT]) Strategy() string {
	return t.bal.Name()
}

// Multiple reports whether equal records are allowed.
func (t *Tree[T, K, PT]) Multiple() bool {
	return t.multiple
}

// Augmented reports whether an Augmenter is installed.
func (t *Tree[T, K, PT]) Augmented() bool {
	return t.aug != nil
}

// Len returns the number of linked records.
func (t *Tree[T, K, PT]) Len() int {
	return t.size
}

// Empty reports whether the tree has no records.
func (t *Tree[T, K, PT]) Empty() bool {
	return t.size == 0
}

// Root returns the root index, or Nil for an empty tree.
func (t *Tree[T, K, PT]) Root() Index {
	return t.root
}

// Node resolves an index to its record.
func (t *Tree[T, K, PT]) Node(n Index) PT {
	return PT(t.arena.Get(n))
}

// Insert links the record n, which must not be linked in any tree. It
// returns false, leaving n unlinked, when duplicates are not allowed and an
// equal record is already present.
func (t *Tree[T, K, PT]) Insert(n Index) bool {
	if Assertions {
		h := t.hook(n)
		Assert(h.parent == Nil && h.left == Nil && h.right == Nil && t.root != n,
			"node %d is already linked", n)
	}

	*t.hook(n) = Hook{}

	if !t.bal.Insert(t, n) {
		*t.hook(n) = Hook{}

		return false
	}

	t.size++

	if t.rec != nil {
		t.rec.RecordInsert(t.Node(n))
	}

	return true
}

// Remove unlinks the record n, which must be linked in this tree. The hook of
// n is zeroed, so the record can be inserted again.
func (t *Tree[T, K, PT]) Remove(n Index) {
	if Assertions {
		Assert(t.contains(n), "node %d is not linked in this tree", n)
	}

	if t.rec != nil {
		t.rec.RecordRemove(t.Node(n))
	}

	t.bal.Remove(t, n)
	*t.hook(n) = Hook{}
	t.size--
}

// Find returns an iterator at the first record equal to key, or End.
func (t *Tree[T, K, PT]) Find(key K) Iterator[T, K, PT] {
	if t.rec != nil {
		t.rec.RecordFind(key)
	}

	it := t.LowerBound(key)
	if it.Valid() && t.ord.CompareKey(key, it.Node()) == 0 {
		return it
	}

	return t.End()
}

// LowerBound returns an iterator at the first record not less than key.
func (t *Tree[T, K, PT]) LowerBound(key K) Iterator[T, K, PT] {
	found := Nil

	for cur := t.root; cur != Nil; {
		if t.ord.CompareKey(key, t.Node(cur)) <= 0 {
			found = cur
			cur = t.hook(cur).left
		} else {
			cur = t.hook(cur).right
		}
	}

	return Iterator[T, K, PT]{tree: t, node: found}
}

// UpperBound returns an iterator at the first record greater than key.
func (t *Tree[T, K, PT]) UpperBound(key K) Iterator[T, K, PT] {
	found := Nil

	for cur := t.root; cur != Nil; {
		if t.ord.CompareKey(key, t.Node(cur)) < 0 {
			found = cur
			cur = t.hook(cur).left
		} else {
			cur = t.hook(cur).right
		}
	}

	return Iterator[T, K, PT]{tree: t, node: found}
}

// Clear unlinks every record and zeroes their hooks without touching the
// records' payload.
func (t *Tree[T, K, PT]) Clear() {
	n := t.root

	for n != Nil {
		h := t.hook(n)

		switch {
		case h.left != Nil:
			n, h.left = h.left, Nil
		case h.right != Nil:
			n, h.right = h.right, Nil
		default:
			n = h.parent
			*h = Hook{}
		}
	}

	t.root = Nil
	t.size = 0
}

// Height returns the number of nodes on the longest root-to-leaf path.
func (t *Tree[T, K, PT]) Height() int {
	return t.height(t.root)
}

func (t *Tree[T, K, PT]) height(n Index) int {
	if n == Nil {
		return 0
	}

	h := t.hook(n)

	return 1 + max(t.height(h.left), t.height(h.right))
}

// Depth returns the number of edges between n and the root.
func (t *Tree[T, K, PT]) Depth(n Index) int {
	depth := 0

	for p := t.hook(n).parent; p != Nil; p = t.hook(p).parent {
		depth++
	}

	return depth
}

// Stats returns the structural work counters accumulated since creation.
func (t *Tree[T, K, PT]) Stats() Stats {
	return t.stats
}

// ResetStats zeroes the work counters.
func (t *Tree[T, K, PT]) ResetStats() {
	t.stats = Stats{}
}

func (t *Tree[T, K, PT]) hook(n Index) *Hook {
	return PT(t.arena.Get(n)).Hook()
}

func (t *Tree[T, K, PT]) contains(n Index) bool {
	for n != Nil {
		if n == t.root {
			return true
		}

		p := t.hook(n).parent
		if p == Nil || (t.hook(p).left != n && t.hook(p).right != n) {
			return false
		}

		n = p
	}

	return false
}
