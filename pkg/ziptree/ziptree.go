// Package ziptree implements the zip tree balancing strategy for bst trees.
//
// A zip tree is a binary search tree that is also a max-heap on node ranks.
// Ranks are geometric random numbers or derived from key hashes. Insertion
// splits ("unzips") the subtree the new node displaces, removal merges
// ("zips") the two subtrees of the removed node. Neither performs rotations.
//
// Node a sits above node b when rank(a) > rank(b), or when the ranks tie and
// a comes first in key order. This makes the shape a function of the key set
// and the ranks alone.
package ziptree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
)

// ErrRankOrder is reported by Check when the rank heap order is violated.
var ErrRankOrder = errors.New("rank heap order violated")

// Balancer keeps a bst.Tree in zip tree shape.
type Balancer[T any, K any, PT bst.Node[T]] struct {
	ranks *ranker[T]
}

// NewBalancer returns a balancer drawing ranks as configured by zopts.
func NewBalancer[T any, K any, PT bst.Node[T]](zopts Options[T]) Balancer[T, K, PT] {
	return Balancer[T, K, PT]{ranks: newRanker(zopts)}
}

// New creates an empty zip tree over the records of store.
func New[T any, K any, PT bst.Node[T]](
	store *arena.Arena[T], ord bst.Ordering[T, K], zopts Options[T], opts bst.Options[T, K],
) *bst.Tree[T, K, PT] {
	return bst.New(store, ord, bst.Balancer[T, K, PT](NewBalancer[T, K, PT](zopts)), opts)
}

// Name returns "zip" for random ranks and "zip-hash" for hash ranks.
func (b Balancer[T, K, PT]) Name() string {
	if b.ranks.hash != nil {
		return "zip-hash"
	}

	return "zip"
}

// Rank returns the rank of the linked node n.
func (b Balancer[T, K, PT]) Rank(tree *bst.Tree[T, K, PT], n bst.Index) uint64 {
	if b.ranks.stored() {
		return tree.Meta(n)
	}

	return b.ranks.fromHash(tree.Node(n))
}

// above reports whether a belongs above b.
func (b Balancer[T, K, PT]) above(tree *bst.Tree[T, K, PT], a, c bst.Index) bool {
	ra, rc := b.Rank(tree, a), b.Rank(tree, c)

	return ra > rc || (ra == rc && tree.Precedes(a, c))
}

// Insert descends while the visited node belongs above n, puts n in the slot
// it reached and unzips the displaced subtree into n's children.
func (b Balancer[T, K, PT]) Insert(tree *bst.Tree[T, K, PT], n bst.Index) bool {
	if !tree.Multiple() && tree.Contains(n) {
		return false
	}

	if b.ranks.stored() {
		tree.SetMeta(n, b.ranks.assign(tree.Node(n)))
	}

	parent, left := bst.Nil, false
	cur := tree.Root()

	for cur != bst.Nil && b.above(tree, cur, n) {
		parent, left = cur, !tree.Precedes(cur, n)
		cur = tree.Child(cur, left)
	}

	attach(tree, parent, left, n)

	lTail, rTail := b.unzip(tree, cur, n)

	for x := lTail; x != bst.Nil && x != n; x = tree.Parent(x) {
		tree.Refresh(x)
	}

	for x := rTail; x != bst.Nil && x != n; x = tree.Parent(x) {
		tree.Refresh(x)
	}

	tree.PropagateThrough(n, n)

	return true
}

// unzip splits the subtree rooted at cur into the records preceding n, which
// form a chain of right links below n's left slot, and the rest, which form a
// chain of left links below n's right slot. It returns the last node of each
// chain.
func (b Balancer[T, K, PT]) unzip(tree *bst.Tree[T, K, PT], cur, n bst.Index) (lTail, rTail bst.Index) {
	lParent, lLeft := n, true
	rParent, rLeft := n, false

	for cur != bst.Nil {
		if tree.Precedes(cur, n) {
			next := tree.Right(cur)
			attach(tree, lParent, lLeft, cur)
			lParent, lLeft, lTail = cur, false, cur
			cur = next
		} else {
			next := tree.Left(cur)
			attach(tree, rParent, rLeft, cur)
			rParent, rLeft, rTail = cur, true, cur
			cur = next
		}
	}

	tree.SetChild(lParent, lLeft, bst.Nil)
	tree.SetChild(rParent, rLeft, bst.Nil)

	return lTail, rTail
}

// Remove zips the two subtrees of n together in its place.
func (b Balancer[T, K, PT]) Remove(tree *bst.Tree[T, K, PT], n bst.Index) {
	parent := tree.Parent(n)
	left := tree.IsLeft(n)
	l, r := tree.Left(n), tree.Right(n)
	top, tail := bst.Nil, bst.Nil

	for l != bst.Nil && r != bst.Nil {
		var next bst.Index

		// Everything on the left precedes everything on the right, so the
		// left head wins rank ties.
		if b.Rank(tree, l) >= b.Rank(tree, r) {
			next = l
			l = tree.Right(l)
			attach(tree, parent, left, next)
			parent, left = next, false
		} else {
			next = r
			r = tree.Left(r)
			attach(tree, parent, left, next)
			parent, left = next, true
		}

		if top == bst.Nil {
			top = next
		}

		tail = next
	}

	rest := l
	if rest == bst.Nil {
		rest = r
	}

	attach(tree, parent, left, rest)

	if tail == bst.Nil {
		tree.Propagate(parent)

		return
	}

	tree.PropagateThrough(tail, top)
}

// attach makes child (possibly Nil) the child of parent on the given side,
// or the root when parent is Nil.
func attach[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], parent bst.Index, left bool, child bst.Index) {
	if parent == bst.Nil {
		tree.SetRoot(child)
	} else {
		tree.SetChild(parent, left, child)
	}

	if child != bst.Nil {
		tree.SetParent(child, parent)
	}
}

// Check verifies that no child outranks its parent and that equal ranks only
// appear along right-child links.
func (b Balancer[T, K, PT]) Check(tree *bst.Tree[T, K, PT]) error {
	return b.check(tree, tree.Root())
}

func (b Balancer[T, K, PT]) check(tree *bst.Tree[T, K, PT], n bst.Index) error {
	if n == bst.Nil {
		return nil
	}

	rank := b.Rank(tree, n)

	if l := tree.Left(n); l != bst.Nil && b.Rank(tree, l) >= rank {
		return fmt.Errorf("%w: left child %d of %d has rank %d >= %d", ErrRankOrder, l, n, b.Rank(tree, l), rank)
	}

	if r := tree.Right(n); r != bst.Nil && b.Rank(tree, r) > rank {
		return fmt.Errorf("%w: right child %d of %d has rank %d > %d", ErrRankOrder, r, n, b.Rank(tree, r), rank)
	}

	err := b.check(tree, tree.Left(n))
	if err != nil {
		return err
	}

	return b.check(tree, tree.Right(n))
}
