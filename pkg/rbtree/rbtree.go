// Package rbtree implements the red-black balancing strategy for bst trees.
//
// The color lives in the hook's metadata word. Zero is red, so a freshly
// linked node is red; absent children count as black.
package rbtree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
)

const (
	red   uint64 = 0
	black uint64 = 1
)

// Invariant violations reported by Check.
var (
	ErrRedRoot     = errors.New("root is red")
	ErrRedRed      = errors.New("red node with a red child")
	ErrBlackHeight = errors.New("unequal black height")
)

// Balancer keeps a bst.Tree red-black balanced.
type Balancer[T any, K any, PT bst.Node[T]] struct{}

// New creates an empty red-black tree over the records of store.
func New[T any, K any, PT bst.Node[T]](
	store *arena.Arena[T], ord bst.Ordering[T, K], opts bst.Options[T, K],
) *bst.Tree[T, K, PT] {
	return bst.New(store, ord, bst.Balancer[T, K, PT](Balancer[T, K, PT]{}), opts)
}

// ColorName returns "red" or "black" for a metadata word.
func ColorName(meta uint64) string {
	if meta == black {
		return "black"
	}

	return "red"
}

// Name returns "rb".
func (Balancer[T, K, PT]) Name() string {
	return "rb"
}

// Insert links n as a red leaf and repairs red-red edges bottom-up.
func (Balancer[T, K, PT]) Insert(tree *bst.Tree[T, K, PT], n bst.Index) bool {
	if !tree.LinkLeaf(n) {
		return false
	}

	tree.SetMeta(n, red)

	for {
		parent := tree.Parent(n)

		// Case 1: N is at the root.
		if parent == bst.Nil {
			tree.SetMeta(n, black)

			break
		}

		// Case 2: the parent is black, so the tree already
		// satisfies the RB properties.
		if isBlack(tree, parent) {
			break
		}

		// A red parent is never the root.
		grandparent := tree.Parent(parent)
		parentLeft := tree.IsLeft(parent)
		uncle := tree.Child(grandparent, !parentLeft)

		// Case 3: parent and uncle are both red.
		// Then paint both black and make grandparent red.
		if !isBlack(tree, uncle) {
			tree.SetMeta(parent, black)
			tree.SetMeta(uncle, black)
			tree.SetMeta(grandparent, red)
			n = grandparent

			continue
		}

		// Case 4: N is an inner grandchild, turn it into an outer one.
		if tree.IsLeft(n) != parentLeft {
			tree.Rotate(parent, parentLeft)
			n, parent = parent, n
		}

		// Case 5: N is an outer grandchild.
		tree.SetMeta(parent, black)
		tree.SetMeta(grandparent, red)
		tree.Rotate(grandparent, !parentLeft)

		break
	}

	return true
}

// Remove unlinks n. A node with two children first trades places with its
// successor, so the node being spliced has at most one child.
func (Balancer[T, K, PT]) Remove(tree *bst.Tree[T, K, PT], n bst.Index) {
	if tree.Left(n) != bst.Nil && tree.Right(n) != bst.Nil {
		tree.SwapWithSuccessor(n)
	}

	child := tree.Left(n)
	if child == bst.Nil {
		child = tree.Right(n)
	}

	switch {
	case !isBlack(tree, n):
		// A red node with at most one child is a leaf.
	case child != bst.Nil:
		// The only child of a black node is red.
		tree.SetMeta(child, black)
	default:
		fixDoubleBlack(tree, n)
	}

	tree.Splice(n)
}

// fixDoubleBlack restores the black height around the black leaf x, which is
// still linked and about to be spliced out.
func fixDoubleBlack[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], x bst.Index) {
	for x != tree.Root() {
		parent := tree.Parent(x)
		xLeft := tree.IsLeft(x)
		sibling := tree.Child(parent, !xLeft)

		// Case 1: red sibling. Rotate it above the parent so that x gets
		// a black sibling.
		if !isBlack(tree, sibling) {
			tree.SetMeta(sibling, black)
			tree.SetMeta(parent, red)
			tree.Rotate(parent, xLeft)
			sibling = tree.Child(parent, !xLeft)
		}

		near := tree.Child(sibling, xLeft)
		far := tree.Child(sibling, !xLeft)

		// Case 2: black sibling with black children. Recolor the sibling
		// and push the deficiency up, or absorb it at a red parent.
		if isBlack(tree, near) && isBlack(tree, far) {
			tree.SetMeta(sibling, red)

			if !isBlack(tree, parent) {
				tree.SetMeta(parent, black)

				return
			}

			x = parent

			continue
		}

		// Case 3: only the near nephew is red. Rotate it into the
		// sibling position.
		if isBlack(tree, far) {
			tree.SetMeta(near, black)
			tree.SetMeta(sibling, red)
			tree.Rotate(sibling, !xLeft)
			far, sibling = sibling, near
		}

		// Case 4: the far nephew is red.
		tree.SetMeta(sibling, tree.Meta(parent))
		tree.SetMeta(parent, black)
		tree.SetMeta(far, black)
		tree.Rotate(parent, xLeft)

		return
	}
}

// Check verifies the black root, the absence of red-red edges and that every
// path from a node to its leaves has the same number of black nodes.
func (Balancer[T, K, PT]) Check(tree *bst.Tree[T, K, PT]) error {
	root := tree.Root()
	if root == bst.Nil {
		return nil
	}

	if !isBlack(tree, root) {
		return fmt.Errorf("%w: node %d", ErrRedRoot, root)
	}

	_, err := blackHeight(tree, root)

	return err
}

// BlackHeight returns the number of black nodes on every path from the root
// to a leaf, not counting the root's absent children.
func BlackHeight[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT]) int {
	h, err := blackHeight(tree, tree.Root())
	if err != nil {
		return -1
	}

	return h - 1
}

func blackHeight[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) (int, error) {
	if n == bst.Nil {
		return 1, nil
	}

	left, right := tree.Left(n), tree.Right(n)

	if !isBlack(tree, n) && (!isBlack(tree, left) || !isBlack(tree, right)) {
		return 0, fmt.Errorf("%w: node %d", ErrRedRed, n)
	}

	lh, err := blackHeight(tree, left)
	if err != nil {
		return 0, err
	}

	rh, err := blackHeight(tree, right)
	if err != nil {
		return 0, err
	}

	if lh != rh {
		return 0, fmt.Errorf("%w: node %d has %d on the left and %d on the right", ErrBlackHeight, n, lh, rh)
	}

	if isBlack(tree, n) {
		lh++
	}

	return lh, nil
}

func isBlack[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) bool {
	return n == bst.Nil || tree.Meta(n) == black
}
