package bst

import "github.com/Sumatoshi-tech/ygg/pkg/arena"

// Plain is the strategy that performs no rebalancing at all. It serves as
// the baseline for the balanced strategies.
type Plain[T any, K any, PT Node[T]] struct{}

// NewPlain creates an unbalanced tree.
func NewPlain[T any, K any, PT Node[T]](
	store *arena.Arena[T], ord Ordering[T, K], opts Options[T, K],
) *Tree[T, K, PT] {
	return New(store, ord, Balancer[T, K, PT](Plain[T, K, PT]{}), opts)
}

// Insert links n as a leaf.
func (Plain[T, K, PT]) Insert(tree *Tree[T, K, PT], n Index) bool {
	return tree.LinkLeaf(n)
}

// Remove unlinks n.
func (Plain[T, K, PT]) Remove(tree *Tree[T, K, PT], n Index) {
	if tree.Left(n) != Nil && tree.Right(n) != Nil {
		tree.SwapWithSuccessor(n)
	}

	tree.Splice(n)
}

// Check has nothing to verify.
func (Plain[T, K, PT]) Check(*Tree[T, K, PT]) error {
	return nil
}

// Name returns "plain".
func (Plain[T, K, PT]) Name() string {
	return "plain"
}
