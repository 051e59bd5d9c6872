// Package wbtree implements the weight-balanced balancing strategy for bst
// trees.
//
// The hook's metadata word holds the subtree size. The weight of a subtree is
// its size plus one, so an absent child weighs 1. A node is balanced when
// neither child outweighs the other by more than the factor Delta. Gamma
// decides between a single and a double rotation.
//
// A single rotation pass restores the Delta bound only for parameter pairs in
// the feasible region around (3, 2). For any other validated pair the balancer
// rebuilds the rotated subtree into perfect balance whenever the pass leaves
// one of the repositioned nodes out of bounds.
package wbtree

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
)

// Invariant violations reported by Check and parameter errors.
var (
	ErrWeight        = errors.New("subtree size mismatch")
	ErrBalance       = errors.New("weight balance violated")
	ErrInvalidParams = errors.New("invalid balance parameters")
)

// Params holds Delta and Gamma as fractions.
type Params struct {
	DeltaNum, DeltaDen uint32
	GammaNum, GammaDen uint32
}

// DefaultParams is the classical parameter pair Delta = 3, Gamma = 2.
var DefaultParams = Params{DeltaNum: 3, DeltaDen: 1, GammaNum: 2, GammaDen: 1}

// Validate rejects zero denominators, Delta below 2 and Gamma below 1.
func (p Params) Validate() error {
	switch {
	case p.DeltaDen == 0 || p.GammaDen == 0:
		return fmt.Errorf("%w: zero denominator", ErrInvalidParams)
	case uint64(p.DeltaNum) < 2*uint64(p.DeltaDen):
		return fmt.Errorf("%w: delta %d/%d is below 2", ErrInvalidParams, p.DeltaNum, p.DeltaDen)
	case p.GammaNum < p.GammaDen:
		return fmt.Errorf("%w: gamma %d/%d is below 1", ErrInvalidParams, p.GammaNum, p.GammaDen)
	}

	return nil
}

// Alpha returns the equivalent alpha bound 1/(Delta+1): every child subtree
// holds at least this share of its parent's weight.
func (p Params) Alpha() float64 {
	return float64(p.DeltaDen) / float64(p.DeltaNum+p.DeltaDen)
}

// Balancer keeps a bst.Tree weight balanced.
type Balancer[T any, K any, PT bst.Node[T]] struct {
	params Params
}

// NewBalancer validates p and returns a balancer using it.
func NewBalancer[T any, K any, PT bst.Node[T]](p Params) (Balancer[T, K, PT], error) {
	err := p.Validate()
	if err != nil {
		return Balancer[T, K, PT]{}, err
	}

	return Balancer[T, K, PT]{params: p}, nil
}

// New creates an empty weight-balanced tree with DefaultParams.
func New[T any, K any, PT bst.Node[T]](
	store *arena.Arena[T], ord bst.Ordering[T, K], opts bst.Options[T, K],
) *bst.Tree[T, K, PT] {
	return bst.New(store, ord, bst.Balancer[T, K, PT](Balancer[T, K, PT]{params: DefaultParams}), opts)
}

// NewWithParams creates an empty weight-balanced tree with custom parameters.
func NewWithParams[T any, K any, PT bst.Node[T]](
	store *arena.Arena[T], ord bst.Ordering[T, K], p Params, opts bst.Options[T, K],
) (*bst.Tree[T, K, PT], error) {
	bal, err := NewBalancer[T, K, PT](p)
	if err != nil {
		return nil, err
	}

	return bst.New(store, ord, bst.Balancer[T, K, PT](bal), opts), nil
}

// Name returns "wb".
func (Balancer[T, K, PT]) Name() string {
	return "wb"
}

// Params returns the balance parameters in use.
func (b Balancer[T, K, PT]) Params() Params {
	return b.params
}

// Insert links n as a leaf and rebalances the path above it.
func (b Balancer[T, K, PT]) Insert(tree *bst.Tree[T, K, PT], n bst.Index) bool {
	if !tree.LinkLeaf(n) {
		return false
	}

	tree.SetMeta(n, 1)
	b.rebalance(tree, tree.Parent(n))

	return true
}

// Remove unlinks n and rebalances the path above the spliced position.
func (b Balancer[T, K, PT]) Remove(tree *bst.Tree[T, K, PT], n bst.Index) {
	if tree.Left(n) != bst.Nil && tree.Right(n) != bst.Nil {
		tree.SwapWithSuccessor(n)
	}

	b.rebalance(tree, tree.Splice(n))
}

// rebalance walks from n to the root, recomputing sizes and rotating every
// node that violates the Delta bound.
func (b Balancer[T, K, PT]) rebalance(tree *bst.Tree[T, K, PT], n bst.Index) {
	for n != bst.Nil {
		resize(tree, n)

		l, r := weight(tree, tree.Left(n)), weight(tree, tree.Right(n))

		switch {
		case b.outweighs(r, l):
			n = b.restore(tree, b.rotateFromHeavy(tree, n, false))
		case b.outweighs(l, r):
			n = b.restore(tree, b.rotateFromHeavy(tree, n, true))
		}

		n = tree.Parent(n)
	}
}

// rotateFromHeavy lifts the heavy child of n, or its inner grandchild when
// that one is too heavy for a single rotation. It returns the node that took
// the place of n.
func (b Balancer[T, K, PT]) rotateFromHeavy(tree *bst.Tree[T, K, PT], n bst.Index, heavyLeft bool) bst.Index {
	child := tree.Child(n, heavyLeft)
	inner := weight(tree, tree.Child(child, !heavyLeft))
	outer := weight(tree, tree.Child(child, heavyLeft))

	if uint64(b.params.GammaDen)*inner >= uint64(b.params.GammaNum)*outer {
		rotate(tree, child, heavyLeft)
	}

	return rotate(tree, n, !heavyLeft)
}

// restore rebuilds the subtree at top when a rotation left top or one of its
// children out of bounds. Deeper nodes keep their subtrees and stay balanced.
func (b Balancer[T, K, PT]) restore(tree *bst.Tree[T, K, PT], top bst.Index) bst.Index {
	if b.balanced(tree, top) && b.balanced(tree, tree.Left(top)) && b.balanced(tree, tree.Right(top)) {
		return top
	}

	return rebuild(tree, top)
}

func (b Balancer[T, K, PT]) balanced(tree *bst.Tree[T, K, PT], n bst.Index) bool {
	if n == bst.Nil {
		return true
	}

	l, r := weight(tree, tree.Left(n)), weight(tree, tree.Right(n))

	return !b.outweighs(l, r) && !b.outweighs(r, l)
}

// rebuild reshapes the subtree at n so that sibling sizes differ by at most
// one, which satisfies every Delta >= 2. It returns the new subtree root.
func rebuild[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) bst.Index {
	if n == bst.Nil {
		return bst.Nil
	}

	top := lift(tree, n, Size(tree, n)/2)
	rebuild(tree, tree.Left(top))
	rebuild(tree, tree.Right(top))

	return top
}

// lift rotates the record of rank k (0-based) within the subtree at n up to
// the subtree root and returns it.
func lift[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index, k uint64) bst.Index {
	l := Size(tree, tree.Left(n))

	switch {
	case k < l:
		lift(tree, tree.Left(n), k)

		return rotate(tree, n, false)
	case k > l:
		lift(tree, tree.Right(n), k-l-1)

		return rotate(tree, n, true)
	default:
		return n
	}
}

// outweighs reports whether weight a exceeds Delta times weight b.
func (b Balancer[T, K, PT]) outweighs(a, c uint64) bool {
	return uint64(b.params.DeltaDen)*a > uint64(b.params.DeltaNum)*c
}

func rotate[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], pivot bst.Index, left bool) bst.Index {
	top := tree.Rotate(pivot, left)
	resize(tree, pivot)
	resize(tree, top)

	return top
}

func resize[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) {
	tree.SetMeta(n, 1+Size(tree, tree.Left(n))+Size(tree, tree.Right(n)))
}

// Size returns the number of records in the subtree rooted at n.
func Size[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) uint64 {
	if n == bst.Nil {
		return 0
	}

	return tree.Meta(n)
}

func weight[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) uint64 {
	return Size(tree, n) + 1
}

// Check verifies every stored size and the Delta bound at every node.
func (b Balancer[T, K, PT]) Check(tree *bst.Tree[T, K, PT]) error {
	_, err := b.check(tree, tree.Root())

	return err
}

func (b Balancer[T, K, PT]) check(tree *bst.Tree[T, K, PT], n bst.Index) (uint64, error) {
	if n == bst.Nil {
		return 0, nil
	}

	ls, err := b.check(tree, tree.Left(n))
	if err != nil {
		return 0, err
	}

	rs, err := b.check(tree, tree.Right(n))
	if err != nil {
		return 0, err
	}

	if size := ls + rs + 1; tree.Meta(n) != size {
		return 0, fmt.Errorf("%w: node %d stores %d, has %d", ErrWeight, n, tree.Meta(n), size)
	}

	if b.outweighs(ls+1, rs+1) || b.outweighs(rs+1, ls+1) {
		return 0, fmt.Errorf("%w: node %d has weights %d and %d", ErrBalance, n, ls+1, rs+1)
	}

	return tree.Meta(n), nil
}
