package wbtree

import (
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/safeconv"
)

// Select returns the record at zero-based in-order position k, or Nil when k
// is out of range. The tree must be balanced by this package.
func Select[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], k int) bst.Index {
	if k < 0 {
		return bst.Nil
	}

	pos := safeconv.MustIntToUint64(k)
	n := tree.Root()

	for n != bst.Nil {
		ls := Size(tree, tree.Left(n))

		switch {
		case pos < ls:
			n = tree.Left(n)
		case pos == ls:
			return n
		default:
			pos -= ls + 1
			n = tree.Right(n)
		}
	}

	return bst.Nil
}

// Rank returns the zero-based in-order position of the linked record n.
func Rank[T any, K any, PT bst.Node[T]](tree *bst.Tree[T, K, PT], n bst.Index) int {
	pos := Size(tree, tree.Left(n))

	for p := tree.Parent(n); p != bst.Nil; n, p = p, tree.Parent(p) {
		if tree.Right(p) == n {
			pos += Size(tree, tree.Left(p)) + 1
		}
	}

	return safeconv.MustUint64ToInt(pos)
}
