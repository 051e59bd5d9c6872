package bst

import (
	"cmp"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
)

// Index addresses a record in the tree's arena.
type Index = arena.Index

// Nil is the absent node.
const Nil = arena.Nil

// Hook holds the structural fields a record needs to be linked into a tree.
// Embed it in the record and expose it through a Hook method on the pointer
// type. The fields are managed by the tree and must not be modified while the
// record is linked.
type Hook struct {
	parent, left, right Index
	meta                uint64
}

// Meta returns the strategy metadata word (color, subtree size or rank).
func (h *Hook) Meta() uint64 {
	return h.meta
}

// Node is the contract a record type must satisfy: its pointer type exposes
// the embedded Hook.
type Node[T any] interface {
	*T
	Hook() *Hook
}

// Ordering supplies the record-to-record comparator and the heterogeneous
// key-to-record comparator used by lookups. Both return a negative number,
// zero or a positive number like cmp.Compare, and must agree with each other.
type Ordering[T any, K any] struct {
	Compare    func(a, b *T) int
	CompareKey func(key K, n *T) int
}

// KeyOrdering orders records by an extracted key.
func KeyOrdering[T any, K cmp.Ordered](key func(*T) K) Ordering[T, K] {
	return Ordering[T, K]{
		Compare: func(a, b *T) int {
			return cmp.Compare(key(a), key(b))
		},
		CompareKey: func(k K, n *T) int {
			return cmp.Compare(k, key(n))
		},
	}
}
