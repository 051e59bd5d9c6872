// Package augment provides the algebra used for subtree aggregates: monoids,
// groups and an Augmenter that folds a per-record value over a subtree.
package augment

import (
	"cmp"

	"golang.org/x/exp/constraints"
)

// Number is the set of types Sum and Xor work over.
type Number interface {
	constraints.Integer | constraints.Float
}

// Monoid is an associative Combine with an Identity element.
type Monoid[A any] interface {
	Identity() A
	Combine(a, b A) A
}

// Group is a Monoid where every element has an inverse:
// Combine(a, Inverse(a)) == Identity().
type Group[A any] interface {
	Monoid[A]
	Inverse(a A) A
}

// Sum is addition. It is a group over every Number type, modulo floating
// point rounding.
type Sum[N Number] struct{}

// Identity returns zero.
func (Sum[N]) Identity() N { return 0 }

// Combine returns a + b.
func (Sum[N]) Combine(a, b N) N { return a + b }

// Inverse returns -a. For unsigned types this is the two's complement, which
// still cancels under wrapping addition.
func (Sum[N]) Inverse(a N) N { return -a }

// Xor is bitwise exclusive or, a group where every element is its own inverse.
type Xor[N constraints.Integer] struct{}

func (Xor[N]) Identity() N { return 0 }
func (Xor[N]) Combine(a, b N) N { return a ^ b }
func (Xor[N]) Inverse(a N) N { return a }

// Max keeps the largest element. Floor is the identity and must not exceed
// any value that is combined.
type Max[N cmp.Ordered] struct {
	Floor N
}

func (m Max[N]) Identity() N { return m.Floor }
func (Max[N]) Combine(a, b N) N { return max(a, b) }

// Min keeps the smallest element. Ceil is the identity.
type Min[N cmp.Ordered] struct {
	Ceil N
}

func (m Min[N]) Identity() N { return m.Ceil }
func (Min[N]) Combine(a, b N) N { return min(a, b) }

// Fold combines values left to right starting from the identity.
func Fold[A any](m Monoid[A], values ...A) A {
	acc := m.Identity()
	for _, v := range values {
		acc = m.Combine(acc, v)
	}

	return acc
}
