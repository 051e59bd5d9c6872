package bst

import (
	"errors"
	"fmt"
)

// Sentinel invariant violations reported by Check.
var (
	ErrLinks     = errors.New("inconsistent parent/child links")
	ErrOrder     = errors.New("records out of order")
	ErrCount     = errors.New("element count mismatch")
	ErrAggregate = errors.New("stale aggregate")
)

// Check verifies link symmetry, ordering, the element count and, when an
// Augmenter is installed, every aggregate. It then runs the balancer's own
// invariant check. Aggregates are evaluated on copies of the records, so
// Check never modifies the tree.
func (t *Tree[T, K, PT]) Check() error {
	if t.root != Nil && t.hook(t.root).parent != Nil {
		return fmt.Errorf("%w: root %d has parent %d", ErrLinks, t.root, t.hook(t.root).parent)
	}

	count := 0
	prev := Nil

	for n := t.Minimum(t.root); n != Nil; n = t.next(n) {
		count++
		if count > t.size {
			return fmt.Errorf("%w: more than %d nodes reachable", ErrCount, t.size)
		}

		h := t.hook(n)

		if h.left != Nil && t.hook(h.left).parent != n {
			return fmt.Errorf("%w: left child %d of %d points to %d", ErrLinks, h.left, n, t.hook(h.left).parent)
		}

		if h.right != Nil && t.hook(h.right).parent != n {
			return fmt.Errorf("%w: right child %d of %d points to %d", ErrLinks, h.right, n, t.hook(h.right).parent)
		}

		if prev != Nil {
			c := t.Compare(prev, n)
			if c > 0 || (c == 0 && !t.multiple) {
				return fmt.Errorf("%w: %d before %d", ErrOrder, prev, n)
			}
		}

		if t.aug != nil {
			scratch := *t.arena.Get(n)
			if t.aug.Update(&scratch, t.nodeOrNil(h.left), t.nodeOrNil(h.right)) {
				return fmt.Errorf("%w: node %d", ErrAggregate, n)
			}
		}

		prev = n
	}

	if count != t.size {
		return fmt.Errorf("%w: %d reachable, %d recorded", ErrCount, count, t.size)
	}

	err := t.bal.Check(t)
	if err != nil {
		return fmt.Errorf("%s: %w", t.bal.Name(), err)
	}

	return nil
}
