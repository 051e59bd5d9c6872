package bench

import (
	"context"
	"fmt"
	"slices"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
)

// Build replays entries on a fresh tree of the given strategy.
func Build(ctx context.Context, kind strategy.Kind, cfg TreeConfig, entries []opseq.Entry) (*Tree, opseq.Counts, error) {
	tree, err := NewTree(kind, arena.New[Record](countInserts(entries)), cfg, nil)
	if err != nil {
		return nil, opseq.Counts{}, err
	}

	counts, err := opseq.Replay(ctx, newTreeSet(tree), entries)
	if err != nil {
		return nil, counts, fmt.Errorf("build %s: %w", kind, err)
	}

	return tree, counts, nil
}

// BuildInOrder builds a set of the distinct keys, inserting them in the order
// given by perm, a permutation of their positions in ascending order.
// Records are allocated in key order first, so two builds of the same keys
// assign the same arena index to each key whatever the insertion order.
func BuildInOrder(kind strategy.Kind, cfg TreeConfig, keys []int, perm []int) (*Tree, error) {
	if len(perm) != len(keys) {
		return nil, fmt.Errorf("%w: permutation of %d positions for %d keys", ErrInvalidPlan, len(perm), len(keys))
	}

	store := arena.New[Record](len(keys))

	idx := make([]arena.Index, len(keys))
	for i, k := range keys {
		idx[i] = store.Alloc()
		store.Get(idx[i]).Key = k
	}

	tree, err := NewTree(kind, store, cfg, nil)
	if err != nil {
		return nil, err
	}

	seen := make([]bool, len(idx))

	for _, p := range perm {
		if p < 0 || p >= len(idx) || seen[p] {
			return nil, fmt.Errorf("%w: position %d is out of range or repeated", ErrInvalidPlan, p)
		}

		seen[p] = true

		tree.Insert(idx[p])
	}

	return tree, nil
}

// DistinctKeys returns the sorted distinct keys inserted by entries.
func DistinctKeys(entries []opseq.Entry) []int {
	keys := make([]int, 0, len(entries))

	for _, e := range entries {
		if e.Op == opseq.OpInsert {
			keys = append(keys, e.Key)
		}
	}

	slices.Sort(keys)

	return slices.Compact(keys)
}
