package wbtree_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/augment"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/wbtree"
)

type item struct {
	key  int
	sum  int
	hook bst.Hook
}

func (it *item) Hook() *bst.Hook { return &it.hook }

type intTree = bst.Tree[item, int, *item]

func byKey() bst.Ordering[item, int] {
	return bst.KeyOrdering(func(it *item) int { return it.key })
}

func sumAug() augment.Aggregator[item, int] {
	return augment.Aggregator[item, int]{
		Monoid: augment.Sum[int]{},
		Value:  func(it *item) int { return it.key },
		Agg:    func(it *item) *int { return &it.sum },
	}
}

func testInsert(store *arena.Arena[item], tree *intTree, key int) (bst.Index, bool) {
	idx := store.Alloc()
	store.Get(idx).key = key

	if !tree.Insert(idx) {
		store.Free(idx)

		return bst.Nil, false
	}

	return idx, true
}

func keys(tree *intTree) []int {
	out := []int{}
	for _, rec := range tree.All() {
		out = append(out, rec.key)
	}

	return out
}

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params wbtree.Params
		ok     bool
	}{
		{"default", wbtree.DefaultParams, true},
		{"scaled_default", wbtree.Params{DeltaNum: 6, DeltaDen: 2, GammaNum: 4, GammaDen: 2}, true},
		{"fractional", wbtree.Params{DeltaNum: 5, DeltaDen: 2, GammaNum: 3, GammaDen: 2}, true},
		{"zero_delta_den", wbtree.Params{DeltaNum: 3, GammaNum: 2, GammaDen: 1}, false},
		{"zero_gamma_den", wbtree.Params{DeltaNum: 3, DeltaDen: 1, GammaNum: 2}, false},
		{"delta_too_small", wbtree.Params{DeltaNum: 3, DeltaDen: 2, GammaNum: 2, GammaDen: 1}, false},
		{"gamma_too_small", wbtree.Params{DeltaNum: 3, DeltaDen: 1, GammaNum: 1, GammaDen: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, wbtree.ErrInvalidParams)
			}
		})
	}
}

func TestAlpha(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.25, wbtree.DefaultParams.Alpha(), 1e-12)
}

func TestNewWithParamsRejectsInvalid(t *testing.T) {
	t.Parallel()

	tree, err := wbtree.NewWithParams(arena.New[item](0), byKey(), wbtree.Params{}, bst.Options[item, int]{})
	require.ErrorIs(t, err, wbtree.ErrInvalidParams)
	assert.Nil(t, tree)
}

func TestSizesAfterAscendingInsert(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)
	tree := wbtree.New(store, byKey(), bst.Options[item, int]{})

	for key := range 1000 {
		testInsert(store, tree, key)
	}

	require.NoError(t, tree.Check())
	assert.Equal(t, "wb", tree.Strategy())
	assert.Equal(t, uint64(1000), wbtree.Size(tree, tree.Root()))
	// Every level keeps at least a quarter of the weight on each side.
	assert.LessOrEqual(t, tree.Height(), 25)
}

func TestSelectAndRank(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)
	tree := wbtree.New(store, byKey(), bst.Options[item, int]{})

	for _, key := range rand.New(rand.NewPCG(1, 1)).Perm(200) {
		testInsert(store, tree, key*10)
	}

	for pos := range 200 {
		idx := wbtree.Select(tree, pos)
		require.NotEqual(t, bst.Nil, idx)
		assert.Equal(t, pos*10, store.Get(idx).key)
		assert.Equal(t, pos, wbtree.Rank(tree, idx))
	}

	assert.Equal(t, bst.Nil, wbtree.Select(tree, 200))
	assert.Equal(t, bst.Nil, wbtree.Select(tree, -1))
}

func TestCheckDetectsBadSize(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)
	tree := wbtree.New(store, byKey(), bst.Options[item, int]{})

	for key := range 10 {
		testInsert(store, tree, key)
	}

	root := tree.Root()
	tree.SetMeta(root, tree.Meta(root)+1)
	require.ErrorIs(t, tree.Check(), wbtree.ErrWeight)
}

func TestCheckDetectsImbalance(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)
	plain := bst.NewPlain(store, byKey(), bst.Options[item, int]{})

	// A right spine with correct sizes violates only the weight bound.
	var ids []bst.Index
	for key := range 5 {
		idx, _ := testInsert(store, plain, key)
		ids = append(ids, idx)
	}

	for i, idx := range ids {
		plain.SetMeta(idx, uint64(len(ids)-i))
	}

	bal, err := wbtree.NewBalancer[item, int, *item](wbtree.DefaultParams)
	require.NoError(t, err)
	require.ErrorIs(t, bal.Check(plain), wbtree.ErrBalance)
}

func TestRandomizedWithParams(t *testing.T) {
	t.Parallel()

	for _, params := range []wbtree.Params{
		wbtree.DefaultParams,
		{DeltaNum: 6, DeltaDen: 2, GammaNum: 4, GammaDen: 2},
		{DeltaNum: 5, DeltaDen: 2, GammaNum: 3, GammaDen: 2},
		// Pairs outside the single-rotation region fall back to rebuilds.
		{DeltaNum: 2, DeltaDen: 1, GammaNum: 1, GammaDen: 1},
		{DeltaNum: 4, DeltaDen: 1, GammaNum: 2, GammaDen: 1},
		{DeltaNum: 3, DeltaDen: 1, GammaNum: 1, GammaDen: 1},
		{DeltaNum: 3, DeltaDen: 1, GammaNum: 5, GammaDen: 1},
	} {
		store := arena.New[item](0)
		tree, err := wbtree.NewWithParams(store, byKey(), params, bst.Options[item, int]{Augmenter: sumAug()})
		require.NoError(t, err)

		rng := rand.New(rand.NewPCG(9, 4))
		linked := map[int]bst.Index{}

		var oracle []int

		for range 5000 {
			key := rng.IntN(400)

			if idx, ok := linked[key]; ok {
				tree.Remove(idx)
				store.Free(idx)
				delete(linked, key)

				pos, _ := slices.BinarySearch(oracle, key)
				oracle = slices.Delete(oracle, pos, pos+1)
			} else {
				idx, ok := testInsert(store, tree, key)
				require.True(t, ok)

				linked[key] = idx
				pos, _ := slices.BinarySearch(oracle, key)
				oracle = slices.Insert(oracle, pos, key)
			}

			require.NoError(t, tree.Check())
		}

		if len(oracle) == 0 {
			oracle = []int{}
		}

		assert.Equal(t, oracle, keys(tree))
		assert.Equal(t, uint64(len(oracle)), wbtree.Size(tree, tree.Root()))
	}
}

func TestRebuildKeepsTightParamsBalanced(t *testing.T) {
	t.Parallel()

	params := wbtree.Params{DeltaNum: 2, DeltaDen: 1, GammaNum: 1, GammaDen: 1}

	store := arena.New[item](0)
	tree, err := wbtree.NewWithParams(store, byKey(), params, bst.Options[item, int]{Augmenter: sumAug()})
	require.NoError(t, err)

	var ids []bst.Index

	for key := range 300 {
		idx, ok := testInsert(store, tree, key)
		require.True(t, ok)
		require.NoError(t, tree.Check())

		ids = append(ids, idx)
	}

	for _, idx := range ids[:250] {
		tree.Remove(idx)
		require.NoError(t, tree.Check())
	}

	assert.Equal(t, 50, tree.Len())
	assert.LessOrEqual(t, tree.Height(), 9)
}

func TestMultiple(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)
	tree := wbtree.New(store, byKey(), bst.Options[item, int]{Multiple: true})

	for i := range 100 {
		_, ok := testInsert(store, tree, i%5)
		require.True(t, ok)
	}

	require.NoError(t, tree.Check())
	assert.Equal(t, 100, tree.Len())
	assert.Equal(t, 20, wbtree.Rank(tree, tree.Find(1).Index()))
}
