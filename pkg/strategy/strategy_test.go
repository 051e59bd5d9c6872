package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/wbtree"
)

type item struct {
	key  int
	hook bst.Hook
}

func (it *item) Hook() *bst.Hook { return &it.hook }

func byKey() bst.Ordering[item, int] {
	return bst.KeyOrdering(func(it *item) int { return it.key })
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, k := range strategy.Kinds() {
		got, err := strategy.Parse(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	def, err := strategy.Parse("")
	require.NoError(t, err)
	assert.Equal(t, strategy.RedBlack, def)

	_, err = strategy.Parse("avl")
	require.ErrorIs(t, err, strategy.ErrUnknown)
}

func TestNewBuildsEveryStrategy(t *testing.T) {
	t.Parallel()

	cfg := strategy.Config[item]{
		Hash: func(it *item) uint64 { return uint64(it.key) * 0x9e3779b97f4a7c15 },
	}

	for _, k := range strategy.Kinds() {
		t.Run(string(k), func(t *testing.T) {
			t.Parallel()

			store := arena.New[item](0)
			tree, err := strategy.New[item, int, *item](k, store, byKey(), cfg, bst.Options[item, int]{})
			require.NoError(t, err)
			assert.Equal(t, string(k), tree.Strategy())

			for key := range 300 {
				idx := store.Alloc()
				store.Get(idx).key = (key * 37) % 300
				require.True(t, tree.Insert(idx))
			}

			require.NoError(t, tree.Check())
			assert.Equal(t, 300, tree.Len())
		})
	}
}

func TestNewErrors(t *testing.T) {
	t.Parallel()

	store := arena.New[item](0)

	_, err := strategy.New[item, int, *item](strategy.ZipHash, store, byKey(), strategy.Config[item]{}, bst.Options[item, int]{})
	require.ErrorIs(t, err, strategy.ErrNoHash)

	_, err = strategy.New[item, int, *item]("splay", store, byKey(), strategy.Config[item]{}, bst.Options[item, int]{})
	require.ErrorIs(t, err, strategy.ErrUnknown)

	bad := strategy.Config[item]{Weights: wbtree.Params{DeltaNum: 1, DeltaDen: 1, GammaNum: 1, GammaDen: 1}}
	_, err = strategy.New[item, int, *item](strategy.WeightBalanced, store, byKey(), bad, bst.Options[item, int]{})
	require.ErrorIs(t, err, wbtree.ErrInvalidParams)
}
