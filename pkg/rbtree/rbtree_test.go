package rbtree_test

import (
	"math/bits"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/augment"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/rbtree"
)

type item struct {
	key  int
	val  int
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
		Value:  func(it *item) int { return it.val },
		Agg:    func(it *item) *int { return &it.sum },
	}
}

// Create a tree storing a set of integers.
func testNewIntSet(opts bst.Options[item, int]) (*arena.Arena[item], *intTree) {
	store := arena.New[item](0)

	return store, rbtree.New(store, byKey(), opts)
}

func testInsert(store *arena.Arena[item], tree *intTree, key int) (bst.Index, bool) {
	idx := store.Alloc()
	*store.Get(idx) = item{key: key, val: key}

	if !tree.Insert(idx) {
		store.Free(idx)

		return bst.Nil, false
	}

	return idx, true
}

func iterToString(it bst.Iterator[item, int, *item]) string {
	parts := []string{}

	for ; it.Valid(); it = it.Next() {
		parts = append(parts, strconv.Itoa(it.Node().key))
	}

	return strings.Join(parts, ",")
}

func reverseIterToString(it bst.Iterator[item, int, *item]) string {
	parts := []string{}

	for ; it.Valid(); it = it.Prev() {
		parts = append(parts, strconv.Itoa(it.Node().key))
	}

	return strings.Join(parts, ",")
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	_, tree := testNewIntSet(bst.Options[item, int]{})

	assert.Equal(t, 0, tree.Len())
	assert.False(t, tree.Begin().Valid())
	assert.False(t, tree.LowerBound(10).Valid())
	assert.True(t, tree.End().Equal(tree.Begin()))
	assert.Equal(t, "rb", tree.Strategy())
	require.NoError(t, tree.Check())
}

func TestFindAndBounds(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	_, ok := testInsert(store, tree, 10)
	require.True(t, ok)

	_, ok = testInsert(store, tree, 10)
	assert.False(t, ok)
	assert.Equal(t, 1, tree.Len())

	assert.Equal(t, 10, tree.Find(10).Node().key)
	assert.False(t, tree.Find(11).Valid())
	assert.Equal(t, 10, tree.LowerBound(9).Node().key)
	assert.False(t, tree.UpperBound(10).Valid())
}

func TestIterator(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	for idx := 0; idx < 10; idx += 2 {
		testInsert(store, tree, idx)
	}

	assert.Equal(t, "4,6,8", iterToString(tree.LowerBound(3)))
	assert.Equal(t, "4,6,8", iterToString(tree.LowerBound(4)))
	assert.Equal(t, "8", iterToString(tree.LowerBound(8)))
	assert.Empty(t, iterToString(tree.LowerBound(9)))
	assert.Equal(t, "2,0", reverseIterToString(tree.UpperBound(3).Prev()))
	assert.Equal(t, "2,0", reverseIterToString(tree.UpperBound(2).Prev()))
	assert.Equal(t, "0", reverseIterToString(tree.UpperBound(0).Prev()))
	assert.Equal(t, "8,6,4,2,0", reverseIterToString(tree.End().Prev()))
}

func TestColors(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	ids := map[int]bst.Index{}
	for key := 1; key <= 4; key++ {
		ids[key], _ = testInsert(store, tree, key)
	}

	// 2 is the black root, 1 and 3 were recolored black by 4's insertion.
	assert.Equal(t, ids[2], tree.Root())
	assert.Equal(t, "black", rbtree.ColorName(tree.Meta(ids[1])))
	assert.Equal(t, "black", rbtree.ColorName(tree.Meta(ids[3])))
	assert.Equal(t, "red", rbtree.ColorName(tree.Meta(ids[4])))
	assert.Equal(t, 2, rbtree.BlackHeight(tree))
}

func TestCheckDetectsViolations(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	ids := map[int]bst.Index{}
	for key := 1; key <= 4; key++ {
		ids[key], _ = testInsert(store, tree, key)
	}

	require.NoError(t, tree.Check())

	tree.SetMeta(ids[3], 0)
	require.ErrorIs(t, tree.Check(), rbtree.ErrRedRed)
	tree.SetMeta(ids[3], 1)

	tree.SetMeta(ids[4], 1)
	require.ErrorIs(t, tree.Check(), rbtree.ErrBlackHeight)
	tree.SetMeta(ids[4], 0)

	tree.SetMeta(ids[2], 0)
	require.ErrorIs(t, tree.Check(), rbtree.ErrRedRoot)
	tree.SetMeta(ids[2], 1)

	require.NoError(t, tree.Check())
}

func TestAscendingInsertStaysShallow(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	const n = 4095

	for key := range n {
		testInsert(store, tree, key)
	}

	require.NoError(t, tree.Check())

	limit := 2 * bits.Len(uint(n+1))
	assert.LessOrEqual(t, tree.Height(), limit)
}

func TestMultipleKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{Multiple: true})

	var ids []bst.Index

	for i := range 50 {
		idx := store.Alloc()
		*store.Get(idx) = item{key: i % 3, val: i}
		require.True(t, tree.Insert(idx))

		ids = append(ids, idx)
	}

	require.NoError(t, tree.Check())

	var got []int
	for _, rec := range tree.All() {
		got = append(got, rec.val)
	}

	var want []int
	for key := range 3 {
		for i := key; i < 50; i += 3 {
			want = append(want, i)
		}
	}

	assert.Equal(t, want, got)

	tree.Remove(ids[3])
	require.NoError(t, tree.Check())
	assert.Equal(t, ids[0], tree.Find(0).Index())
}

// oracle stores the expected set in a sorted slice.
type oracle struct {
	data []int
}

func (o *oracle) Insert(key int) bool {
	pos, found := slices.BinarySearch(o.data, key)
	if found {
		return false
	}

	o.data = slices.Insert(o.data, pos, key)

	return true
}

func (o *oracle) Delete(key int) {
	pos, _ := slices.BinarySearch(o.data, key)
	o.data = slices.Delete(o.data, pos, pos+1)
}

func (o *oracle) RandomExistingKey(rng *rand.Rand) int {
	return o.data[rng.IntN(len(o.data))]
}

func (o *oracle) LowerBound(key int) []int {
	pos, _ := slices.BinarySearch(o.data, key)

	return o.data[pos:]
}

func compareContents(tb testing.TB, want []int, it bst.Iterator[item, int, *item]) {
	tb.Helper()

	got := []int{}
	for ; it.Valid(); it = it.Next() {
		got = append(got, it.Node().key)
	}

	if len(want) == 0 {
		want = []int{}
	}

	require.Equal(tb, want, got)
}

func TestRandomized(t *testing.T) {
	t.Parallel()

	const numKeys = 1000

	orc := &oracle{}
	store, tree := testNewIntSet(bst.Options[item, int]{Augmenter: sumAug()})
	rng := rand.New(rand.NewPCG(0, 0))
	linked := map[int]bst.Index{}

	for range 10000 {
		op := rng.IntN(100)

		switch {
		case op < 50:
			key := rng.IntN(numKeys)
			idx, ok := testInsert(store, tree, key)
			require.Equal(t, orc.Insert(key), ok)

			if ok {
				linked[key] = idx
			}
		case op < 90 && len(orc.data) > 0:
			key := orc.RandomExistingKey(rng)
			orc.Delete(key)

			idx := tree.Find(key).Index()
			require.Equal(t, linked[key], idx)
			tree.Remove(idx)
			store.Free(idx)
			delete(linked, key)
		default:
			key := rng.IntN(numKeys)
			compareContents(t, orc.LowerBound(key), tree.LowerBound(key))

			continue
		}

		require.NoError(t, tree.Check())
	}

	compareContents(t, orc.data, tree.Begin())

	total := 0
	for _, key := range orc.data {
		total += key
	}

	if tree.Root() != bst.Nil {
		assert.Equal(t, total, store.Get(tree.Root()).sum)
	}
}

func TestRemoveEverything(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{Augmenter: sumAug()})
	rng := rand.New(rand.NewPCG(3, 5))

	keys := rng.Perm(500)
	ids := make([]bst.Index, 0, len(keys))

	for _, key := range keys {
		idx, ok := testInsert(store, tree, key)
		require.True(t, ok)

		ids = append(ids, idx)
	}

	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	for _, idx := range ids {
		tree.Remove(idx)
		require.NoError(t, tree.Check())
		assert.Equal(t, bst.Hook{}, store.Get(idx).hook)
	}

	assert.True(t, tree.Empty())
	assert.Equal(t, bst.Nil, tree.Root())
}

func TestInsertRemoveRoundTrip(t *testing.T) {
	t.Parallel()

	store, tree := testNewIntSet(bst.Options[item, int]{})

	for key := range 64 {
		testInsert(store, tree, key*2)
	}

	before := iterToString(tree.Begin())

	idx, ok := testInsert(store, tree, 33)
	require.True(t, ok)
	tree.Remove(idx)

	require.NoError(t, tree.Check())
	assert.Equal(t, before, iterToString(tree.Begin()))
	assert.Equal(t, 64, tree.Len())
}
