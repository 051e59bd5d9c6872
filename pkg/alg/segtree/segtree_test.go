package segtree_test

import (
	"cmp"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/alg/segtree"
	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/augment"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/ziptree"
)

type intStore = arena.Arena[segtree.Endpoint[int, int]]

func testNew(t *testing.T, kind strategy.Kind) (*intStore, *segtree.Tree[int, int]) {
	t.Helper()

	return testNewWith(t, segtree.Options[int, int]{Strategy: kind})
}

// testNewRanged builds a tree with range queries enabled. Hash ranks are
// derived from the endpoint coordinate, so equal points share a rank.
func testNewRanged(t *testing.T, kind strategy.Kind) (*intStore, *segtree.Tree[int, int]) {
	t.Helper()

	return testNewWith(t, segtree.Options[int, int]{
		Strategy: kind,
		Config: strategy.Config[segtree.Endpoint[int, int]]{
			Hash: ziptree.IntHash(func(e *segtree.Endpoint[int, int]) int64 { return int64(e.Point()) }),
		},
		Compare: cmp.Compare[int],
	})
}

func testNewWith(t *testing.T, opts segtree.Options[int, int]) (*intStore, *segtree.Tree[int, int]) {
	t.Helper()

	store := arena.New[segtree.Endpoint[int, int]](0)
	tree, err := segtree.New(store, augment.Group[int](augment.Sum[int]{}), opts)
	require.NoError(t, err)

	return store, tree
}

func coverage(tree *segtree.Tree[int, int], live []segtree.Interval, x int) int {
	sum := 0

	for _, iv := range live {
		lower, upper, v := tree.Bounds(iv)
		if lower <= x && x < upper {
			sum += v
		}
	}

	return sum
}

func testInsert(t *testing.T, store *intStore, tree *segtree.Tree[int, int], lower, upper, v int) segtree.Interval {
	t.Helper()

	iv, err := segtree.Alloc(store, lower, upper, v)
	require.NoError(t, err)
	tree.Insert(iv)

	return iv
}

func TestEmptyQueryIsIdentity(t *testing.T) {
	t.Parallel()

	_, tree := testNew(t, "")

	assert.Equal(t, 0, tree.Query(42))
	assert.True(t, tree.Empty())
	assert.Equal(t, 0, tree.Len())
	require.NoError(t, tree.Check())
}

func TestSingleInterval(t *testing.T) {
	t.Parallel()

	store, tree := testNew(t, "")
	testInsert(t, store, tree, 2, 5, 10)

	assert.Equal(t, 0, tree.Query(1))
	assert.Equal(t, 10, tree.Query(2))
	assert.Equal(t, 10, tree.Query(3))
	assert.Equal(t, 10, tree.Query(4))
	assert.Equal(t, 0, tree.Query(5))
	assert.Equal(t, 0, tree.Query(6))
	assert.Equal(t, 1, tree.Len())
}

func TestAllocRejectsEmpty(t *testing.T) {
	t.Parallel()

	store := arena.New[segtree.Endpoint[int, int]](0)

	_, err := segtree.Alloc(store, 3, 3, 1)
	require.ErrorIs(t, err, segtree.ErrEmptyInterval)

	_, err = segtree.Alloc(store, 4, 3, 1)
	require.ErrorIs(t, err, segtree.ErrEmptyInterval)
}

func TestTouchingIntervals(t *testing.T) {
	t.Parallel()

	store, tree := testNew(t, "")
	testInsert(t, store, tree, 0, 5, 1)
	testInsert(t, store, tree, 5, 10, 2)

	assert.Equal(t, 1, tree.Query(4))
	assert.Equal(t, 2, tree.Query(5))
	assert.Equal(t, 0, tree.Query(10))
}

func TestStaircase(t *testing.T) {
	t.Parallel()

	const n = 50

	for _, kind := range strategy.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			store, tree := testNewRanged(t, kind)

			for i := range n {
				testInsert(t, store, tree, i, n+i, 1)
			}

			require.NoError(t, tree.Check())

			for i := range n {
				assert.Equal(t, i+1, tree.Query(i), "Query(%d)", i)
				assert.Equal(t, n-i-1, tree.Query(i+n), "Query(%d)", i+n)
			}

			peak, err := tree.Peak()
			require.NoError(t, err)
			assert.Equal(t, n, peak)

			got, err := tree.QueryRange(n, 2*n)
			require.NoError(t, err)
			assert.Equal(t, n-1, got)
		})
	}
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store, tree := testNew(t, "")
	a := testInsert(t, store, tree, 0, 10, 3)
	testInsert(t, store, tree, 5, 15, 4)

	assert.Equal(t, 7, tree.Query(7))

	tree.Remove(a)
	require.NoError(t, tree.Check())
	assert.Equal(t, 4, tree.Query(7))
	assert.Equal(t, 0, tree.Query(2))

	lower, upper, v := tree.Bounds(a)
	assert.Equal(t, []int{0, 10, 3}, []int{lower, upper, v})

	segtree.Free(store, a)
	assert.False(t, store.Live(a.Start))
}

func TestSegments(t *testing.T) {
	t.Parallel()

	store, tree := testNew(t, "")
	testInsert(t, store, tree, 0, 10, 1)
	testInsert(t, store, tree, 5, 15, 2)
	testInsert(t, store, tree, 20, 25, 4)

	want := []segtree.Segment[int, int]{
		{From: 0, To: 5, Value: 1},
		{From: 5, To: 10, Value: 3},
		{From: 10, To: 15, Value: 2},
		{From: 15, To: 20, Value: 0},
		{From: 20, To: 25, Value: 4},
	}

	assert.Equal(t, want, slices.Collect(tree.Segments()))

	var firstTwo []segtree.Segment[int, int]
	for seg := range tree.Segments() {
		firstTwo = append(firstTwo, seg)
		if len(firstTwo) == 2 {
			break
		}
	}

	assert.Equal(t, want[:2], firstTwo)
}

func TestClear(t *testing.T) {
	t.Parallel()

	store, tree := testNew(t, "")
	iv := testInsert(t, store, tree, 1, 3, 5)

	tree.Clear()
	assert.Equal(t, 0, tree.Query(2))

	tree.Insert(iv)
	assert.Equal(t, 5, tree.Query(2))
}

func TestFloatValues(t *testing.T) {
	t.Parallel()

	store := arena.New[segtree.Endpoint[float64, float64]](0)
	tree, err := segtree.New(store, augment.Group[float64](augment.Sum[float64]{}), segtree.Options[float64, float64]{})
	require.NoError(t, err)

	iv, err := segtree.Alloc(store, 0.5, 1.5, 0.25)
	require.NoError(t, err)
	tree.Insert(iv)

	assert.InDelta(t, 0.25, tree.Query(1.0), 1e-12)
	assert.InDelta(t, 0.0, tree.Query(1.5), 1e-12)
}

func TestRandomizedAgainstBruteForce(t *testing.T) {
	t.Parallel()

	for _, kind := range strategy.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			t.Parallel()

			store, tree := testNewRanged(t, kind)
			rng := rand.New(rand.NewPCG(17, 29))

			var live []segtree.Interval

			for step := range 2000 {
				if len(live) > 0 && rng.IntN(3) == 0 {
					pos := rng.IntN(len(live))
					tree.Remove(live[pos])
					segtree.Free(store, live[pos])
					live = slices.Delete(live, pos, pos+1)
				} else {
					lower := rng.IntN(200)
					live = append(live, testInsert(t, store, tree, lower, lower+1+rng.IntN(40), rng.IntN(9)-4))
				}

				if step%50 != 0 {
					continue
				}

				require.NoError(t, tree.Check())

				for range 20 {
					x := rng.IntN(260) - 10
					require.Equal(t, coverage(tree, live, x), tree.Query(x), "Query(%d) at step %d", x, step)
				}

				for range 20 {
					lower := rng.IntN(260) - 10
					upper := lower + 1 + rng.IntN(60)

					want := coverage(tree, live, lower)
					for x := lower + 1; x < upper; x++ {
						want = max(want, coverage(tree, live, x))
					}

					got, err := tree.QueryRange(lower, upper)
					require.NoError(t, err)
					require.Equal(t, want, got, "QueryRange(%d, %d) at step %d", lower, upper, step)
				}

				peak := 0
				for x := -10; x < 250; x++ {
					peak = max(peak, coverage(tree, live, x))
				}

				got, err := tree.Peak()
				require.NoError(t, err)
				require.Equal(t, peak, got, "Peak at step %d", step)
			}
		})
	}
}

func TestQueryRange(t *testing.T) {
	t.Parallel()

	store, tree := testNewRanged(t, strategy.RedBlack)

	// Coverage: [0,2) 5, [2,4) 2, [4,6) -3, [6,8) 4, zero elsewhere.
	testInsert(t, store, tree, 0, 4, 5)
	testInsert(t, store, tree, 2, 6, -3)
	testInsert(t, store, tree, 4, 8, 0)
	testInsert(t, store, tree, 6, 8, 4)

	tests := []struct {
		lower, upper, want int
	}{
		{-5, 0, 0},
		{-5, 1, 5},
		{2, 4, 2},
		{3, 7, 4},
		{3, 6, 2},
		{4, 6, -3},
		{4, 7, 4},
		{5, 100, 4},
		{8, 20, 0},
		{-100, 100, 5},
	}

	for _, tt := range tests {
		got, err := tree.QueryRange(tt.lower, tt.upper)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "[%d, %d)", tt.lower, tt.upper)
	}

	peak, err := tree.Peak()
	require.NoError(t, err)
	assert.Equal(t, 5, peak)
}

func TestQueryRangeIgnoresSameCoordinateTransients(t *testing.T) {
	t.Parallel()

	store, tree := testNewRanged(t, strategy.RedBlack)

	// At 5 the end of [0,5) lifts the running sum to 0 before the start of
	// [5,9) lowers it again; 0 is never the coverage of any point.
	testInsert(t, store, tree, 0, 5, -2)
	testInsert(t, store, tree, 5, 9, -7)

	got, err := tree.QueryRange(1, 9)
	require.NoError(t, err)
	assert.Equal(t, -2, got)

	got, err = tree.QueryRange(5, 9)
	require.NoError(t, err)
	assert.Equal(t, -7, got)

	peak, err := tree.Peak()
	require.NoError(t, err)
	assert.Equal(t, 0, peak)
}

func TestQueryRangeErrors(t *testing.T) {
	t.Parallel()

	_, plain := testNew(t, strategy.RedBlack)

	_, err := plain.QueryRange(0, 10)
	require.ErrorIs(t, err, segtree.ErrUnordered)

	_, err = plain.Peak()
	require.ErrorIs(t, err, segtree.ErrUnordered)

	_, ranged := testNewRanged(t, strategy.RedBlack)

	_, err = ranged.QueryRange(3, 3)
	require.ErrorIs(t, err, segtree.ErrEmptyInterval)
}
