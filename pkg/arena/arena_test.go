package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	key   int
	label string
}

func TestAllocNeverReturnsNil(t *testing.T) {
	t.Parallel()

	var a Arena[record]

	first := a.Alloc()
	second := a.Alloc()

	assert.Equal(t, Index(1), first)
	assert.Equal(t, Index(2), second)
	assert.Equal(t, 2, a.Len())
	assert.Equal(t, 3, a.Size())
}

func TestAllocReturnsZeroedSlot(t *testing.T) {
	t.Parallel()

	a := New[record](4)

	idx := a.Alloc()
	a.Get(idx).key = 42
	a.Get(idx).label = "answer"
	a.Free(idx)

	reused := a.Alloc()
	require.Equal(t, idx, reused)
	assert.Equal(t, record{}, *a.Get(reused))
}

func TestFreeListIsLIFO(t *testing.T) {
	t.Parallel()

	a := New[record](0)

	ids := make([]Index, 5)
	for i := range ids {
		ids[i] = a.Alloc()
	}

	a.Free(ids[1])
	a.Free(ids[3])

	assert.Equal(t, ids[3], a.Alloc())
	assert.Equal(t, ids[1], a.Alloc())
	assert.Equal(t, Index(6), a.Alloc())
}

func TestLive(t *testing.T) {
	t.Parallel()

	a := New[record](2)
	idx := a.Alloc()

	assert.True(t, a.Live(idx))
	assert.False(t, a.Live(Nil))
	assert.False(t, a.Live(idx+10))

	a.Free(idx)
	assert.False(t, a.Live(idx))
}

func TestFreePanics(t *testing.T) {
	t.Parallel()

	a := New[record](2)
	idx := a.Alloc()
	a.Free(idx)

	assert.PanicsWithValue(t, "arena: double free or foreign index", func() {
		a.Free(idx)
	})
	assert.PanicsWithValue(t, "arena: slot #0 is reserved and cannot be freed", func() {
		a.Free(Nil)
	})
	assert.PanicsWithValue(t, "arena: dereference of the nil index", func() {
		a.Get(Nil)
	})
}

func TestGrowthKeepsContents(t *testing.T) {
	t.Parallel()

	a := New[record](1)

	const count = 1000

	for i := range count {
		a.Get(a.Alloc()).key = i
	}

	require.Equal(t, count, a.Len())

	for i := 1; i <= count; i++ {
		assert.Equal(t, i-1, a.Get(Index(i)).key)
	}
}

func TestReserveAvoidsReallocation(t *testing.T) {
	t.Parallel()

	a := New[record](0)
	a.Reserve(64)

	first := a.Get(a.Alloc())

	for range 63 {
		a.Alloc()
	}

	assert.Same(t, first, a.Get(1))
}

func TestReset(t *testing.T) {
	t.Parallel()

	a := New[record](4)
	a.Alloc()
	a.Alloc()
	a.Reset()

	assert.Equal(t, 0, a.Len())
	assert.Equal(t, Index(1), a.Alloc())
}
