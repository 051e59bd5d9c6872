package dot_test

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/dot"
	"github.com/Sumatoshi-tech/ygg/pkg/rbtree"
	"github.com/Sumatoshi-tech/ygg/pkg/ziptree"
)

type node struct {
	key  int
	hook bst.Hook
}

func (n *node) Hook() *bst.Hook { return &n.hook }

func nodeKey(n *node) int { return n.key }

func label(n *node) string { return strconv.Itoa(n.key) }

func fill(store *arena.Arena[node], keys ...int) []arena.Index {
	out := make([]arena.Index, 0, len(keys))

	for _, k := range keys {
		idx := store.Alloc()
		store.Get(idx).key = k
		out = append(out, idx)
	}

	return out
}

func TestWriteRedBlack(t *testing.T) {
	t.Parallel()

	store := arena.New[node](4)
	tree := rbtree.New[node, int](store, bst.KeyOrdering[node](nodeKey), bst.Options[node, int]{})

	idx := fill(store, 1, 2, 3)
	for _, n := range idx {
		require.True(t, tree.Insert(n))
	}

	var buf bytes.Buffer
	require.NoError(t, dot.Write(&buf, "rb", tree, label, dot.ForStrategy(tree.Strategy())))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, `digraph "rb" {`, lines[0])
	assert.Equal(t, "}", lines[len(lines)-1])

	// Root 2 is black with red children 1 and 3.
	assert.Equal(t, `	"2" [label="2",shape=circle,style=filled,fillcolor=black,fontcolor=white];`, lines[2])
	assert.Contains(t, out, `"2" -> "1" [label=L];`)
	assert.Contains(t, out, `"2" -> "3" [label=R];`)
	assert.Contains(t, out, `"1" [label="1",shape=circle,style=filled,fillcolor="#d62728",fontcolor=white];`)

	// Both leaves get two invisible placeholders.
	assert.Equal(t, 4, strings.Count(out, "shape=point,style=invis"))
	assert.Contains(t, out, `"3" -> "nil3R" [style=invis];`)
}

func TestWriteEmptyTree(t *testing.T) {
	t.Parallel()

	store := arena.New[node](0)
	tree := bst.NewPlain[node, int](store, bst.KeyOrdering[node](nodeKey), bst.Options[node, int]{})

	var buf bytes.Buffer
	require.NoError(t, dot.Write(&buf, "empty", tree, label, dot.Style{}))

	assert.Equal(t, "digraph \"empty\" {\n\tnode [fontname=Arial,fontsize=12];\n}\n", buf.String())
}

func TestWriteRanksAreDeterministic(t *testing.T) {
	t.Parallel()

	render := func() string {
		store := arena.New[node](16)
		zopts := ziptree.Options[node]{
			Hash:      ziptree.IntHash(func(n *node) int64 { return int64(n.key) }),
			CacheRank: true,
		}
		tree := ziptree.New[node, int](store, bst.KeyOrdering[node](nodeKey), zopts, bst.Options[node, int]{})

		for _, n := range fill(store, 8, 3, 12, 1, 5, 9, 14, 2) {
			require.True(t, tree.Insert(n))
		}

		var buf bytes.Buffer
		require.NoError(t, dot.Write(&buf, "zip", tree, label, dot.Ranks()))

		return buf.String()
	}

	first := render()
	assert.Equal(t, first, render())
	assert.Contains(t, first, `\nr=`)
}

func TestStyles(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "n=7", dot.Sizes().Meta(7))
	assert.Equal(t, "r=3", dot.Ranks().Meta(3))
	assert.Nil(t, dot.ForStrategy("plain").Meta)
	assert.NotNil(t, dot.ForStrategy("zip-hash").Meta)
	assert.NotNil(t, dot.ForStrategy("wb").Meta)
	assert.NotNil(t, dot.ForStrategy("rb").Attrs)
}

type brokenWriter struct{}

var errBroken = errors.New("broken pipe")

func (brokenWriter) Write([]byte) (int, error) { return 0, errBroken }

func TestWriteReportsWriterError(t *testing.T) {
	t.Parallel()

	store := arena.New[node](0)
	tree := bst.NewPlain[node, int](store, bst.KeyOrdering[node](nodeKey), bst.Options[node, int]{})

	err := dot.Write(brokenWriter{}, "x", tree, label, dot.Style{})
	require.ErrorIs(t, err, errBroken)
}
