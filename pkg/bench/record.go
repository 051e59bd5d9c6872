// Package bench compares balancing strategies by replaying one operation
// trace against a tree of each strategy and reporting the work and the shape
// of the result.
package bench

import (
	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/internal/hashutil"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/wbtree"
)

// Record is the benchmark payload: an integer key.
type Record struct {
	hook bst.Hook
	Key  int
}

// Hook exposes the tree links.
func (r *Record) Hook() *bst.Hook {
	return &r.hook
}

// Tree is a tree of benchmark records.
type Tree = bst.Tree[Record, int, *Record]

// TreeConfig holds the strategy settings shared by every benchmarked tree.
type TreeConfig struct {
	Multiple bool
	ZipSeed  uint64
	MaxRank  uint64
	Weights  wbtree.Params
}

// Key returns the record key.
func Key(r *Record) int {
	return r.Key
}

// Hash derives the hash rank input of a record from its key.
func Hash(r *Record) uint64 {
	return hashutil.Int(int64(r.Key))
}

// NewTree creates an empty tree of the given strategy over store.
func NewTree(kind strategy.Kind, store *arena.Arena[Record], cfg TreeConfig, rec bst.Recorder[Record, int]) (*Tree, error) {
	scfg := strategy.Config[Record]{
		Hash:    Hash,
		Seed:    cfg.ZipSeed,
		Weights: cfg.Weights,
		MaxRank: cfg.MaxRank,
	}

	opts := bst.Options[Record, int]{Multiple: cfg.Multiple, Recorder: rec}

	return strategy.New[Record, int, *Record](kind, store, bst.KeyOrdering(Key), scfg, opts)
}

// treeSet replays keys against a tree, allocating one record per insert.
type treeSet struct {
	tree  *Tree
	store *arena.Arena[Record]
}

func newTreeSet(tree *Tree) *treeSet {
	return &treeSet{tree: tree, store: tree.Arena()}
}

func (s *treeSet) Insert(key int) bool {
	idx := s.store.Alloc()
	s.store.Get(idx).Key = key

	if !s.tree.Insert(idx) {
		s.store.Free(idx)

		return false
	}

	return true
}

// Remove locates the record through LowerBound so that a recorder sees the
// removal only.
func (s *treeSet) Remove(key int) bool {
	it := s.tree.LowerBound(key)
	if !it.Valid() || it.Node().Key != key {
		return false
	}

	idx := it.Index()
	s.tree.Remove(idx)
	s.store.Free(idx)

	return true
}

func (s *treeSet) Contains(key int) bool {
	return s.tree.Find(key).Valid()
}
