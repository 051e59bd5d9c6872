package ziptree

import (
	"math/bits"
	"math/rand/v2"

	"github.com/Sumatoshi-tech/ygg/pkg/internal/hashutil"
)

// Options selects where ranks come from.
//
// Without Hash every inserted node draws a geometric rank from Source and the
// rank is stored in the node's metadata word. With Hash the rank is the
// 1-based position of the lowest set bit of the (optionally universalized)
// hash, so equal key sets with equal hashes always build the same tree.
type Options[T any] struct {
	// Hash derives a node's rank. Nil selects random ranks.
	Hash func(n *T) uint64

	// Coefficient, when non-zero, universalizes hashes as
	// (hash * Coefficient) mod Modulus.
	Coefficient uint64

	// Modulus of the universalization. Zero leaves the product wrapping
	// around at 2^64.
	Modulus uint64

	// CacheRank stores hash-derived ranks in the metadata word at insertion
	// instead of recomputing them on every comparison.
	CacheRank bool

	// MaxRank caps ranks, emulating a narrower rank type. Zero means no cap.
	MaxRank uint64

	// Source feeds random ranks. Nil selects a splitmix64 generator seeded
	// with hashutil.DefaultSeed, so runs are reproducible by default.
	Source rand.Source
}

// DefaultCoefficient is the linear congruential multiplier commonly used for
// universalization.
const DefaultCoefficient = 1103515245

// IntHash builds a Hash from an integer key extractor.
func IntHash[T any](key func(*T) int64) func(*T) uint64 {
	return func(n *T) uint64 {
		return hashutil.Int(key(n))
	}
}

// StringHash builds a Hash from a string key extractor.
func StringHash[T any](key func(*T) string) func(*T) uint64 {
	return func(n *T) uint64 {
		return hashutil.String(key(n))
	}
}

// HashRank converts a hash into a rank: the 1-based index of its lowest set
// bit, or 0 for a zero hash.
func HashRank(h uint64) uint64 {
	if h == 0 {
		return 0
	}

	return uint64(bits.TrailingZeros64(h)) + 1
}

type ranker[T any] struct {
	hash        func(*T) uint64
	coefficient uint64
	modulus     uint64
	cache       bool
	maxRank     uint64
	source      rand.Source
}

func newRanker[T any](opts Options[T]) *ranker[T] {
	src := opts.Source
	if src == nil && opts.Hash == nil {
		src = hashutil.NewSplitMix(hashutil.DefaultSeed)
	}

	return &ranker[T]{
		hash:        opts.Hash,
		coefficient: opts.Coefficient,
		modulus:     opts.Modulus,
		cache:       opts.CacheRank,
		maxRank:     opts.MaxRank,
		source:      src,
	}
}

// stored reports whether ranks live in the metadata word.
func (r *ranker[T]) stored() bool {
	return r.hash == nil || r.cache
}

// assign computes the rank a node receives at insertion.
func (r *ranker[T]) assign(n *T) uint64 {
	if r.hash != nil {
		return r.fromHash(n)
	}

	return r.clamp(r.draw())
}

// draw returns a geometric rank: P(rank = k) = 2^-k.
func (r *ranker[T]) draw() uint64 {
	var rank uint64

	for {
		v := r.source.Uint64()
		if v != 0 {
			return rank + uint64(bits.TrailingZeros64(v)) + 1
		}

		rank += 64
	}
}

func (r *ranker[T]) fromHash(n *T) uint64 {
	h := r.hash(n)

	if r.coefficient != 0 {
		h *= r.coefficient
		if r.modulus != 0 {
			h %= r.modulus
		}
	}

	return r.clamp(HashRank(h))
}

func (r *ranker[T]) clamp(rank uint64) uint64 {
	if r.maxRank != 0 && rank > r.maxRank {
		return r.maxRank
	}

	return rank
}
