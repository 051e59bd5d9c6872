package workload

import (
	"math"
	"sort"
)

// Zipf draws keys whose rank follows a Zipf law: the key min+k-1 has
// probability proportional to k^-s.
//
// Sampling inverts the cumulative harmonic table H(k) = sum of i^-s for i <= k
// by binary search. Tables are cached per range width, so the first draw for a
// width costs O(width) and later draws O(log width).
type Zipf struct {
	base

	exponent float64
	tables   map[int][]float64
}

// NewZipf returns a Zipf randomizer with skew exponent s.
func NewZipf(seed uint64, s float64) *Zipf {
	return &Zipf{
		base:     newBase(seed),
		exponent: s,
		tables:   make(map[int][]float64),
	}
}

// Name returns "zipf".
func (z *Zipf) Name() string {
	return NameZipf
}

// Exponent returns the skew exponent.
func (z *Zipf) Exponent() float64 {
	return z.exponent
}

// Generate returns a key in [minKey, maxKey). minKey is the most likely key.
func (z *Zipf) Generate(minKey, maxKey int) int {
	checkRange(minKey, maxKey)

	n := maxKey - minKey
	h := z.table(n)

	target := z.rng.Float64() * h[n]

	idx := sort.Search(n, func(i int) bool {
		return h[i+1] > target
	})
	if idx == n {
		idx = n - 1
	}

	return minKey + idx
}

// table returns H with H[0] = 0 and H[k] the k-th generalized harmonic number.
func (z *Zipf) table(n int) []float64 {
	if h, ok := z.tables[n]; ok {
		return h
	}

	h := make([]float64, n+1)
	for k := 1; k <= n; k++ {
		h[k] = h[k-1] + math.Pow(float64(k), -z.exponent)
	}

	z.tables[n] = h

	return h
}
