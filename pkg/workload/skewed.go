package workload

import "math"

// Skewed is the hot-partition workload of Mäkinen: most draws hit a narrow
// partition of the range, and the hot partition jumps between the low and
// the high end of the range every changeFreq draws. Every n-th draw is
// uniform over the whole range.
type Skewed struct {
	base

	n          int
	changeFreq int
	partitions int
	width      float64
	counter    int
}

// NewSkewed returns a skewed randomizer. width is the size of a partition
// relative to the range.
func NewSkewed(seed uint64, n, changeFreq, partitions int, width float64) *Skewed {
	return &Skewed{
		base:       newBase(seed),
		n:          max(n, 1),
		changeFreq: max(changeFreq, 1),
		partitions: max(partitions, 1),
		width:      width,
	}
}

// Name returns "skewed".
func (s *Skewed) Name() string {
	return NameSkewed
}

// Generate returns a key in [minKey, maxKey).
func (s *Skewed) Generate(minKey, maxKey int) int {
	s.counter++

	if s.counter%s.n == 0 {
		return s.uniform(minKey, maxKey)
	}

	lo, hi := s.partition(minKey, maxKey)

	return s.uniform(lo, hi)
}

// partition returns the bounds of the current hot partition. Even partitions
// count up from the low end, odd ones count down from the high end.
func (s *Skewed) partition(minKey, maxKey int) (int, int) {
	size := int(math.Round(float64(maxKey-minKey) * s.width))
	if size < 1 {
		return minKey, maxKey
	}

	no := (s.counter / s.changeFreq) % s.partitions

	var lo, hi int
	if no%2 == 0 {
		lo = minKey + (1+no)*size
		hi = lo + size
	} else {
		hi = maxKey - no*size
		lo = hi - size
	}

	lo = max(lo, minKey)
	hi = min(hi, maxKey)

	if lo >= hi {
		return minKey, maxKey
	}

	return lo, hi
}
