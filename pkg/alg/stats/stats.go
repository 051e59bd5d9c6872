// Package stats summarizes histograms of small non-negative integers, such
// as the number of tree nodes found at each depth.
// All standard deviation calculations use population stddev (÷n, not ÷(n−1)).
package stats

import (
	"cmp"
	"math"
)

// Well-known percentile thresholds.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Histogram counts observations: h[v] is how often the value v was seen.
// Negative counts are treated as zero.
type Histogram []int

// Count returns the number of observations.
func (h Histogram) Count() int {
	total := 0

	for _, n := range h {
		total += max(n, 0)
	}

	return total
}

// Mean returns the arithmetic mean of the observed values.
// Returns 0 for an empty histogram.
func (h Histogram) Mean() float64 {
	count := h.Count()
	if count == 0 {
		return 0
	}

	var sum float64

	for v, n := range h {
		sum += float64(v) * float64(max(n, 0))
	}

	return sum / float64(count)
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
// Returns (0, 0) for an empty histogram.
func (h Histogram) MeanStdDev() (mean, stddev float64) {
	count := h.Count()
	if count == 0 {
		return 0, 0
	}

	mean = h.Mean()

	var sumSq float64

	for v, n := range h {
		diff := float64(v) - mean
		sumSq += diff * diff * float64(max(n, 0))
	}

	return mean, math.Sqrt(sumSq / float64(count))
}

// Percentile returns the nearest-rank p-th percentile: the smallest value v
// such that at least a share p of the observations are <= v. p is clamped
// to [0, 1]. Returns 0 for an empty histogram.
func (h Histogram) Percentile(p float64) int {
	count := h.Count()
	if count == 0 {
		return 0
	}

	rank := max(int(math.Ceil(Clamp(p, 0, 1)*float64(count))), 1)
	seen := 0

	for v, n := range h {
		seen += max(n, 0)
		if seen >= rank {
			return v
		}
	}

	return len(h) - 1
}

// Median returns the 50th percentile.
func (h Histogram) Median() int {
	return h.Percentile(PercentileMedian)
}

// Max returns the largest observed value, or 0 for an empty histogram.
func (h Histogram) Max() int {
	for v := len(h) - 1; v >= 0; v-- {
		if h[v] > 0 {
			return v
		}
	}

	return 0
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}
