package bench

import (
	"time"

	"github.com/Sumatoshi-tech/ygg/pkg/alg/stats"
	"github.com/Sumatoshi-tech/ygg/pkg/metrics"
	"github.com/Sumatoshi-tech/ygg/pkg/observability"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
)

// Result describes one strategy after replaying the trace.
type Result struct {
	Strategy string        `json:"strategy"    yaml:"strategy"`
	Counts   opseq.Counts  `json:"counts"      yaml:"counts"`
	Duration time.Duration `json:"duration_ns" yaml:"duration_ns"`
	Size     int           `json:"size"        yaml:"size"`
	Height   int           `json:"height"      yaml:"height"`
	// Depths[d] is the number of nodes d edges below the root.
	Depths    []int  `json:"depths"    yaml:"depths,flow"`
	Rotations uint64 `json:"rotations" yaml:"rotations"`
	Swaps     uint64 `json:"swaps"     yaml:"swaps"`
	Updates   uint64 `json:"updates"   yaml:"updates"`

	AverageDepth   float64           `json:"average_depth"    yaml:"average_depth"`
	DepthStdDev    float64           `json:"depth_stddev"     yaml:"depth_stddev"`
	MedianDepth    int               `json:"median_depth"     yaml:"median_depth"`
	P95Depth       int               `json:"p95_depth"        yaml:"p95_depth"`
	HeightRatio    float64           `json:"height_ratio"     yaml:"height_ratio"`
	RotationsPerOp float64           `json:"rotations_per_op" yaml:"rotations_per_op"`
	Balance        metrics.RiskLevel `json:"balance"          yaml:"balance"`

	Valid bool   `json:"valid"           yaml:"valid"`
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NsPerOp returns the mean replay time per operation.
func (r Result) NsPerOp() float64 {
	total := r.Counts.Total()
	if total == 0 {
		return 0
	}

	return float64(r.Duration.Nanoseconds()) / float64(total)
}

func newResult(tree *Tree, counts opseq.Counts, elapsed time.Duration, registry *metrics.Registry) Result {
	counters := tree.Stats()
	depths := depthHistogram(tree)

	res := Result{
		Strategy:  tree.Strategy(),
		Counts:    counts,
		Duration:  elapsed,
		Size:      tree.Len(),
		Height:    len(depths),
		Depths:    depths,
		Rotations: counters.Rotations,
		Swaps:     counters.Swaps,
		Updates:   counters.Updates,
		Valid:     true,
	}

	hist := stats.Histogram(depths)
	_, res.DepthStdDev = hist.MeanStdDev()
	res.MedianDepth = hist.Median()
	res.P95Depth = hist.Percentile(stats.PercentileP95)

	shape := metrics.Shape{
		Size:       res.Size,
		Height:     res.Height,
		Depths:     depths,
		Operations: counts.Total(),
		Rotations:  counters.Rotations,
		Swaps:      counters.Swaps,
		Updates:    counters.Updates,
	}

	for name, v := range registry.ComputeAll(shape) {
		switch name {
		case metrics.NameAverageDepth:
			res.AverageDepth, _ = v.(float64)
		case metrics.NameHeightRatio:
			res.HeightRatio, _ = v.(float64)
		case metrics.NameRotationsPerOp:
			res.RotationsPerOp, _ = v.(float64)
		case metrics.NameBalanceRisk:
			if risk, ok := v.(metrics.RiskResult); ok {
				res.Balance = risk.Level
			}
		}
	}

	err := tree.Check()
	if err != nil {
		res.Valid = false
		res.Error = err.Error()
	}

	return res
}

func (r Result) sample() observability.RunSample {
	return observability.RunSample{
		Strategy:  r.Strategy,
		Inserts:   int64(r.Counts.Inserted),
		Removes:   int64(r.Counts.Removed),
		Finds:     int64(r.Counts.Hits + r.Counts.Misses),
		Duration:  r.Duration,
		Rotations: r.Rotations,
		Swaps:     r.Swaps,
		Updates:   r.Updates,
		Height:    int64(r.Height),
		Valid:     r.Valid,
	}
}
