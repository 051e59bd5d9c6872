package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOperations  = "ygg.bench.operations"
	metricRunDuration = "ygg.bench.run.duration"
	metricRotations   = "ygg.tree.rotations"
	metricSwaps       = "ygg.tree.swaps"
	metricUpdates     = "ygg.tree.aggregate.updates"
	metricHeight      = "ygg.tree.height"
	metricFailures    = "ygg.tree.invariant.failures"

	attrStrategy = "strategy"
	attrOp       = "op"
)

// durationBucketBoundaries covers 1ms to 10 minutes of replay time.
var durationBucketBoundaries = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 600}

// RunSample is the outcome of replaying a workload on one strategy.
type RunSample struct {
	Strategy  string
	Inserts   int64
	Removes   int64
	Finds     int64
	Duration  time.Duration
	Rotations uint64
	Swaps     uint64
	Updates   uint64
	Height    int64
	Valid     bool
}

// BenchMetrics holds the OTel instruments describing benchmark runs.
type BenchMetrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
	rotations  metric.Int64Counter
	swaps      metric.Int64Counter
	updates    metric.Int64Counter
	height     metric.Int64Gauge
	failures   metric.Int64Counter
}

// NewBenchMetrics creates the benchmark instruments from mt.
func NewBenchMetrics(mt metric.Meter) (*BenchMetrics, error) {
	var (
		bm  BenchMetrics
		err error
	)

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&bm.operations, metricOperations, "Tree operations replayed", "{operation}"},
		{&bm.rotations, metricRotations, "Single rotations performed", "{rotation}"},
		{&bm.swaps, metricSwaps, "Successor swaps performed by removals", "{swap}"},
		{&bm.updates, metricUpdates, "Aggregate recomputations", "{update}"},
		{&bm.failures, metricFailures, "Runs whose final tree failed the invariant check", "{run}"},
	}

	for _, c := range counters {
		*c.dst, err = mt.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", c.name, err)
		}
	}

	bm.duration, err = mt.Float64Histogram(metricRunDuration,
		metric.WithDescription("Replay duration per strategy"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRunDuration, err)
	}

	bm.height, err = mt.Int64Gauge(metricHeight,
		metric.WithDescription("Height of the tree after the replay"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricHeight, err)
	}

	return &bm, nil
}

// RecordRun records one strategy run.
func (bm *BenchMetrics) RecordRun(ctx context.Context, s RunSample) {
	strategy := attribute.String(attrStrategy, s.Strategy)
	attrs := metric.WithAttributes(strategy)

	for op, n := range map[string]int64{"insert": s.Inserts, "remove": s.Removes, "find": s.Finds} {
		if n > 0 {
			bm.operations.Add(ctx, n, metric.WithAttributes(strategy, attribute.String(attrOp, op)))
		}
	}

	bm.duration.Record(ctx, s.Duration.Seconds(), attrs)
	bm.rotations.Add(ctx, toInt64(s.Rotations), attrs)
	bm.swaps.Add(ctx, toInt64(s.Swaps), attrs)
	bm.updates.Add(ctx, toInt64(s.Updates), attrs)
	bm.height.Record(ctx, s.Height, attrs)

	if !s.Valid {
		bm.failures.Add(ctx, 1, attrs)
	}
}

func toInt64(v uint64) int64 {
	const maxInt64 = 1<<63 - 1

	if v > maxInt64 {
		return maxInt64
	}

	return int64(v)
}
