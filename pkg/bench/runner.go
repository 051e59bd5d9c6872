package bench

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/metrics"
	"github.com/Sumatoshi-tech/ygg/pkg/observability"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
)

// DefaultBatchSize is the number of operations replayed per batch span.
const DefaultBatchSize = 16384

// Runner replays a trace against one tree per strategy. Strategies run
// concurrently, each on its own arena.
type Runner struct {
	Strategies []strategy.Kind
	Tree       TreeConfig
	// Parallelism caps the strategies replayed at once. Zero means one.
	Parallelism int
	// BatchSize is the number of operations per batch span. Zero selects
	// DefaultBatchSize.
	BatchSize int
	// Tracer, Metrics and Logger are optional.
	Tracer  trace.Tracer
	Metrics *observability.BenchMetrics
	Logger  *slog.Logger
}

// Run replays entries on every strategy and returns the results in strategy
// order. The first failing strategy cancels the others.
func (r *Runner) Run(ctx context.Context, entries []opseq.Entry) ([]Result, error) {
	if len(r.Strategies) == 0 {
		return nil, fmt.Errorf("%w: none selected", strategy.ErrUnknown)
	}

	ctx, span := r.tracer().Start(ctx, observability.SpanRun, trace.WithAttributes(
		attribute.Int("ygg.operations", len(entries)),
		attribute.Int("ygg.strategies", len(r.Strategies)),
	))
	defer span.End()

	results := make([]Result, len(r.Strategies))
	registry := metrics.ShapeRegistry()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallelism, 1))

	for i, kind := range r.Strategies {
		g.Go(func() error {
			res, err := r.runOne(gctx, kind, entries, registry)
			if err != nil {
				return fmt.Errorf("strategy %s: %w", kind, err)
			}

			results[i] = res

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, err
	}

	return results, nil
}

func (r *Runner) runOne(ctx context.Context, kind strategy.Kind, entries []opseq.Entry, registry *metrics.Registry) (Result, error) {
	tracer := r.tracer()

	ctx, span := tracer.Start(observability.WithStrategy(ctx, string(kind)), observability.SpanStrategy,
		trace.WithAttributes(attribute.String("strategy", string(kind))))
	defer span.End()

	tree, err := NewTree(kind, arena.New[Record](countInserts(entries)), r.Tree, nil)
	if err != nil {
		return Result{}, err
	}

	set := newTreeSet(tree)
	start := time.Now()

	var counts opseq.Counts

	for batch := range slices.Chunk(entries, r.batchSize()) {
		bctx, bspan := tracer.Start(ctx, observability.SpanBatch)
		c, replayErr := opseq.Replay(bctx, set, batch)
		bspan.End()

		counts = counts.Add(c)

		if replayErr != nil {
			span.RecordError(replayErr)
			span.SetStatus(codes.Error, replayErr.Error())

			return Result{}, replayErr
		}
	}

	res := newResult(tree, counts, time.Since(start), registry)

	span.SetAttributes(
		attribute.Int("tree.size", res.Size),
		attribute.Int("tree.height", res.Height),
		attribute.Bool("tree.valid", res.Valid),
	)

	if !res.Valid {
		span.SetAttributes(attribute.String("error.type", "invariant"))
	}

	if r.Metrics != nil {
		r.Metrics.RecordRun(ctx, res.sample())
	}

	if !res.Valid {
		r.logger().WarnContext(ctx, "invariant check failed", "error", res.Error)
	}

	r.logger().DebugContext(ctx, "strategy replayed",
		"operations", counts.Total(),
		"duration", res.Duration,
		"height", res.Height,
		"rotations", res.Rotations,
		"valid", res.Valid,
	)

	return res, nil
}

func (r *Runner) tracer() trace.Tracer {
	if r.Tracer != nil {
		return r.Tracer
	}

	return noop.NewTracerProvider().Tracer("ygg")
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.New(slog.DiscardHandler)
}

func (r *Runner) batchSize() int {
	if r.BatchSize > 0 {
		return r.BatchSize
	}

	return DefaultBatchSize
}

func countInserts(entries []opseq.Entry) int {
	n := 0

	for _, e := range entries {
		if e.Op == opseq.OpInsert {
			n++
		}
	}

	return n
}

// depthHistogram counts the nodes at each depth without recursion, so
// degenerate trees of any height are safe to measure.
func depthHistogram(tree *Tree) []int {
	depths := make([]int, 0)

	type frame struct {
		node  bst.Index
		depth int
	}

	if tree.Root() == bst.Nil {
		return depths
	}

	stack := []frame{{tree.Root(), 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth == len(depths) {
			depths = append(depths, 0)
		}

		depths[f.depth]++

		if l := tree.Left(f.node); l != bst.Nil {
			stack = append(stack, frame{l, f.depth + 1})
		}

		if rt := tree.Right(f.node); rt != bst.Nil {
			stack = append(stack, frame{rt, f.depth + 1})
		}
	}

	return depths
}
