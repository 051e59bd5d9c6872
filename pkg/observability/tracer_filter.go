package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

// Span names emitted by the benchmark runner.
const (
	SpanRun      = "ygg.bench.run"
	SpanStrategy = "ygg.bench.strategy"
	SpanBatch    = "ygg.bench.batch"
)

// filteringTracerProvider replaces spans with suppressed names by no-op
// spans. Replay batches are far too numerous to export by default.
type filteringTracerProvider struct {
	embedded.TracerProvider

	delegate trace.TracerProvider
	noop     trace.TracerProvider
	suppress map[string]bool
}

// NewFilteringTracerProvider wraps delegate so that spans named in suppress
// become no-op spans.
func NewFilteringTracerProvider(delegate trace.TracerProvider, suppress ...string) trace.TracerProvider {
	set := make(map[string]bool, len(suppress))
	for _, name := range suppress {
		set[name] = true
	}

	return &filteringTracerProvider{
		delegate: delegate,
		noop:     nooptrace.NewTracerProvider(),
		suppress: set,
	}
}

// Tracer returns a tracer that drops suppressed spans.
func (f *filteringTracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	actual := f.delegate.Tracer(name, opts...)
	if len(f.suppress) == 0 {
		return actual
	}

	return &filteringTracer{
		delegate: actual,
		noop:     f.noop.Tracer(name, opts...),
		suppress: f.suppress,
	}
}

type filteringTracer struct {
	embedded.Tracer

	delegate trace.Tracer
	noop     trace.Tracer
	suppress map[string]bool
}

// Start creates a span, returning a no-op span for suppressed names.
func (f *filteringTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if f.suppress[name] {
		return f.noop.Start(ctx, name, opts...)
	}

	return f.delegate.Start(ctx, name, opts...)
}
