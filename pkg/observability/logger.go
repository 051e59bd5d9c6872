package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID  = "trace_id"
	attrSpanID   = "span_id"
	attrStrategy = "strategy"
	attrService  = "service"
	attrEnv      = "env"
	attrMode     = "mode"
)

type strategyKey struct{}

// WithStrategy returns a context whose log records carry the given strategy
// name. The benchmark runner sets it once per replayed tree.
func WithStrategy(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, strategyKey{}, name)
}

// StrategyFrom returns the strategy name set by WithStrategy, if any.
func StrategyFrom(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(strategyKey{}).(string)

	return name, ok && name != ""
}

// TracingHandler is an [slog.Handler] that stamps records with the active
// span and the strategy carried by the context. Process attributes
// (service, mode and env) are bound once at construction so they stay at
// the top level under WithGroup.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler wraps next. An empty env is omitted.
func NewTracingHandler(next slog.Handler, service, env string, mode AppMode) *TracingHandler {
	process := []slog.Attr{slog.String(attrService, service), slog.String(attrMode, string(mode))}
	if env != "" {
		process = append(process, slog.String(attrEnv, env))
	}

	return &TracingHandler{next: next.WithAttrs(process)}
}

func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.next.Enabled(ctx, level)
}

// Handle adds the context attributes, if any, then delegates.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(slog.String(attrTraceID, sc.TraceID().String()), slog.String(attrSpanID, sc.SpanID().String()))
	}

	if name, ok := StrategyFrom(ctx); ok {
		record.AddAttrs(slog.String(attrStrategy, name))
	}

	if err := th.next.Handle(ctx, record); err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: th.next.WithAttrs(attrs)}
}

func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: th.next.WithGroup(name)}
}
