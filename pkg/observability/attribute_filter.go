package observability

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// exportPolicy decides which span attribute keys may leave the process.
// Local paths of trace files and anything describing the user or the host
// are dropped; so is every key outside the benchmark namespaces.
var exportPolicy = keyPolicy{
	allow: []string{"ygg.", "bench.", "strategy", "workload.", "tree.", "trace.", "error"},
	deny:  []string{"user.", "host.", "email", "trace.path"},
}

// keyPolicy allows a key when it starts with an allow prefix and with no
// deny prefix.
type keyPolicy struct {
	allow []string
	deny  []string
}

func (p keyPolicy) permits(key string) bool {
	for _, prefix := range p.deny {
		if strings.HasPrefix(key, prefix) {
			return false
		}
	}

	for _, prefix := range p.allow {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}

	return false
}

// attributeFilter is a SpanProcessor that applies exportPolicy to finished
// spans before forwarding them. Verdicts are memoized per key; a dropped key
// is logged once.
type attributeFilter struct {
	delegate sdktrace.SpanProcessor
	logger   *slog.Logger
	policy   keyPolicy
	verdicts sync.Map // attribute.Key -> bool
}

// NewAttributeFilter returns a SpanProcessor that filters span attributes.
// When logger is non-nil, the first occurrence of every dropped key is
// logged as a warning.
func NewAttributeFilter(delegate sdktrace.SpanProcessor, logger *slog.Logger) sdktrace.SpanProcessor {
	return &attributeFilter{delegate: delegate, logger: logger, policy: exportPolicy}
}

func (f *attributeFilter) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	f.delegate.OnStart(parent, s)
}

func (f *attributeFilter) OnEnd(s sdktrace.ReadOnlySpan) {
	f.delegate.OnEnd(&filteredSpan{ReadOnlySpan: s, filter: f})
}

func (f *attributeFilter) Shutdown(ctx context.Context) error {
	err := f.delegate.Shutdown(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter shutdown: %w", err)
	}

	return nil
}

func (f *attributeFilter) ForceFlush(ctx context.Context) error {
	err := f.delegate.ForceFlush(ctx)
	if err != nil {
		return fmt.Errorf("attribute filter flush: %w", err)
	}

	return nil
}

func (f *attributeFilter) keep(key attribute.Key) bool {
	if v, ok := f.verdicts.Load(key); ok {
		return v.(bool) //nolint:errcheck,forcetypeassert // only bools are stored.
	}

	ok := f.policy.permits(string(key))

	if _, seen := f.verdicts.LoadOrStore(key, ok); !seen && !ok && f.logger != nil {
		f.logger.Warn("span attribute dropped before export", "key", string(key))
	}

	return ok
}

// filteredSpan exposes only the attributes the filter keeps.
type filteredSpan struct {
	sdktrace.ReadOnlySpan

	filter *attributeFilter
}

func (s *filteredSpan) Attributes() []attribute.KeyValue {
	orig := s.ReadOnlySpan.Attributes()
	kept := make([]attribute.KeyValue, 0, len(orig))

	for _, kv := range orig {
		if s.filter.keep(kv.Key) {
			kept = append(kept, kv)
		}
	}

	return kept
}
