// Package metrics provides self-contained, reusable metrics computed over
// benchmark results.
//
// Each metric is a computation unit that:
//   - Declares its input type
//   - Computes a typed output
//   - Provides metadata for documentation and serialization
package metrics

import "slices"

// Metric is the core interface that all metrics must implement.
type Metric[In, Out any] interface {
	// Name returns the machine-readable identifier (snake_case, unique).
	Name() string

	// DisplayName returns a human-readable name for reports.
	DisplayName() string

	// Description documents what the metric measures and how to read it.
	Description() string

	// Type returns the metric category ("shape", "cost" or "risk").
	Type() string

	// Compute calculates the metric value from input data.
	Compute(input In) Out
}

// RiskLevel represents severity levels.
type RiskLevel string

// Risk level constants.
const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// RiskResult is the output of a risk metric.
type RiskResult struct {
	Value     any       `json:"value" yaml:"value"`
	Level     RiskLevel `json:"risk_level" yaml:"risk_level"`
	Threshold float64   `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
}

// MetricMeta holds the common metadata for a metric.
// Embed this in metric implementations to satisfy metadata methods.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

// Name returns the machine-readable identifier.
func (m MetricMeta) Name() string { return m.MetricName }

// DisplayName returns a human-readable name for reports.
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }

// Description returns detailed documentation.
func (m MetricMeta) Description() string { return m.MetricDescription }

// Type returns the metric category.
func (m MetricMeta) Type() string { return m.MetricType }

type entry struct {
	metric  any
	compute func(input any) (any, bool)
}

// Registry holds a collection of metrics that can be computed together.
type Registry struct {
	metrics map[string]entry
}

// NewRegistry creates an empty metric registry.
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]entry)}
}

// Register adds a metric to the registry, replacing one with the same name.
func Register[In, Out any](r *Registry, m Metric[In, Out]) {
	r.metrics[m.Name()] = entry{
		metric: m,
		compute: func(input any) (any, bool) {
			in, ok := input.(In)
			if !ok {
				return nil, false
			}

			return m.Compute(in), true
		},
	}
}

// Get retrieves a metric by name.
func (r *Registry) Get(name string) (any, bool) {
	e, ok := r.metrics[name]
	if !ok {
		return nil, false
	}

	return e.metric, true
}

// Names returns all registered metric names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.metrics))

	for name := range r.metrics {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Compute evaluates the metric called name. It reports false when the metric
// is unknown or does not accept the input type.
func (r *Registry) Compute(name string, input any) (any, bool) {
	e, ok := r.metrics[name]
	if !ok {
		return nil, false
	}

	return e.compute(input)
}

// ComputeAll evaluates every metric accepting the input type.
func (r *Registry) ComputeAll(input any) map[string]any {
	out := make(map[string]any, len(r.metrics))

	for name, e := range r.metrics {
		if v, ok := e.compute(input); ok {
			out[name] = v
		}
	}

	return out
}
