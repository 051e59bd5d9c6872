package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// TextfileExporter collects OTel instruments into a private Prometheus
// registry and writes them in the text exposition format, for the node
// exporter textfile collector or for CI artifacts.
type TextfileExporter struct {
	registry *prometheus.Registry
	exporter *promexporter.Exporter
}

// NewTextfileExporter creates an exporter with its own registry. Pass Reader
// to Init or to a MeterProvider so instruments are collected.
func NewTextfileExporter() (*TextfileExporter, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	return &TextfileExporter{registry: registry, exporter: exporter}, nil
}

// Reader returns the metric reader to attach to a MeterProvider.
func (e *TextfileExporter) Reader() sdkmetric.Reader {
	return e.exporter
}

// Gatherer exposes the underlying registry.
func (e *TextfileExporter) Gatherer() prometheus.Gatherer {
	return e.registry
}

// WriteFile writes the current metric values to path atomically.
func (e *TextfileExporter) WriteFile(path string) error {
	err := prometheus.WriteToTextfile(path, e.registry)
	if err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
