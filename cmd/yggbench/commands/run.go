package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/config"
	"github.com/Sumatoshi-tech/ygg/pkg/observability"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/workload"
)

// ErrInvariant is returned by run when a strategy left an invalid tree.
var ErrInvariant = errors.New("invariant check failed")

func newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay a workload on every strategy and compare",
		Long: `Generate a workload (or load a trace with --trace), replay it against a
fresh tree of every selected strategy and report time, rebalancing work and
the final shape. The command fails when a tree does not pass its invariant
check.`,
		Args: cobra.NoArgs,
		RunE: runBench,
	}

	fs := cmd.Flags()
	addPlanFlags(fs)
	addWorkloadFlags(fs)
	fs.IntP("parallelism", "j", 4, "strategies replayed concurrently")
	fs.Duration("timeout", 0, "abort the run after this duration (default from config)")
	fs.StringP("format", "f", config.FormatTable, "output format: table, json, yaml")
	fs.String("plot", "", "write the depth histogram as HTML to this file")
	fs.String("metrics", "", "write Prometheus metrics in text format to this file")
	fs.Bool("no-color", false, "disable colored table output")
	fs.String("log-level", "info", "log level: debug, info, warn, error")

	return cmd
}

func runBench(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	kinds, err := parseStrategies(cfg.Bench.Strategies)
	if err != nil {
		return err
	}

	var (
		readers  []sdkmetric.Reader
		textfile *observability.TextfileExporter
	)

	if cfg.Output.Metrics != "" {
		textfile, err = observability.NewTextfileExporter()
		if err != nil {
			return err
		}

		readers = append(readers, textfile.Reader())
	}

	providers, err := initObservability(cfg, observability.ModeRun, readers...)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	benchMetrics, err := observability.NewBenchMetrics(providers.Meter)
	if err != nil {
		return err
	}

	entries, source, err := loadEntries(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if cfg.Bench.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Bench.Timeout)
		defer cancel()
	}

	providers.Logger.InfoContext(ctx, "benchmark started",
		"source", source, "operations", len(entries), "strategies", cfg.Bench.Strategies)

	runner := &bench.Runner{
		Strategies:  kinds,
		Tree:        treeConfig(cfg),
		Parallelism: cfg.Bench.Parallelism,
		Tracer:      providers.Tracer,
		Metrics:     benchMetrics,
		Logger:      providers.Logger,
	}

	results, err := runner.Run(ctx, entries)
	if err != nil {
		return err
	}

	report := bench.NewReport(source, cfg.Workload.Seed, len(entries), results)

	err = writeReport(cmd.OutOrStdout(), report, cfg)
	if err != nil {
		return err
	}

	if cfg.Output.Plot != "" {
		err = writePlot(cfg.Output.Plot, report)
		if err != nil {
			return err
		}
	}

	if textfile != nil {
		err = textfile.WriteFile(cfg.Output.Metrics)
		if err != nil {
			return err
		}
	}

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: %s", ErrInvariant, strings.Join(failed, ", "))
	}

	return nil
}

// loadEntries returns the operations to replay and a name for their source.
func loadEntries(cfg *config.Config) ([]opseq.Entry, string, error) {
	if cfg.Bench.Trace != "" {
		entries, err := readTrace(cfg.Bench.Trace)
		if err != nil {
			return nil, "", err
		}

		return entries, filepath.Base(cfg.Bench.Trace), nil
	}

	rnd, err := workload.New(cfg.Workload.Distribution, cfg.Workload.Seed, cfg.Workload.Params())
	if err != nil {
		return nil, "", err
	}

	entries, err := bench.Generate(rnd, bench.Plan{
		Keys:    cfg.Bench.Keys,
		Lookups: cfg.Bench.Lookups,
		Removes: cfg.Bench.Removes,
		Min:     cfg.Workload.Min,
		Max:     cfg.Workload.Max,
	})
	if err != nil {
		return nil, "", err
	}

	return entries, rnd.Name(), nil
}

func readTrace(path string) ([]opseq.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()

	entries, err := opseq.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", path, err)
	}

	return entries, nil
}

func writeReport(w io.Writer, report *bench.Report, cfg *config.Config) error {
	switch cfg.Output.Format {
	case config.FormatJSON:
		return report.WriteJSON(w)
	case config.FormatYAML:
		return report.WriteYAML(w)
	default:
		return report.WriteTable(w, !cfg.Output.NoColor && !color.NoColor)
	}
}

func writePlot(path string, report *bench.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return report.WritePlot(f)
}
