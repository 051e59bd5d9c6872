// Package commands implements the yggbench subcommands.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/config"
	"github.com/Sumatoshi-tech/ygg/pkg/observability"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/version"
)

const flagConfig = "config"

// NewRootCommand builds the yggbench command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "yggbench",
		Short: "Benchmark and inspect ygg balanced trees",
		Long: `yggbench replays operation traces against red-black, weight-balanced,
zip and unbalanced trees and compares the work and the resulting shapes.

Commands:
  run       Replay a generated workload or a trace on every strategy
  gen       Write a workload as a compact trace file
  dot       Render a tree as a Graphviz digraph
  shape     Check that a tree shape does not depend on insertion order
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String(flagConfig, "", "config file (default: ./yggbench.yaml or $HOME/.config/ygg/yggbench.yaml)")

	root.AddCommand(newRunCommand())
	root.AddCommand(newGenCommand())
	root.AddCommand(newDotCommand())
	root.AddCommand(newShapeCommand())
	root.AddCommand(newVersionCommand())

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "yggbench %s\n", version.Get())

			return err
		},
	}
}

// addWorkloadFlags registers the flags shared by every command that generates
// keys. Their defaults mirror the configuration defaults; only flags set on
// the command line override the configuration.
func addWorkloadFlags(fs *pflag.FlagSet) {
	fs.StringP("distribution", "d", "uniform", "key distribution: uniform, zipf, skewed")
	fs.Uint64("seed", 42, "workload seed")
	fs.Uint64("zip-seed", 0, "seed of random zip ranks (0 = built-in seed)")
	fs.Bool("multiple", false, "allow equal keys")
	fs.String("trace", "", "replay this trace file instead of generating a workload")
}

func addPlanFlags(fs *pflag.FlagSet) {
	fs.StringSliceP("strategies", "s", nil, "strategies: rb, wb, zip, zip-hash, plain (default all)")
	fs.IntP("keys", "n", 100_000, "number of inserted keys")
	fs.Int("lookups", 100_000, "number of lookups after the inserts")
	fs.Int("removes", 50_000, "number of inserted keys removed at the end")
	fs.Int("min", 0, "smallest key")
	fs.Int("max", 1<<30, "key upper bound (exclusive)")
}

// loadConfig reads the configuration file and applies the flags set on the
// command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	err = applyOverrides(cmd.Flags(), cfg)
	if err != nil {
		return nil, err
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}

	return cfg, nil
}

//nolint:cyclop,gocyclo // one case per flag.
func applyOverrides(fs *pflag.FlagSet, cfg *config.Config) error {
	var errs []error

	get := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	fs.Visit(func(f *pflag.Flag) {
		var err error

		switch f.Name {
		case "strategies":
			cfg.Bench.Strategies, err = fs.GetStringSlice(f.Name)
		case "keys":
			cfg.Bench.Keys, err = fs.GetInt(f.Name)
		case "lookups":
			cfg.Bench.Lookups, err = fs.GetInt(f.Name)
		case "removes":
			cfg.Bench.Removes, err = fs.GetInt(f.Name)
		case "min":
			cfg.Workload.Min, err = fs.GetInt(f.Name)
		case "max":
			cfg.Workload.Max, err = fs.GetInt(f.Name)
		case "parallelism":
			cfg.Bench.Parallelism, err = fs.GetInt(f.Name)
		case "timeout":
			cfg.Bench.Timeout, err = fs.GetDuration(f.Name)
		case "multiple":
			cfg.Bench.Multiple, err = fs.GetBool(f.Name)
		case "trace":
			cfg.Bench.Trace, err = fs.GetString(f.Name)
		case "distribution":
			cfg.Workload.Distribution, err = fs.GetString(f.Name)
		case "seed":
			cfg.Workload.Seed, err = fs.GetUint64(f.Name)
		case "zip-seed":
			cfg.Zip.Seed, err = fs.GetUint64(f.Name)
		case "format":
			cfg.Output.Format, err = fs.GetString(f.Name)
		case "plot":
			cfg.Output.Plot, err = fs.GetString(f.Name)
		case "metrics":
			cfg.Output.Metrics, err = fs.GetString(f.Name)
		case "no-color":
			cfg.Output.NoColor, err = fs.GetBool(f.Name)
		case "log-level":
			cfg.Logging.Level, err = fs.GetString(f.Name)
		}

		get(err)
	})

	return errors.Join(errs...)
}

func parseStrategies(names []string) ([]strategy.Kind, error) {
	kinds := make([]strategy.Kind, 0, len(names))

	for _, name := range names {
		kind, err := strategy.Parse(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}

		kinds = append(kinds, kind)
	}

	return kinds, nil
}

func treeConfig(cfg *config.Config) bench.TreeConfig {
	return bench.TreeConfig{
		Multiple: cfg.Bench.Multiple,
		ZipSeed:  cfg.Zip.Seed,
		MaxRank:  cfg.Zip.MaxRank,
		Weights:  cfg.WB.Params(),
	}
}

func initObservability(cfg *config.Config, mode observability.AppMode, readers ...sdkmetric.Reader) (observability.Providers, error) {
	ocfg := observability.DefaultConfig()
	ocfg.ServiceVersion = version.Get().Version
	ocfg.Mode = mode
	ocfg.Environment = cfg.Telemetry.Environment
	ocfg.OTLPEndpoint = cfg.Telemetry.Endpoint
	ocfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Telemetry.Headers)
	ocfg.OTLPInsecure = cfg.Telemetry.Insecure
	ocfg.SampleRatio = cfg.Telemetry.SampleRatio
	ocfg.TraceVerbose = cfg.Telemetry.Verbose
	ocfg.LogJSON = cfg.Logging.JSON

	if level, ok := observability.ParseLevel(cfg.Logging.Level); ok {
		ocfg.LogLevel = level
	}

	return observability.Init(ocfg, readers...)
}
