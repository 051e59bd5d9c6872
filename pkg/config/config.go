// Package config loads the yggbench configuration from defaults, an optional
// YAML file and YGG_ environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/wbtree"
	"github.com/Sumatoshi-tech/ygg/pkg/workload"
)

// Sentinel validation errors.
var (
	ErrInvalidKeys         = errors.New("bench.keys must be positive")
	ErrInvalidOperations   = errors.New("invalid operation counts")
	ErrInvalidParallelism  = errors.New("bench.parallelism must be positive")
	ErrInvalidStrategy     = errors.New("invalid strategy")
	ErrInvalidRange        = errors.New("workload.min must be below workload.max")
	ErrInvalidDistribution = errors.New("invalid distribution")
	ErrInvalidWeights      = errors.New("invalid weight-balance parameters")
	ErrInvalidFormat       = errors.New("invalid output format")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidSampleRatio  = errors.New("telemetry.sample_ratio must be within [0, 1]")
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Default configuration values.
const (
	defaultKeys        = 100_000
	defaultLookups     = 100_000
	defaultRemoves     = 50_000
	defaultParallelism = 4
	defaultSeed        = 42
	defaultMin         = 0
	defaultMax         = 1 << 30
	envPrefix          = "YGG"
	configName         = "yggbench"
)

// Config holds the whole yggbench configuration.
type Config struct {
	Bench     BenchConfig     `mapstructure:"bench"`
	Workload  WorkloadConfig  `mapstructure:"workload"`
	Zip       ZipConfig       `mapstructure:"zip"`
	WB        WBConfig        `mapstructure:"wb"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// BenchConfig selects what is measured.
type BenchConfig struct {
	// Strategies to compare, by name.
	Strategies []string `mapstructure:"strategies"`
	// Keys is the number of insertions.
	Keys int `mapstructure:"keys"`
	// Lookups is the number of finds after the insertions.
	Lookups int `mapstructure:"lookups"`
	// Removes is the number of inserted keys removed at the end.
	Removes     int           `mapstructure:"removes"`
	Parallelism int           `mapstructure:"parallelism"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Multiple    bool          `mapstructure:"multiple"`
	// Trace, when set, replays this trace file instead of generating a workload.
	Trace string `mapstructure:"trace"`
}

// WorkloadConfig describes the key generator.
type WorkloadConfig struct {
	Distribution      string  `mapstructure:"distribution"`
	Seed              uint64  `mapstructure:"seed"`
	Min               int     `mapstructure:"min"`
	Max               int     `mapstructure:"max"`
	ZipfExponent      float64 `mapstructure:"zipf_exponent"`
	SkewN             int     `mapstructure:"skew_n"`
	SkewChangeFreq    int     `mapstructure:"skew_change_freq"`
	SkewPartitions    int     `mapstructure:"skew_partitions"`
	SkewPartitionSize float64 `mapstructure:"skew_partition_size"`
}

// Params converts the distribution settings for workload.New.
func (w WorkloadConfig) Params() workload.Params {
	return workload.Params{
		ZipfExponent:      w.ZipfExponent,
		SkewN:             w.SkewN,
		SkewChangeFreq:    w.SkewChangeFreq,
		SkewPartitions:    w.SkewPartitions,
		SkewPartitionSize: w.SkewPartitionSize,
	}
}

// ZipConfig tunes zip trees.
type ZipConfig struct {
	Seed    uint64 `mapstructure:"seed"`
	MaxRank uint64 `mapstructure:"max_rank"`
}

// WBConfig overrides the weight-balance parameters. All zero keeps the
// defaults.
type WBConfig struct {
	DeltaNum uint32 `mapstructure:"delta_num"`
	DeltaDen uint32 `mapstructure:"delta_den"`
	GammaNum uint32 `mapstructure:"gamma_num"`
	GammaDen uint32 `mapstructure:"gamma_den"`
}

// Params converts the settings for wbtree.
func (w WBConfig) Params() wbtree.Params {
	return wbtree.Params{DeltaNum: w.DeltaNum, DeltaDen: w.DeltaDen, GammaNum: w.GammaNum, GammaDen: w.GammaDen}
}

// OutputConfig selects the report renderings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	// Plot is the path of the HTML depth histogram. Empty disables it.
	Plot string `mapstructure:"plot"`
	// Metrics is the path of the Prometheus textfile. Empty disables it.
	Metrics string `mapstructure:"metrics"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds the OpenTelemetry export settings.
type TelemetryConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Headers     string  `mapstructure:"headers"`
	Insecure    bool    `mapstructure:"insecure"`
	Environment string  `mapstructure:"environment"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
	Verbose     bool    `mapstructure:"verbose"`
}

// LoadConfig loads the configuration. An empty configPath searches for
// yggbench.yaml in the working directory and in $HOME/.config/ygg; a missing
// file is not an error then. An explicit path must exist.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/ygg")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	readErr := v.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var cfg Config

	err := v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	kinds := strategy.Kinds()
	names := make([]string, len(kinds))

	for i, k := range kinds {
		names[i] = string(k)
	}

	v.SetDefault("bench.strategies", names)
	v.SetDefault("bench.keys", defaultKeys)
	v.SetDefault("bench.lookups", defaultLookups)
	v.SetDefault("bench.removes", defaultRemoves)
	v.SetDefault("bench.parallelism", defaultParallelism)
	v.SetDefault("bench.timeout", "10m")
	v.SetDefault("bench.multiple", false)
	v.SetDefault("bench.trace", "")

	v.SetDefault("workload.distribution", workload.NameUniform)
	v.SetDefault("workload.seed", uint64(defaultSeed))
	v.SetDefault("workload.min", defaultMin)
	v.SetDefault("workload.max", defaultMax)
	v.SetDefault("workload.zipf_exponent", workload.DefaultZipfExponent)
	v.SetDefault("workload.skew_n", workload.DefaultSkewN)
	v.SetDefault("workload.skew_change_freq", workload.DefaultSkewChangeFreq)
	v.SetDefault("workload.skew_partitions", workload.DefaultSkewPartitions)
	v.SetDefault("workload.skew_partition_size", workload.DefaultSkewPartitionSize)

	v.SetDefault("zip.seed", uint64(0))
	v.SetDefault("zip.max_rank", uint64(0))

	v.SetDefault("wb.delta_num", 0)
	v.SetDefault("wb.delta_den", 0)
	v.SetDefault("wb.gamma_num", 0)
	v.SetDefault("wb.gamma_den", 0)

	v.SetDefault("output.format", FormatTable)
	v.SetDefault("output.plot", "")
	v.SetDefault("output.metrics", "")
	v.SetDefault("output.no_color", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)

	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.headers", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.environment", "")
	v.SetDefault("telemetry.sample_ratio", 0.0)
	v.SetDefault("telemetry.verbose", false)
}

// Validate checks the configuration. CLI flag overrides are validated again
// through it.
func (c *Config) Validate() error {
	if c.Bench.Keys <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidKeys, c.Bench.Keys)
	}

	if c.Bench.Lookups < 0 || c.Bench.Removes < 0 || c.Bench.Removes > c.Bench.Keys {
		return fmt.Errorf("%w: lookups %d, removes %d of %d keys",
			ErrInvalidOperations, c.Bench.Lookups, c.Bench.Removes, c.Bench.Keys)
	}

	if c.Bench.Parallelism <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidParallelism, c.Bench.Parallelism)
	}

	if len(c.Bench.Strategies) == 0 {
		return fmt.Errorf("%w: none selected", ErrInvalidStrategy)
	}

	for _, name := range c.Bench.Strategies {
		_, err := strategy.Parse(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidStrategy, err)
		}
	}

	if c.Workload.Min >= c.Workload.Max {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, c.Workload.Min, c.Workload.Max)
	}

	if !slices.Contains(workload.Names(), strings.ToLower(c.Workload.Distribution)) {
		return fmt.Errorf("%w: %q", ErrInvalidDistribution, c.Workload.Distribution)
	}

	if c.WB != (WBConfig{}) {
		err := c.WB.Params().Validate()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidWeights, err)
		}
	}

	switch c.Output.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRatio, c.Telemetry.SampleRatio)
	}

	return nil
}
