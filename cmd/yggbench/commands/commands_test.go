package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/config"
)

// execute runs yggbench with args and an empty config file, returning stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "yggbench.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("logging:\n  level: error\n"), 0o600))

	var out bytes.Buffer

	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

var smallRun = []string{"run", "-n", "300", "--lookups", "100", "--removes", "50", "--max", "1000"}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "yggbench "))
}

func TestRunTable(t *testing.T) {
	t.Parallel()

	out, err := execute(t, append(smallRun, "-s", "rb,plain", "--no-color")...)
	require.NoError(t, err)

	assert.Contains(t, out, "uniform (seed 42, 450 operations)")
	assert.Contains(t, out, "rb")
	assert.Contains(t, out, "plain")
	assert.NotContains(t, out, "\x1b[")
}

func TestRunJSON(t *testing.T) {
	t.Parallel()

	out, err := execute(t, append(smallRun, "-f", "json", "--distribution", "zipf", "--seed", "9")...)
	require.NoError(t, err)
	require.NoError(t, bench.ValidateJSON([]byte(out)))

	var report bench.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "zipf", report.Source)
	assert.Equal(t, uint64(9), report.Seed)
	assert.Len(t, report.Results, 5)

	for _, res := range report.Results {
		assert.True(t, res.Valid, res.Strategy)
	}
}

func TestRunWritesPlotAndMetrics(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plot := filepath.Join(dir, "depth.html")
	prom := filepath.Join(dir, "ygg.prom")

	_, err := execute(t, append(smallRun, "-s", "wb", "-f", "yaml", "--plot", plot, "--metrics", prom)...)
	require.NoError(t, err)

	html, err := os.ReadFile(plot)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Node depth distribution")

	metrics, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "ygg_bench_operations_total")
	assert.Contains(t, string(metrics), `strategy="wb"`)
}

func TestRunRejectsInvalidFlags(t *testing.T) {
	t.Parallel()

	_, err := execute(t, append(smallRun, "-s", "avl")...)
	require.ErrorIs(t, err, config.ErrInvalidStrategy)

	_, err = execute(t, "run", "-n", "10", "--removes", "20")
	require.ErrorIs(t, err, config.ErrInvalidOperations)

	_, err = execute(t, append(smallRun, "-f", "xml")...)
	require.ErrorIs(t, err, config.ErrInvalidFormat)
}

func TestGenThenReplay(t *testing.T) {
	t.Parallel()

	trace := filepath.Join(t.TempDir(), "ops.ygg")

	out, err := execute(t, "gen", "-o", trace, "-n", "100", "--lookups", "10", "--removes", "10", "--max", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote ")
	assert.Contains(t, out, trace)

	raw := filepath.Join(t.TempDir(), "raw.ygg")
	out, err = execute(t, "gen", "--raw", "-o", raw, "-n", "100", "--lookups", "10", "--removes", "10", "--max", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 120 operations")

	out, err = execute(t, "run", "--trace", trace, "-f", "json", "-s", "rb,zip-hash")
	require.NoError(t, err)

	var report bench.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, "ops.ygg", report.Source)
	assert.Less(t, report.Operations, 120)
	require.Len(t, report.Results, 2)
	assert.Zero(t, report.Results[0].Counts.Rejected)
	assert.Zero(t, report.Results[0].Counts.Missing)
}

func TestGenRequiresOutput(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "gen", "-n", "10")
	require.Error(t, err)
}

func TestRunMissingTrace(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "run", "--trace", filepath.Join(t.TempDir(), "absent.ygg"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDotCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "dot", "--nodes", "10")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph \"ygg\" {\n"))
	assert.Contains(t, out, "fillcolor=black")
	assert.True(t, strings.HasSuffix(out, "}\n"))

	path := filepath.Join(t.TempDir(), "tree.dot")
	_, err = execute(t, "dot", "--strategy", "wb", "--nodes", "10", "--name", "wb", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph \"wb\"")
	assert.Contains(t, string(data), "n=")
}

func TestShapeCommand(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "shape", "--nodes", "80")
	require.NoError(t, err)
	assert.Contains(t, out, "zip-hash: identical shapes")

	out, err = execute(t, "shape", "--strategy", "plain", "--nodes", "30")
	require.ErrorIs(t, err, ErrShapeDiffers)
	assert.Contains(t, out, "plain: shapes differ")
	assert.Contains(t, out, "\n-")
	assert.Contains(t, out, "\n+")
}

func TestApplyOverrides(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addPlanFlags(fs)
	addWorkloadFlags(fs)

	require.NoError(t, fs.Parse([]string{"-n", "7", "--strategies", "wb,zip", "--seed", "3", "--multiple"}))

	cfg := &config.Config{Bench: config.BenchConfig{Keys: 1, Lookups: 2}}
	require.NoError(t, applyOverrides(fs, cfg))

	assert.Equal(t, 7, cfg.Bench.Keys)
	assert.Equal(t, 2, cfg.Bench.Lookups)
	assert.Equal(t, []string{"wb", "zip"}, cfg.Bench.Strategies)
	assert.Equal(t, uint64(3), cfg.Workload.Seed)
	assert.True(t, cfg.Bench.Multiple)
}

func TestParseStrategies(t *testing.T) {
	t.Parallel()

	kinds, err := parseStrategies([]string{"rb", " zip-hash "})
	require.NoError(t, err)
	assert.Len(t, kinds, 2)

	_, err = parseStrategies([]string{"avl"})
	require.Error(t, err)
}
