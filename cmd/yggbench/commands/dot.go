package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/config"
	"github.com/Sumatoshi-tech/ygg/pkg/dot"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/workload"
)

// smallTree sizes the trees rendered by dot and shape.
type smallTree struct {
	strategy string
	nodes    int
	maxKey   int
}

func (s *smallTree) register(fs *pflag.FlagSet, defaultStrategy string, defaultNodes int) {
	fs.StringVar(&s.strategy, "strategy", defaultStrategy, "strategy: rb, wb, zip, zip-hash, plain")
	fs.IntVar(&s.nodes, "nodes", defaultNodes, "number of generated inserts")
	fs.IntVar(&s.maxKey, "max-key", 100, "key upper bound (exclusive)")
}

// entries returns the trace given with --trace, or nodes inserts drawn from
// the configured distribution.
func (s *smallTree) entries(cfg *config.Config) ([]opseq.Entry, error) {
	if cfg.Bench.Trace != "" {
		return readTrace(cfg.Bench.Trace)
	}

	rnd, err := workload.New(cfg.Workload.Distribution, cfg.Workload.Seed, cfg.Workload.Params())
	if err != nil {
		return nil, err
	}

	return bench.Generate(rnd, bench.Plan{Keys: s.nodes, Max: s.maxKey})
}

func newDotCommand() *cobra.Command {
	var (
		tree   smallTree
		output string
		name   string
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Render a tree as a Graphviz digraph",
		Long: `Build a small tree from generated keys (or a trace) and write it in the
Graphviz DOT language. Red-black nodes are colored, weight-balanced nodes show
their subtree size and zip tree nodes their rank.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			kind, err := strategy.Parse(tree.strategy)
			if err != nil {
				return err
			}

			entries, err := tree.entries(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			t, _, err := bench.Build(ctx, kind, treeConfig(cfg), entries)
			if err != nil {
				return err
			}

			if output == "" {
				return writeDot(cmd.OutOrStdout(), name, t)
			}

			return writeDotFile(output, name, t)
		},
	}

	fs := cmd.Flags()
	tree.register(fs, string(strategy.RedBlack), 16)
	addWorkloadFlags(fs)
	fs.StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	fs.StringVar(&name, "name", "ygg", "graph name")

	return cmd
}

func writeDot(w io.Writer, name string, t *bench.Tree) error {
	label := func(r *bench.Record) string { return strconv.Itoa(r.Key) }

	return dot.Write(w, name, t, label, dot.ForStrategy(t.Strategy()))
}

func writeDotFile(path, name string, t *bench.Tree) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dot file: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return writeDot(f, name, t)
}
