package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/observability"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
)

func newGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a generated workload as a trace file",
		Long: `Generate a workload and write it in the compact trace format. By default
the workload is first replayed on a red-black tree and only the operations
that took effect are written; --raw keeps every generated operation.`,
		Args: cobra.NoArgs,
		RunE: runGen,
	}

	fs := cmd.Flags()
	addPlanFlags(fs)
	addWorkloadFlags(fs)
	fs.StringP("output", "o", "", "trace file to write")
	fs.Bool("raw", false, "write the generated operations without capturing them on a tree")

	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runGen(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	raw, err := cmd.Flags().GetBool("raw")
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg, observability.ModeGen)
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	entries, source, err := loadEntries(cfg)
	if err != nil {
		return err
	}

	if !raw {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		entries, err = bench.Capture(ctx, entries, cfg.Bench.Multiple)
		if err != nil {
			return err
		}
	}

	size, err := writeTrace(output, entries)
	if err != nil {
		return err
	}

	providers.Logger.Debug("trace written", "source", source, "path", output, "bytes", size)

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s operations from %s to %s (%s)\n",
		humanize.Comma(int64(len(entries))), source, output, humanize.Bytes(uint64(size))) //nolint:gosec // size is a file length.

	return err
}

func writeTrace(path string, entries []opseq.Entry) (size int64, err error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create trace: %w", err)
	}

	defer func() {
		err = errors.Join(err, f.Close())
	}()

	err = opseq.Encode(f, entries)
	if err != nil {
		return 0, err
	}

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat trace: %w", err)
	}

	return info.Size(), nil
}
