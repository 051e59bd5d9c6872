package commands

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/ygg/pkg/bench"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
)

// ErrShapeDiffers is returned by shape when the two insertion orders produce
// different trees.
var ErrShapeDiffers = errors.New("tree shape depends on insertion order")

func newShapeCommand() *cobra.Command {
	var tree smallTree

	cmd := &cobra.Command{
		Use:   "shape",
		Short: "Check that a tree shape does not depend on insertion order",
		Long: `Insert the same keys in generation order and in reverse order, render both
trees as DOT and print a line diff. A hash-ranked zip tree is expected to be
identical; the other strategies usually are not.`,
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

			forward, backward := insertionOrders(entries)
			keys := bench.DistinctKeys(entries)

			left, err := renderInOrder(kind, keys, forward)
			if err != nil {
				return err
			}

			right, err := renderInOrder(kind, keys, backward)
			if err != nil {
				return err
			}

			return compareShapes(cmd.OutOrStdout(), kind, len(keys), left, right)
		},
	}

	fs := cmd.Flags()
	tree.register(fs, string(strategy.ZipHash), 64)
	addWorkloadFlags(fs)

	return cmd
}

// insertionOrders returns the positions of the distinct inserted keys, in
// ascending key order, listed by first insertion and reversed.
func insertionOrders(entries []opseq.Entry) ([]int, []int) {
	keys := bench.DistinctKeys(entries)

	forward := make([]int, 0, len(keys))
	seen := make(map[int]bool, len(keys))

	for _, e := range entries {
		if e.Op != opseq.OpInsert || seen[e.Key] {
			continue
		}

		seen[e.Key] = true

		pos, _ := slices.BinarySearch(keys, e.Key)
		forward = append(forward, pos)
	}

	backward := slices.Clone(forward)
	slices.Reverse(backward)

	return forward, backward
}

func renderInOrder(kind strategy.Kind, keys, perm []int) (string, error) {
	t, err := bench.BuildInOrder(kind, bench.TreeConfig{}, keys, perm)
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	err = writeDot(&sb, "shape", t)
	if err != nil {
		return "", err
	}

	return sb.String(), nil
}

// compareShapes prints the changed DOT lines prefixed with - and +.
func compareShapes(w io.Writer, kind strategy.Kind, nodes int, left, right string) error {
	if left == right {
		_, err := fmt.Fprintf(w, "%s: identical shapes for %d keys in both insertion orders\n", kind, nodes)

		return err
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(left, right)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder

	changed := 0

	for _, d := range diffs {
		prefix := ""

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffEqual:
			continue
		}

		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}

			changed++

			sb.WriteString(prefix)
			sb.WriteString(line)
		}
	}

	_, err := fmt.Fprintf(w, "%s: shapes differ for %d keys (%d changed lines)\n%s", kind, nodes, changed, sb.String())
	if err != nil {
		return err
	}

	return fmt.Errorf("%w: %s", ErrShapeDiffers, kind)
}
