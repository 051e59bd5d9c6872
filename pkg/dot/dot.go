// Package dot writes the structure of a tree in Graphviz DOT format, for
// debugging and for comparing tree shapes.
package dot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/rbtree"
)

// Style renders the strategy metadata word of a node.
type Style struct {
	// Meta returns the text appended to the node label. Nil omits it.
	Meta func(meta uint64) string
	// Attrs returns extra Graphviz attributes such as fillcolor. Nil uses
	// the default style.
	Attrs func(meta uint64) string
}

// RedBlack shows node colors.
func RedBlack() Style {
	return Style{
		Attrs: func(meta uint64) string {
			if rbtree.ColorName(meta) == "red" {
				return `,style=filled,fillcolor="#d62728",fontcolor=white`
			}

			return `,style=filled,fillcolor=black,fontcolor=white`
		},
	}
}

// Sizes shows the subtree sizes kept by weight-balanced trees.
func Sizes() Style {
	return Style{Meta: func(meta uint64) string { return fmt.Sprintf("n=%d", meta) }}
}

// Ranks shows the ranks kept by zip trees.
func Ranks() Style {
	return Style{Meta: func(meta uint64) string { return fmt.Sprintf("r=%d", meta) }}
}

// ForStrategy returns the style matching a strategy name as reported by
// bst.Tree.Strategy.
func ForStrategy(name string) Style {
	switch {
	case name == "rb":
		return RedBlack()
	case name == "wb":
		return Sizes()
	case strings.HasPrefix(name, "zip"):
		return Ranks()
	default:
		return Style{}
	}
}

const defaultAttrs = `,shape=circle,style=filled,fillcolor="#a3d7e4"`

const placeholderAttrs = `label="",shape=point,style=invis`

// Write outputs tree as a digraph named name. Nodes are identified by their
// arena index and labelled with label and the styled metadata. A missing
// child is drawn as an invisible placeholder so Graphviz keeps the left and
// right placement. Nodes are emitted in pre-order, so equal shapes produce
// byte-identical output.
func Write[T any, K any, PT bst.Node[T]](
	w io.Writer, name string, tree *bst.Tree[T, K, PT], label func(PT) string, style Style,
) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "digraph %q {\n", name)
	fmt.Fprintf(bw, "\tnode [fontname=Arial,fontsize=12];\n")

	if root := tree.Root(); root != bst.Nil {
		stack := []bst.Index{root}

		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			writeNode(bw, tree, n, label, style)

			for _, left := range []bool{true, false} {
				side := "R"
				if left {
					side = "L"
				}

				child := tree.Child(n, left)
				if child == bst.Nil {
					fmt.Fprintf(bw, "\t\"nil%d%s\" [%s];\n", n, side, placeholderAttrs)
					fmt.Fprintf(bw, "\t\"%d\" -> \"nil%d%s\" [style=invis];\n", n, n, side)

					continue
				}

				fmt.Fprintf(bw, "\t\"%d\" -> \"%d\" [label=%s];\n", n, child, side)
			}

			if r := tree.Right(n); r != bst.Nil {
				stack = append(stack, r)
			}

			if l := tree.Left(n); l != bst.Nil {
				stack = append(stack, l)
			}
		}
	}

	fmt.Fprintf(bw, "}\n")

	err := bw.Flush()
	if err != nil {
		return fmt.Errorf("write dot: %w", err)
	}

	return nil
}

func writeNode[T any, K any, PT bst.Node[T]](
	bw *bufio.Writer, tree *bst.Tree[T, K, PT], n bst.Index, label func(PT) string, style Style,
) {
	meta := tree.Meta(n)

	text := label(tree.Node(n))
	if style.Meta != nil {
		text += "\\n" + style.Meta(meta)
	}

	attrs := defaultAttrs
	if style.Attrs != nil {
		attrs = ",shape=circle" + style.Attrs(meta)
	}

	fmt.Fprintf(bw, "\t\"%d\" [label=\"%s\"%s];\n", n, escape(text), attrs)
}

// escape quotes a label for a DOT string, keeping the \n line breaks.
func escape(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)

	return s
}
