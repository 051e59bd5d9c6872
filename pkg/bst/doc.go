// Package bst implements the intrusive binary-search-tree engine shared by
// every balancing strategy in ygg.
//
// Records are owned by the caller and live in an arena.Arena. Each record
// embeds a Hook holding its parent and child indices plus one metadata word
// that the active strategy interprets (a color bit, a subtree size or a
// rank). A Tree only reads and writes those hooks: it never allocates or
// frees a record.
//
// Balancing is plugged in through the Balancer interface. The engine exposes
// the primitives a strategy needs (leaf linking, rotation, successor swap,
// splicing) and keeps user aggregates consistent through the Augmenter hook
// after each of them.
//
// The package is not safe for concurrent use. Any structural change
// invalidates every Iterator of the tree.
package bst
