// Package opseq records the operations applied to a tree and stores them as
// compact trace files that benchmarks can replay.
package opseq

import "fmt"

// Op is a traced tree operation.
type Op uint8

// Traced operations. The zero value is invalid so corrupt traces are caught.
const (
	OpInsert Op = iota + 1
	OpRemove
	OpFind
)

func (o Op) String() string {
	switch o {
	case OpInsert:
		return "insert"
	case OpRemove:
		return "remove"
	case OpFind:
		return "find"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

func (o Op) valid() bool {
	return o >= OpInsert && o <= OpFind
}

// Entry is one traced operation.
type Entry struct {
	Op  Op
	Key int
}

// Recorder collects a trace. It implements bst.Recorder for any record type
// with integer keys. A Recorder is not safe for concurrent use.
type Recorder[T any] struct {
	key     func(*T) int
	entries []Entry
}

// NewRecorder returns a recorder that reads the key of a record with key.
func NewRecorder[T any](key func(*T) int) *Recorder[T] {
	return &Recorder[T]{key: key}
}

// RecordInsert appends an insert of n.
func (r *Recorder[T]) RecordInsert(n *T) {
	r.entries = append(r.entries, Entry{Op: OpInsert, Key: r.key(n)})
}

// RecordRemove appends a remove of n.
func (r *Recorder[T]) RecordRemove(n *T) {
	r.entries = append(r.entries, Entry{Op: OpRemove, Key: r.key(n)})
}

// RecordFind appends a lookup of key.
func (r *Recorder[T]) RecordFind(key int) {
	r.entries = append(r.entries, Entry{Op: OpFind, Key: key})
}

// Entries returns the recorded trace. The slice is shared with the recorder
// until the next Reset.
func (r *Recorder[T]) Entries() []Entry {
	return r.entries
}

// Len returns the number of recorded operations.
func (r *Recorder[T]) Len() int {
	return len(r.entries)
}

// Reset discards the recorded trace.
func (r *Recorder[T]) Reset() {
	r.entries = nil
}
