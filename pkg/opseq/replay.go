package opseq

import (
	"context"
	"fmt"
)

// Set is the view of a tree a trace is replayed against.
type Set interface {
	// Insert adds key and reports whether it was added.
	Insert(key int) bool
	// Remove deletes one record equal to key and reports whether one existed.
	Remove(key int) bool
	// Contains reports whether key is present.
	Contains(key int) bool
}

// Counts summarizes a replay.
type Counts struct {
	Inserted int `json:"inserted" yaml:"inserted"`
	Rejected int `json:"rejected" yaml:"rejected"`
	Removed  int `json:"removed"  yaml:"removed"`
	Missing  int `json:"missing"  yaml:"missing"`
	Hits     int `json:"hits"     yaml:"hits"`
	Misses   int `json:"misses"   yaml:"misses"`
}

// Add returns the field-wise sum of c and o.
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Inserted: c.Inserted + o.Inserted,
		Rejected: c.Rejected + o.Rejected,
		Removed:  c.Removed + o.Removed,
		Missing:  c.Missing + o.Missing,
		Hits:     c.Hits + o.Hits,
		Misses:   c.Misses + o.Misses,
	}
}

// Total returns the number of replayed operations.
func (c Counts) Total() int {
	return c.Inserted + c.Rejected + c.Removed + c.Missing + c.Hits + c.Misses
}

// replayBatch is the number of operations between cancellation checks.
const replayBatch = 1024

// Replay applies entries to set in order. It stops with the context error
// when ctx is canceled, returning the counts so far.
func Replay(ctx context.Context, set Set, entries []Entry) (Counts, error) {
	var c Counts

	for i, e := range entries {
		if i%replayBatch == 0 {
			if err := ctx.Err(); err != nil {
				return c, err
			}
		}

		switch e.Op {
		case OpInsert:
			if set.Insert(e.Key) {
				c.Inserted++
			} else {
				c.Rejected++
			}
		case OpRemove:
			if set.Remove(e.Key) {
				c.Removed++
			} else {
				c.Missing++
			}
		case OpFind:
			if set.Contains(e.Key) {
				c.Hits++
			} else {
				c.Misses++
			}
		default:
			return c, fmt.Errorf("%w: entry %d has %s", ErrCorrupt, i, e.Op)
		}
	}

	return c, nil
}
