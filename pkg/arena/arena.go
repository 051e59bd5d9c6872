// Package arena provides caller-managed slot storage for intrusive tree nodes.
//
// Records live in a growable slice and are addressed by Index handles. Trees
// store indices instead of pointers, so relinking is bounds-checked and a
// freed slot can never be reached through a stale pointer held by a tree.
// Slot 0 is reserved and serves as the nil handle.
package arena

import (
	"github.com/Sumatoshi-tech/ygg/pkg/safeconv"
)

// Index addresses a slot in an Arena.
type Index uint32

// Nil is the reserved handle that never refers to a record.
const Nil Index = 0

// growNumerator and growDenominator define the 3/2 growth factor for storage.
const (
	growNumerator   = 3
	growDenominator = 2
	minCapacity     = 16
)

// Arena stores records of type T. The zero value is ready to use.
//
// Pointers returned by Get stay valid until the next Alloc that grows the
// backing slice; indices stay valid until the slot is freed.
type Arena[T any] struct {
	slots []T
	free  []Index
	used  []bool
}

// New creates an arena with room for capacity records before growing.
func New[T any](capacity int) *Arena[T] {
	arena := &Arena[T]{}
	arena.Reserve(capacity)

	return arena
}

// Reserve makes sure that at least n more records fit without reallocation.
func (arena *Arena[T]) Reserve(n int) {
	arena.init()

	need := len(arena.slots) + n - len(arena.free)
	if need <= cap(arena.slots) {
		return
	}

	slots := make([]T, len(arena.slots), need)
	copy(slots, arena.slots)
	arena.slots = slots

	used := make([]bool, len(arena.used), need)
	copy(used, arena.used)
	arena.used = used
}

// Alloc returns the handle of a zeroed slot. Freed slots are reused in LIFO
// order, which keeps allocation sequences deterministic.
func (arena *Arena[T]) Alloc() Index {
	arena.init()

	if n := len(arena.free); n > 0 {
		idx := arena.free[n-1]
		arena.free = arena.free[:n-1]
		arena.used[idx] = true

		return idx
	}

	size := len(arena.slots)
	if size == int(safeconv.MaxUint32) {
		panic("arena: index space exhausted")
	}

	if size == cap(arena.slots) {
		grown := max(size*growNumerator/growDenominator, minCapacity)
		slots := make([]T, size, grown)
		copy(slots, arena.slots)
		arena.slots = slots
	}

	var zero T

	arena.slots = append(arena.slots, zero)
	arena.used = append(arena.used, true)

	return Index(safeconv.MustIntToUint32(size))
}

// Free zeroes the slot and makes it available to Alloc again.
func (arena *Arena[T]) Free(idx Index) {
	if idx == Nil {
		panic("arena: slot #0 is reserved and cannot be freed")
	}

	if int(idx) >= len(arena.slots) || !arena.used[idx] {
		panic("arena: double free or foreign index")
	}

	var zero T

	arena.slots[idx] = zero
	arena.used[idx] = false
	arena.free = append(arena.free, idx)
}

// Get resolves a handle. It panics on Nil or on an index outside the arena.
func (arena *Arena[T]) Get(idx Index) *T {
	if idx == Nil {
		panic("arena: dereference of the nil index")
	}

	return &arena.slots[idx]
}

// Live reports whether idx refers to an allocated slot.
func (arena *Arena[T]) Live(idx Index) bool {
	return idx != Nil && int(idx) < len(arena.used) && arena.used[idx]
}

// Len returns the number of allocated records.
func (arena *Arena[T]) Len() int {
	if len(arena.slots) == 0 {
		return 0
	}

	return len(arena.slots) - 1 - len(arena.free)
}

// Size returns the number of slots, including free ones and the reserved slot.
func (arena *Arena[T]) Size() int {
	return len(arena.slots)
}

// Reset drops every record. Handles obtained before Reset become invalid.
func (arena *Arena[T]) Reset() {
	clear(arena.slots)
	arena.slots = arena.slots[:0]
	arena.used = arena.used[:0]
	arena.free = arena.free[:0]
	arena.init()
}

func (arena *Arena[T]) init() {
	if len(arena.slots) > 0 {
		return
	}

	var zero T

	// Slot 0 is reserved.
	arena.slots = append(arena.slots, zero)
	arena.used = append(arena.used, false)
}
