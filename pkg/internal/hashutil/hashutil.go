// Package hashutil provides the 64-bit hash mixers used to derive zip tree
// ranks from keys and the deterministic generator used for random ranks.
//
// Mix64 is the splitmix64 finalizer by Vigna (2014), which provides
// full-avalanche mixing across all 64 bits.
package hashutil

import "github.com/cespare/xxhash/v2"

// Splitmix64 constants.
const (
	// DefaultSeed seeds generators that were not given a seed.
	DefaultSeed = 0x517cc1b727220a95

	mixShift1 = 30
	mixMul1   = 0xbf58476d1ce4e5b9
	mixShift2 = 27
	mixMul2   = 0x94d049bb133111eb
	mixShift3 = 31

	// golden-ratio increment of the splitmix64 state.
	increment = 0x9e3779b97f4a7c15
)

// Mix64 applies the splitmix64 finalizer. It does not advance any state.
func Mix64(v uint64) uint64 {
	v ^= v >> mixShift1
	v *= mixMul1
	v ^= v >> mixShift2
	v *= mixMul2
	v ^= v >> mixShift3

	return v
}

// Int hashes a signed integer key.
func Int(v int64) uint64 {
	return Mix64(uint64(v)) //nolint:gosec // bit reinterpretation is intended.
}

// String hashes a string key with xxHash64.
func String(s string) uint64 {
	return xxhash.Sum64String(s)
}

// Bytes hashes a byte key with xxHash64.
func Bytes(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// SplitMix is the splitmix64 generator. It satisfies math/rand/v2.Source.
type SplitMix struct {
	state uint64
}

// NewSplitMix returns a generator seeded with seed.
func NewSplitMix(seed uint64) *SplitMix {
	return &SplitMix{state: seed}
}

// Uint64 advances the state and returns the next output.
func (s *SplitMix) Uint64() uint64 {
	s.state += increment

	return Mix64(s.state)
}
