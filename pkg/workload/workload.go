// Package workload provides the key generators that drive tree benchmarks.
//
// Every Randomizer is deterministic for a given seed, so a benchmark run can
// be reproduced from its configuration alone.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/Sumatoshi-tech/ygg/pkg/internal/hashutil"
)

// ErrUnknownDistribution is returned by New for an unrecognized name.
var ErrUnknownDistribution = errors.New("unknown distribution")

// Distribution names accepted by New.
const (
	NameUniform = "uniform"
	NameZipf    = "zipf"
	NameSkewed  = "skewed"
)

// Randomizer draws integer keys.
type Randomizer interface {
	// Generate returns a key in [min, max). It panics when max <= min.
	Generate(minKey, maxKey int) int
	// Name returns the distribution name.
	Name() string
	// Seed returns the seed the randomizer was created with.
	Seed() uint64
}

// Params tunes the non-uniform distributions. Zero fields take the defaults.
type Params struct {
	// ZipfExponent is the Zipf skew s. Default 1.
	ZipfExponent float64
	// SkewN makes every SkewN-th draw uniform. Default 10.
	SkewN int
	// SkewChangeFreq is the number of draws after which the hot partition moves.
	// Default 1000.
	SkewChangeFreq int
	// SkewPartitions is the number of hot partitions. Default 2.
	SkewPartitions int
	// SkewPartitionSize is the width of a hot partition relative to the range.
	// Default 0.1.
	SkewPartitionSize float64
}

// Default parameter values.
const (
	DefaultZipfExponent      = 1.0
	DefaultSkewN             = 10
	DefaultSkewChangeFreq    = 1000
	DefaultSkewPartitions    = 2
	DefaultSkewPartitionSize = 0.1
)

func (p Params) withDefaults() Params {
	if p.ZipfExponent <= 0 {
		p.ZipfExponent = DefaultZipfExponent
	}

	if p.SkewN <= 0 {
		p.SkewN = DefaultSkewN
	}

	if p.SkewChangeFreq <= 0 {
		p.SkewChangeFreq = DefaultSkewChangeFreq
	}

	if p.SkewPartitions <= 0 {
		p.SkewPartitions = DefaultSkewPartitions
	}

	if p.SkewPartitionSize <= 0 || p.SkewPartitionSize > 1 {
		p.SkewPartitionSize = DefaultSkewPartitionSize
	}

	return p
}

// Names lists the distributions accepted by New.
func Names() []string {
	return []string{NameUniform, NameZipf, NameSkewed}
}

// New builds the randomizer called name. Names are case-insensitive.
func New(name string, seed uint64, params Params) (Randomizer, error) {
	params = params.withDefaults()

	switch strings.ToLower(name) {
	case NameUniform:
		return NewUniform(seed), nil
	case NameZipf:
		return NewZipf(seed, params.ZipfExponent), nil
	case NameSkewed:
		return NewSkewed(seed, params.SkewN, params.SkewChangeFreq, params.SkewPartitions, params.SkewPartitionSize), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDistribution, name, strings.Join(Names(), ", "))
	}
}

type base struct {
	rng  *rand.Rand
	seed uint64
}

func newBase(seed uint64) base {
	return base{rng: rand.New(hashutil.NewSplitMix(seed)), seed: seed}
}

func (b *base) Seed() uint64 {
	return b.seed
}

func (b *base) uniform(minKey, maxKey int) int {
	checkRange(minKey, maxKey)

	return minKey + int(b.rng.Int64N(int64(maxKey)-int64(minKey)))
}

// Uniform draws keys uniformly.
type Uniform struct {
	base
}

// NewUniform returns a uniform randomizer.
func NewUniform(seed uint64) *Uniform {
	return &Uniform{base: newBase(seed)}
}

// Generate returns a uniform key in [minKey, maxKey).
func (u *Uniform) Generate(minKey, maxKey int) int {
	return u.uniform(minKey, maxKey)
}

// Name returns "uniform".
func (u *Uniform) Name() string {
	return NameUniform
}

func checkRange(minKey, maxKey int) {
	if maxKey <= minKey {
		panic(fmt.Sprintf("workload: empty range [%d, %d)", minKey, maxKey))
	}
}
