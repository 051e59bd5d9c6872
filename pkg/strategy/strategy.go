// Package strategy builds bst trees by balancing strategy name, so that the
// applications and the benchmark can be configured with a string.
package strategy

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/bst"
	"github.com/Sumatoshi-tech/ygg/pkg/internal/hashutil"
	"github.com/Sumatoshi-tech/ygg/pkg/rbtree"
	"github.com/Sumatoshi-tech/ygg/pkg/wbtree"
	"github.com/Sumatoshi-tech/ygg/pkg/ziptree"
)

// Kind names a balancing strategy.
type Kind string

// Known strategies.
const (
	RedBlack       Kind = "rb"
	WeightBalanced Kind = "wb"
	Zip            Kind = "zip"
	ZipHash        Kind = "zip-hash"
	Plain          Kind = "plain"
)

// Errors returned by Parse and New.
var (
	ErrUnknown = errors.New("unknown strategy")
	ErrNoHash  = errors.New("hash-ranked zip tree requires a hash function")
)

// Kinds lists every strategy in a stable order.
func Kinds() []Kind {
	return []Kind{RedBlack, WeightBalanced, Zip, ZipHash, Plain}
}

// Parse validates a strategy name. The empty string selects RedBlack.
func Parse(name string) (Kind, error) {
	if name == "" {
		return RedBlack, nil
	}

	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Config carries the strategy-specific settings. The zero value selects
// default parameters everywhere.
type Config[T any] struct {
	// Hash is required by ZipHash.
	Hash func(n *T) uint64
	// Seed seeds random zip ranks. Zero selects hashutil.DefaultSeed.
	Seed uint64
	// Weights overrides the weight-balanced parameters when non-zero.
	Weights wbtree.Params
	// MaxRank caps zip tree ranks.
	MaxRank uint64
}

// New creates an empty tree balanced by kind.
func New[T any, K any, PT bst.Node[T]](
	kind Kind, store *arena.Arena[T], ord bst.Ordering[T, K], cfg Config[T], opts bst.Options[T, K],
) (*bst.Tree[T, K, PT], error) {
	switch kind {
	case RedBlack, "":
		return rbtree.New[T, K, PT](store, ord, opts), nil
	case WeightBalanced:
		if cfg.Weights == (wbtree.Params{}) {
			return wbtree.New[T, K, PT](store, ord, opts), nil
		}

		return wbtree.NewWithParams[T, K, PT](store, ord, cfg.Weights, opts)
	case Zip:
		seed := cfg.Seed
		if seed == 0 {
			seed = hashutil.DefaultSeed
		}

		zopts := ziptree.Options[T]{Source: hashutil.NewSplitMix(seed), MaxRank: cfg.MaxRank}

		return ziptree.New[T, K, PT](store, ord, zopts, opts), nil
	case ZipHash:
		if cfg.Hash == nil {
			return nil, ErrNoHash
		}

		zopts := ziptree.Options[T]{
			Hash:        cfg.Hash,
			Coefficient: ziptree.DefaultCoefficient,
			CacheRank:   true,
			MaxRank:     cfg.MaxRank,
		}

		return ziptree.New[T, K, PT](store, ord, zopts, opts), nil
	case Plain:
		return bst.NewPlain[T, K, PT](store, ord, opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, kind)
	}
}
