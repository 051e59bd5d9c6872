package bench

import (
	"context"
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/ygg/pkg/arena"
	"github.com/Sumatoshi-tech/ygg/pkg/opseq"
	"github.com/Sumatoshi-tech/ygg/pkg/strategy"
	"github.com/Sumatoshi-tech/ygg/pkg/workload"
)

// ErrInvalidPlan is returned for plans that cannot be generated.
var ErrInvalidPlan = errors.New("invalid plan")

// Plan sizes a generated workload: Keys inserts, then Lookups finds, then
// Removes removals of previously inserted keys. Keys are drawn from
// [Min, Max).
type Plan struct {
	Keys    int
	Lookups int
	Removes int
	Min     int
	Max     int
}

// Validate checks the plan bounds.
func (p Plan) Validate() error {
	switch {
	case p.Keys < 0 || p.Lookups < 0 || p.Removes < 0:
		return fmt.Errorf("%w: negative operation count", ErrInvalidPlan)
	case p.Removes > p.Keys:
		return fmt.Errorf("%w: %d removes exceed %d keys", ErrInvalidPlan, p.Removes, p.Keys)
	case p.Min >= p.Max:
		return fmt.Errorf("%w: empty key range [%d, %d)", ErrInvalidPlan, p.Min, p.Max)
	}

	return nil
}

// Generate draws the operations of p from rnd. Removals are spread evenly
// over the insertion order.
func Generate(rnd workload.Randomizer, p Plan) ([]opseq.Entry, error) {
	err := p.Validate()
	if err != nil {
		return nil, err
	}

	entries := make([]opseq.Entry, 0, p.Keys+p.Lookups+p.Removes)

	for range p.Keys {
		entries = append(entries, opseq.Entry{Op: opseq.OpInsert, Key: rnd.Generate(p.Min, p.Max)})
	}

	for range p.Lookups {
		entries = append(entries, opseq.Entry{Op: opseq.OpFind, Key: rnd.Generate(p.Min, p.Max)})
	}

	for i := range p.Removes {
		inserted := entries[i*p.Keys/p.Removes]
		entries = append(entries, opseq.Entry{Op: opseq.OpRemove, Key: inserted.Key})
	}

	return entries, nil
}

// Capture replays entries on a red-black tree and returns the operations the
// tree actually performed: rejected duplicates and removals of absent keys
// are dropped.
func Capture(ctx context.Context, entries []opseq.Entry, multiple bool) ([]opseq.Entry, error) {
	rec := opseq.NewRecorder(Key)

	tree, err := NewTree(strategy.RedBlack, arena.New[Record](len(entries)), TreeConfig{Multiple: multiple}, rec)
	if err != nil {
		return nil, err
	}

	_, err = opseq.Replay(ctx, newTreeSet(tree), entries)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}

	return rec.Entries(), nil
}
