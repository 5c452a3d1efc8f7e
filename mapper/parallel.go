package mapper

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/bdsul/grace/genome"
	"github.com/bdsul/grace/grammar"
)

// DecodeAll decodes genomes concurrently using at most workers goroutines (GOMAXPROCS if workers <= 0)
// and returns the number of genomes that became valid.
// Each genome must appear only once. The first decode error or context cancellation stops the batch,
// genomes decoded before that keep their results.
func (m *Mapper) DecodeAll(ctx context.Context, genomes []*genome.Genome, gr *grammar.Grammar, workers int) (int, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	var valid atomic.Int64
	for i, g := range genomes {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if e := egCtx.Err(); e != nil {
				return e
			}
			ok, e := m.Decode(g, gr)
			if e != nil {
				return fmt.Errorf("genome %d (%s): %w", i, g.ID, e)
			}
			if ok {
				valid.Add(1)
			}
			return nil
		})
	}

	if e := eg.Wait(); e != nil {
		return int(valid.Load()), e
	}
	return int(valid.Load()), ctx.Err()
}
