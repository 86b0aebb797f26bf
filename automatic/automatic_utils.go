package automatic

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"io"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/freecell/config"
)

var (
	DealCounter *expvar.Int
	IsSolving   *expvar.Int

	solving atomic.Bool
)

func init() {
	DealCounter = expvar.NewInt("dealCounter")
	IsSolving = expvar.NewInt("isSolving")
}

var ErrAlreadyRunning = errors.New("deals are already being solved, please wait till complete")

// SolveDeals solves one deal per seed on up to threads goroutines and
// writes a CSV row per deal to out, in completion order. It stops at the
// first error, or when ctx is done.
func SolveDeals(ctx context.Context, cfg *config.Config, seeds [][32]byte,
	threads int, out io.Writer) error {

	if !solving.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	IsSolving.Set(1)
	defer func() {
		IsSolving.Set(0)
		solving.Store(false)
	}()
	if threads < 1 {
		threads = 1
	}
	log.Info().Int("deals", len(seeds)).Int("threads", threads).Msg("solving-deals")
	DealCounter.Set(0)

	w := csv.NewWriter(out)
	if err := w.Write(CSVHeader); err != nil {
		return err
	}
	var mu sync.Mutex

	jobs := make(chan [32]byte)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(jobs)
		for i, seed := range seeds {
			select {
			case jobs <- seed:
			case <-ctx.Done():
				log.Info().Int("queued", i).Msg("got stop signal, exiting soon")
				return ctx.Err()
			}
		}
		return nil
	})
	for i := 0; i < threads; i++ {
		g.Go(func() error {
			r := newWorkerRunner(cfg, threads)
			for seed := range jobs {
				res, err := r.PlayDeal(ctx, seed)
				if err != nil {
					return err
				}
				mu.Lock()
				err = w.Write(res.Record())
				mu.Unlock()
				if err != nil {
					return err
				}
				DealCounter.Add(1)
				if n := DealCounter.Value(); n%100 == 0 {
					log.Info().Int64("deals", n).Msg("deals-solved")
				}
			}
			return nil
		})
	}
	err := g.Wait()
	w.Flush()
	if err != nil {
		return err
	}
	log.Info().Int64("deals", DealCounter.Value()).Msg("all-deals-finished")
	return w.Error()
}

// newWorkerRunner makes a runner whose memo gets an equal share of the
// configured memory fraction.
func newWorkerRunner(cfg *config.Config, threads int) *GameRunner {
	r := NewGameRunner(cfg)
	r.solver.SetMemoryFraction(cfg.GetFloat64(config.ConfigSolverMemoryFraction) / float64(threads))
	return r
}
