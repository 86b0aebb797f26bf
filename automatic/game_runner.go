// Package automatic deals and solves many games without a human, and
// summarizes the results.
package automatic

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/solver"
)

const (
	OutcomeSolved     = "solved"
	OutcomeUnsolvable = "unsolvable"
	OutcomeBudget     = "budget"
)

// CSVHeader is the first line of a results file.
var CSVHeader = []string{"dealID", "seed", "outcome", "steps", "nodes", "memo", "elapsedMs"}

// Result is one solved (or abandoned) deal.
type Result struct {
	DealID  uint64
	Seed    string
	Outcome string
	Steps   int
	Nodes   uint64
	Memo    int
	Elapsed time.Duration
}

func (r Result) Record() []string {
	steps := ""
	if r.Outcome == OutcomeSolved {
		steps = strconv.Itoa(r.Steps)
	}
	return []string{
		strconv.FormatUint(r.DealID, 16),
		r.Seed,
		r.Outcome,
		steps,
		strconv.FormatUint(r.Nodes, 10),
		strconv.Itoa(r.Memo),
		strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
	}
}

// GameRunner deals and solves games one at a time. It is not safe for
// concurrent use; make one per goroutine.
type GameRunner struct {
	config *config.Config
	rules  board.Rules
	solver *solver.Solver
}

func NewGameRunner(cfg *config.Config) *GameRunner {
	s := solver.NewSolver()
	s.SetMaxNodes(cfg.GetUint64(config.ConfigSolverMaxNodes))
	s.SetMemoryFraction(cfg.GetFloat64(config.ConfigSolverMemoryFraction))
	s.SetBoundPruning(cfg.GetBool(config.ConfigSolverBoundPruning))
	s.SetProgressInterval(cfg.GetUint64(config.ConfigProgressInterval))
	return &GameRunner{config: cfg, rules: cfg.Rules(), solver: s}
}

// Deal makes the game for a seed. The same seed always gives the same
// deal.
func (r *GameRunner) Deal(ctx context.Context, seed [32]byte) (*game.Game, error) {
	return game.NewDeal(ctx, r.rules, nil, board.NewSeededShuffler(seed))
}

// PlayDeal deals the seed and solves it. Running out of budget is an
// outcome, not an error.
func (r *GameRunner) PlayDeal(ctx context.Context, seed [32]byte) (Result, error) {
	g, err := r.Deal(ctx, seed)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		DealID: fcn.KeyHash(fcn.CanonicalKey(g.Position())),
		Seed:   EncodeSeed(seed),
	}
	started := time.Now()
	sc, err := r.solver.Solve(ctx, g)
	res.Elapsed = time.Since(started)
	res.Nodes = r.solver.Nodes()
	if m := r.solver.Memo(); m != nil {
		res.Memo = m.Len()
	}
	switch {
	case err == nil:
		res.Outcome = OutcomeSolved
		res.Steps = sc.Steps
	case errors.Is(err, solver.ErrNoSolution):
		res.Outcome = OutcomeUnsolvable
	case errors.Is(err, solver.ErrBudgetExhausted):
		res.Outcome = OutcomeBudget
	default:
		return res, fmt.Errorf("deal %x: %w", res.DealID, err)
	}
	log.Debug().Str("deal", strconv.FormatUint(res.DealID, 16)).Str("outcome", res.Outcome).
		Int("steps", res.Steps).Uint64("nodes", res.Nodes).Msg("deal-finished")
	return res, nil
}
