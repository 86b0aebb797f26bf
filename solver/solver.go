// Package solver finds a shortest winning move sequence by exhaustive
// depth-first search over the game's selection protocol. Positions are
// deduplicated by canonical key: a frame is dropped when its position has
// already been reached in as few or fewer steps.
package solver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/move"
)

const (
	DefaultMemoryFraction   = 0.25
	DefaultProgressInterval = 1_000_000

	ctxCheckMask = 1023
)

var (
	ErrNoSolution      = errors.New("no solution found")
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

// frame is one pending node of the search. Its game is owned by the frame
// and never touched again once its children are generated.
type frame struct {
	g    *game.Game
	card Scorecard
}

type Solver struct {
	maxNodes         uint64
	memoryFraction   float64
	boundPruning     bool
	progressInterval uint64

	nodes   atomic.Uint64
	solving atomic.Bool
	memo    *MemoTable
	elapsed time.Duration

	logStream io.Writer
}

func NewSolver() *Solver {
	return &Solver{
		memoryFraction:   DefaultMemoryFraction,
		progressInterval: DefaultProgressInterval,
	}
}

// SetMaxNodes caps the number of frames Solve or Search will visit. 0 means
// no cap.
func (s *Solver) SetMaxNodes(n uint64) { s.maxNodes = n }

// SetMemoryFraction sets the share of system memory Solve lets its memo
// table grow to. 0 means unbounded.
func (s *Solver) SetMemoryFraction(f float64) { s.memoryFraction = f }

func (s *Solver) MemoryFraction() float64 { return s.memoryFraction }

// SetBoundPruning drops frames that already need at least as many steps as
// the best solution found. The result is still a shortest solution.
func (s *Solver) SetBoundPruning(b bool) { s.boundPruning = b }

func (s *Solver) SetProgressInterval(n uint64) {
	if n == 0 {
		n = DefaultProgressInterval
	}
	s.progressInterval = n
}

// SetLogStream gets a line of progress text every progress interval.
func (s *Solver) SetLogStream(w io.Writer) { s.logStream = w }

func (s *Solver) IsSolving() bool { return s.solving.Load() }

func (s *Solver) Nodes() uint64 { return s.nodes.Load() }

// Memo is the table from the last Solve, if any.
func (s *Solver) Memo() *MemoTable { return s.memo }

// Solve searches from g with a fresh memo table and an unsolved seed. g is
// not modified. If nothing is found it returns ErrNoSolution; if a budget
// ran out first it returns ErrBudgetExhausted with the best scorecard found
// so far, which may be unsolved.
func (s *Solver) Solve(ctx context.Context, g *game.Game) (Scorecard, error) {
	s.memo = NewMemoTable(0)
	s.memo.SetMaxBytes(MemoBudget(s.memoryFraction))
	start := Scorecard{Position: g.Position(), Steps: 0}
	best, err := s.Search(ctx, g, start, s.memo, Unsolved(g.Position()))
	if err != nil {
		return best, err
	}
	if !best.Solved() {
		return best, ErrNoSolution
	}
	return best, nil
}

// Search explores every move sequence reachable from g, whose path so far
// is described by sc, recording positions in memo. It returns the better of
// winning and the shortest win found. A return equal to winning means
// nothing better exists below g. g is not modified.
func (s *Solver) Search(ctx context.Context, g *game.Game, sc Scorecard,
	memo *MemoTable, winning Scorecard) (Scorecard, error) {

	s.solving.Store(true)
	defer s.solving.Store(false)
	s.nodes.Store(0)
	started := time.Now()
	defer func() { s.elapsed = time.Since(started) }()

	root := g.Copy()
	if root.State() != game.Idle {
		if err := root.Cancel(ctx); err != nil {
			return winning, err
		}
	}
	sc.Position = root.Position()
	log.Info().Int("start-steps", sc.Steps).Int("seed-steps", winning.Steps).
		Uint64("max-nodes", s.maxNodes).Bool("bound-pruning", s.boundPruning).
		Msg("search-starting")

	stack := []frame{{g: root, card: sc}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := s.nodes.Add(1)
		if n&ctxCheckMask == 1 {
			select {
			case <-ctx.Done():
				log.Info().Uint64("nodes", n).Msg("search-cancelled")
				return winning, ctx.Err()
			default:
			}
		}
		if s.maxNodes > 0 && n > s.maxNodes {
			log.Info().Uint64("nodes", n).Str("best", winning.String()).Msg("node-budget-exhausted")
			return winning, fmt.Errorf("%w: visited %d nodes", ErrBudgetExhausted, s.maxNodes)
		}
		if n%s.progressInterval == 0 {
			s.progress(n, memo, winning)
		}

		if s.boundPruning && f.card.Steps >= winning.Steps {
			continue
		}

		pos := f.g.Position()
		if pos.IsWon() {
			if f.card.Steps < winning.Steps {
				log.Debug().Int("steps", f.card.Steps).Msg("found-better-win")
			}
			winning = better(f.card, winning)
			continue
		}
		sources := f.g.Options()
		if len(sources) == 0 {
			continue
		}

		key := fcn.CanonicalKey(pos)
		if prior, ok := memo.Lookup(key); ok && prior.Steps <= f.card.Steps {
			memo.pruned.Add(1)
			continue
		}
		if memo.full(key, f.card) {
			log.Info().Int("entries", memo.Len()).Uint64("bytes", memo.Bytes()).
				Str("best", winning.String()).Msg("memo-budget-exhausted")
			return winning, fmt.Errorf("%w: memo table holds %d positions", ErrBudgetExhausted, memo.Len())
		}
		memo.store(key, f.card)

		children, err := expand(ctx, f)
		if err != nil {
			return winning, err
		}
		// Reverse, so that children are popped in generation order.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	log.Info().Uint64("nodes", s.nodes.Load()).Str("memo", memo.Stats()).
		Str("best", winning.String()).Dur("elapsed", time.Since(started)).Msg("search-finished")
	return winning, nil
}

// expand makes every full move from f: each legal source, then each of its
// legal destinations, as two selections on an independent copy.
func expand(ctx context.Context, f frame) ([]frame, error) {
	var children []frame
	for _, src := range f.g.Options() {
		for _, dst := range f.g.LegalDestinations(src, false) {
			child := f.g.Copy()
			if err := child.Select(ctx, src); err != nil {
				return nil, err
			}
			if err := child.Select(ctx, dst); err != nil {
				return nil, err
			}
			m := move.Move{From: src, To: dst}
			children = append(children, frame{g: child, card: f.card.extend(m, child.Position())})
		}
	}
	return children, nil
}

func (s *Solver) progress(n uint64, memo *MemoTable, winning Scorecard) {
	log.Info().Uint64("nodes", n).Int("memo-entries", memo.Len()).
		Int("best-steps", winning.Steps).Bool("solved", winning.Solved()).Msg("search-progress")
	if s.logStream != nil {
		best := "none"
		if winning.Solved() {
			best = fmt.Sprint(winning.Steps)
		}
		fmt.Fprintf(s.logStream, "- nodes: %d memo: %d best: %s\n", n, memo.Len(), best)
	}
}

// Stats describes the last search.
func (s *Solver) Stats() string {
	memo := "none"
	if s.memo != nil {
		memo = s.memo.Stats()
	}
	return fmt.Sprintf("nodes: %d, elapsed: %v, memo: %s", s.nodes.Load(), s.elapsed, memo)
}
