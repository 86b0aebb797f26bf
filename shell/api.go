package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/freecell/automatic"
	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/move"
	"github.com/domino14/freecell/render"
	"github.com/domino14/freecell/solver"
	"github.com/domino14/freecell/store"
)

const defaultAutoplayFile = "/tmp/freecell_autoplay.csv"

func (sc *ShellController) display() (*Response, error) {
	txt, err := render.Text(sc.game)
	if err != nil {
		return nil, err
	}
	if sc.game.Won() {
		txt += "You won!\n"
	}
	return msg(txt), nil
}

func (sc *ShellController) setGame(ctx context.Context, g *game.Game) (*Response, error) {
	sc.game = g
	return sc.display()
}

func (sc *ShellController) newGame(ctx context.Context, cmd *shellcmd) (*Response, error) {
	var seed [32]byte
	var err error
	if len(cmd.args) > 0 {
		seed, err = automatic.DecodeSeed(cmd.args[0])
		if err != nil {
			return nil, fmt.Errorf("bad seed: %w", err)
		}
	} else {
		seed = automatic.GenerateSeeds(1)[0]
	}
	g, err := game.NewDeal(ctx, sc.config.Rules(), sc.store, board.NewSeededShuffler(seed))
	if err != nil {
		return nil, err
	}
	log.Info().Str("seed", automatic.EncodeSeed(seed)).Msg("new-game")
	resp, err := sc.setGame(ctx, g)
	if err != nil {
		return nil, err
	}
	resp.message = "Seed: " + automatic.EncodeSeed(seed) + "\n" + resp.message
	return resp, nil
}

func (sc *ShellController) show(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	return sc.display()
}

func (sc *ShellController) click(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: click <slot>, e.g. click c3")
	}
	sel, err := move.ParseSelection(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.Select(ctx, sc.game.Resolve(sel)); err != nil {
		return nil, err
	}
	return sc.display()
}

func (sc *ShellController) cancel(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if err := sc.game.Cancel(ctx); err != nil {
		return nil, err
	}
	return sc.display()
}

func (sc *ShellController) options(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	opts := lo.Map(sc.game.Options(), func(s move.Selection, _ int) string { return s.String() })
	if len(opts) == 0 {
		return msg("No options."), nil
	}
	return msg(sc.game.State().String() + ": " + strings.Join(opts, " ")), nil
}

// solveCurrent solves from the current position, consulting and filling
// the hint cache. The cache is keyed by the exact encoding since the moves
// name concrete slots.
func (sc *ShellController) solveCurrent(ctx context.Context) (solver.Scorecard, error) {
	if sc.solver.IsSolving() {
		return solver.Scorecard{}, errors.New("already solving")
	}
	key := fcn.Encode(sc.game.Position())
	return sc.hints.Load(key, func() (solver.Scorecard, error) {
		sol, err := sc.solver.Solve(ctx, sc.game)
		if err != nil {
			return sol, err
		}
		sc.saveSolution(ctx, sol)
		return sol, nil
	})
}

func (sc *ShellController) saveSolution(ctx context.Context, sol solver.Scorecard) {
	if sc.solutions == nil {
		return
	}
	key := fcn.CanonicalKey(sc.game.Position())
	if err := sc.solutions.SaveSolution(ctx, key, sol.Steps, sol.Moves); err != nil {
		log.Error().Err(err).Msg("saving-solution")
	}
}

func (sc *ShellController) solve(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) > 0 {
		n, err := strconv.ParseUint(cmd.args[0], 10, 64)
		if err != nil {
			return nil, err
		}
		sc.solver.SetMaxNodes(n)
		defer sc.solver.SetMaxNodes(sc.config.GetUint64(config.ConfigSolverMaxNodes))
	}
	var known string
	if sc.solutions != nil {
		prior, err := sc.solutions.LookupSolution(ctx, fcn.CanonicalKey(sc.game.Position()))
		if err == nil {
			known = fmt.Sprintf("Best known for this position: %d steps\n", prior.Steps)
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	sol, err := sc.solveCurrent(ctx)
	if errors.Is(err, solver.ErrNoSolution) {
		return msg(known + "No solution exists.\n" + sc.solver.Stats()), nil
	}
	if err != nil {
		return nil, err
	}
	return msg(known + "Solution: " + sol.String() + "\n" + sc.solver.Stats()), nil
}

func (sc *ShellController) hint(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	sol, err := sc.solveCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if len(sol.Moves) == 0 {
		return msg("Nothing to do."), nil
	}
	return msg(fmt.Sprintf("%s (%d steps to go)", sol.Moves[0].ShortDescription(), sol.Steps)), nil
}

func (sc *ShellController) play(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	sol, err := sc.solveCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if len(sol.Moves) == 0 {
		return msg("Nothing to do."), nil
	}
	if sc.game.State() != game.Idle {
		if err := sc.game.Cancel(ctx); err != nil {
			return nil, err
		}
	}
	m := sol.Moves[0]
	if err := sc.game.Select(ctx, m.From); err != nil {
		return nil, err
	}
	if err := sc.game.Select(ctx, m.To); err != nil {
		return nil, err
	}
	rest := solver.Scorecard{Position: sol.Position, Steps: sol.Steps - 1, Moves: sol.Moves[1:]}
	sc.hints.Add(fcn.Encode(sc.game.Position()), rest)
	resp, err := sc.display()
	if err != nil {
		return nil, err
	}
	resp.message = "Played " + m.ShortDescription() + "\n" + resp.message
	return resp, nil
}

func (sc *ShellController) load(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file.yaml | file | encoded position>")
	}
	arg := cmd.args[0]
	var pos *board.Position
	var err error
	switch ext := strings.ToLower(filepath.Ext(arg)); {
	case ext == ".yaml" || ext == ".yml":
		pos, err = fcn.LoadYAML(arg)
	default:
		blob := arg
		if bts, rerr := os.ReadFile(arg); rerr == nil {
			blob = strings.TrimSpace(string(bts))
		}
		pos, err = fcn.Decode(blob)
	}
	if err != nil {
		return nil, err
	}
	if err := sc.store.Save(ctx, fcn.Encode(pos)); err != nil {
		return nil, err
	}
	g, err := game.NewGame(ctx, pos, sc.store)
	if err != nil {
		return nil, err
	}
	return sc.setGame(ctx, g)
}

func (sc *ShellController) export(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	if len(cmd.args) > 0 && cmd.args[0] == "yaml" {
		bts, err := fcn.ToYAML(sc.game.Position())
		if err != nil {
			return nil, err
		}
		return msg(string(bts)), nil
	}
	return msg(fcn.Encode(sc.game.Position())), nil
}

func (sc *ShellController) key(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if sc.game == nil {
		return nil, errNoGame
	}
	key := fcn.CanonicalKey(sc.game.Position())
	return msg(fmt.Sprintf("%s\n%016x", key, fcn.KeyHash(key))), nil
}

func (sc *ShellController) autoplay(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 1 && cmd.args[0] == "stop" {
		if sc.autoplayStop == nil || automatic.IsSolving.Value() == 0 {
			return nil, errors.New("autoplay not active")
		}
		sc.autoplayStop()
		return msg("stopping autoplay"), nil
	}
	if automatic.IsSolving.Value() > 0 {
		return nil, automatic.ErrAlreadyRunning
	}

	var seeds [][32]byte
	if path, ok := cmd.options["seeds"]; ok {
		var err error
		if seeds, err = automatic.LoadSeeds(path); err != nil {
			return nil, err
		}
	} else {
		if len(cmd.args) != 1 {
			return nil, errors.New("usage: autoplay <n> [-file f] [-seeds f] [-threads t]")
		}
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil || n < 1 {
			return nil, errors.New("number of deals must be a positive integer")
		}
		seeds = automatic.GenerateSeeds(n)
	}
	threads, err := cmd.intOption("threads", sc.config.GetInt(config.ConfigAutomaticThreads))
	if err != nil {
		return nil, err
	}
	outFile := defaultAutoplayFile
	if f, ok := cmd.options["file"]; ok {
		outFile = f
	}
	out, err := os.Create(outFile)
	if err != nil {
		return nil, err
	}

	actx, cancel := context.WithCancel(context.Background())
	sc.autoplayStop = cancel
	go func() {
		defer out.Close()
		defer cancel()
		err := automatic.SolveDeals(actx, sc.config, seeds, threads, out)
		if err != nil {
			log.Error().Err(err).Msg("autoplay-failed")
			return
		}
		log.Info().Str("file", outFile).Msg("autoplay-finished")
	}()
	return msg(fmt.Sprintf("solving %d deals on %d threads; results in %s", len(seeds), threads, outFile)), nil
}

func (sc *ShellController) stats(ctx context.Context, cmd *shellcmd) (*Response, error) {
	path := defaultAutoplayFile
	if len(cmd.args) > 0 {
		path = cmd.args[0]
	}
	s, err := automatic.AnalyzeLogFile(path)
	if err != nil {
		return nil, err
	}
	return msg(s), nil
}

func (sc *ShellController) help(ctx context.Context, cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return msg(usage()), nil
	}
	return msg(usageTopic(cmd.args[0])), nil
}
