package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/automatic"
	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/render"
	"github.com/domino14/freecell/solver"
)

// analyze <results.csv | deal.yaml | position file> [--key=value ...]
//
// Summarizes an autoplay results file, or solves one position without the
// interactive shell.
func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: analyze <results.csv | deal.yaml | position> [--key=value ...]")
		os.Exit(2)
	}
	path := os.Args[1]
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[2:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		stats, err := automatic.AnalyzeLogFile(path)
		if err != nil {
			log.Fatal().Err(err).Msg("analyze-failed")
		}
		fmt.Print(stats)
		return
	}

	pos, err := loadPosition(path)
	if err != nil {
		log.Fatal().Err(err).Msg("load-failed")
	}
	ctx := context.Background()
	g, err := game.NewGame(ctx, pos, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("game-failed")
	}
	txt, err := render.Text(g)
	if err != nil {
		log.Fatal().Err(err).Msg("render-failed")
	}
	fmt.Print(txt)

	s := solver.NewSolver()
	s.SetMaxNodes(cfg.GetUint64(config.ConfigSolverMaxNodes))
	s.SetMemoryFraction(cfg.GetFloat64(config.ConfigSolverMemoryFraction))
	s.SetBoundPruning(cfg.GetBool(config.ConfigSolverBoundPruning))
	s.SetProgressInterval(cfg.GetUint64(config.ConfigProgressInterval))
	s.SetLogStream(os.Stdout)
	sol, err := s.Solve(ctx, g)
	if err != nil {
		fmt.Println(err)
	} else {
		fmt.Println("Solution:", sol.String())
	}
	fmt.Println(s.Stats())
}

func loadPosition(path string) (*board.Position, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return fcn.LoadYAML(path)
	}
	bts, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fcn.Decode(strings.TrimSpace(string(bts)))
}
