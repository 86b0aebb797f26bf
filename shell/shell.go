package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/cache"
	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/solver"
	"github.com/domino14/freecell/store"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errNoGame            = errors.New("no game in progress; use `new` or `load`")
)

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type ShellController struct {
	l      *readline.Instance
	config *config.Config

	game  *game.Game
	store game.Store
	// solutions is set when the store keeps a solution table.
	solutions *store.SQLite

	solver       *solver.Solver
	hints        *cache.Solutions
	autoplayStop context.CancelFunc
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.l.Stderr())
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// NewShellController opens the configured store and resumes the stored
// game, or deals a new one.
func NewShellController(ctx context.Context, cfg *config.Config) (*ShellController, error) {
	sc := newController(cfg)
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mfreecell>\033[0m ",
		HistoryFile:     "/tmp/freecell_readline.tmp",
		AutoComplete:    NewShellCompleter(sc),
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc.l = l

	st, err := store.Open(ctx, cfg.GetString(config.ConfigStore), cfg.StorePath())
	if err != nil {
		return nil, err
	}
	sc.store = st
	if s, ok := st.(*store.SQLite); ok {
		sc.solutions = s
	}
	sc.game, err = game.Resume(ctx, cfg.Rules(), st, nil)
	if err != nil {
		return nil, err
	}
	return sc, nil
}

func newController(cfg *config.Config) *ShellController {
	s := solver.NewSolver()
	s.SetMaxNodes(cfg.GetUint64(config.ConfigSolverMaxNodes))
	s.SetMemoryFraction(cfg.GetFloat64(config.ConfigSolverMemoryFraction))
	s.SetBoundPruning(cfg.GetBool(config.ConfigSolverBoundPruning))
	s.SetProgressInterval(cfg.GetUint64(config.ConfigProgressInterval))
	return &ShellController{
		config: cfg,
		store:  store.Nop{},
		solver: s,
		hints:  cache.NewSolutions(cfg.GetInt(config.ConfigHintCacheSize)),
	}
}

func (sc *ShellController) Close() error {
	if sc.autoplayStop != nil {
		sc.autoplayStop()
	}
	if sc.solutions != nil {
		return sc.solutions.Close()
	}
	return nil
}

// extractFields splits a line into a command, its arguments, and its
// -key value options.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}

	for idx := 1; idx < len(fields); idx++ {
		if strings.HasPrefix(fields[idx], "-") {
			if idx == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[idx][1:]] = fields[idx+1]
			idx++
			continue
		}
		args = append(args, fields[idx])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (c *shellcmd) intOption(key string, def int) (int, error) {
	v, ok := c.options[key]
	if !ok {
		return def, nil
	}
	return strconv.Atoi(v)
}

// Execute runs one command line.
func (sc *ShellController) Execute(ctx context.Context, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		return nil, err
	}
	switch cmd.cmd {
	case "new":
		return sc.newGame(ctx, cmd)
	case "show":
		return sc.show(ctx, cmd)
	case "click", "s":
		return sc.click(ctx, cmd)
	case "cancel":
		return sc.cancel(ctx, cmd)
	case "options":
		return sc.options(ctx, cmd)
	case "solve":
		return sc.solve(ctx, cmd)
	case "hint":
		return sc.hint(ctx, cmd)
	case "play":
		return sc.play(ctx, cmd)
	case "load":
		return sc.load(ctx, cmd)
	case "export":
		return sc.export(ctx, cmd)
	case "key":
		return sc.key(ctx, cmd)
	case "autoplay":
		return sc.autoplay(ctx, cmd)
	case "stats":
		return sc.stats(ctx, cmd)
	case "help":
		return sc.help(ctx, cmd)
	default:
		msg := fmt.Sprintf("command %v not found", strconv.Quote(cmd.cmd))
		log.Info().Msg(msg)
		return nil, errors.New(msg)
	}
}

func (sc *ShellController) Loop(ctx context.Context, sig chan os.Signal) {
	defer sc.l.Close()

	if resp, err := sc.show(ctx, nil); err == nil {
		sc.showMessage(resp.message)
	}
	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "bye" {
			sig <- syscall.SIGINT
			break
		}
		resp, err := sc.Execute(ctx, line)
		if err != nil {
			sc.showError(err)
		} else if resp != nil {
			sc.showMessage(resp.message)
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}
