// Package game encapsulates the rules of the game: which cards may move
// where, and the two-click protocol that turns selections into moves. A
// Game is the context object every driver (shell, solver, batch runner)
// passes around; there is no global board.
package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/move"
)

var (
	// ErrInvalidLocation is returned when a selection addresses a slot that
	// makes no sense for the requested operation, such as picking a card up
	// from a foundation. The board is never modified when it is returned.
	ErrInvalidLocation = errors.New("invalid location")
)

// Store is the persistence collaborator. Load returns ok=false when nothing
// has been stored yet.
type Store interface {
	Load(ctx context.Context) (blob string, ok bool, err error)
	Save(ctx context.Context, blob string) error
}

// State is where we are in the two-click protocol.
type State uint8

const (
	// Idle means no source has been chosen; the options are legal sources.
	Idle State = iota
	// SourceChosen means the options are legal destinations for Source().
	SourceChosen
)

func (s State) String() string {
	if s == SourceChosen {
		return "source-chosen"
	}
	return "idle"
}

// Highlight is presentation metadata for a slot. It lives in an overlay
// next to the board and never takes part in equality, hashing or
// persistence.
type Highlight uint8

const (
	HighlightNone Highlight = iota
	HighlightSelectable
	HighlightSelected
)

// Game is the live board plus the selection state built on top of it.
type Game struct {
	pos   *board.Position
	store Store

	source     *move.Selection
	options    []move.Selection
	highlights map[move.Selection]Highlight

	history       []move.Move
	recordHistory bool
	// undisturbed[j] is how many cards at the bottom of column j have sat
	// there untouched since the deal.
	undisturbed []int
}

// NewGame wraps a position. The cards present in the columns are treated as
// dealt. The store may be nil. Since computing the initial options can
// promote cards to the foundations, this may already modify pos.
func NewGame(ctx context.Context, pos *board.Position, store Store) (*Game, error) {
	g := &Game{pos: pos, store: store, recordHistory: true}
	g.undisturbed = make([]int, pos.NumColumns())
	for j := range g.undisturbed {
		g.undisturbed[j] = pos.ColumnHeight(j) - 1
	}
	if err := g.restart(ctx); err != nil {
		return nil, err
	}
	return g, nil
}

// NewDeal deals a fresh shuffled deck and saves it.
func NewDeal(ctx context.Context, rules board.Rules, store Store, rng board.Shuffler) (*Game, error) {
	pos, _, err := board.Deal(rules, rng)
	if err != nil {
		return nil, err
	}
	log.Info().Int("columns", rules.Columns).Int("free-cells", rules.FreeCells).Msg("new-deal")
	if err := save(ctx, store, pos); err != nil {
		return nil, err
	}
	return NewGame(ctx, pos, store)
}

// Resume loads the stored position, or deals a new one when the store is
// empty. A stored position keeps the rules it was saved with.
func Resume(ctx context.Context, rules board.Rules, store Store, rng board.Shuffler) (*Game, error) {
	if store == nil {
		return NewDeal(ctx, rules, nil, rng)
	}
	blob, ok, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading position: %w", err)
	}
	if !ok {
		log.Info().Msg("no stored position; dealing")
		return NewDeal(ctx, rules, store, rng)
	}
	pos, err := fcn.Decode(blob)
	if err != nil {
		return nil, err
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("stored position: %w", err)
	}
	if pos.Rules() != rules {
		log.Info().Interface("stored", pos.Rules()).Interface("configured", rules).
			Msg("stored position uses different rules; keeping stored rules")
	}
	return NewGame(ctx, pos, store)
}

// Copy returns an independent game at the same point of the protocol. The
// copy has no store and no history; it is meant for search.
func (g *Game) Copy() *Game {
	c := &Game{
		pos:         g.pos.Copy(),
		options:     append([]move.Selection(nil), g.options...),
		highlights:  make(map[move.Selection]Highlight, len(g.highlights)),
		undisturbed: append([]int(nil), g.undisturbed...),
	}
	if g.source != nil {
		src := *g.source
		c.source = &src
	}
	for k, v := range g.highlights {
		c.highlights[k] = v
	}
	return c
}

func (g *Game) Position() *board.Position { return g.pos }

func (g *Game) Rules() board.Rules { return g.pos.Rules() }

func (g *Game) State() State {
	if g.source == nil {
		return Idle
	}
	return SourceChosen
}

// Source returns the chosen source, if any.
func (g *Game) Source() (move.Selection, bool) {
	if g.source == nil {
		return move.Selection{}, false
	}
	return *g.source, true
}

// Options is the currently offered set: legal sources when Idle, legal
// destinations when a source has been chosen. The caller must not modify
// it.
func (g *Game) Options() []move.Selection { return g.options }

// HighlightAt returns the overlay state for a slot.
func (g *Game) HighlightAt(s move.Selection) Highlight { return g.highlights[s] }

// History is every completed move, auto-moves included, in order.
func (g *Game) History() []move.Move { return g.history }

func (g *Game) Won() bool { return g.pos.IsWon() }

// Stuck is true when the game is not won and there is nothing to pick up.
func (g *Game) Stuck() bool {
	return g.source == nil && len(g.options) == 0 && !g.pos.IsWon()
}

// CheckInvariants validates the board, including that every card placed on
// a column since the deal was a legal build.
func (g *Game) CheckInvariants() error {
	if err := g.pos.Validate(); err != nil {
		return err
	}
	return g.pos.ValidateBuilds(g.undisturbed)
}

// Resolve fills in the row of a selection typed by a human by matching it
// against the offered options by location and pile. If nothing matches the
// selection is returned unchanged, and Select will treat it as a cancel.
func (g *Game) Resolve(s move.Selection) move.Selection {
	for _, o := range g.options {
		if o.Location == s.Location && o.Column == s.Column {
			return o
		}
	}
	return s
}

func save(ctx context.Context, store Store, pos *board.Position) error {
	if store == nil {
		return nil
	}
	if err := store.Save(ctx, fcn.Encode(pos)); err != nil {
		return fmt.Errorf("saving position: %w", err)
	}
	return nil
}
