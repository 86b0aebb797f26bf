package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
	"github.com/domino14/freecell/move"
)

// Select is a click. If target is not one of the offered options, the
// current selection is dropped and the legal sources are recomputed. If no
// source is chosen yet, target becomes the source and the options become
// its destinations. Otherwise the move is made, the position is saved, and
// the legal sources are recomputed. Recomputing the sources may promote
// cards to the foundations.
//
// An error from the store is returned after the board has changed.
func (g *Game) Select(ctx context.Context, target move.Selection) error {
	if !lo.Contains(g.options, target) {
		log.Debug().Str("target", target.Long()).Str("state", g.State().String()).
			Msg("not-an-option; restarting selection")
		return g.restart(ctx)
	}
	if g.source == nil {
		src := target
		g.source = &src
		g.options = g.LegalDestinations(src, false)
		g.resetHighlights()
		g.highlights[src] = HighlightSelected
		return nil
	}
	m := move.Move{From: *g.source, To: target}
	if err := g.completeMove(ctx, m); err != nil {
		return err
	}
	return g.restart(ctx)
}

// Cancel drops any chosen source and recomputes the legal sources.
func (g *Game) Cancel(ctx context.Context) error {
	return g.restart(ctx)
}

func (g *Game) restart(ctx context.Context) error {
	g.source = nil
	g.options = nil
	g.resetHighlights()
	sources, err := g.LegalSources(ctx)
	if err != nil {
		return err
	}
	g.options = sources
	g.resetHighlights()
	return nil
}

func (g *Game) resetHighlights() {
	g.highlights = make(map[move.Selection]Highlight, len(g.options)+1)
	for _, o := range g.options {
		g.highlights[o] = HighlightSelectable
	}
}

func (g *Game) checkSource(src move.Selection) error {
	c, ok := g.cardAt(src)
	if !ok {
		return fmt.Errorf("%w: cannot pick up from %v", ErrInvalidLocation, src.Long())
	}
	if !c.IsReal() {
		return fmt.Errorf("%w: nothing to pick up at %v", ErrInvalidLocation, src.Long())
	}
	return nil
}

func (g *Game) checkDestination(dst move.Selection) error {
	var n int
	switch dst.Location {
	case move.LocationFreeCell:
		n = g.pos.NumFreeCells()
	case move.LocationColumn:
		n = g.pos.NumColumns()
	case move.LocationFoundation:
		n = board.NumFoundations
	default:
		return fmt.Errorf("%w: unknown location %v", ErrInvalidLocation, dst.Location)
	}
	if dst.Column < 0 || dst.Column >= n {
		return fmt.Errorf("%w: no such slot %v", ErrInvalidLocation, dst.Long())
	}
	if dst.Location == move.LocationFreeCell && g.pos.FreeCell(dst.Column).IsReal() {
		return fmt.Errorf("%w: free cell %d is occupied", ErrInvalidLocation, dst.Column)
	}
	return nil
}

// completeMove lifts the card at m.From and puts it at m.To. Both ends are
// checked before anything changes; legality beyond that is the caller's
// business.
func (g *Game) completeMove(ctx context.Context, m move.Move) error {
	if err := g.checkSource(m.From); err != nil {
		return err
	}
	if err := g.checkDestination(m.To); err != nil {
		return err
	}

	var c card.Card
	switch m.From.Location {
	case move.LocationFreeCell:
		c = g.pos.FreeCell(m.From.Column)
		g.pos.SetFreeCell(m.From.Column, card.Sentinel)
	case move.LocationColumn:
		c = g.pos.PopColumn(m.From.Column)
		j := m.From.Column
		g.undisturbed[j] = min(g.undisturbed[j], g.pos.ColumnHeight(j)-1)
	}

	switch m.To.Location {
	case move.LocationFreeCell:
		g.pos.SetFreeCell(m.To.Column, c)
	case move.LocationColumn:
		g.pos.PushColumn(m.To.Column, c)
	case move.LocationFoundation:
		g.pos.PushFoundation(m.To.Column, c)
	}

	if g.recordHistory {
		g.history = append(g.history, m)
	}
	return save(ctx, g.store, g.pos)
}
