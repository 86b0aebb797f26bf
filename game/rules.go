package game

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
	"github.com/domino14/freecell/move"
)

// cardAt returns the card a source selection would pick up. ok is false if
// the selection cannot be a source at all.
func (g *Game) cardAt(src move.Selection) (card.Card, bool) {
	switch src.Location {
	case move.LocationFreeCell:
		if src.Column < 0 || src.Column >= g.pos.NumFreeCells() {
			return card.Card{}, false
		}
		return g.pos.FreeCell(src.Column), true
	case move.LocationColumn:
		if src.Column < 0 || src.Column >= g.pos.NumColumns() {
			return card.Card{}, false
		}
		return g.pos.ColumnTop(src.Column), true
	}
	// Cards never leave the foundations.
	return card.Card{}, false
}

// LegalDestinations returns every slot the card at src may move to, in the
// order foundations, free cells, columns. With truncated set it stops at
// the first one found. An empty or unpickable source has no destinations.
func (g *Game) LegalDestinations(src move.Selection, truncated bool) []move.Selection {
	c, ok := g.cardAt(src)
	if !ok || !c.IsReal() {
		return nil
	}
	var dests []move.Selection

	fi := board.FoundationFor(c.Suit)
	if fi >= 0 && fi < board.NumFoundations && g.pos.FoundationTop(fi).Rank+1 == c.Rank {
		dests = append(dests, move.Foundation(fi, g.pos.FoundationHeight(fi)))
		if truncated {
			return dests
		}
	}

	if src.Location != move.LocationFreeCell {
		for i := 0; i < g.pos.NumFreeCells(); i++ {
			if g.pos.FreeCell(i).IsReal() {
				continue
			}
			dests = append(dests, move.FreeCell(i))
			if truncated {
				return dests
			}
		}
	}

	for j := 0; j < g.pos.NumColumns(); j++ {
		if src.Location == move.LocationColumn && src.Column == j {
			continue
		}
		if g.pos.ColumnEmpty(j) || c.Sequential(g.pos.ColumnTop(j)) {
			dests = append(dests, move.Column(j, g.pos.ColumnHeight(j)))
			if truncated {
				return dests
			}
		}
	}
	return dests
}

// scanSources finds every slot holding a card with at least one legal
// destination, free cells first then columns, each in ascending order. If
// any of them can go to a foundation, the last such one is returned as a
// pending auto-move.
func (g *Game) scanSources() ([]move.Selection, *move.Move) {
	var sources []move.Selection
	var auto *move.Move

	consider := func(src move.Selection) {
		dests := g.LegalDestinations(src, true)
		if len(dests) == 0 {
			return
		}
		sources = append(sources, src)
		// Foundations are tried first, so if one is legal it is dests[0].
		if dests[0].Location == move.LocationFoundation {
			auto = &move.Move{From: src, To: dests[0], Auto: true}
		}
	}

	for i := 0; i < g.pos.NumFreeCells(); i++ {
		if g.pos.FreeCell(i).IsReal() {
			consider(move.FreeCell(i))
		}
	}
	for j := 0; j < g.pos.NumColumns(); j++ {
		if !g.pos.ColumnEmpty(j) {
			consider(move.Column(j, g.pos.ColumnHeight(j)-1))
		}
	}
	return sources, auto
}

// LegalSources returns every slot a card may be picked up from. This is not
// a pure query: while any card can be promoted to a foundation, it is moved
// there and the scan starts over, so on return no foundation move is
// available.
func (g *Game) LegalSources(ctx context.Context) ([]move.Selection, error) {
	for {
		sources, auto := g.scanSources()
		if auto == nil {
			return sources, nil
		}
		log.Debug().Str("move", auto.ShortDescription()).Msg("auto-move")
		if err := g.completeMove(ctx, *auto); err != nil {
			return nil, err
		}
	}
}
