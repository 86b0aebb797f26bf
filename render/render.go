// Package render draws a game as plain text for the shell.
package render

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/move"
)

const cellWidth = 6

// CardText is the display name of a card, e.g. "10♥". Slot markers render
// as "--". A card outside the deck is an error.
func CardText(c card.Card) (string, error) {
	if c.Rank == card.NoRank {
		return "--", nil
	}
	lbl, err := card.Label(c.Rank)
	if err != nil {
		return "", err
	}
	glyph, err := card.Glyph(c.Suit)
	if err != nil {
		return "", err
	}
	return lbl + glyph, nil
}

// mark decorates text with a slot's highlight: [x] when selected, x* when
// it is an option.
func mark(text string, h game.Highlight) string {
	switch h {
	case game.HighlightSelected:
		return "[" + text + "]"
	case game.HighlightSelectable:
		return text + "*"
	}
	return text
}

func cell(text string) string {
	return fmt.Sprintf("%-*s", cellWidth, text)
}

// Text renders foundations and free cells on top, then the columns, then a
// status line.
func Text(g *game.Game) (string, error) {
	pos := g.Position()
	var sb strings.Builder

	header := ""
	row := ""
	for i := 0; i < board.NumFoundations; i++ {
		txt, err := CardText(pos.FoundationTop(i))
		if err != nil {
			return "", fmt.Errorf("foundation %d: %w", i, err)
		}
		header += cell(move.Foundation(i, 0).String())
		row += cell(mark(txt, g.HighlightAt(move.Foundation(i, pos.FoundationHeight(i)))))
	}
	header += "  "
	row += "  "
	for i := 0; i < pos.NumFreeCells(); i++ {
		txt, err := CardText(pos.FreeCell(i))
		if err != nil {
			return "", fmt.Errorf("free cell %d: %w", i, err)
		}
		header += cell(move.FreeCell(i).String())
		row += cell(mark(txt, g.HighlightAt(move.FreeCell(i))))
	}
	sb.WriteString(strings.TrimRight(header, " ") + "\n")
	sb.WriteString(strings.TrimRight(row, " ") + "\n")
	sb.WriteString(strings.Repeat("-", cellWidth*pos.NumColumns()) + "\n")

	depth := 1
	header = ""
	for j := 0; j < pos.NumColumns(); j++ {
		header += cell(move.Column(j, 0).String())
		depth = max(depth, pos.ColumnHeight(j)-1)
	}
	sb.WriteString(strings.TrimRight(header, " ") + "\n")

	for r := 1; r <= depth; r++ {
		row = ""
		for j := 0; j < pos.NumColumns(); j++ {
			h := pos.ColumnHeight(j)
			var txt string
			switch {
			case r < h:
				var err error
				txt, err = CardText(pos.Column(j)[r])
				if err != nil {
					return "", fmt.Errorf("column %d row %d: %w", j, r, err)
				}
			case r == 1:
				// Empty column: show the slot so it can carry a marker.
				txt = "--"
			}
			if r == h-1 || (r == 1 && h == 1) {
				hl := g.HighlightAt(move.Column(j, h-1))
				if hl == game.HighlightNone {
					hl = g.HighlightAt(move.Column(j, h))
				}
				txt = mark(txt, hl)
			}
			row += cell(txt)
		}
		sb.WriteString(strings.TrimRight(row, " ") + "\n")
	}
	sb.WriteString(Status(g) + "\n")
	return sb.String(), nil
}

// Status is a one-line summary of where the game is.
func Status(g *game.Game) string {
	opts := strings.Join(lo.Map(g.Options(), func(s move.Selection, _ int) string {
		return s.String()
	}), " ")
	switch {
	case g.Won():
		return "Won."
	case g.Stuck():
		return "No moves left."
	case g.State() == game.SourceChosen:
		src, _ := g.Source()
		return fmt.Sprintf("Moving %s. Destinations: %s", src, opts)
	}
	return fmt.Sprintf("%d/%d cards home. Sources: %s",
		g.Position().FoundationCount(), card.DeckSize, opts)
}
