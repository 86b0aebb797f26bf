package render

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/freecell/card"
	"github.com/domino14/freecell/move"
	"github.com/domino14/freecell/testcommon"
)

func TestCardText(t *testing.T) {
	is := is.New(t)
	txt, err := CardText(card.Card{Rank: 10, Suit: card.Hearts})
	is.NoErr(err)
	is.Equal(txt, "10♥")
	txt, err = CardText(card.FoundationBase(card.Spades))
	is.NoErr(err)
	is.Equal(txt, "--")

	_, err = CardText(card.Card{Rank: 14, Suit: card.Hearts})
	is.True(errors.Is(err, card.ErrUnreachableRank))
	_, err = CardText(card.Card{Rank: card.Ace, Suit: 9})
	is.True(errors.Is(err, card.ErrUnreachableSuit))
}

func TestTextMarksSources(t *testing.T) {
	is := is.New(t)
	g := testcommon.Game(t, testcommon.BlockedHearts)
	out, err := Text(g)
	is.NoErr(err)
	lines := strings.Split(out, "\n")
	is.Equal(strings.Fields(lines[0]), []string{"h0", "h1", "h2", "h3", "f0", "f1"})
	is.Equal(strings.Fields(lines[1]), []string{"K♣", "K♦", "8♥", "9♠", "--", "--"})
	is.Equal(strings.Fields(lines[3]), []string{"c0", "c1", "c2", "c3"})
	is.Equal(strings.Fields(lines[4]), []string{"9♥", "10♠", "Q♥", "J♥"})
	is.Equal(strings.Fields(lines[5]), []string{"K♠*", "K♥*", "J♠", "Q♠*"})
	is.Equal(strings.Fields(lines[6]), []string{"10♥*"})
	is.True(strings.Contains(out, "43/52 cards home. Sources: c0 c1 c2 c3"))
}

func TestTextMarksSelection(t *testing.T) {
	is := is.New(t)
	g := testcommon.Game(t, testcommon.BlockedHearts)
	is.NoErr(g.Select(context.Background(), move.Column(0, 2)))
	out, err := Text(g)
	is.NoErr(err)
	lines := strings.Split(out, "\n")
	is.Equal(strings.Fields(lines[1]), []string{"K♣", "K♦", "8♥", "9♠", "--*", "--*"})
	is.Equal(strings.Fields(lines[5]), []string{"[K♠]", "K♥", "J♠", "Q♠"})
	is.True(strings.Contains(out, "Moving c0. Destinations: f0 f1"))
}

func TestTextFailsClosed(t *testing.T) {
	is := is.New(t)
	g := testcommon.Game(t, testcommon.BlockedHearts)
	g.Position().PushColumn(3, card.Card{Rank: 20, Suit: card.Spades})
	_, err := Text(g)
	is.True(errors.Is(err, card.ErrUnreachableRank))
}
