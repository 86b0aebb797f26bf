package board

import (
	"errors"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/freecell/card"
)

func TestNewPositionSentinels(t *testing.T) {
	is := is.New(t)
	p, err := NewPosition(DefaultRules())
	is.NoErr(err)
	is.Equal(p.NumColumns(), 8)
	is.Equal(p.NumFreeCells(), 4)
	for i := 0; i < NumFoundations; i++ {
		is.Equal(p.FoundationTop(i), card.FoundationBase(FoundationSuit(i)))
	}
	for j := 0; j < p.NumColumns(); j++ {
		is.True(p.ColumnEmpty(j))
		is.Equal(p.ColumnTop(j), card.Sentinel)
	}
	// An empty board with no cards anywhere is trivially "won" but fails
	// conservation.
	is.True(p.IsWon())
	is.True(errors.Is(p.Validate(), ErrCardConservation))
}

func TestBadRules(t *testing.T) {
	is := is.New(t)
	_, err := NewPosition(Rules{Columns: 0, FreeCells: 4})
	is.True(errors.Is(err, ErrBadRules))
	_, err = NewPosition(Rules{Columns: 3, FreeCells: -1})
	is.True(errors.Is(err, ErrBadRules))
}

func TestDealRoundRobin(t *testing.T) {
	is := is.New(t)
	var seed [32]byte
	seed[0] = 7
	p, dealt, err := Deal(DefaultRules(), NewSeededShuffler(seed))
	is.NoErr(err)
	is.NoErr(p.Validate())
	is.Equal(dealt, []int{7, 7, 7, 7, 6, 6, 6, 6})
	for j := 0; j < p.NumColumns(); j++ {
		is.Equal(p.ColumnHeight(j), dealt[j]+1)
	}
	is.True(!p.IsWon())
	assert.ElementsMatch(t, card.NewDeck(), p.RealCards())

	// same seed, same deal
	p2, _, err := Deal(DefaultRules(), NewSeededShuffler(seed))
	is.NoErr(err)
	is.True(p.Equals(p2))
}

func TestMemSizeCountsEveryPile(t *testing.T) {
	is := is.New(t)
	p, _, err := Deal(DefaultRules(), nil)
	is.NoErr(err)
	// 52 cards, 8 column sentinels and 4 foundation bases, two bytes each.
	is.True(p.MemSize() >= uint64((52+8+4)*2))
	empty, err := NewPosition(DefaultRules())
	is.NoErr(err)
	is.True(p.MemSize() > empty.MemSize())
}

func TestCopyIsDeep(t *testing.T) {
	is := is.New(t)
	p, _, err := Deal(Rules{Columns: 3, FreeCells: 2}, nil)
	is.NoErr(err)
	c := p.Copy()
	is.True(c.Equals(p))
	moved := c.PopColumn(0)
	c.SetFreeCell(1, moved)
	is.True(!c.Equals(p))
	is.Equal(p.FreeCell(1), card.Sentinel)
	is.Equal(p.ColumnHeight(0), c.ColumnHeight(0)+1)
}

func TestWinRequiresEmptyFreeCells(t *testing.T) {
	is := is.New(t)
	p, err := NewPosition(Rules{Columns: 1, FreeCells: 4})
	is.NoErr(err)
	for _, c := range card.NewDeck() {
		p.PushFoundation(FoundationFor(c.Suit), c)
	}
	is.NoErr(p.Validate())
	is.True(p.IsWon())
	is.Equal(p.FoundationCount(), 52)

	// put the king of spades back into a free cell
	p.foundations[3] = p.foundations[3][:13]
	p.SetFreeCell(2, card.Card{Rank: card.King, Suit: card.Spades})
	is.NoErr(p.Validate())
	is.True(!p.IsWon())
}

func TestValidateFoundationOrder(t *testing.T) {
	is := is.New(t)
	p, err := NewPosition(Rules{Columns: 1, FreeCells: 0})
	is.NoErr(err)
	p.PushFoundation(0, card.Card{Rank: 2, Suit: card.Clubs})
	is.True(errors.Is(p.Validate(), ErrFoundationOrder))
}

func TestValidateBuilds(t *testing.T) {
	is := is.New(t)
	p, err := NewPosition(Rules{Columns: 2, FreeCells: 0})
	is.NoErr(err)
	p.PushColumn(0, card.Card{Rank: 2, Suit: card.Hearts})
	p.PushColumn(0, card.Card{Rank: 9, Suit: card.Clubs})
	p.PushColumn(0, card.Card{Rank: 8, Suit: card.Clubs})
	is.NoErr(p.ValidateBuilds([]int{2, 0}))
	// if nothing was dealt, 9C on 2H is an illegal build.
	is.True(errors.Is(p.ValidateBuilds([]int{0, 0}), ErrColumnBuild))
	p.PushColumn(1, card.Card{Rank: 5, Suit: card.Spades})
	p.PushColumn(1, card.Card{Rank: 4, Suit: card.Hearts})
	is.True(errors.Is(p.ValidateBuilds([]int{2, 0}), ErrColumnBuild))
}
