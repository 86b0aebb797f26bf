// Package card holds the representation of a single playing card, plus the
// helpers needed to show one to a human.
package card

import (
	"errors"
	"fmt"
	"strings"
)

// A Rank is 0 for the sentinel, 1 for Ace ... 13 for King.
type Rank uint8

// A Suit is 0 for the sentinel, and 1-4 for clubs, diamonds, hearts and
// spades, in that order. Foundation i holds suit i+1.
type Suit uint8

const (
	NoRank Rank = 0
	Ace    Rank = 1
	Jack   Rank = 11
	Queen  Rank = 12
	King   Rank = 13
)

const (
	NoSuit Suit = iota
	Clubs
	Diamonds
	Hearts
	Spades
)

const (
	NumSuits  = 4
	NumRanks  = 13
	DeckSize  = NumSuits * NumRanks
	MaxSymbol = 22
)

var (
	ErrUnreachableRank = errors.New("rank has no display value")
	ErrUnreachableSuit = errors.New("suit has no display value")
	ErrBadCardName     = errors.New("bad card name")
)

// Card is just a rank and a suit. Two real cards in one deal never share
// both.
type Card struct {
	Rank Rank
	Suit Suit
}

// Sentinel marks an unoccupied slot. It sits at the bottom of every column
// and fills every empty free cell.
var Sentinel = Card{}

// FoundationBase is the card at the bottom of the foundation for suit s.
func FoundationBase(s Suit) Card {
	return Card{Rank: NoRank, Suit: s}
}

// IsReal returns true if c is an actual playing card rather than a slot
// marker.
func (c Card) IsReal() bool {
	return c.Rank != NoRank
}

// Sequential reports whether c may be placed directly on top of under in a
// column: same suit, one rank lower.
func (c Card) Sequential(under Card) bool {
	return c.IsReal() && under.Suit == c.Suit && under.Rank == c.Rank+1
}

// Value is a composite ordering key; higher rank sorts first, then suit.
func (c Card) Value() int {
	return int(c.Rank)*1000 + int(c.Suit)
}

func (c Card) String() string {
	if !c.IsReal() {
		if c.Suit == NoSuit {
			return "--"
		}
		return "-" + suitLetters[c.Suit:c.Suit+1]
	}
	lbl, err := Label(c.Rank)
	if err != nil || c.Suit > Spades {
		return fmt.Sprintf("?%d/%d", c.Rank, c.Suit)
	}
	return lbl + suitLetters[c.Suit:c.Suit+1]
}

// NewDeck returns the 52 real cards, clubs first, Ace to King within each
// suit.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for s := Clubs; s <= Spades; s++ {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Rank: r, Suit: s})
		}
	}
	return deck
}

var rankLabels = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

const suitLetters = "-CDHS"

var suitGlyphs = [...]string{"", "♣", "♦", "♥", "♠"}

// Label returns the display label for a real rank.
func Label(r Rank) (string, error) {
	if r < Ace || r > King {
		return "", fmt.Errorf("%w: %d", ErrUnreachableRank, r)
	}
	return rankLabels[r], nil
}

// Glyph returns the display glyph for a real suit.
func Glyph(s Suit) (string, error) {
	if s < Clubs || s > Spades {
		return "", fmt.Errorf("%w: %d", ErrUnreachableSuit, s)
	}
	return suitGlyphs[s], nil
}

// IsRed is true for diamonds and hearts.
func IsRed(s Suit) bool {
	return s == Diamonds || s == Hearts
}

// Parse turns a human card name such as "10H", "as" or "Qd" into a Card.
// "--" parses to the Sentinel.
func Parse(name string) (Card, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "--" {
		return Sentinel, nil
	}
	if len(name) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrBadCardName, name)
	}
	rs, ss := name[:len(name)-1], name[len(name)-1:]
	idx := strings.Index(suitLetters, ss)
	if idx < int(Clubs) {
		return Card{}, fmt.Errorf("%w: %q", ErrBadCardName, name)
	}
	suit := Suit(idx)
	if rs == "T" {
		rs = "10"
	}
	for r := Ace; r <= King; r++ {
		if rankLabels[r] == rs {
			return Card{Rank: r, Suit: suit}, nil
		}
	}
	return Card{}, fmt.Errorf("%w: %q", ErrBadCardName, name)
}
