package fcn

import (
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
)

func dealt(t *testing.T, rules board.Rules) *board.Position {
	var seed [32]byte
	copy(seed[:], "fcn-test-seed")
	p, _, err := board.Deal(rules, board.NewSeededShuffler(seed))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestEncodeDecode(t *testing.T) {
	is := is.New(t)
	p := dealt(t, board.DefaultRules())
	p.SetFreeCell(2, p.PopColumn(5))
	p.SetFreeCell(0, p.PopColumn(1))

	s := Encode(p)
	is.Equal(strings.Count(s, SectionSep), 3)
	q, err := Decode(s)
	is.NoErr(err)
	is.True(q.Equals(p))
	is.NoErr(q.Validate())
	is.Equal(Encode(q), s)
}

func TestEncodeKeepsHardColumnsFlag(t *testing.T) {
	is := is.New(t)
	p, err := board.NewPosition(board.Rules{Columns: 2, FreeCells: 1, HardColumns: true})
	is.NoErr(err)
	q, err := Decode(Encode(p))
	is.NoErr(err)
	is.True(q.Rules().HardColumns)
	is.Equal(q.Rules(), p.Rules())
}

func TestDecodeErrors(t *testing.T) {
	is := is.New(t)
	for _, bad := range []string{
		"",
		"0-|0c/0d/0h/0s|0-",         // missing flags
		"0-|0c/0d/0h|0-|-",          // three foundations
		"0-|0c/0d/0h/0s|1c|-",       // column without sentinel
		"0-|0d/0c/0h/0s|0-|-",       // foundations out of suit order
		"0-|0c2c/0d/0h/0s|0-|-",     // deuce on an empty foundation
		"1c|0c/0d/0h/0s|0-1c|-",     // duplicate card
		"0-|0c/0d/0h/0s|0-Mc|-",     // reserved rank symbol
		"0-|0c/0d/0h/0s|0-1c1|-",    // odd length
		"0d|0c/0d/0h/0s|0-|-",       // foundation base in a free cell
		"0-|0c/0d/0h/0s|0-1c0-2c|-", // sentinel mid-column
	} {
		_, err := Decode(bad)
		is.True(errors.Is(err, ErrMalformed))
	}
}

func TestCanonicalKeyIgnoresFreeCellOrder(t *testing.T) {
	is := is.New(t)
	p := dealt(t, board.DefaultRules())
	a := p.Copy()
	a.SetFreeCell(0, a.PopColumn(0))
	a.SetFreeCell(3, a.PopColumn(1))

	b := p.Copy()
	b.SetFreeCell(2, b.PopColumn(1))
	b.SetFreeCell(1, b.PopColumn(0))

	is.True(!a.Equals(b))
	is.Equal(CanonicalKey(a), CanonicalKey(b))
	is.True(Encode(a) != Encode(b))
}

func TestCanonicalKeyIgnoresColumnOrder(t *testing.T) {
	is := is.New(t)
	rules := board.Rules{Columns: 4, FreeCells: 2}
	a, err := board.NewPosition(rules)
	is.NoErr(err)
	b, err := board.NewPosition(rules)
	is.NoErr(err)

	// same column contents, permuted: a = [x, empty, y, empty],
	// b = [empty, y, empty, x]
	x := []card.Card{{Rank: 9, Suit: card.Hearts}, {Rank: 4, Suit: card.Clubs}}
	y := []card.Card{{Rank: card.King, Suit: card.Spades}}
	for _, c := range x {
		a.PushColumn(0, c)
		b.PushColumn(3, c)
	}
	for _, c := range y {
		a.PushColumn(2, c)
		b.PushColumn(1, c)
	}
	is.Equal(CanonicalKey(a), CanonicalKey(b))

	// Different contents give different keys.
	b.PushColumn(0, card.Card{Rank: 2, Suit: card.Diamonds})
	is.True(CanonicalKey(a) != CanonicalKey(b))
}

func TestCanonicalKeyLayout(t *testing.T) {
	is := is.New(t)
	p, err := board.NewPosition(board.Rules{Columns: 2, FreeCells: 2})
	is.NoErr(err)
	p.SetFreeCell(1, card.Card{Rank: 5, Suit: card.Hearts})
	p.PushFoundation(0, card.Card{Rank: card.Ace, Suit: card.Clubs})
	p.PushColumn(1, card.Card{Rank: card.King, Suit: card.Spades})
	// free cells sorted high first; columns sorted by top card, high first.
	is.Equal(CanonicalKey(p), "5h0-|0c1c/0d/0h/0s|0-Ds/0-")
	is.Equal(Encode(p), "0-5h|0c1c/0d/0h/0s|0-/0-Ds|-")
	is.True(KeyHash(CanonicalKey(p)) != KeyHash(Encode(p)))
}

func TestParseYAML(t *testing.T) {
	is := is.New(t)
	p, err := LoadYAML("testdata/endgame.yaml")
	is.NoErr(err)
	is.NoErr(p.Validate())
	is.Equal(p.NumFreeCells(), 2)
	is.Equal(p.NumColumns(), 3)
	is.True(p.ColumnEmpty(2))
	is.Equal(p.ColumnTop(0), card.Card{Rank: card.Jack, Suit: card.Hearts})
	is.Equal(p.FoundationTop(3), card.Card{Rank: 10, Suit: card.Spades})

	out, err := ToYAML(p)
	is.NoErr(err)
	q, err := ParseYAML(out)
	is.NoErr(err)
	is.True(q.Equals(p))
}

func TestParseYAMLErrors(t *testing.T) {
	is := is.New(t)
	for _, bad := range []string{
		"free-cells: [XX]\ncolumns: [[]]\n",
		"free-cells: []\nfoundations: [AD]\ncolumns: [[]]\n",
		"free-cells: []\ncolumns: [[AS, AS]]\n",
		"free-cells: []\ncolumns: [[--]]\n",
		"free-cells: []\ncolumns: []\n",
	} {
		_, err := ParseYAML([]byte(bad))
		is.True(errors.Is(err, ErrMalformed))
	}
}
