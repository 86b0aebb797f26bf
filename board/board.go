// Package board holds the Position: the free cells, foundations and columns
// of a single game, and nothing about how cards get moved between them.
package board

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/samber/lo"

	"github.com/domino14/freecell/card"
)

const (
	DefaultColumns   = 8
	DefaultFreeCells = 4
	NumFoundations   = card.NumSuits
)

var (
	ErrBadRules          = errors.New("bad rules")
	ErrCardConservation  = errors.New("card conservation violated")
	ErrFoundationOrder   = errors.New("foundation out of order")
	ErrColumnBuild       = errors.New("illegal column build")
	ErrMissingSentinel   = errors.New("pile does not start with its sentinel")
	ErrMisplacedSentinel = errors.New("sentinel found above the bottom of a pile")
)

// Rules are fixed for the life of a Position.
type Rules struct {
	Columns   int
	FreeCells int
	// HardColumns is reserved. Nothing in the move rules reads it.
	HardColumns bool
}

func DefaultRules() Rules {
	return Rules{Columns: DefaultColumns, FreeCells: DefaultFreeCells}
}

func (r Rules) Validate() error {
	if r.Columns < 1 {
		return fmt.Errorf("%w: need at least one column, got %d", ErrBadRules, r.Columns)
	}
	if r.FreeCells < 0 {
		return fmt.Errorf("%w: negative free cell count %d", ErrBadRules, r.FreeCells)
	}
	return nil
}

// Position is the board. Every column and every foundation starts with a
// sentinel element that never moves; the last element is the top.
type Position struct {
	freeCells   []card.Card
	foundations [NumFoundations][]card.Card
	columns     [][]card.Card
	hardColumns bool
}

// NewPosition returns an empty board for the given rules: sentinels only.
func NewPosition(rules Rules) (*Position, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	p := &Position{
		freeCells:   make([]card.Card, rules.FreeCells),
		columns:     make([][]card.Card, rules.Columns),
		hardColumns: rules.HardColumns,
	}
	for i := range p.foundations {
		p.foundations[i] = []card.Card{card.FoundationBase(FoundationSuit(i))}
	}
	for j := range p.columns {
		p.columns[j] = []card.Card{card.Sentinel}
	}
	return p, nil
}

// FoundationSuit is the suit foundation i accepts.
func FoundationSuit(i int) card.Suit {
	return card.Suit(i + 1)
}

// FoundationFor is the foundation index for suit s.
func FoundationFor(s card.Suit) int {
	return int(s) - 1
}

func (p *Position) Rules() Rules {
	return Rules{Columns: len(p.columns), FreeCells: len(p.freeCells), HardColumns: p.hardColumns}
}

func (p *Position) NumFreeCells() int { return len(p.freeCells) }
func (p *Position) NumColumns() int   { return len(p.columns) }

func (p *Position) FreeCell(i int) card.Card { return p.freeCells[i] }

// ColumnTop returns the exposed card of column j, or the sentinel if the
// column is empty.
func (p *Position) ColumnTop(j int) card.Card {
	col := p.columns[j]
	return col[len(col)-1]
}

// ColumnHeight is the number of elements in column j, sentinel included.
func (p *Position) ColumnHeight(j int) int { return len(p.columns[j]) }

// Column returns the elements of column j, sentinel first. The caller must
// not modify it.
func (p *Position) Column(j int) []card.Card { return p.columns[j] }

func (p *Position) FoundationTop(i int) card.Card {
	f := p.foundations[i]
	return f[len(f)-1]
}

func (p *Position) FoundationHeight(i int) int { return len(p.foundations[i]) }

// Foundation returns the elements of foundation i, base first. The caller
// must not modify it.
func (p *Position) Foundation(i int) []card.Card { return p.foundations[i] }

func (p *Position) SetFreeCell(i int, c card.Card) {
	p.freeCells[i] = c
}

func (p *Position) PushColumn(j int, c card.Card) {
	p.columns[j] = append(p.columns[j], c)
}

// PopColumn removes the top card of column j. It panics when called on an
// empty column; the sentinel never moves.
func (p *Position) PopColumn(j int) card.Card {
	col := p.columns[j]
	if len(col) < 2 {
		panic("pop from empty column")
	}
	c := col[len(col)-1]
	p.columns[j] = col[:len(col)-1]
	return c
}

func (p *Position) PushFoundation(i int, c card.Card) {
	p.foundations[i] = append(p.foundations[i], c)
}

// ColumnEmpty is true when column j holds only its sentinel.
func (p *Position) ColumnEmpty(j int) bool {
	return len(p.columns[j]) == 1
}

func (p *Position) FreeCellsEmpty() bool {
	return !lo.ContainsBy(p.freeCells, func(c card.Card) bool { return c.IsReal() })
}

// IsWon is true once every column is down to its sentinel and no free cell
// holds a card, i.e. all real cards have reached the foundations.
func (p *Position) IsWon() bool {
	for j := range p.columns {
		if !p.ColumnEmpty(j) {
			return false
		}
	}
	return p.FreeCellsEmpty()
}

// FoundationCount is how many real cards sit on the foundations.
func (p *Position) FoundationCount() int {
	return lo.SumBy(p.foundations[:], func(f []card.Card) int { return len(f) - 1 })
}

// RealCards returns every real card on the board, free cells first, then
// foundations, then columns.
func (p *Position) RealCards() []card.Card {
	cards := lo.Filter(p.freeCells, func(c card.Card, _ int) bool { return c.IsReal() })
	for _, f := range p.foundations {
		cards = append(cards, f[1:]...)
	}
	for _, col := range p.columns {
		cards = append(cards, col[1:]...)
	}
	return cards
}

// Copy returns a deep copy; nothing is shared with p.
func (p *Position) Copy() *Position {
	c := &Position{
		freeCells:   append([]card.Card(nil), p.freeCells...),
		columns:     make([][]card.Card, len(p.columns)),
		hardColumns: p.hardColumns,
	}
	for i, f := range p.foundations {
		c.foundations[i] = append(make([]card.Card, 0, card.NumRanks+1), f...)
	}
	for j, col := range p.columns {
		c.columns[j] = append(make([]card.Card, 0, len(col)+4), col...)
	}
	return c
}

// MemSize is the approximate number of bytes p holds on the heap,
// counting slice capacity rather than length.
func (p *Position) MemSize() uint64 {
	cardSize := uint64(unsafe.Sizeof(card.Card{}))
	sliceSize := uint64(unsafe.Sizeof([]card.Card(nil)))
	n := uint64(unsafe.Sizeof(*p)) + uint64(cap(p.freeCells))*cardSize
	for _, f := range p.foundations {
		n += uint64(cap(f)) * cardSize
	}
	n += uint64(cap(p.columns)) * sliceSize
	for _, col := range p.columns {
		n += uint64(cap(col)) * cardSize
	}
	return n
}

// Equals compares slot by slot. Two positions that differ only in the
// order of their free cells or columns are not Equal; see the fcn package
// for that notion of sameness.
func (p *Position) Equals(o *Position) bool {
	if p.hardColumns != o.hardColumns || len(p.freeCells) != len(o.freeCells) ||
		len(p.columns) != len(o.columns) {
		return false
	}
	for i := range p.freeCells {
		if p.freeCells[i] != o.freeCells[i] {
			return false
		}
	}
	for i := range p.foundations {
		if !cardsEqual(p.foundations[i], o.foundations[i]) {
			return false
		}
	}
	for j := range p.columns {
		if !cardsEqual(p.columns[j], o.columns[j]) {
			return false
		}
	}
	return true
}

func cardsEqual(a, b []card.Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Validate checks ValidateStructure plus conservation: the full deck is on
// the board.
func (p *Position) Validate() error {
	if err := p.ValidateStructure(); err != nil {
		return err
	}
	if n := len(p.RealCards()); n != card.DeckSize {
		return fmt.Errorf("%w: %d cards on board", ErrCardConservation, n)
	}
	return nil
}

// ValidateStructure checks that sentinels are in place, foundations ascend
// by one in a single suit, and no card appears twice. It allows a partial
// deck.
func (p *Position) ValidateStructure() error {
	if err := p.validatePiles(); err != nil {
		return err
	}
	seen := make(map[card.Card]bool, card.DeckSize)
	for _, c := range p.RealCards() {
		if c.Suit < card.Clubs || c.Suit > card.Spades || c.Rank > card.King {
			return fmt.Errorf("%w: bad card %v", ErrCardConservation, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %v appears twice", ErrCardConservation, c)
		}
		seen[c] = true
	}
	return nil
}

func (p *Position) validatePiles() error {
	for i, f := range p.foundations {
		if len(f) == 0 || f[0] != card.FoundationBase(FoundationSuit(i)) {
			return fmt.Errorf("%w: foundation %d", ErrMissingSentinel, i)
		}
		for k := 1; k < len(f); k++ {
			if f[k].Suit != FoundationSuit(i) || f[k].Rank != card.Rank(k) {
				return fmt.Errorf("%w: foundation %d holds %v at height %d",
					ErrFoundationOrder, i, f[k], k)
			}
		}
	}
	for j, col := range p.columns {
		if len(col) == 0 || col[0] != card.Sentinel {
			return fmt.Errorf("%w: column %d", ErrMissingSentinel, j)
		}
		for k := 1; k < len(col); k++ {
			if !col[k].IsReal() {
				return fmt.Errorf("%w: column %d row %d", ErrMisplacedSentinel, j, k)
			}
		}
	}
	return nil
}

// ValidateBuilds checks that every card placed on a column since the deal
// is same-suit descending by one. Dealt cards are in arbitrary order, so the
// caller says how many cards at the bottom of each column have never been
// disturbed since the deal.
func (p *Position) ValidateBuilds(undisturbed []int) error {
	for j, col := range p.columns {
		start := 1
		if j < len(undisturbed) {
			start = undisturbed[j] + 1
		}
		for k := max(start, 2); k < len(col); k++ {
			if !col[k].Sequential(col[k-1]) {
				return fmt.Errorf("%w: %v on %v in column %d", ErrColumnBuild, col[k], col[k-1], j)
			}
		}
	}
	return nil
}

func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("free:")
	for _, c := range p.freeCells {
		sb.WriteString(" " + c.String())
	}
	sb.WriteString("\nhome:")
	for _, f := range p.foundations {
		sb.WriteString(" " + f[len(f)-1].String())
	}
	for j, col := range p.columns {
		fmt.Fprintf(&sb, "\n%2d:", j)
		for _, c := range col[1:] {
			sb.WriteString(" " + c.String())
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
