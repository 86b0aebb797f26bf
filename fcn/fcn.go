// Package fcn is the position notation. It has two encodings of a board:
// a full-fidelity one used to save and restore a game exactly, and a
// canonical key that forgets the order of free cells and columns, used by
// the solver to recognize positions it has already seen.
package fcn

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
)

const (
	// rank symbols: sentinel, 1-13, and reserved values. Ascending ASCII so
	// that comparing codes compares ranks.
	rankSymbols = "0123456789ABCDEFGHIJKL"
	suitSymbols = "-cdhs"

	SectionSep = "|"
	PileSep    = "/"

	hardFlag = "h"
	softFlag = "-"
)

var ErrMalformed = errors.New("malformed position")

func encodeCard(sb *strings.Builder, c card.Card) {
	sb.WriteByte(rankSymbols[c.Rank])
	sb.WriteByte(suitSymbols[c.Suit])
}

func cardCode(c card.Card) string {
	var sb strings.Builder
	encodeCard(&sb, c)
	return sb.String()
}

func encodePile(sb *strings.Builder, pile []card.Card) {
	for _, c := range pile {
		encodeCard(sb, c)
	}
}

func encodeFoundations(sb *strings.Builder, pos *board.Position) {
	for i := 0; i < board.NumFoundations; i++ {
		if i > 0 {
			sb.WriteString(PileSep)
		}
		encodePile(sb, pos.Foundation(i))
	}
}

// CanonicalKey encodes pos so that boards differing only in the order of
// their free cells, or only in the order of their columns, share a key.
func CanonicalKey(pos *board.Position) string {
	var sb strings.Builder

	cells := make([]card.Card, pos.NumFreeCells())
	for i := range cells {
		cells[i] = pos.FreeCell(i)
	}
	sort.SliceStable(cells, func(a, b int) bool {
		return cells[a].Value() > cells[b].Value()
	})
	for _, c := range cells {
		encodeCard(&sb, c)
	}
	sb.WriteString(SectionSep)

	encodeFoundations(&sb, pos)
	sb.WriteString(SectionSep)

	order := make([]int, pos.NumColumns())
	tops := make([]string, pos.NumColumns())
	for j := range order {
		order[j] = j
		tops[j] = cardCode(pos.ColumnTop(j))
	}
	sort.SliceStable(order, func(a, b int) bool {
		return tops[order[a]] > tops[order[b]]
	})
	for k, j := range order {
		if k > 0 {
			sb.WriteString(PileSep)
		}
		encodePile(&sb, pos.Column(j))
	}
	return sb.String()
}

// KeyHash digests a canonical key to 64 bits, for use as a compact id in
// logs and tables. Distinct keys may collide; the search itself always uses
// the full key.
func KeyHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// Encode writes every slot in its actual order, so Decode(Encode(p)) is
// Equal to p.
func Encode(pos *board.Position) string {
	var sb strings.Builder
	for i := 0; i < pos.NumFreeCells(); i++ {
		encodeCard(&sb, pos.FreeCell(i))
	}
	sb.WriteString(SectionSep)
	encodeFoundations(&sb, pos)
	sb.WriteString(SectionSep)
	for j := 0; j < pos.NumColumns(); j++ {
		if j > 0 {
			sb.WriteString(PileSep)
		}
		encodePile(&sb, pos.Column(j))
	}
	sb.WriteString(SectionSep)
	if pos.Rules().HardColumns {
		sb.WriteString(hardFlag)
	} else {
		sb.WriteString(softFlag)
	}
	return sb.String()
}

func decodeCards(s string) ([]card.Card, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length pile %q", ErrMalformed, s)
	}
	cards := make([]card.Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		r := strings.IndexByte(rankSymbols, s[i])
		su := strings.IndexByte(suitSymbols, s[i+1])
		if r < 0 || r > int(card.King) || su < 0 {
			return nil, fmt.Errorf("%w: bad card code %q", ErrMalformed, s[i:i+2])
		}
		cards = append(cards, card.Card{Rank: card.Rank(r), Suit: card.Suit(su)})
	}
	return cards, nil
}

// Decode parses the output of Encode. The rules are taken from the blob.
// The result is structurally valid but may hold a partial deck.
func Decode(s string) (*board.Position, error) {
	sections := strings.Split(strings.TrimSpace(s), SectionSep)
	if len(sections) != 4 {
		return nil, fmt.Errorf("%w: want 4 sections, got %d", ErrMalformed, len(sections))
	}
	cells, err := decodeCards(sections[0])
	if err != nil {
		return nil, err
	}
	foundations := strings.Split(sections[1], PileSep)
	if len(foundations) != board.NumFoundations {
		return nil, fmt.Errorf("%w: want %d foundations, got %d", ErrMalformed,
			board.NumFoundations, len(foundations))
	}
	columns := strings.Split(sections[2], PileSep)
	var hard bool
	switch sections[3] {
	case hardFlag:
		hard = true
	case softFlag:
	default:
		return nil, fmt.Errorf("%w: bad flags %q", ErrMalformed, sections[3])
	}

	pos, err := board.NewPosition(board.Rules{
		Columns: len(columns), FreeCells: len(cells), HardColumns: hard})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for i, c := range cells {
		if !c.IsReal() && c != card.Sentinel {
			return nil, fmt.Errorf("%w: free cell %d holds %v", ErrMalformed, i, c)
		}
		pos.SetFreeCell(i, c)
	}
	for i, f := range foundations {
		pile, err := decodeCards(f)
		if err != nil {
			return nil, err
		}
		if len(pile) == 0 || pile[0] != card.FoundationBase(board.FoundationSuit(i)) {
			return nil, fmt.Errorf("%w: foundation %d has no base", ErrMalformed, i)
		}
		for _, c := range pile[1:] {
			pos.PushFoundation(i, c)
		}
	}
	for j, col := range columns {
		pile, err := decodeCards(col)
		if err != nil {
			return nil, err
		}
		if len(pile) == 0 || pile[0] != card.Sentinel {
			return nil, fmt.Errorf("%w: column %d has no sentinel", ErrMalformed, j)
		}
		for _, c := range pile[1:] {
			pos.PushColumn(j, c)
		}
	}
	if err := pos.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return pos, nil
}
