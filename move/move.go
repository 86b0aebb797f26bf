package move

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Location is the kind of slot a Selection addresses.
type Location uint8

const (
	LocationFreeCell Location = iota
	LocationColumn
	LocationFoundation
)

// UnresolvedRow marks a Selection typed by a human, who names a pile but
// not a height. The game fills it in against the current board.
const UnresolvedRow = -1

var ErrBadSelection = errors.New("bad selection")

func (l Location) String() string {
	switch l {
	case LocationFreeCell:
		return "freecell"
	case LocationColumn:
		return "column"
	case LocationFoundation:
		return "foundation"
	}
	return "invalid"
}

func (l Location) prefix() string {
	switch l {
	case LocationFreeCell:
		return "f"
	case LocationColumn:
		return "c"
	case LocationFoundation:
		return "h"
	}
	return "?"
}

// Selection addresses one slot on the board. It is both a move endpoint and
// a click target. For free cells Row is always 0. For a source it is the
// index of the card being picked up; for a destination it is the index the
// card will occupy once placed.
type Selection struct {
	Location Location
	Column   int
	Row      int
}

func FreeCell(i int) Selection {
	return Selection{Location: LocationFreeCell, Column: i}
}

func Column(j, row int) Selection {
	return Selection{Location: LocationColumn, Column: j, Row: row}
}

func Foundation(i, row int) Selection {
	return Selection{Location: LocationFoundation, Column: i, Row: row}
}

// String returns the short form, e.g. c3 or f0.
func (s Selection) String() string {
	return s.Location.prefix() + strconv.Itoa(s.Column)
}

// Long includes the row, for debugging.
func (s Selection) Long() string {
	return fmt.Sprintf("%s%d:%d", s.Location.prefix(), s.Column, s.Row)
}

var reSelection = regexp.MustCompile(`^(?P<loc>[fch])(?P<idx>[0-9]+)$`)

// ParseSelection parses the short form. The returned Selection has
// UnresolvedRow unless it is a free cell.
func ParseSelection(s string) (Selection, error) {
	m := reSelection.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrBadSelection, s)
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrBadSelection, s)
	}
	switch m[1] {
	case "f":
		return FreeCell(idx), nil
	case "c":
		return Column(idx, UnresolvedRow), nil
	default:
		return Foundation(idx, UnresolvedRow), nil
	}
}

var reLong = regexp.MustCompile(`^([fch])([0-9]+):(-?[0-9]+)$`)

// ParseLong parses the form written by Long, row included.
func ParseLong(s string) (Selection, error) {
	m := reLong.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrBadSelection, s)
	}
	sel, err := ParseSelection(m[1] + m[2])
	if err != nil {
		return Selection{}, err
	}
	sel.Row, err = strconv.Atoi(m[3])
	if err != nil {
		return Selection{}, fmt.Errorf("%w: %q", ErrBadSelection, s)
	}
	return sel, nil
}

// Move is a single-card move: one source, one destination.
type Move struct {
	From Selection
	To   Selection
	// Auto is set for moves the game made by itself when a card could be
	// promoted to a foundation.
	Auto bool
}

// ShortDescription is e.g. "c3>h1", with a trailing "*" for auto-moves.
func (m Move) ShortDescription() string {
	s := m.From.String() + ">" + m.To.String()
	if m.Auto {
		s += "*"
	}
	return s
}

func (m Move) String() string {
	return fmt.Sprintf("<move %s -> %s auto: %v>", m.From.Long(), m.To.Long(), m.Auto)
}

// Long is e.g. "c3:2>h1:5". ParseMove reads it back.
func (m Move) Long() string {
	s := m.From.Long() + ">" + m.To.Long()
	if m.Auto {
		s += "*"
	}
	return s
}

func ParseMove(s string) (Move, error) {
	var m Move
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "*") {
		m.Auto = true
		s = strings.TrimSuffix(s, "*")
	}
	from, to, ok := strings.Cut(s, ">")
	if !ok {
		return Move{}, fmt.Errorf("%w: %q", ErrBadSelection, s)
	}
	var err error
	if m.From, err = ParseLong(from); err != nil {
		return Move{}, err
	}
	if m.To, err = ParseLong(to); err != nil {
		return Move{}, err
	}
	return m, nil
}
