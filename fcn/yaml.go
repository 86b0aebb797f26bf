package fcn

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/card"
)

// DealFile is the human-editable form of a position. Foundations list only
// the top card of each pile, in suit order; "--" or a missing entry means
// the pile is empty.
type DealFile struct {
	HardColumns bool       `yaml:"hard-columns,omitempty"`
	FreeCells   []string   `yaml:"free-cells"`
	Foundations []string   `yaml:"foundations"`
	Columns     [][]string `yaml:"columns"`
}

// ParseYAML reads a DealFile document into a position.
func ParseYAML(data []byte) (*board.Position, error) {
	var df DealFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	pos, err := board.NewPosition(board.Rules{
		Columns: len(df.Columns), FreeCells: len(df.FreeCells), HardColumns: df.HardColumns})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	for i, name := range df.FreeCells {
		c, err := card.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: free cell %d: %w", ErrMalformed, i, err)
		}
		pos.SetFreeCell(i, c)
	}
	if len(df.Foundations) > board.NumFoundations {
		return nil, fmt.Errorf("%w: %d foundations", ErrMalformed, len(df.Foundations))
	}
	for i, name := range df.Foundations {
		top, err := card.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: foundation %d: %w", ErrMalformed, i, err)
		}
		if !top.IsReal() {
			continue
		}
		if top.Suit != board.FoundationSuit(i) {
			return nil, fmt.Errorf("%w: %v on foundation %d", ErrMalformed, top, i)
		}
		for r := card.Ace; r <= top.Rank; r++ {
			pos.PushFoundation(i, card.Card{Rank: r, Suit: top.Suit})
		}
	}
	for j, col := range df.Columns {
		for _, name := range col {
			c, err := card.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("%w: column %d: %w", ErrMalformed, j, err)
			}
			if !c.IsReal() {
				return nil, fmt.Errorf("%w: empty card in column %d", ErrMalformed, j)
			}
			pos.PushColumn(j, c)
		}
	}
	if err := pos.ValidateStructure(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return pos, nil
}

// LoadYAML reads a DealFile from disk.
func LoadYAML(path string) (*board.Position, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseYAML(data)
}

// ToYAML is the inverse of ParseYAML.
func ToYAML(pos *board.Position) ([]byte, error) {
	df := DealFile{
		HardColumns: pos.Rules().HardColumns,
		FreeCells:   make([]string, pos.NumFreeCells()),
		Foundations: make([]string, board.NumFoundations),
		Columns:     make([][]string, pos.NumColumns()),
	}
	for i := range df.FreeCells {
		df.FreeCells[i] = pos.FreeCell(i).String()
	}
	for i := range df.Foundations {
		df.Foundations[i] = "--"
		if top := pos.FoundationTop(i); top.IsReal() {
			df.Foundations[i] = top.String()
		}
	}
	for j := range df.Columns {
		col := pos.Column(j)[1:]
		df.Columns[j] = make([]string, len(col))
		for k, c := range col {
			df.Columns[j][k] = c.String()
		}
	}
	return yaml.Marshal(df)
}
