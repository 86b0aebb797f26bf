package board

import (
	"lukechampine.com/frand"

	"github.com/domino14/freecell/card"
)

// Shuffler is satisfied by *frand.RNG. A nil Shuffler means the global
// frand generator.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// NewSeededShuffler returns a deterministic generator for a 32-byte seed,
// so a deal can be reproduced later.
func NewSeededShuffler(seed [32]byte) *frand.RNG {
	return frand.NewCustom(seed[:], 1024, 12)
}

// Deal shuffles a full deck and deals it round-robin across the columns,
// starting with column 0. It also returns the number of cards dealt to
// each column.
func Deal(rules Rules, rng Shuffler) (*Position, []int, error) {
	p, err := NewPosition(rules)
	if err != nil {
		return nil, nil, err
	}
	deck := card.NewDeck()
	swap := func(i, j int) { deck[i], deck[j] = deck[j], deck[i] }
	if rng == nil {
		frand.Shuffle(len(deck), swap)
	} else {
		rng.Shuffle(len(deck), swap)
	}
	dealt := make([]int, rules.Columns)
	for i, c := range deck {
		j := i % rules.Columns
		p.PushColumn(j, c)
		dealt[j]++
	}
	return p, dealt, nil
}
