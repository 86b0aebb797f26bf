package solver

import (
	"fmt"
	"math"
	"strings"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/move"
)

// UnsolvedSteps is the step count of a seed scorecard. Any real solution
// beats it.
const UnsolvedSteps = math.MaxInt

// Scorecard is a candidate solution path: the position it leads to, how
// many moves it took, and the moves. Auto-moves are not counted or listed;
// replaying Moves through game.Select reproduces them.
type Scorecard struct {
	Position *board.Position
	Steps    int
	Moves    []move.Move
}

// Unsolved returns a seed scorecard for pos.
func Unsolved(pos *board.Position) Scorecard {
	return Scorecard{Position: pos, Steps: UnsolvedSteps}
}

func (s Scorecard) Solved() bool {
	return s.Steps != UnsolvedSteps
}

// Destinations is the destination selection of every move, in order.
func (s Scorecard) Destinations() []move.Selection {
	dests := make([]move.Selection, len(s.Moves))
	for i, m := range s.Moves {
		dests[i] = m.To
	}
	return dests
}

// extend returns a new scorecard one move longer. The receiver is not
// modified and shares nothing writable with the result.
func (s Scorecard) extend(m move.Move, pos *board.Position) Scorecard {
	moves := make([]move.Move, len(s.Moves)+1)
	copy(moves, s.Moves)
	moves[len(s.Moves)] = m
	return Scorecard{Position: pos, Steps: s.Steps + 1, Moves: moves}
}

func better(a, b Scorecard) Scorecard {
	if a.Steps < b.Steps {
		return a
	}
	return b
}

func (s Scorecard) String() string {
	if !s.Solved() {
		return "unsolved"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d steps:", s.Steps)
	for _, m := range s.Moves {
		sb.WriteString(" " + m.ShortDescription())
	}
	return sb.String()
}
