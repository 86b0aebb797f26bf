package cache

import (
	"errors"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/freecell/solver"
)

func TestSolutionsEvictsOldest(t *testing.T) {
	is := is.New(t)
	c := NewSolutions(2)
	c.Add("a", solver.Scorecard{Steps: 1})
	c.Add("b", solver.Scorecard{Steps: 2})
	_, ok := c.Get("a")
	is.True(ok)
	c.Add("c", solver.Scorecard{Steps: 3})

	is.Equal(c.Len(), 2)
	_, ok = c.Get("b")
	is.True(!ok)
	sc, ok := c.Get("a")
	is.True(ok)
	is.Equal(sc.Steps, 1)
}

func TestLoadSolvesOnce(t *testing.T) {
	is := is.New(t)
	c := NewSolutions(0)
	calls := 0
	solve := func() (solver.Scorecard, error) {
		calls++
		return solver.Scorecard{Steps: 7}, nil
	}
	for i := 0; i < 3; i++ {
		sc, err := c.Load("k", solve)
		is.NoErr(err)
		is.Equal(sc.Steps, 7)
	}
	is.Equal(calls, 1)
}

func TestLoadDoesNotCacheFailures(t *testing.T) {
	is := is.New(t)
	c := NewSolutions(4)
	_, err := c.Load("k", func() (solver.Scorecard, error) {
		return solver.Scorecard{}, solver.ErrNoSolution
	})
	is.True(errors.Is(err, solver.ErrNoSolution))
	is.Equal(c.Len(), 0)
}
