// Package testcommon holds board fixtures shared by the tests of packages
// that sit above the game package.
package testcommon

import (
	"context"
	"embed"
	"testing"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
)

//go:embed testdata/*.yaml
var fixtures embed.FS

const (
	// BlockedHearts needs exactly two moves: both kings out of the way.
	BlockedHearts = "blocked_hearts"
	// Stuck has both free cells full and nothing to move.
	Stuck = "stuck"
	// Won has every card on the foundations.
	Won = "won"
	// AutoPromote promotes cards as soon as the game starts.
	AutoPromote = "autopromote"
)

func Position(t testing.TB, name string) *board.Position {
	t.Helper()
	data, err := fixtures.ReadFile("testdata/" + name + ".yaml")
	if err != nil {
		t.Fatal(err)
	}
	pos, err := fcn.ParseYAML(data)
	if err != nil {
		t.Fatal(err)
	}
	return pos
}

// Game wraps a fixture in a game with no store.
func Game(t testing.TB, name string) *game.Game {
	t.Helper()
	g, err := game.NewGame(context.Background(), Position(t, name), nil)
	if err != nil {
		t.Fatal(err)
	}
	return g
}
