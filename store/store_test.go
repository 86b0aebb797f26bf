package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/freecell/board"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/move"
)

var _ game.Store = (*File)(nil)
var _ game.Store = (*SQLite)(nil)
var _ game.Store = Nop{}

func TestFileRoundTrip(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "position.fcn")
	f := NewFile(path)

	_, ok, err := f.Load(ctx)
	is.NoErr(err)
	is.True(!ok)

	is.NoErr(f.Save(ctx, "first"))
	is.NoErr(f.Save(ctx, "second"))
	blob, ok, err := f.Load(ctx)
	is.NoErr(err)
	is.True(ok)
	is.Equal(blob, "second")

	entries, err := os.ReadDir(filepath.Dir(path))
	is.NoErr(err)
	is.Equal(len(entries), 1)
}

func TestNop(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	is.NoErr(Nop{}.Save(ctx, "x"))
	_, ok, err := Nop{}.Load(ctx)
	is.NoErr(err)
	is.True(!ok)
}

func TestOpenUnknownKind(t *testing.T) {
	is := is.New(t)
	_, err := Open(context.Background(), "redis", "")
	is.True(err != nil)
}

func TestSQLitePosition(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "freecell.db"))
	is.NoErr(err)
	defer s.Close()

	_, ok, err := s.Load(ctx)
	is.NoErr(err)
	is.True(!ok)

	// A game resumed from an empty store deals and saves.
	var seed [32]byte
	g, err := game.Resume(ctx, board.DefaultRules(), s, board.NewSeededShuffler(seed))
	is.NoErr(err)
	blob, ok, err := s.Load(ctx)
	is.NoErr(err)
	is.True(ok)

	resumed, err := game.Resume(ctx, board.DefaultRules(), s, nil)
	is.NoErr(err)
	is.Equal(fcn.Encode(resumed.Position()), blob)
	is.Equal(fcn.CanonicalKey(resumed.Position()), fcn.CanonicalKey(g.Position()))
}

func TestSQLiteSolutions(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "freecell.db"))
	is.NoErr(err)
	defer s.Close()

	key := "0-0-|0c/0d/8h/9s|Dh9h/Cs"
	_, err = s.LookupSolution(ctx, key)
	is.True(errors.Is(err, ErrNotFound))

	long := []move.Move{
		{From: move.Column(0, 1), To: move.FreeCell(0)},
		{From: move.Column(1, 1), To: move.FreeCell(1)},
		{From: move.Column(2, 0), To: move.Column(0, 0)},
	}
	short := long[:2]
	is.NoErr(s.SaveSolution(ctx, key, 3, long))
	is.NoErr(s.SaveSolution(ctx, key, 2, short))
	is.NoErr(s.SaveSolution(ctx, key, 3, long))

	sol, err := s.LookupSolution(ctx, key)
	is.NoErr(err)
	is.Equal(sol.Steps, 2)
	is.Equal(sol.Moves, short)
}
