package shell

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/game"
	"github.com/domino14/freecell/store"
)

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.csv",
			&shellcmd{"autoplay", nil, map[string]string{"file": "/path/to/log.csv"}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, map[string]string{}},
			nil},
		{"autoplay 100 -file 'my results.csv' -threads 4 ",
			&shellcmd{"autoplay",
				[]string{"100"},
				map[string]string{"file": "my results.csv", "threads": "4"}},
			nil,
		},
		{"autoplay 100 -file",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func testController(t *testing.T) *ShellController {
	t.Helper()
	sc := newController(config.DefaultConfig())
	ctx := context.Background()
	resp, err := sc.Execute(ctx, "load testdata/blocked_hearts.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resp.message, "Sources: c0 c1 c2 c3") {
		t.Fatalf("unexpected board:\n%s", resp.message)
	}
	return sc
}

func TestClickAndCancel(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := testController(t)

	resp, err := sc.Execute(ctx, "click c0")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "[K♠]"))
	resp, err = sc.Execute(ctx, "options")
	is.NoErr(err)
	is.Equal(resp.message, "source-chosen: f0 f1")

	_, err = sc.Execute(ctx, "cancel")
	is.NoErr(err)
	is.Equal(sc.game.State(), game.Idle)

	// A slot that is not an option cancels too.
	_, err = sc.Execute(ctx, "s c1")
	is.NoErr(err)
	_, err = sc.Execute(ctx, "s c2")
	is.NoErr(err)
	is.Equal(sc.game.State(), game.Idle)

	_, err = sc.Execute(ctx, "click h0")
	is.NoErr(err)
	is.Equal(sc.game.State(), game.Idle)

	_, err = sc.Execute(ctx, "click z9")
	is.True(err != nil)
}

func TestHintAndPlay(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := testController(t)

	resp, err := sc.Execute(ctx, "hint")
	is.NoErr(err)
	is.True(strings.HasSuffix(resp.message, "(2 steps to go)"))
	is.Equal(sc.hints.Len(), 1)

	_, err = sc.Execute(ctx, "play")
	is.NoErr(err)
	is.Equal(sc.hints.Len(), 2)
	resp, err = sc.Execute(ctx, "play")
	is.NoErr(err)
	is.True(sc.game.Won())
	is.True(strings.Contains(resp.message, "You won!"))

	resp, err = sc.Execute(ctx, "hint")
	is.NoErr(err)
	is.Equal(resp.message, "Nothing to do.")
}

func TestSolveRemembersSolution(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newController(config.DefaultConfig())
	db, err := store.OpenSQLite(ctx, filepath.Join(t.TempDir(), "freecell.db"))
	is.NoErr(err)
	sc.store = db
	sc.solutions = db
	defer sc.Close()

	_, err = sc.Execute(ctx, "load testdata/blocked_hearts.yaml")
	is.NoErr(err)
	resp, err := sc.Execute(ctx, "solve")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "Solution: 2 steps:"))

	sol, err := db.LookupSolution(ctx, fcn.CanonicalKey(sc.game.Position()))
	is.NoErr(err)
	is.Equal(sol.Steps, 2)

	resp, err = sc.Execute(ctx, "solve")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "Best known for this position: 2 steps"))

	blob, ok, err := db.Load(ctx)
	is.NoErr(err)
	is.True(ok)
	is.Equal(blob, fcn.Encode(sc.game.Position()))
}

func TestExportAndLoadEncoded(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := testController(t)

	resp, err := sc.Execute(ctx, "export")
	is.NoErr(err)
	encoded := resp.message

	_, err = sc.Execute(ctx, "new")
	is.NoErr(err)
	is.True(fcn.Encode(sc.game.Position()) != encoded)

	_, err = sc.Execute(ctx, "load '"+encoded+"'")
	is.NoErr(err)
	is.Equal(fcn.Encode(sc.game.Position()), encoded)

	resp, err = sc.Execute(ctx, "export yaml")
	is.NoErr(err)
	is.True(strings.Contains(resp.message, "columns:"))

	resp, err = sc.Execute(ctx, "key")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, fcn.CanonicalKey(sc.game.Position())+"\n"))
}

func TestNewWithSeedIsReproducible(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newController(config.DefaultConfig())

	resp, err := sc.Execute(ctx, "new")
	is.NoErr(err)
	seedLine, _, _ := strings.Cut(resp.message, "\n")
	seed := strings.TrimPrefix(seedLine, "Seed: ")
	first := fcn.Encode(sc.game.Position())

	_, err = sc.Execute(ctx, "new "+seed)
	is.NoErr(err)
	is.Equal(fcn.Encode(sc.game.Position()), first)

	_, err = sc.Execute(ctx, "new notaseed")
	is.True(err != nil)
}

func TestHelpAndUnknown(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	sc := newController(config.DefaultConfig())

	resp, err := sc.Execute(ctx, "help")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "Usage:"))
	resp, err = sc.Execute(ctx, "help click")
	is.NoErr(err)
	is.True(strings.HasPrefix(resp.message, "click <slot>"))
	resp, err = sc.Execute(ctx, "help nope")
	is.NoErr(err)
	is.Equal(resp.message, "There is no help text for the topic nope")

	_, err = sc.Execute(ctx, "show")
	is.True(errors.Is(err, errNoGame))
	_, err = sc.Execute(ctx, "frobnicate")
	is.True(err != nil)
}

func TestCompleter(t *testing.T) {
	sc := testController(t)
	c := NewShellCompleter(sc)

	line := []rune("cli")
	matches, n := c.Do(line, len(line))
	assert.Equal(t, 3, n)
	assert.ElementsMatch(t, [][]rune{[]rune("ck")}, matches)

	line = []rune("click ")
	matches, n = c.Do(line, len(line))
	assert.Equal(t, 0, n)
	assert.Len(t, matches, 4)

	line = []rune("autoplay -t")
	matches, _ = c.Do(line, len(line))
	assert.ElementsMatch(t, [][]rune{[]rune("hreads")}, matches)
}
