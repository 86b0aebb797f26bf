package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/freecell/board"
)

func TestDefaultConfig(t *testing.T) {
	is := is.New(t)
	cfg := DefaultConfig()
	is.Equal(cfg.Rules(), board.DefaultRules())
	is.Equal(cfg.GetString(ConfigStore), "file")
	is.Equal(cfg.GetFloat64(ConfigSolverMemoryFraction), 0.25)
	is.Equal(cfg.GetUint64(ConfigSolverMaxNodes), uint64(0))
	is.Equal(cfg.StorePath(), filepath.Join("data", "position.fcn"))
}

func TestLoadPrecedence(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("columns: 6\nfree-cells: 2\nstore: sqlite\n"), 0o644)
	is.NoErr(err)
	t.Setenv("FREECELL_FREE_CELLS", "3")

	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--data-path=" + dir, "--store=none"}))
	is.Equal(cfg.GetInt(ConfigColumns), 6)
	is.Equal(cfg.GetInt(ConfigFreeCells), 3)
	is.Equal(cfg.GetString(ConfigStore), "none")
	is.Equal(cfg.Rules(), board.Rules{Columns: 6, FreeCells: 3})
}

func TestLoadWithoutConfigFile(t *testing.T) {
	is := is.New(t)
	cfg := &Config{}
	is.NoErr(cfg.Load([]string{"--data-path=" + t.TempDir(), "--store=sqlite"}))
	is.Equal(cfg.Rules(), board.DefaultRules())
	is.Equal(filepath.Base(cfg.StorePath()), "freecell.db")
}
