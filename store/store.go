// Package store keeps the current position between runs. A store only
// moves opaque blobs; fcn decides what is in them.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/game"
)

var ErrNotFound = errors.New("not found")

const (
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindNone   = "none"
)

// File keeps the position in a single file.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Load(ctx context.Context) (string, bool, error) {
	bts, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(bts), true, nil
}

// Save writes to a temporary file next to the target and renames it into
// place, so a reader never sees half a position.
func (f *File) Save(ctx context.Context, blob string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(blob); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Nop never has a position and forgets whatever it is given.
type Nop struct{}

func (Nop) Load(ctx context.Context) (string, bool, error) { return "", false, nil }

func (Nop) Save(ctx context.Context, blob string) error { return nil }

// Open returns the store of the given kind. For KindSQLite the caller
// should Close the result when done.
func Open(ctx context.Context, kind, path string) (game.Store, error) {
	log.Info().Str("kind", kind).Str("path", path).Msg("opening-store")
	switch kind {
	case KindFile:
		return NewFile(path), nil
	case KindSQLite:
		return OpenSQLite(ctx, path)
	case KindNone, "":
		return Nop{}, nil
	}
	return nil, fmt.Errorf("unknown store kind %q", kind)
}
