package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/domino14/freecell/fcn"
	"github.com/domino14/freecell/move"
)

const schema = `
CREATE TABLE IF NOT EXISTS position (
	id   INTEGER PRIMARY KEY,
	blob TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS solution (
	hash  INTEGER NOT NULL,
	key   TEXT NOT NULL,
	steps INTEGER NOT NULL,
	moves TEXT NOT NULL,
	PRIMARY KEY (hash, key)
);
`

// There is only ever one current position.
const currentPosition = 1

const writeAttempts = 5

// Solution is a solved position as the solution table holds it.
type Solution struct {
	Key   string
	Steps int
	Moves []move.Move
}

// SQLite keeps the current position and a table of solved positions.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context) (string, bool, error) {
	var blob string
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM position WHERE id = ?`, currentPosition).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return blob, true, nil
}

func (s *SQLite) Save(ctx context.Context, blob string) error {
	return s.write(ctx, `INSERT INTO position (id, blob) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET blob = excluded.blob`, currentPosition, blob)
}

// SaveSolution records a solution for the position with canonical key key.
// A shorter solution already on file is kept.
func (s *SQLite) SaveSolution(ctx context.Context, key string, steps int, moves []move.Move) error {
	descs := make([]string, len(moves))
	for i, m := range moves {
		descs[i] = m.Long()
	}
	return s.write(ctx, `INSERT INTO solution (hash, key, steps, moves) VALUES (?, ?, ?, ?)
		ON CONFLICT(hash, key) DO UPDATE SET steps = excluded.steps, moves = excluded.moves
		WHERE excluded.steps < solution.steps`,
		int64(fcn.KeyHash(key)), key, steps, strings.Join(descs, " "))
}

// LookupSolution returns ErrNotFound if nothing was saved for key.
func (s *SQLite) LookupSolution(ctx context.Context, key string) (Solution, error) {
	var steps int
	var moves string
	err := s.db.QueryRowContext(ctx,
		`SELECT steps, moves FROM solution WHERE hash = ? AND key = ?`,
		int64(fcn.KeyHash(key)), key).Scan(&steps, &moves)
	if errors.Is(err, sql.ErrNoRows) {
		return Solution{}, ErrNotFound
	}
	if err != nil {
		return Solution{}, err
	}
	sol := Solution{Key: key, Steps: steps}
	for _, f := range strings.Fields(moves) {
		m, err := move.ParseMove(f)
		if err != nil {
			return Solution{}, fmt.Errorf("solution for %s: %w", key, err)
		}
		sol.Moves = append(sol.Moves, m)
	}
	return sol, nil
}

func (s *SQLite) write(ctx context.Context, query string, args ...any) error {
	return retry.Do(
		func() error {
			_, err := s.db.ExecContext(ctx, query, args...)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(writeAttempts),
		retry.Delay(20*time.Millisecond),
		retry.RetryIf(isBusy),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Debug().Err(err).Uint("n", n).Msg("database-busy-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

func isBusy(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}
