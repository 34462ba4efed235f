// Package visits keeps a persistent, process-shared usage counter in SQLite.
package visits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Store wraps the SQLite database holding the counter.
type Store struct {
	db *sql.DB
}

// Open opens or creates the counter database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating visits directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening visits database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	schema := `CREATE TABLE IF NOT EXISTS visits (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		count INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Increment adds one to the counter and returns the new value.
func (s *Store) Increment(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO visits (id, count) VALUES (1, 1)
		 ON CONFLICT(id) DO UPDATE SET count = count + 1`); err != nil {
		return 0, fmt.Errorf("incrementing counter: %w", err)
	}

	var n int64
	if err := tx.QueryRowContext(ctx, `SELECT count FROM visits WHERE id = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return n, nil
}

// Count returns the current counter value; zero before the first increment.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT count FROM visits WHERE id = 1`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading counter: %w", err)
	}
	return n, nil
}

// Counter is a lazily opened Store shared by a whole process. The database
// is opened on first use; later calls reuse it.
type Counter struct {
	path  string
	once  sync.Once
	store *Store
	err   error
}

// NewCounter returns a Counter backed by the database at path.
func NewCounter(path string) *Counter {
	return &Counter{path: path}
}

func (c *Counter) open() (*Store, error) {
	c.once.Do(func() {
		c.store, c.err = Open(c.path)
	})
	return c.store, c.err
}

// Increment records one visit and returns the new total.
func (c *Counter) Increment(ctx context.Context) (int64, error) {
	s, err := c.open()
	if err != nil {
		return 0, err
	}
	return s.Increment(ctx)
}

// Count returns the current total.
func (c *Counter) Count(ctx context.Context) (int64, error) {
	s, err := c.open()
	if err != nil {
		return 0, err
	}
	return s.Count(ctx)
}

// Close closes the underlying store if it was opened.
func (c *Counter) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
