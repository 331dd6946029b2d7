// Package history keeps a journal of fetch attempts. It is informational
// only: confirmation files decide whether an artifact is obtained.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

type Entry struct {
	ID        int64
	Name      string
	Kind      string
	Outcome   string
	Error     string
	StartedAt time.Time
	Duration  time.Duration
}

type Journal struct {
	db *sql.DB
}

// DefaultPath returns $XDG_STATE_HOME/neurobik/history.db, falling back to
// ~/.local/state.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "neurobik", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".local", "state", "neurobik", "history.db"), nil
}

// Open opens (creating if needed) the journal at path and applies pending
// migrations.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Journal{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load journal migrations: %w", err)
	}
	drv, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to prepare journal migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", drv)
	if err != nil {
		return fmt.Errorf("failed to prepare journal migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate journal: %w", err)
	}
	// m.Close would close db as well; only the source needs releasing.
	return src.Close()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) Record(ctx context.Context, e Entry) error {
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO fetches (name, kind, outcome, error, started_at, duration_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Name, e.Kind, e.Outcome, e.Error, e.StartedAt.Unix(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record fetch of %s: %w", e.Name, err)
	}
	return nil
}

// List returns the most recent entries first. limit <= 0 means no limit.
func (j *Journal) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, name, kind, outcome, error, started_at, duration_ms FROM fetches ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var started, durMS int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Kind, &e.Outcome, &e.Error, &started, &durMS); err != nil {
			return nil, err
		}
		e.StartedAt = time.Unix(started, 0)
		e.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, e)
	}
	return out, rows.Err()
}
