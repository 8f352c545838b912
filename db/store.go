// Package db keeps a manifest of generated datasets.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run is one invocation of a dataset command.
type Run struct {
	ID        string
	Command   string
	Seed      uint64
	Params    string
	CreatedAt time.Time
}

// Dataset is one file written by a run.
type Dataset struct {
	ID     string
	RunID  string
	Model  string
	Index  int
	Kind   string
	Path   string
	Format string
	Rows   int
	Cols   int
}

// Store records runs and the datasets they wrote.
type Store interface {
	SaveRun(ctx context.Context, run Run, datasets []Dataset) error
	ListDatasets(ctx context.Context, runID string) ([]Dataset, error)
	Close() error
}

// SQLStore is a Store backed by SQLite.
type SQLStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the manifest database and runs migrations.
func NewSQLiteStore(path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func (store *SQLStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id         TEXT PRIMARY KEY,
			command    TEXT NOT NULL,
			seed       INTEGER NOT NULL,
			params     TEXT,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id      TEXT PRIMARY KEY,
			run_id  TEXT NOT NULL REFERENCES runs(id),
			model   TEXT,
			idx     INTEGER NOT NULL,
			kind    TEXT NOT NULL,
			path    TEXT NOT NULL,
			format  TEXT NOT NULL,
			nrows   INTEGER NOT NULL,
			ncols   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_run ON datasets(run_id)`,
	}
	for _, s := range stmts {
		if _, err := store.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:30], err)
		}
	}
	return nil
}

// execTx runs fn inside a transaction, rolling back on error.
func (store *SQLStore) execTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

// SaveRun stores run and its datasets atomically. Empty IDs are generated.
func (store *SQLStore) SaveRun(ctx context.Context, run Run, datasets []Dataset) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if run.ID == "" {
		run.ID = NewRunID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	return store.execTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO runs (id, command, seed, params, created_at) VALUES (?,?,?,?,?)`,
			run.ID, run.Command, int64(run.Seed), run.Params, run.CreatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		for _, d := range datasets {
			if d.ID == "" {
				d.ID = uuid.NewString()
			}
			_, err := tx.ExecContext(ctx, `INSERT INTO datasets
				(id, run_id, model, idx, kind, path, format, nrows, ncols)
				VALUES (?,?,?,?,?,?,?,?,?)`,
				d.ID, run.ID, d.Model, d.Index, d.Kind, d.Path, d.Format, d.Rows, d.Cols)
			if err != nil {
				return fmt.Errorf("insert dataset %s: %w", d.Path, err)
			}
		}
		return nil
	})
}

// ListDatasets returns the datasets of a run in insertion order.
func (store *SQLStore) ListDatasets(ctx context.Context, runID string) ([]Dataset, error) {
	rows, err := store.db.QueryContext(ctx, `SELECT id, run_id, model, idx, kind, path, format, nrows, ncols
		FROM datasets WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dataset
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.ID, &d.RunID, &d.Model, &d.Index, &d.Kind, &d.Path, &d.Format, &d.Rows, &d.Cols); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetRun returns a stored run.
func (store *SQLStore) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var seed, created int64
	var params sql.NullString
	err := store.db.QueryRowContext(ctx, `SELECT id, command, seed, params, created_at FROM runs WHERE id = ?`, id).
		Scan(&run.ID, &run.Command, &seed, &params, &created)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	run.Params = params.String
	run.CreatedAt = time.Unix(0, created)
	return run, nil
}

// Close closes the database.
func (store *SQLStore) Close() error {
	return store.db.Close()
}
