package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/sitecfg/internal/manifest"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (and if needed creates) a run history database.
// Use ":memory:" for an in-memory database.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatabaseOpenFailed, err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrInitializeSchemaFailed, err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		document TEXT NOT NULL,
		status TEXT NOT NULL,
		document_hash TEXT NOT NULL,
		content_hash TEXT,
		duration_ms INTEGER NOT NULL,
		diagnostics TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores run. Recording the same ID twice replaces the earlier row.
func (s *SQLiteStore) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var diagJSON []byte
	if len(run.Diagnostics) > 0 {
		var err error
		if diagJSON, err = json.Marshal(run.Diagnostics); err != nil {
			return fmt.Errorf("%w: marshal diagnostics: %w", ErrRecordFailed, err)
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, timestamp, document, status, document_hash, content_hash, duration_ms, diagnostics)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Timestamp.UnixMilli(), run.Document, string(run.Status), run.DocumentHash, run.ContentHash, run.DurationMS, string(diagJSON),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}
	return nil
}

const selectRuns = `SELECT id, timestamp, document, status, document_hash, content_hash, duration_ms, diagnostics FROM runs`

// Recent returns up to limit runs, newest first. limit <= 0 returns all runs.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %w", ErrQueryFailed, err)
	}
	return runs, nil
}

// Get returns the run with id, or ErrRunNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		ts          int64
		status      string
		contentHash sql.NullString
		diagJSON    sql.NullString
	)
	if err := row.Scan(&run.ID, &ts, &run.Document, &status, &run.DocumentHash, &contentHash, &run.DurationMS, &diagJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("%w: scan run: %w", ErrQueryFailed, err)
	}
	run.Timestamp = time.UnixMilli(ts).UTC()
	run.Status = manifest.Status(status)
	run.ContentHash = contentHash.String
	if diagJSON.String != "" {
		if err := json.Unmarshal([]byte(diagJSON.String), &run.Diagnostics); err != nil {
			return Run{}, fmt.Errorf("%w: unmarshal diagnostics: %w", ErrQueryFailed, err)
		}
	}
	return run, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
