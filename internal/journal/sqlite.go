package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (creating if needed) the journal at dbPath.
// Use ":memory:" for an in-memory journal.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		identity TEXT NOT NULL DEFAULT '',
		artifact TEXT NOT NULL DEFAULT '',
		requested TEXT NOT NULL,
		released TEXT NOT NULL,
		mirrored_to TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		stage TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records a finished run.
func (s *SQLiteStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requested, err := json.Marshal(nonNil(e.Requested))
	if err != nil {
		return fmt.Errorf("marshal requested channels: %w", err)
	}
	released, err := json.Marshal(nonNil(e.Released))
	if err != nil {
		return fmt.Errorf("marshal released channels: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, duration_ms, identity, artifact, requested, released, mirrored_to, outcome, stage, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID, e.StartedAt.UnixMilli(), e.Duration.Milliseconds(), e.Identity, e.Artifact,
		string(requested), string(released), e.MirroredTo, e.Outcome, e.Stage, e.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, duration_ms, identity, artifact, requested, released, mirrored_to, outcome, stage, error
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			startedMS, durMS    int64
			requested, released string
		)
		if err := rows.Scan(&e.RunID, &startedMS, &durMS, &e.Identity, &e.Artifact,
			&requested, &released, &e.MirroredTo, &e.Outcome, &e.Stage, &e.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durMS) * time.Millisecond
		if err := json.Unmarshal([]byte(requested), &e.Requested); err != nil {
			return nil, fmt.Errorf("unmarshal requested channels: %w", err)
		}
		if err := json.Unmarshal([]byte(released), &e.Released); err != nil {
			return nil, fmt.Errorf("unmarshal released channels: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
