// Package sqlite provides a SQLite-backed run store using the pure-Go
// modernc.org/sqlite driver, so deployments need no cgo toolchain.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/agencyboard/agentrun/runloop"
	"github.com/agencyboard/agentrun/runstore"
)

// Store implements runstore.Store on a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open creates or opens the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// WAL keeps concurrent readers (status polling) from blocking the
	// writer (the progress sink).
	dsn := path + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		message TEXT,
		message_history TEXT,
		pending_tool TEXT,
		total_input_tokens INTEGER NOT NULL DEFAULT 0,
		total_output_tokens INTEGER NOT NULL DEFAULT 0,
		iteration_count INTEGER NOT NULL DEFAULT 0,
		output TEXT,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Save implements runstore.Store with an upsert keyed by run id.
func (s *Store) Save(ctx context.Context, rec runstore.Record) error {
	query := `
	INSERT INTO runs (run_id, status, message, message_history, pending_tool,
		total_input_tokens, total_output_tokens, iteration_count, output, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id) DO UPDATE SET
		status = excluded.status,
		message = excluded.message,
		message_history = excluded.message_history,
		pending_tool = excluded.pending_tool,
		total_input_tokens = excluded.total_input_tokens,
		total_output_tokens = excluded.total_output_tokens,
		iteration_count = excluded.iteration_count,
		output = excluded.output,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		rec.RunID, string(rec.Status), nullable(rec.Message),
		nullable(string(rec.MessageHistory)), nullable(string(rec.PendingTool)),
		rec.TotalInputTokens, rec.TotalOutputTokens, rec.IterationCount,
		nullable(rec.Output), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.RunID, err)
	}
	return nil
}

// Load implements runstore.Store.
func (s *Store) Load(ctx context.Context, runID string) (runstore.Record, error) {
	query := `
	SELECT run_id, status, message, message_history, pending_tool,
	       total_input_tokens, total_output_tokens, iteration_count, output, updated_at
	FROM runs WHERE run_id = ?`

	row := s.db.QueryRowContext(ctx, query, runID)

	var rec runstore.Record
	var status string
	var message, history, pending, output sql.NullString
	var updatedAt int64

	err := row.Scan(&rec.RunID, &status, &message, &history, &pending,
		&rec.TotalInputTokens, &rec.TotalOutputTokens, &rec.IterationCount,
		&output, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return runstore.Record{}, runstore.ErrNotFound
	}
	if err != nil {
		return runstore.Record{}, fmt.Errorf("scan run row: %w", err)
	}

	rec.Status = runloop.Status(status)
	rec.Message = message.String
	if history.Valid {
		rec.MessageHistory = []byte(history.String)
	}
	if pending.Valid {
		rec.PendingTool = []byte(pending.String)
	}
	rec.Output = output.String
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return rec, nil
}

// Close implements runstore.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
