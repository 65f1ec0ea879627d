// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest runs submitted papers through the storage pipeline and
// tracks each request's progress through the stage sequence.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nmjlab/papergraph/pkg/types"
)

const statusDBFile = "status.db"

// ErrUnknownRequest indicates no status record exists for the request id.
var ErrUnknownRequest = errors.New("unknown request id")

// ErrIllegalTransition indicates an attempt to move a status record to a
// stage other than its immediate successor.
var ErrIllegalTransition = errors.New("illegal stage transition")

// StatusStore persists upload status records in SQLite.
type StatusStore struct {
	db      *sql.DB
	timeout time.Duration

	// now is overridden in tests for deterministic timestamps.
	now func() time.Time
}

// NewStatusStore opens or creates the status database at
// cfg.DataDir/status.db and bootstraps the schema.
func NewStatusStore(cfg types.DocumentStoreConfig) (*StatusStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, statusDBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &StatusStore{db: db, timeout: timeout, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *StatusStore) Close() error {
	return s.db.Close()
}

func (s *StatusStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS upload_status (
		request_id TEXT PRIMARY KEY,
		filename TEXT NOT NULL,
		stage TEXT NOT NULL,
		requested_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Create registers a new upload at the submitted stage and returns its
// request id.
func (s *StatusStore) Create(ctx context.Context, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	requestID := uuid.NewString()
	now := s.now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO upload_status (request_id, filename, stage, requested_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		requestID, filename, string(types.StageSubmitted), now, now)
	if err != nil {
		return "", fmt.Errorf("inserting status record: %w", err)
	}
	return requestID, nil
}

// Advance moves the record to stage to. Only the immediate successor of the
// current stage is accepted; the check and the update run in one transaction.
func (s *StatusStore) Advance(ctx context.Context, requestID string, to types.IngestStage) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx,
		`SELECT stage FROM upload_status WHERE request_id = ?`, requestID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	if err != nil {
		return fmt.Errorf("reading current stage: %w", err)
	}

	if !types.IngestStage(current).CanAdvance(to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, to)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE upload_status SET stage = ?, updated_at = ? WHERE request_id = ?`,
		string(to), s.now().UTC(), requestID)
	if err != nil {
		return fmt.Errorf("updating stage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Get returns the status record for requestID.
func (s *StatusStore) Get(ctx context.Context, requestID string) (types.IngestStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var st types.IngestStatus
	var stage string
	err := s.db.QueryRowContext(ctx,
		`SELECT request_id, filename, stage, requested_at, updated_at
		 FROM upload_status WHERE request_id = ?`, requestID).
		Scan(&st.RequestID, &st.Filename, &stage, &st.RequestedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return types.IngestStatus{}, fmt.Errorf("%w: %s", ErrUnknownRequest, requestID)
	}
	if err != nil {
		return types.IngestStatus{}, fmt.Errorf("reading status record: %w", err)
	}
	st.Stage = types.IngestStage(stage)
	return st, nil
}
