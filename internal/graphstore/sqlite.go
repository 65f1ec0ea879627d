// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nmjlab/papergraph/pkg/types"
)

const dbFile = "graph.db"

// SQLite implements Store on a local SQLite database: a nodes table keyed
// by normalized title and an edges table of (src, dst) pairs. Edge upserts
// materialize missing endpoint nodes with a null paper id, mirroring graph
// MERGE semantics, so references to not-yet-ingested papers still create
// structure.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLite opens or creates the graph database at cfg.DataDir/graph.db and
// bootstraps the schema.
func NewSQLite(cfg types.GraphStoreConfig) (*SQLite, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &SQLite{db: db, timeout: timeout}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			s_title TEXT PRIMARY KEY,
			paper_id TEXT,
			title TEXT
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_nodes_paper_id
			ON nodes(paper_id) WHERE paper_id IS NOT NULL`,
		`CREATE TABLE IF NOT EXISTS edges (
			src_s_title TEXT NOT NULL REFERENCES nodes(s_title),
			dst_s_title TEXT NOT NULL REFERENCES nodes(s_title),
			PRIMARY KEY (src_s_title, dst_s_title)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_dst ON edges(dst_s_title)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// UpsertNode creates or updates the node for the paper, keyed by its
// normalized title. A node previously materialized by an edge upsert gains
// its paper id here.
func (s *SQLite) UpsertNode(ctx context.Context, paperID, title string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO nodes (s_title, paper_id, title) VALUES (?, ?, ?)
		 ON CONFLICT(s_title) DO UPDATE SET paper_id = excluded.paper_id, title = excluded.title`,
		NormalizeTitle(title), paperID, title)
	if err != nil {
		return fmt.Errorf("%w: upsert node: %v", ErrUnavailable, err)
	}
	return nil
}

// UpsertEdge records that the paper titled title references the paper
// titled refTitle. Missing endpoint nodes are created without a paper id.
func (s *SQLite) UpsertEdge(ctx context.Context, title, refTitle string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	src := NormalizeTitle(title)
	dst := NormalizeTitle(refTitle)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	for _, key := range []string{src, dst} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (s_title) VALUES (?) ON CONFLICT(s_title) DO NOTHING`, key); err != nil {
			return fmt.Errorf("%w: merge node: %v", ErrUnavailable, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO edges (src_s_title, dst_s_title) VALUES (?, ?)
		 ON CONFLICT(src_s_title, dst_s_title) DO NOTHING`, src, dst); err != nil {
		return fmt.Errorf("%w: merge edge: %v", ErrUnavailable, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	return nil
}

// NeighborsOut returns the ids of papers the given paper references.
// Neighbor nodes without a paper id are skipped.
func (s *SQLite) NeighborsOut(ctx context.Context, paperID string) ([]string, error) {
	return s.neighbors(ctx,
		`SELECT q.paper_id
		 FROM nodes p
		 JOIN edges e ON e.src_s_title = p.s_title
		 JOIN nodes q ON q.s_title = e.dst_s_title
		 WHERE p.paper_id = ? AND q.paper_id IS NOT NULL`, paperID)
}

// NeighborsIn returns the ids of papers that reference the given paper.
func (s *SQLite) NeighborsIn(ctx context.Context, paperID string) ([]string, error) {
	return s.neighbors(ctx,
		`SELECT p.paper_id
		 FROM nodes q
		 JOIN edges e ON e.dst_s_title = q.s_title
		 JOIN nodes p ON p.s_title = e.src_s_title
		 WHERE q.paper_id = ? AND p.paper_id IS NOT NULL`, paperID)
}

func (s *SQLite) neighbors(ctx context.Context, query, paperID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("%w: neighbors: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %v", ErrUnavailable, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %v", ErrUnavailable, err)
	}
	return ids, nil
}
