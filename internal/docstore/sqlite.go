// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nmjlab/papergraph/pkg/types"
)

const dbFile = "documents.db"

// SQLite implements Store on a local SQLite database. Scalar fields get
// their own columns; nested slices and the summary are stored as JSON.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSQLite opens or creates the document database at
// cfg.DataDir/documents.db and bootstraps the schema.
func NewSQLite(cfg types.DocumentStoreConfig) (*SQLite, error) {
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
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		title TEXT,
		abstract TEXT,
		body TEXT,
		summary TEXT,
		refs TEXT,
		published_year TEXT,
		impact INTEGER,
		authors TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Get returns the record for id, or (nil, nil) when absent.
func (s *SQLite) Get(ctx context.Context, id string) (*types.Paper, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		p           types.Paper
		bodyJSON    sql.NullString
		summaryJSON sql.NullString
		refsJSON    sql.NullString
		authorsJSON sql.NullString
		title       sql.NullString
		abstract    sql.NullString
		year        sql.NullString
		impact      sql.NullInt64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, abstract, body, summary, refs, published_year, impact, authors
		 FROM papers WHERE id = ?`, id,
	).Scan(&p.ID, &title, &abstract, &bodyJSON, &summaryJSON, &refsJSON, &year, &impact, &authorsJSON)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", ErrUnavailable, id, err)
	}

	p.Title = title.String
	p.Abstract = abstract.String
	p.PublishedYear = year.String
	p.Impact = int(impact.Int64)

	if bodyJSON.Valid && bodyJSON.String != "" {
		if err := json.Unmarshal([]byte(bodyJSON.String), &p.Body); err != nil {
			return nil, fmt.Errorf("decoding body of %s: %w", id, err)
		}
	}
	if summaryJSON.Valid && summaryJSON.String != "" {
		if err := json.Unmarshal([]byte(summaryJSON.String), &p.Summary); err != nil {
			return nil, fmt.Errorf("decoding summary of %s: %w", id, err)
		}
	}
	if refsJSON.Valid && refsJSON.String != "" {
		if err := json.Unmarshal([]byte(refsJSON.String), &p.References); err != nil {
			return nil, fmt.Errorf("decoding references of %s: %w", id, err)
		}
	}
	if authorsJSON.Valid && authorsJSON.String != "" {
		if err := json.Unmarshal([]byte(authorsJSON.String), &p.Authors); err != nil {
			return nil, fmt.Errorf("decoding authors of %s: %w", id, err)
		}
	}

	return &p, nil
}

// Upsert writes the full record, replacing any previous version.
func (s *SQLite) Upsert(ctx context.Context, paper types.Paper) error {
	if paper.ID == "" {
		return fmt.Errorf("paper id is required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	bodyJSON, err := marshalOrNil(paper.Body)
	if err != nil {
		return err
	}
	summaryJSON, err := marshalOrNil(paper.Summary)
	if err != nil {
		return err
	}
	refsJSON, err := marshalOrNil(paper.References)
	if err != nil {
		return err
	}
	authorsJSON, err := marshalOrNil(paper.Authors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, abstract, body, summary, refs, published_year, impact, authors)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			body = excluded.body,
			summary = excluded.summary,
			refs = excluded.refs,
			published_year = excluded.published_year,
			impact = excluded.impact,
			authors = excluded.authors`,
		paper.ID, paper.Title, paper.Abstract, bodyJSON, summaryJSON, refsJSON,
		paper.PublishedYear, paper.Impact, authorsJSON)
	if err != nil {
		return fmt.Errorf("%w: upsert %s: %v", ErrUnavailable, paper.ID, err)
	}
	return nil
}

// Patch applies a partial update to the stored record and returns the
// merged result.
func (s *SQLite) Patch(ctx context.Context, id string, patch types.PaperPatch) (*types.Paper, error) {
	base, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	merged := patch.Apply(*base)
	if err := s.Upsert(ctx, merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

// marshalOrNil serializes v to JSON, mapping nil slices and pointers to a
// SQL NULL so absent fields stay absent.
func marshalOrNil(v any) (any, error) {
	switch x := v.(type) {
	case []types.Paragraph:
		if x == nil {
			return nil, nil
		}
	case []string:
		if x == nil {
			return nil, nil
		}
	case *types.Summary:
		if x == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding field: %w", err)
	}
	return string(data), nil
}
