// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docstore persists the canonical Paper records and serves the
// per-id lookups the retrieval pipeline joins against.
package docstore

import (
	"context"
	"errors"

	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrUnavailable reports that the document store could not be reached or
// timed out.
var ErrUnavailable = errors.New("document store unavailable")

// ErrNotFound reports a paper id with no stored record. Get does not return
// it; absent records are (nil, nil) so joins can skip dangling ids. Patch
// does, since patching nothing is a caller error.
var ErrNotFound = errors.New("paper not found")

// Store is the adapter contract for paper metadata.
type Store interface {
	// Get returns the record for id, or (nil, nil) when absent.
	Get(ctx context.Context, id string) (*types.Paper, error)

	// Upsert writes the full record, replacing any previous version.
	Upsert(ctx context.Context, paper types.Paper) error

	// Patch applies a partial update to the stored record and returns the
	// result. Fails with ErrNotFound when no record exists for id.
	Patch(ctx context.Context, id string, patch types.PaperPatch) (*types.Paper, error)
}
