// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vectorstore wraps the external vector index behind a narrow
// adapter: upsert a vector, nearest-neighbor query by vector, and fetch
// stored vectors by id. Namespaces partition vectors by embedding variant.
package vectorstore

import (
	"context"
	"errors"

	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrUnavailable reports that the vector index could not be reached or
// timed out. Surfaced to the caller as a failed search; never retried here.
var ErrUnavailable = errors.New("vector store unavailable")

// Store is the adapter contract the retrieval pipeline consumes.
//
// Query returns up to k ids ranked by the index's native metric; the scores
// are adapter-defined and not re-ranked by callers. Fetch returns the
// stored vectors for the given ids, silently omitting ids with no vector.
type Store interface {
	Upsert(ctx context.Context, id string, vec types.Vector, namespace string) error
	Query(ctx context.Context, vec types.Vector, k int, namespace string) ([]types.CandidateScore, error)
	Fetch(ctx context.Context, ids []string, namespace string) ([]types.Candidate, error)
}
