// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retrieval implements the cross-store search pipeline: query
// embedding, candidate retrieval by vector similarity or graph adjacency,
// cosine re-ranking, and the join of ranked ids back to paper metadata.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nmjlab/papergraph/internal/docstore"
	"github.com/nmjlab/papergraph/internal/embedding"
	"github.com/nmjlab/papergraph/internal/graphstore"
	"github.com/nmjlab/papergraph/internal/similarity"
	"github.com/nmjlab/papergraph/internal/vectorstore"
	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrInvalidQuery reports a search request missing the mandatory domain
// field. It is rejected before any adapter call is made.
var ErrInvalidQuery = errors.New("invalid query: domain is required")

const (
	defaultK               = 5
	defaultJoinConcurrency = 4
)

// Orchestrator composes the embedding provider and the three store
// adapters into the two search operations. All collaborators are injected
// at construction; the orchestrator holds no ambient state and every
// request is independent.
type Orchestrator struct {
	embedder embedding.Provider
	vectors  vectorstore.Store
	graph    graphstore.Store
	docs     docstore.Store

	defaultK        int
	joinConcurrency int
}

// New builds an Orchestrator from its collaborators and search settings.
// Zero config values fall back to defaults (k=5, join concurrency 4).
func New(embedder embedding.Provider, vectors vectorstore.Store, graph graphstore.Store, docs docstore.Store, cfg types.SearchConfig) *Orchestrator {
	k := cfg.DefaultK
	if k <= 0 {
		k = defaultK
	}
	jc := cfg.JoinConcurrency
	if jc <= 0 {
		jc = defaultJoinConcurrency
	}
	return &Orchestrator{
		embedder:        embedder,
		vectors:         vectors,
		graph:           graph,
		docs:            docs,
		defaultK:        k,
		joinConcurrency: jc,
	}
}

// SearchByQuery embeds the query and returns the k most similar papers
// according to the vector index's own relevance ordering. The index's
// native scores are reported verbatim; this path does not re-rank. A
// caller k of zero or less uses the configured default.
//
// The vector store being unreachable fails the whole operation; ids whose
// document has since disappeared are skipped silently.
func (o *Orchestrator) SearchByQuery(ctx context.Context, q types.StructuredQuery, k int) ([]types.ScoredPaper, error) {
	if q.Domain == "" {
		return nil, ErrInvalidQuery
	}
	if k <= 0 {
		k = o.defaultK
	}

	vec, err := o.embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := o.vectors.Query(ctx, vec, k, o.embedder.Namespace(q))
	if err != nil {
		return nil, fmt.Errorf("querying vector index: %w", err)
	}

	return o.join(ctx, scored)
}

// SearchByGraph ranks the papers adjacent to rootId in the citation graph
// against the query. Outgoing references and incoming citations are
// fetched concurrently and unioned; adjacent papers that were never
// embedded are dropped; the remainder is ranked by exact cosine similarity
// with duplicates collapsed to their best score.
//
// A root with no adjacency data, including one never ingested, yields an
// empty result, not an error.
func (o *Orchestrator) SearchByGraph(ctx context.Context, rootID string, q types.StructuredQuery, k int) ([]types.ScoredPaper, error) {
	if q.Domain == "" {
		return nil, ErrInvalidQuery
	}
	if k <= 0 {
		k = o.defaultK
	}

	refs, cits, err := o.adjacency(ctx, rootID)
	if err != nil {
		return nil, err
	}

	// The union may contain duplicates when a paper is both referenced by
	// and citing the root; TopK collapses them.
	ids := append(refs, cits...)
	if len(ids) == 0 {
		return []types.ScoredPaper{}, nil
	}

	candidates, err := o.vectors.Fetch(ctx, ids, o.embedder.Namespace(q))
	if err != nil {
		return nil, fmt.Errorf("fetching candidate vectors: %w", err)
	}
	if len(candidates) == 0 {
		return []types.ScoredPaper{}, nil
	}

	vec, err := o.embedder.Embed(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	scored, err := similarity.TopK(vec, candidates, k)
	if err != nil {
		return nil, fmt.Errorf("ranking candidates: %w", err)
	}

	return o.join(ctx, scored)
}

// adjacency fetches outgoing references and incoming citations for rootID
// concurrently.
func (o *Orchestrator) adjacency(ctx context.Context, rootID string) (refs, cits []string, err error) {
	type result struct {
		ids      []string
		err      error
		incoming bool
	}

	ch := make(chan result, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		ids, err := o.graph.NeighborsOut(ctx, rootID)
		ch <- result{ids: ids, err: err}
	}()
	go func() {
		defer wg.Done()
		ids, err := o.graph.NeighborsIn(ctx, rootID)
		ch <- result{ids: ids, err: err, incoming: true}
	}()

	go func() {
		wg.Wait()
		close(ch)
	}()

	for r := range ch {
		if r.err != nil {
			return nil, nil, fmt.Errorf("fetching adjacency: %w", r.err)
		}
		if r.incoming {
			cits = r.ids
		} else {
			refs = r.ids
		}
	}
	return refs, cits, nil
}

// join fetches the document record for each scored id and merges it with
// its score, preserving the input ranking order. Document fetches run with
// bounded concurrency. Ids with no record are skipped silently; stores are
// only eventually consistent and ranked ids can outlive their documents.
func (o *Orchestrator) join(ctx context.Context, scored []types.CandidateScore) ([]types.ScoredPaper, error) {
	papers := make([]*types.Paper, len(scored))
	errs := make([]error, len(scored))

	sem := make(chan struct{}, o.joinConcurrency)
	var wg sync.WaitGroup

	for i, cs := range scored {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			papers[i], errs[i] = o.docs.Get(ctx, id)
		}(i, cs.ID)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("joining metadata: %w", err)
		}
	}

	out := make([]types.ScoredPaper, 0, len(scored))
	for i, cs := range scored {
		if papers[i] == nil {
			continue
		}
		out = append(out, types.ScoredPaper{
			PaperCore: papers[i].Core(),
			Score:     cs.Score,
		})
	}
	return out, nil
}
