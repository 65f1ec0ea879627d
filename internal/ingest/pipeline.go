// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/nmjlab/papergraph/internal/docstore"
	"github.com/nmjlab/papergraph/internal/embedding"
	"github.com/nmjlab/papergraph/internal/graphstore"
	"github.com/nmjlab/papergraph/internal/summarize"
	"github.com/nmjlab/papergraph/internal/vectorstore"
	"github.com/nmjlab/papergraph/pkg/types"
)

// Tracker records a request's progress through the stage sequence.
// *StatusStore is the production implementation.
type Tracker interface {
	Create(ctx context.Context, filename string) (string, error)
	Advance(ctx context.Context, requestID string, to types.IngestStage) error
	Get(ctx context.Context, requestID string) (types.IngestStatus, error)
}

// Pipeline runs a submitted paper through document storage, summary
// extraction, embedding, and citation graph updates. Each completed step
// advances the request's status record.
type Pipeline struct {
	tracker    Tracker
	docs       docstore.Store
	vectors    vectorstore.Store
	graph      graphstore.Store
	embedder   embedding.Provider
	summarizer summarize.Backend
	maxRetries int
}

// New assembles a pipeline from its stores and backends.
func New(tracker Tracker, docs docstore.Store, vectors vectorstore.Store, graph graphstore.Store, embedder embedding.Provider, summarizer summarize.Backend, cfg types.SummaryConfig) *Pipeline {
	return &Pipeline{
		tracker:    tracker,
		docs:       docs,
		vectors:    vectors,
		graph:      graph,
		embedder:   embedder,
		summarizer: summarizer,
		maxRetries: cfg.MaxRetries,
	}
}

// Submit registers the paper and runs it through the pipeline. The returned
// request id is valid even when a later step fails, so callers can inspect
// how far the upload got.
func (p *Pipeline) Submit(ctx context.Context, paper types.Paper) (string, error) {
	requestID, err := p.tracker.Create(ctx, paper.Title)
	if err != nil {
		return "", fmt.Errorf("registering upload: %w", err)
	}

	// Layout detection and conversion happen upstream; a paper arriving
	// here already carries its extracted text.
	if err := p.tracker.Advance(ctx, requestID, types.StageLayoutDetected); err != nil {
		return requestID, err
	}

	if strings.TrimSpace(paper.ID) == "" || strings.TrimSpace(paper.Title) == "" {
		return requestID, fmt.Errorf("paper must carry an id and a title")
	}
	if err := p.tracker.Advance(ctx, requestID, types.StageMetadataParsed); err != nil {
		return requestID, err
	}

	if err := p.docs.Upsert(ctx, paper); err != nil {
		return requestID, fmt.Errorf("storing document: %w", err)
	}
	if err := p.tracker.Advance(ctx, requestID, types.StageAssetsUploaded); err != nil {
		return requestID, err
	}

	if paper.Summary == nil {
		summary, err := summarize.Extract(ctx, p.summarizer, paper.Title, paper.Abstract, p.maxRetries)
		if err != nil {
			return requestID, fmt.Errorf("extracting summary: %w", err)
		}
		paper.Summary = &summary
		if _, err := p.docs.Patch(ctx, paper.ID, types.PaperPatch{Summary: &summary}); err != nil {
			return requestID, fmt.Errorf("storing summary: %w", err)
		}
	}
	if err := p.tracker.Advance(ctx, requestID, types.StageSummaryExtracted); err != nil {
		return requestID, err
	}

	if err := p.index(ctx, paper); err != nil {
		return requestID, err
	}
	if err := p.tracker.Advance(ctx, requestID, types.StageStored); err != nil {
		return requestID, err
	}

	return requestID, nil
}

// index writes the paper's embeddings and citation edges. One vector is
// stored per facet combination the summary supports, each in its own
// namespace, so searches can match queries of any shape.
func (p *Pipeline) index(ctx context.Context, paper types.Paper) error {
	for _, q := range facetQueries(*paper.Summary) {
		vec, err := p.embedder.Embed(ctx, q)
		if err != nil {
			return fmt.Errorf("embedding paper %s: %w", paper.ID, err)
		}
		ns := p.embedder.Namespace(q)
		if err := p.vectors.Upsert(ctx, paper.ID, vec, ns); err != nil {
			return fmt.Errorf("storing vector for paper %s: %w", paper.ID, err)
		}
	}

	if err := p.graph.UpsertNode(ctx, paper.ID, paper.Title); err != nil {
		return fmt.Errorf("storing graph node for paper %s: %w", paper.ID, err)
	}
	for _, ref := range paper.References {
		if err := p.graph.UpsertEdge(ctx, paper.Title, ref); err != nil {
			return fmt.Errorf("storing citation edge for paper %s: %w", paper.ID, err)
		}
	}
	return nil
}

// facetQueries enumerates the structured queries derivable from a summary,
// one per populated facet combination. The domain-only query is always
// included.
func facetQueries(s types.Summary) []types.StructuredQuery {
	hasProblem := strings.TrimSpace(s.Problem) != ""
	hasSolution := strings.TrimSpace(s.Solution) != ""

	queries := []types.StructuredQuery{{Domain: s.Domain}}
	if hasProblem {
		queries = append(queries, types.StructuredQuery{Domain: s.Domain, Problem: s.Problem})
	}
	if hasSolution {
		queries = append(queries, types.StructuredQuery{Domain: s.Domain, Solution: s.Solution})
	}
	if hasProblem && hasSolution {
		queries = append(queries, types.StructuredQuery{Domain: s.Domain, Problem: s.Problem, Solution: s.Solution})
	}
	return queries
}
