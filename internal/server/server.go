// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes search, paper, and status operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nmjlab/papergraph/internal/docstore"
	"github.com/nmjlab/papergraph/internal/embedding"
	"github.com/nmjlab/papergraph/internal/graphstore"
	"github.com/nmjlab/papergraph/internal/ingest"
	"github.com/nmjlab/papergraph/internal/retrieval"
	"github.com/nmjlab/papergraph/internal/summarize"
	"github.com/nmjlab/papergraph/internal/vectorstore"
	"github.com/nmjlab/papergraph/pkg/types"
)

// Searcher is the slice of the retrieval orchestrator the handlers need.
type Searcher interface {
	SearchByQuery(ctx context.Context, q types.StructuredQuery, k int) ([]types.ScoredPaper, error)
	SearchByGraph(ctx context.Context, rootID string, q types.StructuredQuery, k int) ([]types.ScoredPaper, error)
}

// Ingester submits papers to the upload pipeline.
type Ingester interface {
	Submit(ctx context.Context, paper types.Paper) (string, error)
}

// Server wires the HTTP routes to the retrieval and ingest components.
type Server struct {
	searcher Searcher
	ingester Ingester
	docs     docstore.Store
	tracker  ingest.Tracker
}

// New builds a Server from its components.
func New(searcher Searcher, ingester Ingester, docs docstore.Store, tracker ingest.Tracker) *Server {
	return &Server{searcher: searcher, ingester: ingester, docs: docs, tracker: tracker}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /search/query", s.handleSearchQuery)
	mux.HandleFunc("POST /search/graph", s.handleSearchGraph)
	mux.HandleFunc("GET /paper/{id}", s.handleGetPaper)
	mux.HandleFunc("PUT /paper", s.handlePutPaper)
	mux.HandleFunc("PATCH /paper/{id}", s.handlePatchPaper)
	mux.HandleFunc("GET /status/{request_id}", s.handleGetStatus)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Run serves the route table until ctx is cancelled.
func (s *Server) Run(ctx context.Context, cfg types.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// searchQueryRequest is the body of POST /search/query.
type searchQueryRequest struct {
	Domain   string `json:"domain"`
	Problem  string `json:"problem,omitempty"`
	Solution string `json:"solution,omitempty"`
	K        int    `json:"k,omitempty"`
}

func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	var req searchQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}

	q := types.StructuredQuery{Domain: req.Domain, Problem: req.Problem, Solution: req.Solution}
	results, err := s.searcher.SearchByQuery(r.Context(), q, req.K)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(results))
}

// searchGraphRequest is the body of POST /search/graph.
type searchGraphRequest struct {
	RootID   string             `json:"root_id"`
	NumNodes int                `json:"num_nodes,omitempty"`
	Query    searchQueryRequest `json:"query"`
}

func (s *Server) handleSearchGraph(w http.ResponseWriter, r *http.Request) {
	var req searchGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}
	if req.RootID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("root_id must not be empty"))
		return
	}

	q := types.StructuredQuery{Domain: req.Query.Domain, Problem: req.Query.Problem, Solution: req.Query.Solution}
	results, err := s.searcher.SearchByGraph(r.Context(), req.RootID, q, req.NumNodes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(results))
}

func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	paper, err := s.docs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if paper == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("paper %s not found", r.PathValue("id")))
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

// putPaperResponse carries the request id for later status polling.
type putPaperResponse struct {
	RequestID string `json:"request_id"`
}

func (s *Server) handlePutPaper(w http.ResponseWriter, r *http.Request) {
	var paper types.Paper
	if err := json.NewDecoder(r.Body).Decode(&paper); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}

	requestID, err := s.ingester.Submit(r.Context(), paper)
	if err != nil {
		if requestID == "" {
			writeDomainError(w, err)
			return
		}
		// Partial progress: report the failure but hand back the id so the
		// caller can inspect how far the upload got.
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusAccepted, putPaperResponse{RequestID: requestID})
}

func (s *Server) handlePatchPaper(w http.ResponseWriter, r *http.Request) {
	var patch types.PaperPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request body: %w", err))
		return
	}

	paper, err := s.docs.Patch(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.tracker.Get(r.Context(), r.PathValue("request_id"))
	if err != nil {
		if errors.Is(err, ingest.ErrUnknownRequest) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeDomainError maps component errors onto HTTP status codes. Invalid
// input is the caller's fault; an unreachable backing store is a gateway
// problem.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, retrieval.ErrInvalidQuery):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, embedding.ErrMissingDomain):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, embedding.ErrUnavailable),
		errors.Is(err, vectorstore.ErrUnavailable),
		errors.Is(err, graphstore.ErrUnavailable),
		errors.Is(err, docstore.ErrUnavailable),
		errors.Is(err, summarize.ErrUnavailable):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// nonNil keeps empty result sets serializing as [] rather than null.
func nonNil(results []types.ScoredPaper) []types.ScoredPaper {
	if results == nil {
		return []types.ScoredPaper{}
	}
	return results
}
