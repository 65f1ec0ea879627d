// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data shapes of the papergraph service:
// the canonical Paper record, search queries and results, vectors, and the
// per-component configuration structs.
package types

// StructuredQuery describes a research query: the domain is mandatory, the
// problem and solution fields are optional refinements. Two queries with
// identical field values must embed to the same vector.
type StructuredQuery struct {
	// Domain is the research area being searched. Required.
	Domain string `json:"domain" yaml:"domain"`

	// Problem describes the shortcoming of prior work, if known.
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`

	// Solution describes the approach of interest, if known.
	Solution string `json:"solution,omitempty" yaml:"solution,omitempty"`
}

// Vector is a fixed-length embedding. The retrieval pipeline only relies on
// it supporting dot product and norm.
type Vector = []float32

// CandidateScore pairs a candidate paper id with its similarity score. It is
// produced and consumed within a single request and never persisted.
type CandidateScore struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// Candidate pairs a candidate paper id with its stored vector, as fetched
// from the vector store for explicit ranking.
type Candidate struct {
	ID     string `json:"id"`
	Vector Vector `json:"vector"`
}
