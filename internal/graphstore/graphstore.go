// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package graphstore persists the directed citation graph: papers are
// nodes, "references" relations are edges. Node identity is keyed by a
// normalized title so differently formatted titles of the same paper
// collapse to one node.
package graphstore

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable reports that the graph store could not be reached or
// timed out.
var ErrUnavailable = errors.New("graph store unavailable")

// Store is the adapter contract the retrieval and ingest pipelines consume.
//
// NeighborsOut returns the ids of papers the given paper references;
// NeighborsIn returns the ids of papers citing it. Both skip neighbor nodes
// that have no paper id yet (referenced works not ingested). An unknown id
// yields empty slices, not an error. Upserts are idempotent.
type Store interface {
	NeighborsOut(ctx context.Context, paperID string) ([]string, error)
	NeighborsIn(ctx context.Context, paperID string) ([]string, error)
	UpsertNode(ctx context.Context, paperID, title string) error
	UpsertEdge(ctx context.Context, title, refTitle string) error
}

// NormalizeTitle derives the node key for a title: trimmed, with newlines,
// hyphens and spaces removed, lowercased. Prevents duplicate nodes for
// differently cased or wrapped titles.
func NormalizeTitle(title string) string {
	s := strings.TrimSpace(title)
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.ToLower(s)
}

// Edge is a directed "references" relation between two nodes, identified by
// their normalized titles. Existence is binary; edges carry no weight.
type Edge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}
