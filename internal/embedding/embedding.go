// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embedding turns structured queries into fixed-length vectors via
// an external embedding model. Each combination of populated query fields
// maps to an embedding variant owning its own vector-store namespace, so
// that vectors produced from different field sets never mix.
package embedding

import (
	"context"
	"errors"
	"strings"

	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrUnavailable reports that the embedding provider could not be reached
// or timed out. The retrieval pipeline surfaces it without retrying; retry
// policy lives in the provider's transport.
var ErrUnavailable = errors.New("embedding provider unavailable")

// ErrMissingDomain reports a query without the mandatory domain field.
var ErrMissingDomain = errors.New("query domain is required")

// Provider produces a vector for a structured query. Implementations must
// be deterministic: identical field values always embed to the same vector.
type Provider interface {
	// Embed returns the query vector for q. Fails with ErrMissingDomain if
	// q.Domain is empty and ErrUnavailable on provider failure.
	Embed(ctx context.Context, q types.StructuredQuery) (types.Vector, error)

	// Namespace returns the vector-store namespace of the variant selected
	// for q's populated fields.
	Namespace(q types.StructuredQuery) string
}

// Variant binds a set of query fields to a vector-store namespace. Variants
// are matched most specific first; a query that populates fields no variant
// covers exactly falls back toward the domain-only variant.
type Variant struct {
	// Namespace is the vector-store namespace this variant writes to.
	Namespace string

	// Problem and Solution report which optional fields the variant consumes.
	Problem  bool
	Solution bool
}

// defaultVariants is the fallback chain, most specific combination first.
// The domain-only variant is last and matches every valid query.
var defaultVariants = []Variant{
	{Namespace: "summary_dps", Problem: true, Solution: true},
	{Namespace: "summary_dp", Problem: true},
	{Namespace: "summary_ds", Solution: true},
	{Namespace: "domain"},
}

// SelectVariant returns the first variant whose consumed fields are all
// populated in q. A query with only a domain selects the domain-only
// variant; it never errors.
func SelectVariant(q types.StructuredQuery) Variant {
	for _, v := range defaultVariants {
		if v.Problem && q.Problem == "" {
			continue
		}
		if v.Solution && q.Solution == "" {
			continue
		}
		return v
	}
	return defaultVariants[len(defaultVariants)-1]
}

// text concatenates the fields the variant consumes into the string sent to
// the model. Field order is fixed so identical queries embed identically.
func (v Variant) text(q types.StructuredQuery) string {
	parts := []string{q.Domain}
	if v.Problem {
		parts = append(parts, q.Problem)
	}
	if v.Solution {
		parts = append(parts, q.Solution)
	}
	return strings.Join(parts, "\n")
}
