// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores vectors by cosine similarity and selects the
// top-k candidates for a query vector.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrDimensionMismatch reports two vectors of unequal length.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// ErrDegenerateVector reports a zero-norm vector, for which cosine
// similarity is undefined. Callers must filter zero vectors upstream
// rather than rely on a silent 0 or NaN.
var ErrDegenerateVector = errors.New("degenerate vector: zero norm")

// Cosine returns the cosine similarity dot(a,b) / (‖a‖·‖b‖) of two
// equal-length vectors. Accumulation is in float64 regardless of the
// storage width.
func Cosine(a, b types.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateVector
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// TopK ranks candidates against the query vector by cosine similarity and
// returns the k best, sorted strictly descending by score with ties broken
// by first-seen order. Duplicate candidate ids are collapsed to the highest
// score observed for that id before truncation, so the result length is
// min(k, distinct ids). k <= 0 yields an empty result, not an error.
func TopK(query types.Vector, candidates []types.Candidate, k int) ([]types.CandidateScore, error) {
	if k <= 0 {
		return []types.CandidateScore{}, nil
	}

	best := make(map[string]int) // id → index in scored
	var scored []types.CandidateScore

	for _, c := range candidates {
		score, err := Cosine(query, c.Vector)
		if err != nil {
			return nil, fmt.Errorf("scoring candidate %s: %w", c.ID, err)
		}

		if idx, ok := best[c.ID]; ok {
			if score > scored[idx].Score {
				scored[idx].Score = score
			}
			continue
		}

		best[c.ID] = len(scored)
		scored = append(scored, types.CandidateScore{ID: c.ID, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	if scored == nil {
		scored = []types.CandidateScore{}
	}
	return scored, nil
}
