// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize distills a paper's title and abstract into a structured
// summary of its domain, problem, and solution, plus topic keywords.
package summarize

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nmjlab/papergraph/pkg/types"
)

// ErrUnavailable indicates the summarization backend could not be reached
// or returned an unusable response.
var ErrUnavailable = errors.New("summarization backend unavailable")

// Backend abstracts the Generative AI API so tests can supply a mock.
type Backend interface {
	Summarize(ctx context.Context, title, abstract string) (types.Summary, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Extract produces a structured summary for one paper. Transient backend
// failures are retried with exponential backoff up to maxRetries times.
func Extract(ctx context.Context, backend Backend, title, abstract string, maxRetries int) (types.Summary, error) {
	if strings.TrimSpace(title) == "" {
		return types.Summary{}, fmt.Errorf("summarizing: title must not be empty")
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return types.Summary{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		summary, err := backend.Summarize(ctx, title, abstract)
		if err != nil {
			lastErr = err
			continue
		}
		if err := validate(summary); err != nil {
			lastErr = err
			continue
		}
		return summary, nil
	}
	return types.Summary{}, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// validate rejects summaries the retrieval pipeline cannot embed. Domain is
// the only mandatory field.
func validate(s types.Summary) error {
	if strings.TrimSpace(s.Domain) == "" {
		return fmt.Errorf("summary missing domain")
	}
	return nil
}
