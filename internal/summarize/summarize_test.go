// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/nmjlab/papergraph/pkg/types"
)

func TestMain(m *testing.M) {
	// Override backoff to avoid real sleeps in retry tests.
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// --- mock backend ---

type mockBackend struct {
	summary types.Summary
	err     error
	calls   int
}

func (m *mockBackend) Summarize(_ context.Context, _, _ string) (types.Summary, error) {
	m.calls++
	if m.err != nil {
		return types.Summary{}, m.err
	}
	return m.summary, nil
}

// failNTimesBackend fails the first N calls, then succeeds.
type failNTimesBackend struct {
	failures  int
	callCount int
	summary   types.Summary
}

func (f *failNTimesBackend) Summarize(_ context.Context, _, _ string) (types.Summary, error) {
	f.callCount++
	if f.callCount <= f.failures {
		return types.Summary{}, fmt.Errorf("transient error (call %d)", f.callCount)
	}
	return f.summary, nil
}

func validSummary() types.Summary {
	return types.Summary{
		Domain:   "natural language processing",
		Problem:  "Recurrent models cannot be parallelized.",
		Solution: "An attention-only architecture.",
		Keywords: []string{"attention-mechanism", "machine-translation"},
	}
}

// --- Extract ---

func TestExtractSuccess(t *testing.T) {
	backend := &mockBackend{summary: validSummary()}

	got, err := Extract(context.Background(), backend, "Attention Is All You Need", "abstract text", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, validSummary()) {
		t.Errorf("got %+v", got)
	}
	if backend.calls != 1 {
		t.Errorf("calls = %d, want 1", backend.calls)
	}
}

func TestExtractEmptyTitle(t *testing.T) {
	backend := &mockBackend{summary: validSummary()}

	_, err := Extract(context.Background(), backend, "  ", "abstract", 3)
	if err == nil {
		t.Fatal("expected error for empty title")
	}
	if backend.calls != 0 {
		t.Error("empty title must not reach the backend")
	}
}

func TestExtractRetriesTransientFailures(t *testing.T) {
	backend := &failNTimesBackend{failures: 2, summary: validSummary()}

	got, err := Extract(context.Background(), backend, "Title", "abstract", 3)
	if err != nil {
		t.Fatal(err)
	}
	if got.Domain != "natural language processing" {
		t.Errorf("got %+v", got)
	}
	if backend.callCount != 3 {
		t.Errorf("callCount = %d, want 3", backend.callCount)
	}
}

func TestExtractExhaustsRetries(t *testing.T) {
	backend := &mockBackend{err: fmt.Errorf("boom")}

	_, err := Extract(context.Background(), backend, "Title", "abstract", 2)
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3 (initial attempt plus 2 retries)", backend.calls)
	}
}

func TestExtractRejectsSummaryWithoutDomain(t *testing.T) {
	backend := &mockBackend{summary: types.Summary{Problem: "p", Solution: "s"}}

	_, err := Extract(context.Background(), backend, "Title", "abstract", 1)
	if err == nil {
		t.Fatal("expected error for summary missing domain")
	}
	if !strings.Contains(err.Error(), "missing domain") {
		t.Errorf("err = %v", err)
	}
}

// --- ClaudeBackend ---

// claudeFixture builds a Messages API response whose text block holds body.
func claudeFixture(body string) claudeResponse {
	return claudeResponse{Content: []claudeContent{{Type: "text", Text: body}}}
}

func TestClaudeBackendSummarize(t *testing.T) {
	var gotReq claudeRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatal(err)
		}
		json.NewEncoder(w).Encode(claudeFixture(`{"domain": "nlp", "problem": "p", "solution": "s", "keywords": ["a"]}`))
	}))
	defer server.Close()

	origURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = origURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model"}
	got, err := backend.Summarize(context.Background(), "Some Title", "Some abstract.")
	if err != nil {
		t.Fatal(err)
	}

	want := types.Summary{Domain: "nlp", Problem: "p", Solution: "s", Keywords: []string{"a"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, "Some Title") {
		t.Errorf("prompt does not carry the title: %+v", gotReq.Messages)
	}
}

func TestClaudeBackendStripsCodeFence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fenced := "```json\n{\"domain\": \"nlp\", \"problem\": \"p\", \"solution\": \"s\", \"keywords\": []}\n```"
		json.NewEncoder(w).Encode(claudeFixture(fenced))
	}))
	defer server.Close()

	origURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = origURL }()

	backend := &ClaudeBackend{APIKey: "k", Model: "m"}
	got, err := backend.Summarize(context.Background(), "Title", "abstract")
	if err != nil {
		t.Fatal(err)
	}
	if got.Domain != "nlp" {
		t.Errorf("got %+v", got)
	}
}

func TestClaudeBackendNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	origURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = origURL }()

	backend := &ClaudeBackend{APIKey: "k", Model: "m"}
	_, err := backend.Summarize(context.Background(), "Title", "abstract")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
	if !strings.Contains(err.Error(), "503") {
		t.Errorf("err = %v", err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.in); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
