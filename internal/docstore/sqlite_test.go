// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nmjlab/papergraph/pkg/types"
)

func testStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := NewSQLite(types.DocumentStoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePaper() types.Paper {
	return types.Paper{
		ID:       "2301.07041",
		Title:    "Efficient Attention",
		Abstract: "We study efficient attention mechanisms.",
		Body: []types.Paragraph{
			{ParagraphID: 0, Section: "Introduction", Text: "Attention is costly."},
			{ParagraphID: 1, Section: "Method", Text: "We approximate softmax."},
		},
		Summary: &types.Summary{
			Domain:   "natural language processing",
			Problem:  "quadratic attention cost",
			Solution: "linear kernel approximation",
			Keywords: []string{"attention", "efficiency"},
		},
		References:    []string{"Attention Is All You Need"},
		PublishedYear: "2023",
		Impact:        41,
		Authors:       []string{"A. Researcher", "B. Scholar"},
	}
}

func TestUpsertGetRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	want := samplePaper()

	if err := s.Upsert(ctx, want); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, want.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("Get returned nil for stored paper")
	}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", *got, want)
	}
}

func TestGetAbsentIsNilNil(t *testing.T) {
	s := testStore(t)

	got, err := s.Get(context.Background(), "no-such-paper")
	if err != nil {
		t.Fatalf("absent id must not error, got %v", err)
	}
	if got != nil {
		t.Errorf("absent id returned %+v, want nil", got)
	}
}

func TestUpsertReplaces(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := samplePaper()
	if err := s.Upsert(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.Title = "Efficient Attention, Revised"
	p.Impact = 100
	if err := s.Upsert(ctx, p); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Efficient Attention, Revised" || got.Impact != 100 {
		t.Errorf("got title %q impact %d after replace", got.Title, got.Impact)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(context.Background(), types.Paper{Title: "no id"}); err == nil {
		t.Error("upsert without id must fail")
	}
}

func TestOptionalFieldsStayAbsent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, types.Paper{ID: "bare"}); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "bare")
	if err != nil {
		t.Fatal(err)
	}
	if got.Summary != nil || got.Body != nil || got.References != nil || got.Authors != nil {
		t.Errorf("optional fields resurfaced: %+v", got)
	}
}

func TestPatchMergesPresentFieldsOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := samplePaper()
	if err := s.Upsert(ctx, base); err != nil {
		t.Fatal(err)
	}

	newTitle := "A Better Title"
	newImpact := 999
	got, err := s.Patch(ctx, base.ID, types.PaperPatch{
		Title:  &newTitle,
		Impact: &newImpact,
	})
	if err != nil {
		t.Fatal(err)
	}

	if got.Title != newTitle || got.Impact != newImpact {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.Abstract != base.Abstract || !reflect.DeepEqual(got.Summary, base.Summary) {
		t.Errorf("absent patch fields must keep base values: %+v", got)
	}

	// The merge must be persisted, not just returned.
	stored, err := s.Get(ctx, base.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != newTitle {
		t.Errorf("stored title = %q, want %q", stored.Title, newTitle)
	}
}

func TestPatchAbsentIsNotFound(t *testing.T) {
	s := testStore(t)
	title := "x"
	_, err := s.Patch(context.Background(), "missing", types.PaperPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetCorruptColumnIsError(t *testing.T) {
	s := testStore(t)
	if err := s.Upsert(context.Background(), samplePaper()); err != nil {
		t.Fatal(err)
	}

	_, err := s.db.Exec(`UPDATE papers SET summary = 'not json' WHERE id = ?`, "2301.07041")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(context.Background(), "2301.07041"); err == nil {
		t.Fatal("expected error for corrupt summary column")
	}
}
