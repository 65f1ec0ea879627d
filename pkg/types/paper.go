// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Paragraph is one body paragraph of a paper, labelled with the section
// heading it appears under.
type Paragraph struct {
	// ParagraphID orders paragraphs within the paper.
	ParagraphID int `json:"paragraph_id" yaml:"paragraph_id"`

	// Section is the heading the paragraph belongs to.
	Section string `json:"section" yaml:"section"`

	// Text is the paragraph text.
	Text string `json:"text" yaml:"text"`
}

// Summary is the structured summary extracted from a paper's abstract:
// the research domain, the problem with prior work, the proposed solution,
// and topic keywords.
type Summary struct {
	// Domain is the research area of the paper.
	Domain string `json:"domain" yaml:"domain"`

	// Problem describes the shortcoming of previous studies.
	Problem string `json:"problem,omitempty" yaml:"problem,omitempty"`

	// Solution describes the approach the paper proposes.
	Solution string `json:"solution,omitempty" yaml:"solution,omitempty"`

	// Keywords are topic labels drawn from the abstract.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Paper is the canonical document record. It is the single shape for paper
// metadata across the document, vector, and graph stores; every field other
// than ID is optional. The retrieval pipeline treats a Paper as an immutable
// snapshot fetched per request.
type Paper struct {
	// ID identifies the paper across all three stores.
	ID string `json:"id" yaml:"id"`

	// Title is the paper title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Body holds the paper text as ordered, section-labelled paragraphs.
	Body []Paragraph `json:"body,omitempty" yaml:"body,omitempty"`

	// Summary is the extracted structured summary, if one has been produced.
	Summary *Summary `json:"summary,omitempty" yaml:"summary,omitempty"`

	// References lists the titles of works this paper cites.
	References []string `json:"references,omitempty" yaml:"references,omitempty"`

	// PublishedYear is the publication year as recorded by the source.
	PublishedYear string `json:"published_year,omitempty" yaml:"published_year,omitempty"`

	// Impact is the citation count reported by the source.
	Impact int `json:"impact,omitempty" yaml:"impact,omitempty"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// PaperPatch is a partial update to a Paper. Each field is a pointer: a nil
// field is absent and leaves the base value untouched, a non-nil field
// replaces it. This replaces ad-hoc map merging with an explicit precedence
// rule (patch wins for present fields only).
type PaperPatch struct {
	Title         *string     `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract      *string     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Body          []Paragraph `json:"body,omitempty" yaml:"body,omitempty"`
	Summary       *Summary    `json:"summary,omitempty" yaml:"summary,omitempty"`
	References    []string    `json:"references,omitempty" yaml:"references,omitempty"`
	PublishedYear *string     `json:"published_year,omitempty" yaml:"published_year,omitempty"`
	Impact        *int        `json:"impact,omitempty" yaml:"impact,omitempty"`
	Authors       []string    `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// Apply merges the patch over base and returns the result. Base is not
// modified. Slice fields are replaced wholesale when present.
func (p PaperPatch) Apply(base Paper) Paper {
	out := base
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Abstract != nil {
		out.Abstract = *p.Abstract
	}
	if p.Body != nil {
		out.Body = p.Body
	}
	if p.Summary != nil {
		out.Summary = p.Summary
	}
	if p.References != nil {
		out.References = p.References
	}
	if p.PublishedYear != nil {
		out.PublishedYear = *p.PublishedYear
	}
	if p.Authors != nil {
		out.Authors = p.Authors
	}
	if p.Impact != nil {
		out.Impact = *p.Impact
	}
	return out
}

// PaperCore is the response shape for query search: the metadata a result
// list needs, without body text.
type PaperCore struct {
	ID            string   `json:"id" yaml:"id"`
	Title         string   `json:"title,omitempty" yaml:"title,omitempty"`
	PublishedYear string   `json:"published_year,omitempty" yaml:"published_year,omitempty"`
	Summary       *Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Impact        int      `json:"impact,omitempty" yaml:"impact,omitempty"`
	Authors       []string `json:"authors,omitempty" yaml:"authors,omitempty"`
}

// Core projects a Paper onto its PaperCore response shape.
func (p Paper) Core() PaperCore {
	return PaperCore{
		ID:            p.ID,
		Title:         p.Title,
		PublishedYear: p.PublishedYear,
		Summary:       p.Summary,
		Impact:        p.Impact,
		Authors:       p.Authors,
	}
}

// ScoredPaper is a PaperCore joined with the similarity score that ranked it.
type ScoredPaper struct {
	PaperCore `yaml:",inline"`

	// Score is the score the ranking assigned. For query search it is the
	// vector index's native score; for graph search it is exact cosine.
	Score float64 `json:"score" yaml:"score"`
}
