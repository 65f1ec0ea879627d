// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/nmjlab/papergraph/pkg/types"
)

// summaryPromptTmpl is the prompt template sent to the Claude API for each
// paper. It instructs the model to distill the abstract into the three
// retrieval facets plus topic keywords.
var summaryPromptTmpl = template.Must(template.New("summary").Parse(`You are an academic paper indexing system. Read the following paper title and abstract and distill them into a structured summary.

Identify:
- domain: the research field the paper belongs to, as a short noun phrase (e.g. "natural language processing")
- problem: the concrete problem the paper addresses, in one sentence
- solution: the approach the paper proposes, in one sentence
- keywords: three to six lowercase, hyphenated topic labels drawn from the paper's vocabulary (e.g. "attention-mechanism", "transfer-learning")

Respond with a single JSON object with exactly those four fields. Do not include any text outside the JSON object.

Example response:
{"domain": "natural language processing", "problem": "Recurrent models process tokens sequentially and cannot be parallelized during training.", "solution": "An architecture built entirely on attention that dispenses with recurrence.", "keywords": ["attention-mechanism", "sequence-transduction", "machine-translation"]}

Title:
{{.Title}}

Abstract:
{{.Abstract}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude API to summarize a paper.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Summarize calls the Claude API with the summary prompt for one paper.
func (c *ClaudeBackend) Summarize(ctx context.Context, title, abstract string) (types.Summary, error) {
	prompt, err := renderPrompt(title, abstract)
	if err != nil {
		return types.Summary{}, fmt.Errorf("rendering prompt: %w", err)
	}

	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 1024,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.Summary{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.Summary{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return types.Summary{}, fmt.Errorf("%w: calling Claude API: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Summary{}, fmt.Errorf("%w: Claude API returned %d: %s", ErrUnavailable, resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return types.Summary{}, fmt.Errorf("%w: decoding Claude response: %v", ErrUnavailable, err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		var summary types.Summary
		if err := json.Unmarshal([]byte(stripCodeFence(block.Text)), &summary); err != nil {
			return types.Summary{}, fmt.Errorf("parsing summary JSON: %w", err)
		}
		return summary, nil
	}

	return types.Summary{}, fmt.Errorf("%w: no text content in Claude API response", ErrUnavailable)
}

// stripCodeFence removes a surrounding Markdown code fence if the model
// wrapped its JSON in one.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// renderPrompt executes the summary prompt template for one paper.
func renderPrompt(title, abstract string) (string, error) {
	var buf bytes.Buffer
	data := struct{ Title, Abstract string }{Title: title, Abstract: abstract}
	if err := summaryPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
