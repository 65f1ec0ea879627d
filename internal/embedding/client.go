// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nmjlab/papergraph/internal/httputil"
	"github.com/nmjlab/papergraph/pkg/types"
)

// embeddingsPath is the OpenAI-compatible embeddings endpoint path.
const embeddingsPath = "/v1/embeddings"

// Client calls an OpenAI-compatible embeddings API. The configured model is
// assumed deterministic for identical input.
type Client struct {
	cfg    types.EmbeddingConfig
	client *http.Client
}

// NewClient builds an embedding client from cfg. A zero timeout defaults
// to 30 seconds.
func NewClient(cfg types.EmbeddingConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// embeddingRequest is the request body for the embeddings endpoint.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingResponse is the response body from the embeddings endpoint.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed selects the variant for q's populated fields and requests an
// embedding of the variant's field text.
func (c *Client) Embed(ctx context.Context, q types.StructuredQuery) (types.Vector, error) {
	if q.Domain == "" {
		return nil, ErrMissingDomain
	}

	v := SelectVariant(q)

	headers := map[string]string{}
	if c.cfg.UserAgent != "" {
		headers["User-Agent"] = c.cfg.UserAgent
	}
	if c.cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + c.cfg.APIKey
	}

	req := embeddingRequest{Model: c.cfg.Model, Input: v.text(q)}
	var resp embeddingResponse
	err := httputil.PostJSON(ctx, c.client, c.cfg.BaseURL+embeddingsPath, headers, req, &resp, c.cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data returned", ErrUnavailable)
	}

	return resp.Data[0].Embedding, nil
}

// Namespace returns the namespace of the variant q selects.
func (c *Client) Namespace(q types.StructuredQuery) string {
	return SelectVariant(q).Namespace
}
