// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "papergraph/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the OpenAI-compatible API root (e.g. "http://localhost:1234").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier. The model pins the vector
	// dimensionality; changing it requires re-embedding the corpus.
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer token for the embedding API, if required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries bounds retries on HTTP 429 responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// VectorStoreConfig holds settings for the qdrant vector store.
type VectorStoreConfig struct {
	// Host is the qdrant gRPC host (default "localhost").
	Host string `json:"host" yaml:"host"`

	// Port is the qdrant gRPC port (default 6334).
	Port int `json:"port" yaml:"port"`

	// APIKey authenticates against a managed qdrant instance, if set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// CollectionPrefix prefixes the per-namespace collection names
	// (default "papers").
	CollectionPrefix string `json:"collection_prefix" yaml:"collection_prefix"`

	// VectorSize is the embedding dimensionality used when a collection is
	// first created.
	VectorSize int `json:"vector_size" yaml:"vector_size"`

	// Timeout bounds each store call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DocumentStoreConfig holds settings for the paper document store.
type DocumentStoreConfig struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Timeout bounds each store call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// GraphStoreConfig holds settings for the citation graph store.
type GraphStoreConfig struct {
	// DataDir is the directory holding the SQLite database file.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Timeout bounds each store call.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// SearchConfig holds settings for the retrieval orchestrator.
type SearchConfig struct {
	// DefaultK is the result count when the caller omits k (default 5).
	DefaultK int `json:"default_k" yaml:"default_k"`

	// JoinConcurrency bounds parallel document fetches while joining ranked
	// ids to metadata (default 4).
	JoinConcurrency int `json:"join_concurrency" yaml:"join_concurrency"`
}

// SummaryConfig holds settings for LLM summary extraction.
type SummaryConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
}

// Config groups all component configurations for the service.
type Config struct {
	Embedding     EmbeddingConfig     `json:"embedding" yaml:"embedding"`
	VectorStore   VectorStoreConfig   `json:"vector_store" yaml:"vector_store"`
	DocumentStore DocumentStoreConfig `json:"document_store" yaml:"document_store"`
	GraphStore    GraphStoreConfig    `json:"graph_store" yaml:"graph_store"`
	Search        SearchConfig        `json:"search" yaml:"search"`
	Summary       SummaryConfig       `json:"summary" yaml:"summary"`
	Server        ServerConfig        `json:"server" yaml:"server"`
}
