package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nmjlab/papergraph/internal/docstore"
	"github.com/nmjlab/papergraph/internal/embedding"
	"github.com/nmjlab/papergraph/internal/graphstore"
	"github.com/nmjlab/papergraph/internal/ingest"
	"github.com/nmjlab/papergraph/internal/retrieval"
	"github.com/nmjlab/papergraph/internal/summarize"
	"github.com/nmjlab/papergraph/internal/vectorstore"
	"github.com/nmjlab/papergraph/pkg/types"
)

// loadConfig merges config file keys, environment, and flags into the
// component configuration structs.
func loadConfig(cmd *cobra.Command) types.Config {
	viper.SetDefault("embedding.base_url", "http://localhost:1234")
	viper.SetDefault("embedding.model", "text-embedding-nomic-embed-text-v1.5")
	viper.SetDefault("vector.host", "localhost")
	viper.SetDefault("vector.port", 6334)
	viper.SetDefault("vector.collection_prefix", "papers")
	viper.SetDefault("vector.size", 768)
	viper.SetDefault("summary.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("server.addr", ":8080")

	dataDir, _ := cmd.Root().PersistentFlags().GetString("data-dir")
	if dataDir == "" {
		dataDir = "data"
	}

	return types.Config{
		Embedding: types.EmbeddingConfig{
			BaseURL: viper.GetString("embedding.base_url"),
			Model:   viper.GetString("embedding.model"),
			APIKey:  secretDefault("embedding-api-key", viper.GetString("embedding.api_key")),
		},
		VectorStore: types.VectorStoreConfig{
			Host:             viper.GetString("vector.host"),
			Port:             viper.GetInt("vector.port"),
			APIKey:           secretDefault("qdrant-api-key", viper.GetString("vector.api_key")),
			CollectionPrefix: viper.GetString("vector.collection_prefix"),
			VectorSize:       viper.GetInt("vector.size"),
		},
		DocumentStore: types.DocumentStoreConfig{DataDir: dataDir},
		GraphStore:    types.GraphStoreConfig{DataDir: dataDir},
		Search: types.SearchConfig{
			DefaultK:        viper.GetInt("search.default_k"),
			JoinConcurrency: viper.GetInt("search.join_concurrency"),
		},
		Summary: types.SummaryConfig{
			Model:      viper.GetString("summary.model"),
			APIKey:     secretDefault("summary-api-key", viper.GetString("summary.api_key")),
			MaxRetries: viper.GetInt("summary.max_retries"),
		},
		Server: types.ServerConfig{
			Addr:         viper.GetString("server.addr"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
	}
}

// components bundles the wired stores and pipelines behind one constructor
// so every subcommand assembles the system the same way.
type components struct {
	docs         *docstore.SQLite
	graph        *graphstore.SQLite
	vectors      *vectorstore.Qdrant
	statusStore  *ingest.StatusStore
	orchestrator *retrieval.Orchestrator
	pipeline     *ingest.Pipeline
}

func buildComponents(cfg types.Config) (*components, error) {
	docs, err := docstore.NewSQLite(cfg.DocumentStore)
	if err != nil {
		return nil, fmt.Errorf("opening document store: %w", err)
	}
	graph, err := graphstore.NewSQLite(cfg.GraphStore)
	if err != nil {
		docs.Close()
		return nil, fmt.Errorf("opening graph store: %w", err)
	}
	vectors, err := vectorstore.NewQdrant(cfg.VectorStore)
	if err != nil {
		docs.Close()
		graph.Close()
		return nil, fmt.Errorf("connecting to vector store: %w", err)
	}
	statusStore, err := ingest.NewStatusStore(cfg.DocumentStore)
	if err != nil {
		docs.Close()
		graph.Close()
		vectors.Close()
		return nil, fmt.Errorf("opening status store: %w", err)
	}

	embedder := embedding.NewClient(cfg.Embedding)
	summarizer := &summarize.ClaudeBackend{APIKey: cfg.Summary.APIKey, Model: cfg.Summary.Model}

	return &components{
		docs:         docs,
		graph:        graph,
		vectors:      vectors,
		statusStore:  statusStore,
		orchestrator: retrieval.New(embedder, vectors, graph, docs, cfg.Search),
		pipeline:     ingest.New(statusStore, docs, vectors, graph, embedder, summarizer, cfg.Summary),
	}, nil
}

// Close releases every store the bundle opened.
func (c *components) Close() {
	c.docs.Close()
	c.graph.Close()
	c.vectors.Close()
	c.statusStore.Close()
}
