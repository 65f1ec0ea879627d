// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the papergraph CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nmjlab/papergraph/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the papergraph CLI.
var rootCmd = &cobra.Command{
	Use:   "papergraph",
	Short: "Cross-store retrieval over an academic paper corpus",
	Long: `papergraph stores academic papers across a document store, a citation
graph, and a vector index, and retrieves them by structured query or by
graph adjacency.

Papers enter through the ingest pipeline (paper put), which extracts a
structured summary, embeds it under every facet combination, and records
citation edges. Searches run either against the vector index directly
(search query) or over a paper's citation neighborhood re-ranked by
similarity (search graph). The serve subcommand exposes the same
operations over HTTP.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./papergraph.yaml or ~/.config/papergraph/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory for the SQLite stores")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("papergraph")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "papergraph"))
		}
	}

	viper.SetEnvPrefix("PAPERGRAPH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
