package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/nmjlab/papergraph/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored papers",
	Long: `Search retrieves papers either by structured query against the vector
index (query) or by ranking a paper's citation neighborhood (graph).`,
}

var searchQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Search by structured query",
	Long: `Query embeds the domain, problem, and solution facets and returns the
closest papers from the vector index. Domain is required; the other
facets narrow which embedding variant answers the search.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		q := queryFromFlags(cmd)
		k, _ := cmd.Flags().GetInt("max-results")

		results, err := comps.orchestrator.SearchByQuery(cmd.Context(), q, k)
		if err != nil {
			return err
		}
		return printResults(cmd, os.Stdout, results)
	},
}

var searchGraphCmd = &cobra.Command{
	Use:   "graph <paper-id>",
	Short: "Search a paper's citation neighborhood",
	Long: `Graph collects the papers the given paper cites and the papers citing it,
ranks them by similarity to the query, and returns the closest ones.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		q := queryFromFlags(cmd)
		k, _ := cmd.Flags().GetInt("max-results")

		results, err := comps.orchestrator.SearchByGraph(cmd.Context(), args[0], q, k)
		if err != nil {
			return err
		}
		return printResults(cmd, os.Stdout, results)
	},
}

func queryFromFlags(cmd *cobra.Command) types.StructuredQuery {
	domain, _ := cmd.Flags().GetString("domain")
	problem, _ := cmd.Flags().GetString("problem")
	solution, _ := cmd.Flags().GetString("solution")
	return types.StructuredQuery{Domain: domain, Problem: problem, Solution: solution}
}

// printResults writes search results as a score/title table, or JSON when
// --json is set.
func printResults(cmd *cobra.Command, w io.Writer, results []types.ScoredPaper) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(w, "no results")
		return nil
	}

	fmt.Fprintf(w, "%-8s %-12s %s\n", "SCORE", "ID", "TITLE")
	for _, r := range results {
		fmt.Fprintf(w, "%-8.4f %-12s %s\n", r.Score, r.ID, r.Title)
	}
	return nil
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("domain", "", "research domain (required)")
	cmd.Flags().String("problem", "", "problem facet")
	cmd.Flags().String("solution", "", "solution facet")
	cmd.Flags().Int("max-results", 0, "maximum number of results (default from config)")
	cmd.Flags().Bool("json", false, "output results as JSON")
}

func init() {
	addQueryFlags(searchQueryCmd)
	addQueryFlags(searchGraphCmd)

	searchCmd.AddCommand(searchQueryCmd)
	searchCmd.AddCommand(searchGraphCmd)
	rootCmd.AddCommand(searchCmd)
}
