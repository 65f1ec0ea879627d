package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/nmjlab/papergraph/pkg/types"
)

var paperCmd = &cobra.Command{
	Use:   "paper",
	Short: "Manage stored papers",
	Long: `Paper reads, submits, and patches papers in the document store. Submitted
papers run through the full ingest pipeline: summary extraction, facet
embedding, and citation graph updates.`,
}

var paperGetCmd = &cobra.Command{
	Use:   "get <paper-id>",
	Short: "Print a stored paper",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		paper, err := comps.docs.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if paper == nil {
			return fmt.Errorf("paper %s not found", args[0])
		}

		data, err := yaml.Marshal(paper)
		if err != nil {
			return fmt.Errorf("marshaling paper: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var paperPutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Submit a paper to the ingest pipeline",
	Long: `Put reads a paper from a YAML or JSON file and runs it through the ingest
pipeline. The printed request id can be polled with the status subcommand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paper, err := readPaperFile(args[0])
		if err != nil {
			return err
		}

		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		requestID, err := comps.pipeline.Submit(cmd.Context(), paper)
		if requestID != "" {
			fmt.Printf("request id: %s\n", requestID)
		}
		return err
	},
}

var paperPatchCmd = &cobra.Command{
	Use:   "patch <paper-id> <file>",
	Short: "Apply a partial update to a stored paper",
	Long: `Patch reads a partial paper from a YAML or JSON file and merges its
present fields into the stored record. Absent fields are left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("reading patch file: %w", err)
		}
		var patch types.PaperPatch
		if err := unmarshalFile(args[1], data, &patch); err != nil {
			return err
		}

		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		merged, err := comps.docs.Patch(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}

		out, err := yaml.Marshal(merged)
		if err != nil {
			return fmt.Errorf("marshaling paper: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

// readPaperFile loads a paper from a YAML or JSON file.
func readPaperFile(path string) (types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Paper{}, fmt.Errorf("reading paper file: %w", err)
	}
	var paper types.Paper
	if err := unmarshalFile(path, data, &paper); err != nil {
		return types.Paper{}, err
	}
	return paper, nil
}

// unmarshalFile decodes data as JSON when it starts with a brace, YAML
// otherwise.
func unmarshalFile(path string, data []byte, v any) error {
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s as JSON: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s as YAML: %w", path, err)
	}
	return nil
}

func init() {
	paperCmd.AddCommand(paperGetCmd)
	paperCmd.AddCommand(paperPutCmd)
	paperCmd.AddCommand(paperPatchCmd)
	rootCmd.AddCommand(paperCmd)
}
