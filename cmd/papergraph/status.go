package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <request-id>",
	Short: "Show how far an upload has progressed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		st, err := comps.statusStore.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("request:   %s\n", st.RequestID)
		fmt.Printf("file:      %s\n", st.Filename)
		fmt.Printf("stage:     %s\n", st.Stage)
		fmt.Printf("requested: %s\n", st.RequestedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("updated:   %s\n", st.UpdatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
