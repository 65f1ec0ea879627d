package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nmjlab/papergraph/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search and ingest API over HTTP",
	Long: `Serve starts the HTTP API: structured and graph search, paper ingest and
patching, and upload status polling. The process runs until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd)
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		comps, err := buildComponents(cfg)
		if err != nil {
			return err
		}
		defer comps.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(comps.orchestrator, comps.pipeline, comps.docs, comps.statusStore)
		fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Server.Addr)
		return srv.Run(ctx, cfg.Server)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
