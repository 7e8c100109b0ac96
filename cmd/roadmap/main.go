package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/roadmapbot/internal/cli"
	"github.com/cloo-solutions/roadmapbot/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "roadmap",
		Short: "Roadmap assistant CLI",
		Long: `Roadmap assistant CLI: chat with the knowledge-grounded assistant from a terminal.

Environment variables:
  ROADMAP_API_URL       API base URL (default: http://localhost:8080)
  ROADMAP_ADMIN_TOKEN   Admin token for snapshot and decisions`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env and config)")
	rootCmd.PersistentFlags().String("admin-token", "", "Admin token (overrides env and config)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.ChatCmd())
	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.KBCmd())
	rootCmd.AddCommand(client.ModelsCmd())
	rootCmd.AddCommand(client.SnapshotCmd())
	rootCmd.AddCommand(client.DecisionsCmd())
	rootCmd.AddCommand(client.AuthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
