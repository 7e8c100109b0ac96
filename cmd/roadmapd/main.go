package main

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/roadmapbot/internal/cli"
	"github.com/cloo-solutions/roadmapbot/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roadmapd",
		Short: "Roadmap assistant daemon",
		Long:  "Roadmap assistant daemon for running the API server and maintaining the decision log",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.DecisionsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
