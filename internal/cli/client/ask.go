package client

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/roadmapbot/internal/chat"
	"github.com/cloo-solutions/roadmapbot/internal/profile"
	"github.com/spf13/cobra"
)

// AskCmd routes a single question and prints the rendered turn.
func AskCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question",
		Long:  "Fetches the knowledge base, routes one question and prints the answer or handoff.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}
			prof, err := profile.Load(profilePath)
			if err != nil {
				return err
			}

			question := strings.Join(args, " ")
			kb, err := api.Knowledge(cmd.Context())
			if err != nil || strings.TrimSpace(kb) == "" {
				kb = prof.FallbackDocument
			}

			decision, err := api.Route(cmd.Context(), question, kb)
			if err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), decision)
			}
			fmt.Fprintln(cmd.OutOrStdout(), chat.Render(decision).Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", "", "Assistant profile YAML (fallback document)")

	return cmd
}
