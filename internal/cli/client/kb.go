package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// KBCmd prints the flattened knowledge base.
func KBCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "kb",
		Short:   "Print the knowledge base",
		Aliases: []string{"knowledge"},
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			kb, err := api.GetKnowledgeBase(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch knowledge base: %w", err)
			}

			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(cmd.OutOrStdout(), kb)
			}
			fmt.Fprint(cmd.OutOrStdout(), kb.Content)
			if kb.Truncated {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: knowledge base was truncated")
			}
			return nil
		},
	}
}

// ModelsCmd lists the generation models the server can see.
func ModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List generation models",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			models, err := api.ListModels(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			out := cmd.OutOrStdout()
			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(out, models)
			}
			if len(models) == 0 {
				fmt.Fprintln(out, "No models found.")
				return nil
			}
			for _, m := range models {
				if m.DisplayName != "" {
					fmt.Fprintf(out, "%s  (%s)\n", m.Name, m.DisplayName)
				} else {
					fmt.Fprintln(out, m.Name)
				}
			}
			return nil
		},
	}
}
