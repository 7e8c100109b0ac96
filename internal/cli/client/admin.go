package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// SnapshotCmd archives the current knowledge base on the server.
func SnapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Archive the knowledge base to object storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			snap, err := api.CreateSnapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("snapshot failed: %w", err)
			}

			out := cmd.OutOrStdout()
			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(out, snap)
			}
			fmt.Fprintf(out, "Key: %s\n", snap.Key)
			fmt.Fprintf(out, "Size: %d bytes\n", snap.Bytes)
			if snap.Truncated {
				fmt.Fprintln(out, "Truncated: yes")
			}
			fmt.Fprintf(out, "Download: %s\n", snap.DownloadURL)
			return nil
		},
	}
}

// DecisionsCmd pages through the routing decision log.
func DecisionsCmd() *cobra.Command {
	var (
		limit  int
		cursor string
	)

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List recent routing decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := NewAPIClient(cmd)
			if err != nil {
				return err
			}

			page, err := api.ListDecisions(cmd.Context(), cursor, limit)
			if err != nil {
				return fmt.Errorf("failed to list decisions: %w", err)
			}

			out := cmd.OutOrStdout()
			outputJSON, _ := cmd.Flags().GetBool("output")
			if outputJSON {
				return printJSON(out, page)
			}
			if len(page.Items) == 0 {
				fmt.Fprintln(out, "No decisions found.")
				return nil
			}

			for i, d := range page.Items {
				fmt.Fprintf(out, "%s  %-7s  %s\n", d.CreatedAt.Format("2006-01-02 15:04:05"), d.Route, d.Question)
				if len(d.MissingInfo) > 0 {
					fmt.Fprintf(out, "   Missing: %s\n", strings.Join(d.MissingInfo, ", "))
				}
				if d.Fallback {
					fmt.Fprintln(out, "   Fallback: unparsed reply")
				}
				fmt.Fprintf(out, "   %s, %dms, ID: %s\n", d.Provider, d.DurationMS, d.ID)
				if i < len(page.Items)-1 {
					fmt.Fprintln(out, strings.Repeat("-", 40))
				}
			}

			if page.HasMore && page.Cursor != "" {
				fmt.Fprintf(out, "\nMore results available. Use --cursor %s\n", page.Cursor)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().StringVar(&cursor, "cursor", "", "Pagination cursor from previous response")

	return cmd
}
