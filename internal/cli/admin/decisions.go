package admin

import (
	"fmt"
	"time"

	"github.com/cloo-solutions/roadmapbot/internal/repository"
	"github.com/cloo-solutions/roadmapbot/internal/service"
	"github.com/spf13/cobra"
)

func DecisionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "Manage the routing decision log",
	}

	cmd.AddCommand(DecisionsPruneCmd())

	return cmd
}

func DecisionsPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old routing decisions",
		Long:  "Delete routing decisions older than --older-than (defaults to ROADMAP_DECISION_RETENTION)",
		RunE:  runDecisionsPrune,
	}

	cmd.Flags().Duration("older-than", 0, "Age cutoff, e.g. 168h")

	return cmd
}

func runDecisionsPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, cfg, err := openPool(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	olderThan, _ := cmd.Flags().GetDuration("older-than")
	if olderThan <= 0 {
		olderThan = cfg.DecisionRetention
	}
	if olderThan <= 0 {
		return fmt.Errorf("retention must be positive")
	}

	svc := service.NewAssistantService(nil, nil, repository.NewDecisionRepository(pool), nil)
	deleted, err := svc.PruneDecisions(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return fmt.Errorf("failed to prune decisions: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d decisions older than %s\n", deleted, olderThan)
	return nil
}
