package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DecisionPruner deletes decision records created before a cutoff.
type DecisionPruner interface {
	PruneDecisions(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionProcessor keeps the decision log within its retention window.
type RetentionProcessor struct {
	pruner    DecisionPruner
	retention time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

func NewRetentionProcessor(pruner DecisionPruner, retention time.Duration, logger *zap.Logger) *RetentionProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetentionProcessor{
		pruner:    pruner,
		retention: retention,
		logger:    logger,
		now:       time.Now,
	}
}

// ProcessJobs implements JobProcessor
func (p *RetentionProcessor) ProcessJobs(ctx context.Context) error {
	if p.retention <= 0 {
		return nil
	}

	cutoff := p.now().UTC().Add(-p.retention)
	deleted, err := p.pruner.PruneDecisions(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune decisions: %w", err)
	}
	if deleted > 0 {
		p.logger.Info("pruned decisions", zap.Int64("deleted", deleted), zap.Time("cutoff", cutoff))
	}
	return nil
}
