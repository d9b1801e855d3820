// Package jobs holds the storefront's background maintenance tasks.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Job type constants
const (
	JobTypePruneOrphans = "cart:prune_orphans"
)

// OrphanPruner deletes cart items whose product no longer exists.
type OrphanPruner interface {
	PruneOrphans(ctx context.Context) (int, error)
}

// PruneResult holds the result of an orphan sweep
type PruneResult struct {
	Pruned   int           `json:"pruned"`
	Duration time.Duration `json:"duration"`
}

// PruneOrphans runs one sweep. Reads already hide orphaned lines, so the
// sweep only reclaims storage.
func PruneOrphans(ctx context.Context, pruner OrphanPruner, logger zerolog.Logger) (*PruneResult, error) {
	start := time.Now()
	n, err := pruner.PruneOrphans(ctx)
	result := &PruneResult{Pruned: n, Duration: time.Since(start)}
	if err != nil {
		return result, fmt.Errorf("prune orphaned cart items: %w", err)
	}

	event := logger.Debug()
	if n > 0 {
		event = logger.Info()
	}
	event.
		Str("job_type", JobTypePruneOrphans).
		Int("pruned", n).
		Dur("duration", result.Duration).
		Msg("orphan sweep finished")
	return result, nil
}

// OrphanSweep adapts PruneOrphans to a worker task.
func OrphanSweep(pruner OrphanPruner, logger zerolog.Logger) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := PruneOrphans(ctx, pruner, logger)
		return err
	}
}
