package tasks

import (
	"context"
	"fmt"
)

// newHistoryRetentionTask forgets message log entries older than the
// configured retention. Telegram only lets bots delete messages younger than
// 48 hours, so older entries could never be purged anyway.
func newHistoryRetentionTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "history_retention")

	return func(ctx context.Context) error {
		retention := deps.Config.Database.Retention
		if retention <= 0 {
			log.DebugContext(ctx, "History retention disabled")
			return nil
		}

		cutoff := deps.Clock.Now().Add(-retention)
		count, err := deps.Store.PruneMessagesBefore(ctx, cutoff)
		if err != nil {
			log.ErrorContext(ctx, "History retention task failed", "error", err, "cutoff", cutoff)
			return fmt.Errorf("history retention failed: %w", err)
		}

		log.InfoContext(ctx, "Pruned message log", "count", count, "cutoff", cutoff)
		return nil
	}
}
