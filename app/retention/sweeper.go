package retention

import (
	"context"
	"log/slog"
	"time"

	"newsdigest/app/database"
)

// Sweeper bounds store growth by deleting rows past their retention age.
// Categories are purged independently; one failing category does not stop
// the others, and partial counts are still reported.
type Sweeper struct {
	maintenance database.MaintenanceRepository
	policy      database.RetentionPolicy
}

func NewSweeper(maintenance database.MaintenanceRepository, policy database.RetentionPolicy) *Sweeper {
	return &Sweeper{
		maintenance: maintenance,
		policy:      policy,
	}
}

func (s *Sweeper) Run(ctx context.Context) (database.PurgeResult, error) {
	started := time.Now()

	result, err := s.maintenance.PurgeStale(ctx, s.policy)

	slog.Info("Retention sweep completed",
		"duration", time.Since(started),
		"deliveries_deleted", result.DeliveriesDeleted,
		"unprocessed_items_deleted", result.UnprocessedItemsDeleted,
		"processed_items_deleted", result.ProcessedItemsDeleted)

	if err != nil {
		slog.Error("Retention sweep finished with errors", "error", err)
	}

	return result, err
}
