package database

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type maintenanceRepository struct {
	db *DB
}

func NewMaintenanceRepository(db *DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

// PurgeStale deletes ledger rows and items past their retention thresholds.
// Each category is deleted independently; a failure in one category is
// collected into the returned error while the others still run, so the
// result always carries the counts of whatever succeeded.
func (r *maintenanceRepository) PurgeStale(ctx context.Context, policy RetentionPolicy) (PurgeResult, error) {
	now := time.Now().UTC()
	result := PurgeResult{}
	var errs []error

	deleted, err := r.deleteRows(ctx,
		`DELETE FROM deliveries WHERE delivered_at < ?`,
		toMillis(now.Add(-policy.LedgerAge)))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge delivery ledger: %w", err))
	}
	result.DeliveriesDeleted = deleted

	// Items that never got enriched within the processing timeout are
	// treated as permanently failed ingestion.
	deleted, err = r.deleteRows(ctx,
		`DELETE FROM items WHERE processed = 0 AND created_at < ?`,
		toMillis(now.Add(-policy.UnprocessedAge)))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge unprocessed items: %w", err))
	}
	result.UnprocessedItemsDeleted = deleted

	deleted, err = r.deleteRows(ctx,
		`DELETE FROM items WHERE processed = 1 AND created_at < ?`,
		toMillis(now.Add(-policy.ProcessedAge)))
	if err != nil {
		errs = append(errs, fmt.Errorf("failed to purge processed items: %w", err))
	}
	result.ProcessedItemsDeleted = deleted

	return result, errors.Join(errs...)
}

func (r *maintenanceRepository) deleteRows(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *maintenanceRepository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	weekAgo := toMillis(time.Now().UTC().Add(-7 * 24 * time.Hour))

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.ActiveRecipients, `SELECT COUNT(*) FROM recipients WHERE active = 1`, nil},
		{&stats.ActiveFeeds, `SELECT COUNT(*) FROM feeds WHERE active = 1`, nil},
		{&stats.TotalItems, `SELECT COUNT(*) FROM items`, nil},
		{&stats.TotalDeliveries, `SELECT COUNT(*) FROM deliveries`, nil},
		{&stats.RecentItems, `SELECT COUNT(*) FROM items WHERE created_at > ?`, []any{weekAgo}},
	}

	for _, c := range counts {
		if err := r.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return stats, fmt.Errorf("failed to query stats: %w", err)
		}
	}

	return stats, nil
}
