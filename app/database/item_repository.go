package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type itemRepository struct {
	db *DB

	// When set, the eligibility query excludes only "sent" ledger rows, so a
	// failed delivery is retried on a later pass. Off by default: a recorded
	// attempt is terminal for the (recipient, item) pair.
	retryFailedDeliveries bool
}

func NewItemRepository(db *DB, retryFailedDeliveries bool) ItemRepository {
	return &itemRepository{db: db, retryFailedDeliveries: retryFailedDeliveries}
}

func (r *itemRepository) InsertItemIfNew(ctx context.Context, item Item) (*Item, error) {
	now := time.Now().UTC()

	// The UNIQUE constraint on url is the dedup invariant; ON CONFLICT makes
	// the check-then-insert atomic even with two sources racing on one URL.
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO items (feed_id, title, url, content, published_at, processed, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(url) DO NOTHING
		RETURNING id
	`, item.FeedID, item.Title, item.URL, item.Content,
		toMillis(item.PublishedAt), toMillis(now)).Scan(&id)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	inserted := item
	inserted.ID = id
	inserted.Processed = false
	inserted.CreatedAt = now

	return &inserted, nil
}

func (r *itemRepository) MarkItemEnriched(ctx context.Context, itemID int64, summary string, keywords []string) error {
	var kw sql.NullString
	if len(keywords) > 0 {
		kw = sql.NullString{String: strings.Join(keywords, ", "), Valid: true}
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE items SET summary = ?, keywords = ?, processed = 1 WHERE id = ?
	`, summary, kw, itemID)
	if err != nil {
		return fmt.Errorf("failed to mark item enriched: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *itemRepository) ListUndeliveredEligibleItems(ctx context.Context, recipientID int64, lookback time.Duration, limit int) ([]Item, error) {
	ledgerFilter := ""
	if r.retryFailedDeliveries {
		ledgerFilter = ` AND d.status = 'sent'`
	}

	query := `
		SELECT i.id, i.feed_id, COALESCE(f.name, ''), i.title, i.url, i.content,
		       i.summary, i.keywords, i.published_at, i.processed, i.created_at
		FROM items i
		JOIN subscriptions s ON s.feed_id = i.feed_id AND s.recipient_id = ? AND s.active = 1
		JOIN feeds f ON f.id = i.feed_id
		WHERE i.processed = 1
		  AND i.summary IS NOT NULL
		  AND i.published_at > ?
		  AND NOT EXISTS (
			SELECT 1 FROM deliveries d
			WHERE d.item_id = i.id AND d.recipient_id = ?` + ledgerFilter + `
		  )
		ORDER BY i.published_at DESC
		LIMIT ?`

	cutoff := toMillis(time.Now().UTC().Add(-lookback))

	return r.queryItems(ctx, query, recipientID, cutoff, recipientID, limit)
}

func (r *itemRepository) ListUnprocessedItems(ctx context.Context, limit int) ([]Item, error) {
	return r.queryItems(ctx, `
		SELECT i.id, i.feed_id, COALESCE(f.name, ''), i.title, i.url, i.content,
		       i.summary, i.keywords, i.published_at, i.processed, i.created_at
		FROM items i
		LEFT JOIN feeds f ON f.id = i.feed_id
		WHERE i.processed = 0
		ORDER BY i.published_at DESC
		LIMIT ?
	`, limit)
}

func (r *itemRepository) ListRecentItems(ctx context.Context, limit int) ([]Item, error) {
	return r.queryItems(ctx, `
		SELECT i.id, i.feed_id, COALESCE(f.name, ''), i.title, i.url, i.content,
		       i.summary, i.keywords, i.published_at, i.processed, i.created_at
		FROM items i
		LEFT JOIN feeds f ON f.id = i.feed_id
		ORDER BY i.published_at DESC
		LIMIT ?
	`, limit)
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func scanItem(row rowScanner) (*Item, error) {
	var (
		item            Item
		feedID          sql.NullInt64
		summary         sql.NullString
		keywords        sql.NullString
		publishedMillis int64
		createdMillis   int64
	)

	err := row.Scan(&item.ID, &feedID, &item.FeedName, &item.Title, &item.URL,
		&item.Content, &summary, &keywords, &publishedMillis, &item.Processed, &createdMillis)
	if err != nil {
		return nil, err
	}

	if feedID.Valid {
		item.FeedID = &feedID.Int64
	}
	if summary.Valid {
		item.Summary = &summary.String
	}
	if keywords.Valid {
		item.Keywords = splitKeywords(keywords.String)
	}
	item.PublishedAt = fromMillis(publishedMillis)
	item.CreatedAt = fromMillis(createdMillis)

	return &item, nil
}

func splitKeywords(s string) []string {
	parts := strings.Split(s, ",")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
