package database

import (
	"context"
	"fmt"
	"time"
)

type subscriptionRepository struct {
	db *DB
}

func NewSubscriptionRepository(db *DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Subscribe(ctx context.Context, recipientID, feedID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (recipient_id, feed_id, active, created_at)
		VALUES (?, ?, 1, ?)
		ON CONFLICT(recipient_id, feed_id) DO UPDATE SET active = 1
	`, recipientID, feedID, toMillis(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to subscribe recipient %d to feed %d: %w", recipientID, feedID, err)
	}

	return nil
}

func (r *subscriptionRepository) Unsubscribe(ctx context.Context, recipientID, feedID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET active = 0 WHERE recipient_id = ? AND feed_id = ?
	`, recipientID, feedID)
	if err != nil {
		return fmt.Errorf("failed to unsubscribe recipient %d from feed %d: %w", recipientID, feedID, err)
	}

	return nil
}

func (r *subscriptionRepository) ListSubscribedFeeds(ctx context.Context, recipientID int64) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT f.id, f.name, f.url, f.active, f.last_fetched_at, f.fetch_interval_s,
		       f.created_at, f.updated_at
		FROM feeds f
		JOIN subscriptions s ON s.feed_id = f.id
		WHERE s.recipient_id = ? AND s.active = 1
		ORDER BY f.name
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribed feeds: %w", err)
	}
	defer rows.Close()

	var feeds []Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, *feed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feed rows: %w", err)
	}

	return feeds, nil
}
