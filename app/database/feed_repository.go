package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type feedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) FeedRepository {
	return &feedRepository{db: db}
}

func (r *feedRepository) CreateFeed(ctx context.Context, name, url string, fetchInterval time.Duration) (*Feed, error) {
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO feeds (name, url, active, fetch_interval_s, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?, ?)
	`, name, url, int64(fetchInterval.Seconds()), toMillis(now), toMillis(now))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateFeed
		}
		return nil, fmt.Errorf("failed to create feed: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get feed id: %w", err)
	}

	return &Feed{
		ID:            id,
		Name:          name,
		URL:           url,
		Active:        true,
		FetchInterval: fetchInterval,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (r *feedRepository) GetFeedByURL(ctx context.Context, url string) (*Feed, error) {
	row := r.db.QueryRowContext(ctx, feedSelect+` WHERE url = ?`, url)

	feed, err := scanFeed(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed by URL: %w", err)
	}

	return feed, nil
}

func (r *feedRepository) ListFeeds(ctx context.Context) ([]Feed, error) {
	return r.listFeeds(ctx, feedSelect+` ORDER BY name`)
}

func (r *feedRepository) ListActiveFeeds(ctx context.Context) ([]Feed, error) {
	return r.listFeeds(ctx, feedSelect+` WHERE active = 1 ORDER BY name`)
}

func (r *feedRepository) listFeeds(ctx context.Context, query string) ([]Feed, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list feeds: %w", err)
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

func (r *feedRepository) MarkFeedFetched(ctx context.Context, feedID int64) error {
	now := toMillis(time.Now().UTC())

	_, err := r.db.ExecContext(ctx, `
		UPDATE feeds SET last_fetched_at = ?, updated_at = ? WHERE id = ?
	`, now, now, feedID)
	if err != nil {
		return fmt.Errorf("failed to mark feed fetched: %w", err)
	}

	return nil
}

func (r *feedRepository) SetFeedActive(ctx context.Context, feedID int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE feeds SET active = ?, updated_at = ? WHERE id = ?
	`, active, toMillis(time.Now().UTC()), feedID)
	if err != nil {
		return fmt.Errorf("failed to set feed active status: %w", err)
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

const feedSelect = `
	SELECT id, name, url, active, last_fetched_at, fetch_interval_s, created_at, updated_at
	FROM feeds`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFeed(row rowScanner) (*Feed, error) {
	var (
		feed          Feed
		lastFetched   sql.NullInt64
		intervalSecs  int64
		createdMillis int64
		updatedMillis int64
	)

	err := row.Scan(&feed.ID, &feed.Name, &feed.URL, &feed.Active,
		&lastFetched, &intervalSecs, &createdMillis, &updatedMillis)
	if err != nil {
		return nil, err
	}

	feed.LastFetchedAt = fromNullMillis(lastFetched)
	feed.FetchInterval = time.Duration(intervalSecs) * time.Second
	feed.CreatedAt = fromMillis(createdMillis)
	feed.UpdatedAt = fromMillis(updatedMillis)

	return &feed, nil
}
