package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"newsdigest/app/database"
	"newsdigest/app/enrich"
	"newsdigest/app/feed"
)

type FeedSource interface {
	Fetch(ctx context.Context, feedURL string) ([]feed.Item, error)
}

type Enricher interface {
	Enqueue(task enrich.Task) error
}

type Report struct {
	FeedsAttempted int `json:"feeds_attempted"`
	FeedsSucceeded int `json:"feeds_succeeded"`
	FeedsFailed    int `json:"feeds_failed"`
	ItemsInserted  int `json:"items_inserted"`
}

func (r Report) String() string {
	return fmt.Sprintf("feeds %d/%d succeeded, %d items inserted",
		r.FeedsSucceeded, r.FeedsAttempted, r.ItemsInserted)
}

// Coordinator runs one ingestion pass: fetch every active feed, insert the
// items not seen before, and hand the new ones to the enrichment pool. A
// failing feed is counted and skipped; the pass always completes with
// partial results.
type Coordinator struct {
	feeds    database.FeedRepository
	items    database.ItemRepository
	source   FeedSource
	enricher Enricher

	concurrency int
}

func NewCoordinator(feeds database.FeedRepository, items database.ItemRepository, source FeedSource, enricher Enricher, concurrency int) *Coordinator {
	return &Coordinator{
		feeds:       feeds,
		items:       items,
		source:      source,
		enricher:    enricher,
		concurrency: concurrency,
	}
}

func (c *Coordinator) Run(ctx context.Context) (Report, error) {
	started := time.Now()

	activeFeeds, err := c.feeds.ListActiveFeeds(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list active feeds: %w", err)
	}

	var succeeded, failed, inserted atomic.Int64

	// Feeds are independent and network-bound, so they are fetched with
	// bounded parallelism. Workers never return an error: a broken feed
	// must not cancel the others.
	var g errgroup.Group
	g.SetLimit(c.concurrency)

	for _, f := range activeFeeds {
		g.Go(func() error {
			count, err := c.processFeed(ctx, f)
			if err != nil {
				slog.Error("Feed ingestion failed", "feed", f.Name, "url", f.URL, "error", err)
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			inserted.Add(int64(count))
			return nil
		})
	}

	g.Wait()

	c.requeueUnprocessed(ctx, started)

	report := Report{
		FeedsAttempted: len(activeFeeds),
		FeedsSucceeded: int(succeeded.Load()),
		FeedsFailed:    int(failed.Load()),
		ItemsInserted:  int(inserted.Load()),
	}

	slog.Info("Ingestion pass completed",
		"duration", time.Since(started),
		"feeds_attempted", report.FeedsAttempted,
		"feeds_succeeded", report.FeedsSucceeded,
		"feeds_failed", report.FeedsFailed,
		"items_inserted", report.ItemsInserted)

	return report, nil
}

func (c *Coordinator) processFeed(ctx context.Context, f database.Feed) (int, error) {
	items, err := c.source.Fetch(ctx, f.URL)
	if err != nil {
		return 0, err
	}

	inserted := 0
	for _, item := range items {
		stored, err := c.items.InsertItemIfNew(ctx, database.Item{
			FeedID:      &f.ID,
			Title:       item.Title,
			URL:         item.URL,
			Content:     item.Content,
			PublishedAt: item.PublishedAt,
		})
		if err != nil {
			slog.Error("Failed to store item", "feed", f.Name, "url", item.URL, "error", err)
			continue
		}
		if stored == nil {
			// Already known: the URL uniqueness constraint is the dedup
			// source of truth.
			continue
		}

		inserted++

		if err := c.enricher.Enqueue(enrich.Task{ItemID: stored.ID, URL: stored.URL}); err != nil {
			slog.Warn("Failed to enqueue item for enrichment", "item_id", stored.ID, "error", err)
		}
	}

	if err := c.feeds.MarkFeedFetched(ctx, f.ID); err != nil {
		return inserted, fmt.Errorf("failed to mark feed fetched: %w", err)
	}

	slog.Info("Feed ingested", "feed", f.Name, "total", len(items), "new", inserted)

	return inserted, nil
}

// requeueUnprocessed gives items whose earlier enrichment attempt failed
// another chance. Items inserted by this very pass are already queued, so
// only older ones are picked up; permanently failing items age out via the
// retention sweep.
func (c *Coordinator) requeueUnprocessed(ctx context.Context, passStarted time.Time) {
	stale, err := c.items.ListUnprocessedItems(ctx, 50)
	if err != nil {
		slog.Error("Failed to list unprocessed items", "error", err)
		return
	}

	for _, item := range stale {
		if !item.CreatedAt.Before(passStarted) {
			continue
		}
		if err := c.enricher.Enqueue(enrich.Task{ItemID: item.ID, URL: item.URL}); err != nil {
			slog.Warn("Failed to re-enqueue item for enrichment", "item_id", item.ID, "error", err)
			return
		}
	}
}
