package database

import (
	"context"
	"time"
)

// The store is the only shared mutable resource in the system. Every other
// component goes through these interfaces; the uniqueness invariants (item
// URL, ledger pair) are enforced by the schema, not by callers.

type FeedRepository interface {
	CreateFeed(ctx context.Context, name, url string, fetchInterval time.Duration) (*Feed, error)
	GetFeedByURL(ctx context.Context, url string) (*Feed, error)
	ListFeeds(ctx context.Context) ([]Feed, error)
	ListActiveFeeds(ctx context.Context) ([]Feed, error)
	MarkFeedFetched(ctx context.Context, feedID int64) error
	SetFeedActive(ctx context.Context, feedID int64, active bool) error
}

type ItemRepository interface {
	// InsertItemIfNew inserts the item unless one with the same URL already
	// exists, in which case it returns (nil, nil).
	InsertItemIfNew(ctx context.Context, item Item) (*Item, error)
	MarkItemEnriched(ctx context.Context, itemID int64, summary string, keywords []string) error
	ListUndeliveredEligibleItems(ctx context.Context, recipientID int64, lookback time.Duration, limit int) ([]Item, error)
	ListUnprocessedItems(ctx context.Context, limit int) ([]Item, error)
	ListRecentItems(ctx context.Context, limit int) ([]Item, error)
}

type RecipientRepository interface {
	// UpsertRecipient creates the recipient on first contact and reactivates
	// an opted-out one on renewed contact.
	UpsertRecipient(ctx context.Context, externalID, displayName string) (*Recipient, error)
	UpdateRecipientSettings(ctx context.Context, recipientID int64, settings RecipientSettings) error
	SetRecipientActive(ctx context.Context, recipientID int64, active bool) error
	ListRecipients(ctx context.Context) ([]Recipient, error)
	ListActiveRecipients(ctx context.Context) ([]Recipient, error)
}

type SubscriptionRepository interface {
	Subscribe(ctx context.Context, recipientID, feedID int64) error
	Unsubscribe(ctx context.Context, recipientID, feedID int64) error
	ListSubscribedFeeds(ctx context.Context, recipientID int64) ([]Feed, error)
}

type DeliveryRepository interface {
	RecordDelivery(ctx context.Context, recipientID, itemID int64, status, errorDetail string) error
	ListRecentDeliveries(ctx context.Context, limit int) ([]DeliveryRecord, error)
}

type MaintenanceRepository interface {
	PurgeStale(ctx context.Context, policy RetentionPolicy) (PurgeResult, error)
	Stats(ctx context.Context) (Stats, error)
}
