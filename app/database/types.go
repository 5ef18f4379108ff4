package database

import (
	"time"
)

const (
	DeliveryStatusSent   = "sent"
	DeliveryStatusFailed = "failed"
)

type Feed struct {
	ID            int64
	Name          string
	URL           string
	Active        bool
	LastFetchedAt *time.Time
	FetchInterval time.Duration
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Item struct {
	ID          int64
	FeedID      *int64
	FeedName    string // Joined from feeds for display; empty when the feed is gone
	Title       string
	URL         string
	Content     string
	Summary     *string
	Keywords    []string
	PublishedAt time.Time
	Processed   bool
	CreatedAt   time.Time
}

type Recipient struct {
	ID           int64
	ExternalID   string
	DisplayName  string
	SummaryLevel string // brief, standard, detailed
	DeliveryTime string // HH:MM in the recipient's timezone
	Timezone     string // IANA zone name, e.g. "Asia/Tokyo"
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecipientSettings carries a partial settings update; nil fields are left untouched.
type RecipientSettings struct {
	DisplayName  *string
	SummaryLevel *string
	DeliveryTime *string
	Timezone     *string
}

type Subscription struct {
	ID          int64
	RecipientID int64
	FeedID      int64
	Active      bool
	CreatedAt   time.Time
}

type DeliveryRecord struct {
	ID          int64
	RecipientID int64
	ItemID      int64
	DeliveredAt time.Time
	Status      string
	Error       string
}

// RetentionPolicy bounds store growth. Ages are measured against delivered_at
// for ledger rows and created_at for items.
type RetentionPolicy struct {
	LedgerAge      time.Duration
	UnprocessedAge time.Duration
	ProcessedAge   time.Duration
}

func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		LedgerAge:      90 * 24 * time.Hour,
		UnprocessedAge: 7 * 24 * time.Hour,
		ProcessedAge:   30 * 24 * time.Hour,
	}
}

type PurgeResult struct {
	DeliveriesDeleted       int64 `json:"deliveries_deleted"`
	UnprocessedItemsDeleted int64 `json:"unprocessed_items_deleted"`
	ProcessedItemsDeleted   int64 `json:"processed_items_deleted"`
}

type Stats struct {
	ActiveRecipients int `json:"active_recipients"`
	ActiveFeeds      int `json:"active_feeds"`
	TotalItems       int `json:"total_items"`
	TotalDeliveries  int `json:"total_deliveries"`
	RecentItems      int `json:"recent_items"` // created within the last 7 days
}
