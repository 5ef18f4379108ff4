package feed

import (
	"time"
)

type Metadata struct {
	Title       string
	Link        string
	Description string
	Language    string
}

// Item is a normalized feed entry: trimmed title and URL, markup stripped
// from the textual fields, and a publish date that is always set.
type Item struct {
	Title       string
	URL         string
	Description string
	Content     string
	Author      string
	PublishedAt time.Time
}
