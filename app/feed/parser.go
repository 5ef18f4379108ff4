package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) (*Metadata, []Item, error) {
	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	metadata := &Metadata{
		Title:       parsed.Title,
		Link:        parsed.Link,
		Description: parsed.Description,
		Language:    parsed.Language,
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		normalized := p.normalizeItem(item)
		// Entries without a link or title cannot be deduplicated or
		// delivered meaningfully.
		if normalized.URL == "" || normalized.Title == "" {
			continue
		}
		items = append(items, normalized)
	}

	return metadata, items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		Title:       strings.TrimSpace(item.Title),
		URL:         strings.TrimSpace(cmp.Or(item.Link, item.GUID)),
		Description: StripMarkup(item.Description),
		Content:     StripMarkup(cmp.Or(item.Content, item.Description)),
		Author:      p.extractAuthor(item),
	}

	// An unparsable or missing publish date is coerced to now so the item
	// still falls inside the delivery lookback window.
	if item.PublishedParsed != nil {
		normalized.PublishedAt = item.PublishedParsed.UTC()
	} else {
		normalized.PublishedAt = time.Now().UTC()
	}

	return normalized
}

func (p *Parser) extractAuthor(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return strings.TrimSpace(item.Authors[0].Name)
	}
	if item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return ""
}
