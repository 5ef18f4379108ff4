package delivery

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"newsdigest/app/database"
)

// BuildMessages renders a digest as one header message followed by one
// message per item, with item timestamps shown in the recipient's zone.
func BuildMessages(recipient database.Recipient, items []database.Item, now time.Time) []string {
	loc, err := time.LoadLocation(recipient.Timezone)
	if err != nil {
		loc = time.UTC
	}

	header := fmt.Sprintf("📰 Your news digest for %s\n%d new article(s)",
		now.In(loc).Format("Monday, Jan 2"), len(items))

	messages := lo.Map(items, func(item database.Item, _ int) string {
		return formatItem(item, loc)
	})

	return append([]string{header}, messages...)
}

func formatItem(item database.Item, loc *time.Location) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📄 %s\n", item.Title)

	if item.FeedName != "" {
		fmt.Fprintf(&b, "📡 %s | ", item.FeedName)
	}
	fmt.Fprintf(&b, "🕐 %s\n\n", item.PublishedAt.In(loc).Format("Jan 2, 15:04"))

	if item.Summary != nil && *item.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", *item.Summary)
	}

	if len(item.Keywords) > 0 {
		fmt.Fprintf(&b, "🏷 %s\n", strings.Join(item.Keywords, ", "))
	}

	fmt.Fprintf(&b, "🔗 %s", item.URL)

	return b.String()
}
