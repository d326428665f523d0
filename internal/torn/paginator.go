package torn

import (
	"context"
	"fcd/internal/models"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CollectConsumption walks the armory feed newest-first and returns the
// consumption events whose timestamp falls in [start, end] and whose item id
// is not already in seen. seen is extended in place with every in-window
// item id, parsed or not, so a later sync never revisits an item. The
// returned id slice preserves first-sight order for the persisted sequence.
func CollectConsumption(ctx context.Context, client ClientInterface, key string, start, end int64, seen map[string]struct{}) ([]models.ConsumptionEvent, []string, error) {
	var events []models.ConsumptionEvent
	var processed []string

	cursor := ""
	for {
		page, err := client.NewsPage(ctx, key, cursor)
		if err != nil {
			return nil, nil, err
		}

		for _, item := range page.Items {
			if item.Timestamp > end {
				continue
			}
			if item.Timestamp < start {
				// The feed is time-ordered descending: no older page can
				// hold in-window items.
				return events, processed, nil
			}
			id := item.ID
			if id == "" {
				id = fallbackId(item)
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			processed = append(processed, id)
			events = append(events, ParseNewsItem(id, item.Timestamp, item.Text)...)
		}

		if page.Prev == "" {
			return events, processed, nil
		}
		cursor = page.Prev
	}
}

// fallbackId keys feed rows without a native id. Hashing the full message
// avoids the collisions a truncated prefix would allow between
// near-duplicate messages in the same second.
func fallbackId(item NewsItem) string {
	return fmt.Sprintf("%d-%016x", item.Timestamp, xxhash.Sum64String(item.Text))
}
