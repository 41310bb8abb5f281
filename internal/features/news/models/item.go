package models

import (
	"time"
)

// RelevanceWindow is how long after creation a feed item is still worth
// surfacing to a user who subscribes late.
const RelevanceWindow = 18 * time.Hour

// FeedItem is one raw story instance as fetched from a feed. Items are
// deduplicated by link within a feed: re-fetching a known link only
// touches LastSeen, it never creates a second row.
type FeedItem struct {
	ID          string     `json:"id"`
	FeedID      string     `json:"feed_id"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Description string     `json:"description"`
	Published   *time.Time `json:"published"`
	LastSeen    time.Time  `json:"last_seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

// StillRelevant reports whether the item was created recently enough to
// seed news items for a fresh subscription.
func (i FeedItem) StillRelevant(now time.Time) bool {
	return i.CreatedAt.After(now.Add(-RelevanceWindow))
}

// PublishedOr returns the published timestamp, falling back to the given
// time when the source document carried none.
func (i FeedItem) PublishedOr(fallback time.Time) time.Time {
	if i.Published != nil {
		return *i.Published
	}
	return fallback
}
