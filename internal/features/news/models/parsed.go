package models

import (
	"time"
)

// ParsedFeed is the feed-level metadata produced by the fetch adapter
// from a freshly downloaded document. It replaces the stored feed's
// mutable fields on every successful refresh.
type ParsedFeed struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Link        string     `json:"link"`
	SourceType  SourceType `json:"source_type"`
	Category    string     `json:"category,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	ImageTitle  string     `json:"image_title,omitempty"`
	ImageLink   string     `json:"image_link,omitempty"`
}

// RefreshResult is what one feed's reconciliation hands to the unread
// fan-out. NewNewsItems counts distinct new stories that surfaced as a
// news item for at least one subscriber.
type RefreshResult struct {
	Feed         *Feed     `json:"feed"`
	NewNewsItems int       `json:"new_news_items"`
	CompletedAt  time.Time `json:"completed_at"`
}

// FetcherConfig holds configuration for the fetch adapter.
type FetcherConfig struct {
	UserAgent string        `json:"user_agent"`
	Timeout   time.Duration `json:"timeout"`
}
