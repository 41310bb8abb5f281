package models

import (
	"time"
)

// SourceType identifies the wire format a feed was parsed from.
type SourceType string

const (
	SourceRSS  SourceType = "rss"
	SourceRDF  SourceType = "rdf"
	SourceAtom SourceType = "atom"
)

// Feed represents a subscribable source of stories.
type Feed struct {
	ID            string     `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Link          string     `json:"link"`
	SourceType    SourceType `json:"source_type"`
	Category      string     `json:"category,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	ImageTitle    string     `json:"image_title,omitempty"`
	ImageLink     string     `json:"image_link,omitempty"`
	LastFetched   *time.Time `json:"last_fetched"`
	NumberOfItems int        `json:"number_of_items"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FeedWithSubscription is the API shape for feed listings: the feed plus
// whether the requesting user is subscribed to it.
type FeedWithSubscription struct {
	Feed         Feed `json:"feed"`
	IsSubscribed bool `json:"user_is_subscribed"`
}
