package models

import (
	"time"
)

// Alternate is a duplicate story merged into an existing news item
// instead of surfacing as a separate row.
type Alternate struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Favicon string `json:"favicon"`
}

// NewsItem is a per-user, per-story surfaced item. Near-duplicate
// stories from the same feed are folded in as alternates, so a user sees
// at most one unread item per underlying story.
type NewsItem struct {
	ID          string      `json:"id"`
	FeedID      string      `json:"feed_id"`
	UserID      string      `json:"user_id"`
	FeedItemID  string      `json:"feed_item_id"`
	FeedTitle   string      `json:"feed_title"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Link        string      `json:"link"`
	Favicon     string      `json:"favicon"`
	Published   time.Time   `json:"published"`
	CreatedAt   time.Time   `json:"created_at"`
	IsRead      bool        `json:"is_read"`
	Alternates  []Alternate `json:"alternates"`
}

// AppendAlternate records a duplicate story on the item. Appends are
// deduplicated by link so a replayed refresh cannot stack the same
// alternate twice.
func (n *NewsItem) AppendAlternate(link, title, favicon string) {
	for _, alt := range n.Alternates {
		if alt.Link == link {
			return
		}
	}
	n.Alternates = append(n.Alternates, Alternate{Link: link, Title: title, Favicon: favicon})
}
