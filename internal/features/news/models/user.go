package models

import (
	"time"
)

// User holds the derived unread counter and identifies the owner of news
// items. Authentication lives outside this service; callers pass a user
// ID and we resolve or provision the record.
type User struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	NumberOfUnreadItems int       `json:"number_of_unread_items"`
	CreatedAt           time.Time `json:"created_at"`
}

// Subscription links a user to a feed.
type Subscription struct {
	UserID    string    `json:"user_id"`
	FeedID    string    `json:"feed_id"`
	CreatedAt time.Time `json:"created_at"`
}
