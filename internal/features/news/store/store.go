package store

import (
	"context"
	"errors"

	"newsroom/internal/features/news/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence contract the aggregation pipeline depends on.
// All writes are idempotent upserts keyed by stable IDs, so a failed
// reconciliation can be replayed in full.
type Store interface {
	// Feeds
	UpsertFeed(ctx context.Context, feed *models.Feed) error
	FeedByID(ctx context.Context, id string) (*models.Feed, error)
	FeedByURL(ctx context.Context, url string) (*models.Feed, error)
	ListFeeds(ctx context.Context) ([]models.Feed, error)

	// Feed items
	FeedItemsForFeed(ctx context.Context, feedID string) ([]models.FeedItem, error)
	UpsertFeedItems(ctx context.Context, items []models.FeedItem) error

	// News items
	UnreadNewsItems(ctx context.Context, feedID, userID string) ([]models.NewsItem, error)
	UnreadNewsItemsForUser(ctx context.Context, userID string, limit int) ([]models.NewsItem, error)
	ReadNewsItemsForUser(ctx context.Context, userID string, offset, limit int) ([]models.NewsItem, error)
	UpsertNewsItems(ctx context.Context, items []models.NewsItem) error
	MarkNewsItemsRead(ctx context.Context, userID string, newsItemIDs []string) error
	DeleteNewsItems(ctx context.Context, userID, feedID string) error

	// Users and subscriptions
	UserByID(ctx context.Context, id string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) error
	UpsertUsers(ctx context.Context, users []models.User) error
	UsersSubscribedTo(ctx context.Context, feedID string) ([]models.User, error)
	Subscribe(ctx context.Context, sub *models.Subscription) error
	Unsubscribe(ctx context.Context, userID, feedID string) error
	SubscribedFeedIDs(ctx context.Context, userID string) ([]string, error)

	// WithTx runs fn against a store bound to a single transaction.
	// Implementations without transaction support run fn directly.
	WithTx(ctx context.Context, fn func(Store) error) error
}
