package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

// FeedService manages feed registration and user subscriptions.
type FeedService struct {
	store   store.Store
	fetcher *Fetcher
	logger  *core.Logger
	clock   func() time.Time
}

// NewFeedService creates a new feed service.
func NewFeedService(s store.Store, fetcher *Fetcher, logger *core.Logger) *FeedService {
	return &FeedService{
		store:   s,
		fetcher: fetcher,
		logger:  logger,
		clock:   time.Now,
	}
}

// CreateFeed registers a feed by URL. The document is fetched once to
// derive the feed's metadata; items are left for the first scheduled
// refresh. Registering a URL twice returns the existing feed.
func (s *FeedService) CreateFeed(ctx context.Context, feedURL, category string) (*models.Feed, error) {
	feedURL = normalizeFeedURL(feedURL)
	if feedURL == "" {
		return nil, core.NewValidationError("feed url is required", nil)
	}

	if existing, err := s.store.FeedByURL(ctx, feedURL); err == nil {
		return existing, nil
	} else if err != store.ErrNotFound {
		return nil, core.NewStorageError("failed to look up feed", err)
	}

	parsed, _, err := s.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	feed := &models.Feed{
		ID:          uuid.NewString(),
		URL:         parsed.URL,
		Title:       parsed.Title,
		Description: parsed.Description,
		Link:        parsed.Link,
		SourceType:  parsed.SourceType,
		Category:    parsed.Category,
		ImageURL:    parsed.ImageURL,
		ImageTitle:  parsed.ImageTitle,
		ImageLink:   parsed.ImageLink,
		CreatedAt:   s.clock(),
	}
	if category != "" {
		feed.Category = category
	}

	if err := s.store.UpsertFeed(ctx, feed); err != nil {
		return nil, core.NewStorageError("failed to store feed", err)
	}

	s.logger.Info("Registered feed", "id", feed.ID, "url", feed.URL, "title", feed.Title)
	return feed, nil
}

// ListFeeds returns all feeds annotated with the user's subscription
// status.
func (s *FeedService) ListFeeds(ctx context.Context, userID string) ([]models.FeedWithSubscription, error) {
	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		return nil, core.NewStorageError("failed to list feeds", err)
	}

	subscribed, err := s.store.SubscribedFeedIDs(ctx, userID)
	if err != nil {
		return nil, core.NewStorageError("failed to load subscriptions", err)
	}
	subscribedSet := make(map[string]bool, len(subscribed))
	for _, feedID := range subscribed {
		subscribedSet[feedID] = true
	}

	result := make([]models.FeedWithSubscription, 0, len(feeds))
	for _, feed := range feeds {
		result = append(result, models.FeedWithSubscription{
			Feed:         feed,
			IsSubscribed: subscribedSet[feed.ID],
		})
	}
	return result, nil
}

// Subscribe links the user to a feed and seeds their news items from
// feed items still inside the relevance window, bumping the unread
// counter by the number of seeded items.
func (s *FeedService) Subscribe(ctx context.Context, user *models.User, feedID string) error {
	feed, err := s.store.FeedByID(ctx, feedID)
	if err != nil {
		if err == store.ErrNotFound {
			return core.NewNotFoundError(fmt.Sprintf("feed %s not found", feedID), err)
		}
		return core.NewStorageError("failed to load feed", err)
	}

	items, err := s.store.FeedItemsForFeed(ctx, feed.ID)
	if err != nil {
		return core.NewStorageError("failed to load feed items", err)
	}

	now := s.clock()
	var seeded []models.NewsItem
	for _, item := range items {
		if !item.StillRelevant(now) {
			continue
		}
		seeded = append(seeded, *newsItemFromFeedItem(item, feed, *user, now))
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		sub := &models.Subscription{UserID: user.ID, FeedID: feed.ID, CreatedAt: now}
		if err := tx.Subscribe(ctx, sub); err != nil {
			return err
		}
		if err := tx.UpsertNewsItems(ctx, seeded); err != nil {
			return err
		}
		user.NumberOfUnreadItems += len(seeded)
		return tx.UpsertUser(ctx, user)
	})
	if err != nil {
		return core.NewStorageError("failed to subscribe", err)
	}

	s.logger.Info("Subscribed user to feed", "user_id", user.ID, "feed_id", feed.ID, "seeded", len(seeded))
	return nil
}

// Unsubscribe removes the link and deletes the user's news items for the
// feed. The unread counter drops by the number of unread items removed,
// floored at zero.
func (s *FeedService) Unsubscribe(ctx context.Context, user *models.User, feedID string) error {
	unread, err := s.store.UnreadNewsItems(ctx, feedID, user.ID)
	if err != nil {
		return core.NewStorageError("failed to load unread news items", err)
	}

	err = s.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Unsubscribe(ctx, user.ID, feedID); err != nil {
			return err
		}
		if err := tx.DeleteNewsItems(ctx, user.ID, feedID); err != nil {
			return err
		}
		user.NumberOfUnreadItems -= len(unread)
		if user.NumberOfUnreadItems < 0 {
			user.NumberOfUnreadItems = 0
		}
		return tx.UpsertUser(ctx, user)
	})
	if err != nil {
		return core.NewStorageError("failed to unsubscribe", err)
	}

	s.logger.Info("Unsubscribed user from feed", "user_id", user.ID, "feed_id", feedID)
	return nil
}
