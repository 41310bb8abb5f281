package services

import (
	"context"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

const maxListLimit = 80

// NewsService serves the per-user news item listings.
type NewsService struct {
	store  store.Store
	logger *core.Logger
}

// NewNewsService creates a new news service.
func NewNewsService(s store.Store, logger *core.Logger) *NewsService {
	return &NewsService{store: s, logger: logger}
}

// UnreadItems returns the user's unread news items, newest first. The
// limit is capped at 80; zero or negative means the cap.
func (n *NewsService) UnreadItems(ctx context.Context, userID string, limit int) ([]models.NewsItem, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := n.store.UnreadNewsItemsForUser(ctx, userID, limit)
	if err != nil {
		return nil, core.NewStorageError("failed to list unread news items", err)
	}
	return items, nil
}

// ReadItems returns a page of the user's already-read news items, newest
// first.
func (n *NewsService) ReadItems(ctx context.Context, userID string, offset, limit int) ([]models.NewsItem, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	items, err := n.store.ReadNewsItemsForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, core.NewStorageError("failed to list read news items", err)
	}
	return items, nil
}
