package services

import (
	"context"
	"fmt"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

// UnreadService maintains the per-user unread counters: fan-out after
// refresh cycles and decrement on mark-as-read.
type UnreadService struct {
	store  store.Store
	logger *core.Logger
}

// NewUnreadService creates a new unread counter service.
func NewUnreadService(s store.Store, logger *core.Logger) *UnreadService {
	return &UnreadService{store: s, logger: logger}
}

// ApplyRefreshResults increments the unread counter of every subscriber
// of each refreshed feed by that feed's new-story count. Nil results
// (failed refreshes) and results without new stories leave user state
// untouched. A failure for one feed is logged and does not block the
// others.
func (u *UnreadService) ApplyRefreshResults(ctx context.Context, results []*models.RefreshResult) {
	for _, result := range results {
		if result == nil || result.NewNewsItems == 0 {
			continue
		}

		users, err := u.store.UsersSubscribedTo(ctx, result.Feed.ID)
		if err != nil {
			u.logger.Error("Failed to load subscribers for unread fan-out", "feed_id", result.Feed.ID, "error", err)
			continue
		}

		for i := range users {
			users[i].NumberOfUnreadItems += result.NewNewsItems
		}

		if err := u.store.UpsertUsers(ctx, users); err != nil {
			u.logger.Error("Failed to persist unread counters", "feed_id", result.Feed.ID, "error", err)
			continue
		}

		u.logger.Info("Applied unread fan-out", "feed_id", result.Feed.ID, "new_items", result.NewNewsItems, "users", len(users))
	}
}

// MarkItemsRead flips the read flag on the given news items and
// decrements the user's unread counter by the number of IDs, floored at
// zero so concurrent or duplicate requests can never drive it negative.
func (u *UnreadService) MarkItemsRead(ctx context.Context, userID string, newsItemIDs []string) (*models.User, error) {
	user, err := u.store.UserByID(ctx, userID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, core.NewNotFoundError(fmt.Sprintf("user %s not found", userID), err)
		}
		return nil, core.NewStorageError("failed to load user", err)
	}

	if err := u.store.MarkNewsItemsRead(ctx, userID, newsItemIDs); err != nil {
		return nil, core.NewStorageError("failed to mark news items read", err)
	}

	user.NumberOfUnreadItems -= len(newsItemIDs)
	if user.NumberOfUnreadItems < 0 {
		user.NumberOfUnreadItems = 0
	}

	if err := u.store.UpsertUser(ctx, user); err != nil {
		return nil, core.NewStorageError("failed to persist user", err)
	}

	return user, nil
}
