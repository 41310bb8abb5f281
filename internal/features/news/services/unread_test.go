package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

func TestApplyRefreshResults(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")
	seedSubscriber(t, st, feed.ID, "bob")

	// carol is not subscribed and must stay untouched
	require.NoError(t, st.UpsertUser(ctx, &models.User{ID: "carol", Name: "carol"}))

	u := NewUnreadService(st, core.NewLogger())
	u.ApplyRefreshResults(ctx, []*models.RefreshResult{
		nil, // failed refresh
		{Feed: feed, NewNewsItems: 3},
		{Feed: &models.Feed{ID: "other-feed"}, NewNewsItems: 5},
	})

	for _, userID := range []string{"alice", "bob"} {
		user, err := st.UserByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 3, user.NumberOfUnreadItems)
	}

	carol, err := st.UserByID(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, carol.NumberOfUnreadItems)
}

func TestApplyRefreshResultsSkipsZeroCounts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	u := NewUnreadService(st, core.NewLogger())
	u.ApplyRefreshResults(ctx, []*models.RefreshResult{{Feed: feed, NewNewsItems: 0}})

	user, err := st.UserByID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, user.NumberOfUnreadItems)
}

func TestMarkItemsRead(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	user := seedSubscriber(t, st, feed.ID, "alice")

	user.NumberOfUnreadItems = 5
	require.NoError(t, st.UpsertUser(ctx, user))

	require.NoError(t, st.UpsertNewsItems(ctx, []models.NewsItem{
		{ID: "n1", FeedID: feed.ID, UserID: "alice", Title: "one", Link: "l1"},
		{ID: "n2", FeedID: feed.ID, UserID: "alice", Title: "two", Link: "l2"},
	}))

	u := NewUnreadService(st, core.NewLogger())
	updated, err := u.MarkItemsRead(ctx, "alice", []string{"n1", "n2"})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.NumberOfUnreadItems)

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestMarkItemsReadFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	user := seedSubscriber(t, st, feed.ID, "alice")

	user.NumberOfUnreadItems = 2
	require.NoError(t, st.UpsertUser(ctx, user))

	u := NewUnreadService(st, core.NewLogger())
	updated, err := u.MarkItemsRead(ctx, "alice", []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.NumberOfUnreadItems, "counter never goes negative")
}

func TestMarkItemsReadUnknownUser(t *testing.T) {
	st := store.NewMemoryStore()

	u := NewUnreadService(st, core.NewLogger())
	_, err := u.MarkItemsRead(context.Background(), "nobody", []string{"n1"})
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, core.ErrCodeNotFound, appErr.Code)
}
