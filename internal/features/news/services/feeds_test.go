package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

func newTestFeedService(st store.Store, now time.Time) *FeedService {
	s := NewFeedService(st, nil, core.NewLogger())
	s.clock = func() time.Time { return now }
	return s
}

func TestSubscribeSeedsRecentItems(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)

	user := &models.User{ID: "alice", Name: "alice"}
	require.NoError(t, st.UpsertUser(ctx, user))

	fresh := testNow.Add(-2 * time.Hour)
	stale := testNow.Add(-30 * time.Hour)
	require.NoError(t, st.UpsertFeedItems(ctx, []models.FeedItem{
		{ID: "i1", FeedID: feed.ID, Title: "Bridge closed after crash on ring road",
			Link: "https://news.example.org/bridge", LastSeen: fresh, CreatedAt: fresh},
		{ID: "i2", FeedID: feed.ID, Title: "Museum exhibit draws record crowds",
			Link: "https://news.example.org/museum", LastSeen: stale, CreatedAt: stale},
	}))

	s := newTestFeedService(st, testNow)
	require.NoError(t, s.Subscribe(ctx, user, feed.ID))

	assert.Equal(t, 1, user.NumberOfUnreadItems, "only recent items seed the counter")

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "https://news.example.org/bridge", unread[0].Link)
	assert.Equal(t, "i1", unread[0].FeedItemID)

	subscribed, err := st.SubscribedFeedIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{feed.ID}, subscribed)
}

func TestCreateFeedIgnoresTrailingSlash(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)

	// The fetcher is nil, so a lookup miss would panic instead of
	// returning the stored feed.
	s := newTestFeedService(st, testNow)
	existing, err := s.CreateFeed(ctx, feed.URL+"/", "")
	require.NoError(t, err)
	assert.Equal(t, feed.ID, existing.ID)

	feeds, err := st.ListFeeds(ctx)
	require.NoError(t, err)
	assert.Len(t, feeds, 1)
}

func TestSubscribeUnknownFeed(t *testing.T) {
	st := store.NewMemoryStore()
	user := &models.User{ID: "alice", Name: "alice"}
	require.NoError(t, st.UpsertUser(context.Background(), user))

	s := newTestFeedService(st, testNow)
	err := s.Subscribe(context.Background(), user, "missing")
	require.Error(t, err)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, core.ErrCodeNotFound, appErr.Code)
}

func TestUnsubscribeDropsNewsItems(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	user := seedSubscriber(t, st, feed.ID, "alice")

	user.NumberOfUnreadItems = 3
	require.NoError(t, st.UpsertUser(ctx, user))

	require.NoError(t, st.UpsertNewsItems(ctx, []models.NewsItem{
		{ID: "n1", FeedID: feed.ID, UserID: "alice", Title: "one", Link: "l1"},
		{ID: "n2", FeedID: feed.ID, UserID: "alice", Title: "two", Link: "l2"},
		{ID: "n3", FeedID: feed.ID, UserID: "alice", Title: "three", Link: "l3", IsRead: true},
	}))

	s := newTestFeedService(st, testNow)
	require.NoError(t, s.Unsubscribe(ctx, user, feed.ID))

	assert.Equal(t, 1, user.NumberOfUnreadItems, "counter drops by the unread items removed")

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, unread)

	subscribed, err := st.SubscribedFeedIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, subscribed)
}

func TestListFeedsMarksSubscriptions(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	other := &models.Feed{ID: "feed-2", URL: "https://other.example.org/rss", Title: "Other"}
	require.NoError(t, st.UpsertFeed(ctx, other))
	seedSubscriber(t, st, feed.ID, "alice")

	s := newTestFeedService(st, testNow)
	feeds, err := s.ListFeeds(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, feeds, 2)

	byID := make(map[string]bool, len(feeds))
	for _, f := range feeds {
		byID[f.Feed.ID] = f.IsSubscribed
	}
	assert.True(t, byID[feed.ID])
	assert.False(t, byID["feed-2"])
}
