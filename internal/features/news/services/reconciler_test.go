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

var testNow = time.Date(2025, 6, 12, 9, 30, 0, 0, time.UTC)

func newTestReconciler(st store.Store, now time.Time) *Reconciler {
	r := NewReconciler(st, core.NewLogger())
	r.clock = func() time.Time { return now }
	return r
}

func seedFeed(t *testing.T, st store.Store) *models.Feed {
	t.Helper()
	feed := &models.Feed{
		ID:         "feed-1",
		URL:        "https://news.example.org/rss",
		Title:      "Example News",
		SourceType: models.SourceRSS,
		CreatedAt:  testNow.Add(-24 * time.Hour),
	}
	require.NoError(t, st.UpsertFeed(context.Background(), feed))
	return feed
}

func seedSubscriber(t *testing.T, st store.Store, feedID, userID string) *models.User {
	t.Helper()
	ctx := context.Background()
	user := &models.User{ID: userID, Name: userID, CreatedAt: testNow.Add(-48 * time.Hour)}
	require.NoError(t, st.UpsertUser(ctx, user))
	require.NoError(t, st.Subscribe(ctx, &models.Subscription{
		UserID: userID, FeedID: feedID, CreatedAt: testNow.Add(-48 * time.Hour),
	}))
	return user
}

func fetchedItem(title, link string) models.FeedItem {
	return models.FeedItem{Title: title, Link: link, Description: "description of " + link}
}

func TestReconcileSurfacesNewStories(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")
	seedSubscriber(t, st, feed.ID, "bob")

	fetched := []models.FeedItem{
		fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge"),
		fetchedItem("Museum exhibit draws record crowds", "https://news.example.org/museum"),
		fetchedItem("Local football club wins championship", "https://news.example.org/football"),
	}
	parsed := models.ParsedFeed{Title: "Example News Updated", Description: "All the news"}

	r := newTestReconciler(st, testNow)
	result, err := r.Reconcile(ctx, feed, parsed, fetched)
	require.NoError(t, err)

	assert.Equal(t, 3, result.NewNewsItems)
	assert.Equal(t, testNow, result.CompletedAt)

	items, err := st.FeedItemsForFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)
	for _, item := range items {
		assert.Equal(t, feed.ID, item.FeedID)
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, testNow, item.LastSeen)
	}

	for _, userID := range []string{"alice", "bob"} {
		unread, err := st.UnreadNewsItems(ctx, feed.ID, userID)
		require.NoError(t, err)
		assert.Len(t, unread, 3, "each subscriber surfaces every new story")
		for _, item := range unread {
			assert.Equal(t, userID, item.UserID)
			assert.Empty(t, item.Alternates)
			assert.Equal(t, testNow, item.Published, "missing timestamps default to the refresh time")
		}
	}

	stored, err := st.FeedByID(ctx, feed.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastFetched)
	assert.Equal(t, testNow, *stored.LastFetched)
	assert.Equal(t, "Example News Updated", stored.Title)
	assert.Equal(t, "All the news", stored.Description)
	assert.Equal(t, 3, stored.NumberOfItems)
}

func TestReconcileMergesSimilarTitles(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	fetched := []models.FeedItem{
		fetchedItem("Fire destroys historic warehouse on harbour", "https://news.example.org/fire"),
		fetchedItem("Museum exhibit draws record crowds", "https://news.example.org/museum"),
		fetchedItem("Historic warehouse on harbour destroyed by fire", "https://news.example.org/fire-update"),
	}

	r := newTestReconciler(st, testNow)
	result, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	// All three links are distinct stories at the feed level.
	items, err := st.FeedItemsForFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	// The user sees two: the fire update folded into the first story.
	assert.Equal(t, 2, result.NewNewsItems)

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	require.Len(t, unread, 2)

	var fireItem *models.NewsItem
	for i := range unread {
		if unread[i].Link == "https://news.example.org/fire" {
			fireItem = &unread[i]
		}
	}
	require.NotNil(t, fireItem)
	require.Len(t, fireItem.Alternates, 1)
	assert.Equal(t, "https://news.example.org/fire-update", fireItem.Alternates[0].Link)
	assert.Equal(t, "Historic warehouse on harbour destroyed by fire", fireItem.Alternates[0].Title)
}

func TestReconcileMergesIntoExistingUnread(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	earlier := testNow.Add(-2 * time.Hour)
	require.NoError(t, st.UpsertNewsItems(ctx, []models.NewsItem{{
		ID:        "news-1",
		FeedID:    feed.ID,
		UserID:    "alice",
		Title:     "Fire destroys historic warehouse on harbour",
		Link:      "https://news.example.org/fire",
		Published: earlier,
		CreatedAt: earlier,
	}}))

	fetched := []models.FeedItem{
		fetchedItem("Historic warehouse on harbour destroyed by fire", "https://news.example.org/fire-update"),
	}

	r := newTestReconciler(st, testNow)
	result, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	// Folded into the existing unread item, so nothing new surfaced.
	assert.Equal(t, 0, result.NewNewsItems)

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "news-1", unread[0].ID)
	require.Len(t, unread[0].Alternates, 1)
	assert.Equal(t, "https://news.example.org/fire-update", unread[0].Alternates[0].Link)
	assert.Equal(t, testNow, unread[0].Published, "merge refreshes the published timestamp")
}

func TestReconcileRefetchTouchesLastSeen(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	fetched := []models.FeedItem{
		fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge"),
		fetchedItem("Museum exhibit draws record crowds", "https://news.example.org/museum"),
	}

	r := newTestReconciler(st, testNow)
	_, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	r2 := newTestReconciler(st, later)
	result, err := r2.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	assert.Equal(t, 0, result.NewNewsItems, "a refetch surfaces nothing new")

	items, err := st.FeedItemsForFeed(ctx, feed.ID)
	require.NoError(t, err)
	require.Len(t, items, 2, "known links never create second rows")
	for _, item := range items {
		assert.Equal(t, later, item.LastSeen)
		assert.Equal(t, testNow, item.CreatedAt)
	}

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	stored, err := st.FeedByID(ctx, feed.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.NumberOfItems, "touches do not inflate the item count")
}

func TestReconcileDeduplicatesLinksWithinBatch(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	fetched := []models.FeedItem{
		fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge"),
		fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge"),
	}

	r := newTestReconciler(st, testNow)
	result, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	assert.Equal(t, 1, result.NewNewsItems)

	items, err := st.FeedItemsForFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestReconcileWithoutSubscribers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)

	fetched := []models.FeedItem{
		fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge"),
	}

	r := newTestReconciler(st, testNow)
	result, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, fetched)
	require.NoError(t, err)

	assert.Equal(t, 0, result.NewNewsItems)

	items, err := st.FeedItemsForFeed(ctx, feed.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1, "feed items are tracked even with nobody subscribed")
}

func TestReconcileKeepsPublishedFromSource(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	feed := seedFeed(t, st)
	seedSubscriber(t, st, feed.ID, "alice")

	published := testNow.Add(-3 * time.Hour)
	item := fetchedItem("Bridge closed after crash on ring road", "https://news.example.org/bridge")
	item.Published = &published

	r := newTestReconciler(st, testNow)
	_, err := r.Reconcile(ctx, feed, models.ParsedFeed{Title: feed.Title}, []models.FeedItem{item})
	require.NoError(t, err)

	unread, err := st.UnreadNewsItems(ctx, feed.ID, "alice")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, published, unread[0].Published)
}
