package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"newsroom/internal/core"
	"newsroom/internal/features/news/migrations"
	"newsroom/internal/features/news/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	coreDB := core.NewDatabase(db, core.NewLogger())
	require.NoError(t, migrations.NewManager(coreDB, core.NewLogger()).Migrate(context.Background()))

	return NewSQLiteStore(coreDB)
}

func testTime(hour int) time.Time {
	return time.Date(2025, 6, 12, hour, 0, 0, 0, time.UTC)
}

func TestSQLiteFeedRoundtrip(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	fetched := testTime(9)
	feed := &models.Feed{
		ID:            "feed-1",
		URL:           "https://news.example.org/rss",
		Title:         "Example News",
		Description:   "Local news",
		Link:          "https://news.example.org",
		SourceType:    models.SourceRDF,
		Category:      "regional",
		ImageURL:      "https://news.example.org/logo.png",
		LastFetched:   &fetched,
		NumberOfItems: 7,
		CreatedAt:     testTime(8),
	}
	require.NoError(t, st.UpsertFeed(ctx, feed))

	got, err := st.FeedByID(ctx, "feed-1")
	require.NoError(t, err)
	assert.Equal(t, feed.URL, got.URL)
	assert.Equal(t, models.SourceRDF, got.SourceType)
	assert.Equal(t, 7, got.NumberOfItems)
	require.NotNil(t, got.LastFetched)
	assert.True(t, got.LastFetched.Equal(fetched))

	byURL, err := st.FeedByURL(ctx, feed.URL)
	require.NoError(t, err)
	assert.Equal(t, "feed-1", byURL.ID)

	_, err = st.FeedByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteFeedItemConflictOnLink(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)
	require.NoError(t, st.UpsertFeed(ctx, &models.Feed{ID: "feed-1", URL: "https://news.example.org/rss"}))

	first := models.FeedItem{
		ID: "item-1", FeedID: "feed-1",
		Title: "Bridge closed", Link: "https://news.example.org/bridge",
		LastSeen: testTime(9), CreatedAt: testTime(9),
	}
	require.NoError(t, st.UpsertFeedItems(ctx, []models.FeedItem{first}))

	// Same link with a fresh ID converges on the existing row.
	replay := first
	replay.ID = "item-2"
	replay.LastSeen = testTime(10)
	require.NoError(t, st.UpsertFeedItems(ctx, []models.FeedItem{replay}))

	items, err := st.FeedItemsForFeed(ctx, "feed-1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "item-1", items[0].ID)
	assert.True(t, items[0].LastSeen.Equal(testTime(10)))
}

func TestSQLiteNewsItemsAndReadFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)
	require.NoError(t, st.UpsertFeed(ctx, &models.Feed{ID: "feed-1", URL: "https://news.example.org/rss"}))
	require.NoError(t, st.UpsertUser(ctx, &models.User{ID: "alice", Name: "alice", CreatedAt: testTime(7)}))

	items := []models.NewsItem{
		{
			ID: "n1", FeedID: "feed-1", UserID: "alice", FeedItemID: "i1",
			Title: "Bridge closed", Link: "https://news.example.org/bridge",
			Published: testTime(9), CreatedAt: testTime(9),
			Alternates: []models.Alternate{{Link: "https://news.example.org/bridge2", Title: "Bridge shut", Favicon: "https://news.example.org/favicon.ico"}},
		},
		{
			ID: "n2", FeedID: "feed-1", UserID: "alice", FeedItemID: "i2",
			Title: "Museum crowds", Link: "https://news.example.org/museum",
			Published: testTime(10), CreatedAt: testTime(10),
		},
	}
	require.NoError(t, st.UpsertNewsItems(ctx, items))

	unread, err := st.UnreadNewsItemsForUser(ctx, "alice", 80)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	assert.Equal(t, "n2", unread[0].ID, "newest first")
	require.Len(t, unread[1].Alternates, 1)
	assert.Equal(t, "Bridge shut", unread[1].Alternates[0].Title)

	require.NoError(t, st.MarkNewsItemsRead(ctx, "alice", []string{"n1"}))

	unread, err = st.UnreadNewsItems(ctx, "feed-1", "alice")
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "n2", unread[0].ID)

	read, err := st.ReadNewsItemsForUser(ctx, "alice", 0, 80)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "n1", read[0].ID)

	require.NoError(t, st.DeleteNewsItems(ctx, "alice", "feed-1"))
	unread, err = st.UnreadNewsItems(ctx, "feed-1", "alice")
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestSQLiteSubscriptions(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)
	require.NoError(t, st.UpsertFeed(ctx, &models.Feed{ID: "feed-1", URL: "https://news.example.org/rss"}))
	require.NoError(t, st.UpsertUser(ctx, &models.User{ID: "alice", Name: "alice", CreatedAt: testTime(7)}))
	require.NoError(t, st.UpsertUser(ctx, &models.User{ID: "bob", Name: "bob", CreatedAt: testTime(7)}))

	alice := &models.Subscription{UserID: "alice", FeedID: "feed-1", CreatedAt: testTime(7)}
	require.NoError(t, st.Subscribe(ctx, alice))
	require.NoError(t, st.Subscribe(ctx, alice), "double subscribe is a no-op")
	require.NoError(t, st.Subscribe(ctx, &models.Subscription{UserID: "bob", FeedID: "feed-1", CreatedAt: testTime(7)}))

	users, err := st.UsersSubscribedTo(ctx, "feed-1")
	require.NoError(t, err)
	assert.Len(t, users, 2)

	feedIDs, err := st.SubscribedFeedIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"feed-1"}, feedIDs)

	require.NoError(t, st.Unsubscribe(ctx, "alice", "feed-1"))
	feedIDs, err = st.SubscribedFeedIDs(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, feedIDs)
}

func TestSQLiteWithTxRollsBack(t *testing.T) {
	ctx := context.Background()
	st := newTestSQLiteStore(t)

	err := st.WithTx(ctx, func(tx Store) error {
		if err := tx.UpsertFeed(ctx, &models.Feed{ID: "feed-1", URL: "https://news.example.org/rss"}); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, err)

	_, err = st.FeedByID(ctx, "feed-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
