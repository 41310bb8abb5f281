package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx so the same queries
// serve direct and transaction-bound stores.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// SQLiteStore implements Store on top of the core database wrapper.
type SQLiteStore struct {
	db *core.Database
	q  queryer
}

// NewSQLiteStore creates a SQLite-backed store.
func NewSQLiteStore(db *core.Database) *SQLiteStore {
	return &SQLiteStore{db: db, q: db.DB}
}

// WithTx runs fn against a store bound to one transaction. The feed
// metadata update and the item upserts of a reconciliation commit or
// roll back together.
func (s *SQLiteStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		return fn(&SQLiteStore{db: s.db, q: tx})
	})
}

const feedColumns = `id, url, title, description, link, source_type, category,
	image_url, image_title, image_link, last_fetched, number_of_items, created_at`

// UpsertFeed inserts or replaces a feed keyed by ID.
func (s *SQLiteStore) UpsertFeed(ctx context.Context, feed *models.Feed) error {
	query := `
		INSERT INTO news_feeds (` + feedColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			source_type = excluded.source_type,
			category = excluded.category,
			image_url = excluded.image_url,
			image_title = excluded.image_title,
			image_link = excluded.image_link,
			last_fetched = excluded.last_fetched,
			number_of_items = excluded.number_of_items
	`

	var lastFetched sql.NullTime
	if feed.LastFetched != nil {
		lastFetched = sql.NullTime{Time: *feed.LastFetched, Valid: true}
	}

	_, err := s.q.ExecContext(ctx, query,
		feed.ID,
		feed.URL,
		feed.Title,
		feed.Description,
		feed.Link,
		string(feed.SourceType),
		feed.Category,
		feed.ImageURL,
		feed.ImageTitle,
		feed.ImageLink,
		lastFetched,
		feed.NumberOfItems,
		feed.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert feed: %w", err)
	}
	return nil
}

func scanFeed(row interface{ Scan(...interface{}) error }) (*models.Feed, error) {
	var feed models.Feed
	var sourceType string
	var lastFetched sql.NullTime

	err := row.Scan(
		&feed.ID,
		&feed.URL,
		&feed.Title,
		&feed.Description,
		&feed.Link,
		&sourceType,
		&feed.Category,
		&feed.ImageURL,
		&feed.ImageTitle,
		&feed.ImageLink,
		&lastFetched,
		&feed.NumberOfItems,
		&feed.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	feed.SourceType = models.SourceType(sourceType)
	if lastFetched.Valid {
		feed.LastFetched = &lastFetched.Time
	}
	return &feed, nil
}

// FeedByID retrieves a feed by ID.
func (s *SQLiteStore) FeedByID(ctx context.Context, id string) (*models.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM news_feeds WHERE id = ?`

	feed, err := scanFeed(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	return feed, nil
}

// FeedByURL retrieves a feed by its source URL.
func (s *SQLiteStore) FeedByURL(ctx context.Context, url string) (*models.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM news_feeds WHERE url = ?`

	feed, err := scanFeed(s.q.QueryRowContext(ctx, query, url))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get feed by url: %w", err)
	}
	return feed, nil
}

// ListFeeds retrieves all feeds ordered by title.
func (s *SQLiteStore) ListFeeds(ctx context.Context) ([]models.Feed, error) {
	query := `SELECT ` + feedColumns + ` FROM news_feeds ORDER BY title`

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []models.Feed
	for rows.Next() {
		feed, err := scanFeed(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

const feedItemColumns = `id, feed_id, title, link, description, published, last_seen, created_at`

// FeedItemsForFeed retrieves all stored items for a feed.
func (s *SQLiteStore) FeedItemsForFeed(ctx context.Context, feedID string) ([]models.FeedItem, error) {
	query := `SELECT ` + feedItemColumns + ` FROM news_feed_items WHERE feed_id = ?`

	rows, err := s.q.QueryContext(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed items: %w", err)
	}
	defer rows.Close()

	var items []models.FeedItem
	for rows.Next() {
		var item models.FeedItem
		var published sql.NullTime

		err := rows.Scan(
			&item.ID,
			&item.FeedID,
			&item.Title,
			&item.Link,
			&item.Description,
			&published,
			&item.LastSeen,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feed item: %w", err)
		}

		if published.Valid {
			item.Published = &published.Time
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertFeedItems inserts or updates feed items. The conflict target is
// (feed_id, link): replaying a reconciliation with freshly generated IDs
// still converges on one row per story link.
func (s *SQLiteStore) UpsertFeedItems(ctx context.Context, items []models.FeedItem) error {
	query := `
		INSERT INTO news_feed_items (` + feedItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feed_id, link) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			published = excluded.published,
			last_seen = excluded.last_seen
	`

	for _, item := range items {
		var published sql.NullTime
		if item.Published != nil {
			published = sql.NullTime{Time: *item.Published, Valid: true}
		}

		_, err := s.q.ExecContext(ctx, query,
			item.ID,
			item.FeedID,
			item.Title,
			item.Link,
			item.Description,
			published,
			item.LastSeen,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert feed item %s: %w", item.Link, err)
		}
	}
	return nil
}

const newsItemColumns = `id, feed_id, user_id, feed_item_id, feed_title, title,
	description, link, favicon, published, created_at, is_read, alternates`

func scanNewsItems(rows *sql.Rows) ([]models.NewsItem, error) {
	var items []models.NewsItem
	for rows.Next() {
		var item models.NewsItem
		var alternates string

		err := rows.Scan(
			&item.ID,
			&item.FeedID,
			&item.UserID,
			&item.FeedItemID,
			&item.FeedTitle,
			&item.Title,
			&item.Description,
			&item.Link,
			&item.Favicon,
			&item.Published,
			&item.CreatedAt,
			&item.IsRead,
			&alternates,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan news item: %w", err)
		}

		if alternates != "" {
			if err := json.Unmarshal([]byte(alternates), &item.Alternates); err != nil {
				return nil, fmt.Errorf("failed to decode alternates for news item %s: %w", item.ID, err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UnreadNewsItems retrieves a user's unread news items for one feed,
// oldest first. This is the reconciler's per-user working set.
func (s *SQLiteStore) UnreadNewsItems(ctx context.Context, feedID, userID string) ([]models.NewsItem, error) {
	query := `
		SELECT ` + newsItemColumns + ` FROM news_items
		WHERE feed_id = ? AND user_id = ? AND is_read = 0
		ORDER BY created_at
	`

	rows, err := s.q.QueryContext(ctx, query, feedID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread news items: %w", err)
	}
	defer rows.Close()

	return scanNewsItems(rows)
}

// UnreadNewsItemsForUser retrieves a user's unread news items across all
// feeds, newest first.
func (s *SQLiteStore) UnreadNewsItemsForUser(ctx context.Context, userID string, limit int) ([]models.NewsItem, error) {
	query := `
		SELECT ` + newsItemColumns + ` FROM news_items
		WHERE user_id = ? AND is_read = 0
		ORDER BY published DESC
		LIMIT ?
	`

	rows, err := s.q.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread news items: %w", err)
	}
	defer rows.Close()

	return scanNewsItems(rows)
}

// ReadNewsItemsForUser retrieves a page of a user's read news items,
// newest first.
func (s *SQLiteStore) ReadNewsItemsForUser(ctx context.Context, userID string, offset, limit int) ([]models.NewsItem, error) {
	query := `
		SELECT ` + newsItemColumns + ` FROM news_items
		WHERE user_id = ? AND is_read = 1
		ORDER BY published DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.q.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query read news items: %w", err)
	}
	defer rows.Close()

	return scanNewsItems(rows)
}

// UpsertNewsItems inserts or replaces news items keyed by ID.
func (s *SQLiteStore) UpsertNewsItems(ctx context.Context, items []models.NewsItem) error {
	query := `
		INSERT INTO news_items (` + newsItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			feed_title = excluded.feed_title,
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			favicon = excluded.favicon,
			published = excluded.published,
			is_read = excluded.is_read,
			alternates = excluded.alternates
	`

	for _, item := range items {
		alternates, err := json.Marshal(item.Alternates)
		if err != nil {
			return fmt.Errorf("failed to encode alternates for news item %s: %w", item.ID, err)
		}

		_, err = s.q.ExecContext(ctx, query,
			item.ID,
			item.FeedID,
			item.UserID,
			item.FeedItemID,
			item.FeedTitle,
			item.Title,
			item.Description,
			item.Link,
			item.Favicon,
			item.Published,
			item.CreatedAt,
			item.IsRead,
			string(alternates),
		)
		if err != nil {
			return fmt.Errorf("failed to upsert news item %s: %w", item.ID, err)
		}
	}
	return nil
}

// MarkNewsItemsRead flips the read flag on the given news items. IDs the
// user does not own are ignored.
func (s *SQLiteStore) MarkNewsItemsRead(ctx context.Context, userID string, newsItemIDs []string) error {
	if len(newsItemIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(newsItemIDs))
	args := make([]interface{}, 0, len(newsItemIDs)+1)
	args = append(args, userID)
	for i, id := range newsItemIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := `UPDATE news_items SET is_read = 1 WHERE user_id = ? AND id IN (` +
		strings.Join(placeholders, ",") + `)`

	if _, err := s.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to mark news items read: %w", err)
	}
	return nil
}

// DeleteNewsItems removes all of a user's news items for a feed. Used
// when the user unsubscribes.
func (s *SQLiteStore) DeleteNewsItems(ctx context.Context, userID, feedID string) error {
	query := `DELETE FROM news_items WHERE user_id = ? AND feed_id = ?`

	if _, err := s.q.ExecContext(ctx, query, userID, feedID); err != nil {
		return fmt.Errorf("failed to delete news items: %w", err)
	}
	return nil
}

const userColumns = `id, name, number_of_unread_items, created_at`

// UserByID retrieves a user by ID.
func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM news_users WHERE id = ?`

	var user models.User
	err := s.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.NumberOfUnreadItems,
		&user.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpsertUser inserts or replaces a user keyed by ID.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO news_users (` + userColumns + `)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			number_of_unread_items = excluded.number_of_unread_items
	`

	_, err := s.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.NumberOfUnreadItems,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// UpsertUsers upserts a batch of users.
func (s *SQLiteStore) UpsertUsers(ctx context.Context, users []models.User) error {
	for i := range users {
		if err := s.UpsertUser(ctx, &users[i]); err != nil {
			return err
		}
	}
	return nil
}

// UsersSubscribedTo retrieves every user subscribed to a feed.
func (s *SQLiteStore) UsersSubscribedTo(ctx context.Context, feedID string) ([]models.User, error) {
	query := `
		SELECT u.id, u.name, u.number_of_unread_items, u.created_at
		FROM news_users u
		JOIN news_subscriptions s ON u.id = s.user_id
		WHERE s.feed_id = ?
		ORDER BY u.id
	`

	rows, err := s.q.QueryContext(ctx, query, feedID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscribed users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.NumberOfUnreadItems, &user.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Subscribe links a user to a feed. Subscribing twice is a no-op.
func (s *SQLiteStore) Subscribe(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO news_subscriptions (user_id, feed_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, feed_id) DO NOTHING
	`

	if _, err := s.q.ExecContext(ctx, query, sub.UserID, sub.FeedID, sub.CreatedAt); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Unsubscribe removes the link between a user and a feed.
func (s *SQLiteStore) Unsubscribe(ctx context.Context, userID, feedID string) error {
	query := `DELETE FROM news_subscriptions WHERE user_id = ? AND feed_id = ?`

	if _, err := s.q.ExecContext(ctx, query, userID, feedID); err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}
	return nil
}

// SubscribedFeedIDs retrieves the IDs of feeds the user subscribes to.
func (s *SQLiteStore) SubscribedFeedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT feed_id FROM news_subscriptions WHERE user_id = ?`

	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions: %w", err)
	}
	defer rows.Close()

	var feedIDs []string
	for rows.Next() {
		var feedID string
		if err := rows.Scan(&feedID); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		feedIDs = append(feedIDs, feedID)
	}
	return feedIDs, rows.Err()
}
