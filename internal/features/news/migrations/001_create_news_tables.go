package migrations

import (
	"newsroom/internal/core"
)

// Migration001CreateNewsTables creates the initial news tables
var Migration001CreateNewsTables = core.Migration{
	Version:     1,
	Name:        "create_news_tables",
	Description: "Create initial feed aggregation tables",
	UpSQL: `
		-- Registered feeds
		CREATE TABLE IF NOT EXISTS news_feeds (
			id TEXT PRIMARY KEY,
			url TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL DEFAULT '',
			source_type TEXT NOT NULL DEFAULT 'rss',
			category TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			image_title TEXT NOT NULL DEFAULT '',
			image_link TEXT NOT NULL DEFAULT '',
			last_fetched TIMESTAMP,
			number_of_items INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Stories seen per feed; one row per story link
		CREATE TABLE IF NOT EXISTS news_feed_items (
			id TEXT PRIMARY KEY,
			feed_id TEXT NOT NULL REFERENCES news_feeds(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			link TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			published TIMESTAMP,
			last_seen DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(feed_id, link)
		);

		-- Reader accounts
		CREATE TABLE IF NOT EXISTS news_users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			number_of_unread_items INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Per-user news items with merged alternates
		CREATE TABLE IF NOT EXISTS news_items (
			id TEXT PRIMARY KEY,
			feed_id TEXT NOT NULL REFERENCES news_feeds(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES news_users(id) ON DELETE CASCADE,
			feed_item_id TEXT NOT NULL,
			feed_title TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			link TEXT NOT NULL,
			favicon TEXT NOT NULL DEFAULT '',
			published DATETIME NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			alternates TEXT NOT NULL DEFAULT '[]'
		);

		-- User to feed links
		CREATE TABLE IF NOT EXISTS news_subscriptions (
			user_id TEXT NOT NULL REFERENCES news_users(id) ON DELETE CASCADE,
			feed_id TEXT NOT NULL REFERENCES news_feeds(id) ON DELETE CASCADE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, feed_id)
		);

		-- Indexes for common queries
		CREATE INDEX IF NOT EXISTS idx_news_feed_items_feed ON news_feed_items(feed_id);
		CREATE INDEX IF NOT EXISTS idx_news_items_user_read ON news_items(user_id, is_read, published);
		CREATE INDEX IF NOT EXISTS idx_news_items_feed_user ON news_items(feed_id, user_id, is_read);
		CREATE INDEX IF NOT EXISTS idx_news_subscriptions_feed ON news_subscriptions(feed_id);
	`,
	DownSQL: `
		DROP INDEX IF EXISTS idx_news_subscriptions_feed;
		DROP INDEX IF EXISTS idx_news_items_feed_user;
		DROP INDEX IF EXISTS idx_news_items_user_read;
		DROP INDEX IF EXISTS idx_news_feed_items_feed;
		DROP TABLE IF EXISTS news_subscriptions;
		DROP TABLE IF EXISTS news_items;
		DROP TABLE IF EXISTS news_users;
		DROP TABLE IF EXISTS news_feed_items;
		DROP TABLE IF EXISTS news_feeds;
	`,
}
