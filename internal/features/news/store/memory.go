package store

import (
	"context"
	"sort"
	"sync"

	"newsroom/internal/features/news/models"
)

// MemoryStore is an in-memory Store for tests and local experiments. It
// is provided deliberately by test setup, never swapped in behind an
// environment flag.
type MemoryStore struct {
	mu            sync.RWMutex
	feeds         map[string]models.Feed
	feedItems     map[string]models.FeedItem
	newsItems     map[string]models.NewsItem
	users         map[string]models.User
	subscriptions map[string]map[string]models.Subscription // userID -> feedID
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		feeds:         make(map[string]models.Feed),
		feedItems:     make(map[string]models.FeedItem),
		newsItems:     make(map[string]models.NewsItem),
		users:         make(map[string]models.User),
		subscriptions: make(map[string]map[string]models.Subscription),
	}
}

// WithTx runs fn directly; the memory store has no transactions.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *MemoryStore) UpsertFeed(ctx context.Context, feed *models.Feed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.feeds[feed.ID] = *feed
	return nil
}

func (m *MemoryStore) FeedByID(ctx context.Context, id string) (*models.Feed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	feed, ok := m.feeds[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &feed, nil
}

func (m *MemoryStore) FeedByURL(ctx context.Context, url string) (*models.Feed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, feed := range m.feeds {
		if feed.URL == url {
			f := feed
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) ListFeeds(ctx context.Context) ([]models.Feed, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	feeds := make([]models.Feed, 0, len(m.feeds))
	for _, feed := range m.feeds {
		feeds = append(feeds, feed)
	}
	sort.Slice(feeds, func(i, j int) bool { return feeds[i].Title < feeds[j].Title })
	return feeds, nil
}

func (m *MemoryStore) FeedItemsForFeed(ctx context.Context, feedID string) ([]models.FeedItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.FeedItem
	for _, item := range m.feedItems {
		if item.FeedID == feedID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *MemoryStore) UpsertFeedItems(ctx context.Context, items []models.FeedItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		// mirror the (feed_id, link) conflict target of the SQLite store
		replaced := false
		for id, existing := range m.feedItems {
			if existing.FeedID == item.FeedID && existing.Link == item.Link {
				item.ID = existing.ID
				m.feedItems[id] = item
				replaced = true
				break
			}
		}
		if !replaced {
			m.feedItems[item.ID] = item
		}
	}
	return nil
}

func (m *MemoryStore) UnreadNewsItems(ctx context.Context, feedID, userID string) ([]models.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.NewsItem
	for _, item := range m.newsItems {
		if !item.IsRead && item.FeedID == feedID && item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items, nil
}

func (m *MemoryStore) UnreadNewsItemsForUser(ctx context.Context, userID string, limit int) ([]models.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.NewsItem
	for _, item := range m.newsItems {
		if !item.IsRead && item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Published.After(items[j].Published) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryStore) ReadNewsItemsForUser(ctx context.Context, userID string, offset, limit int) ([]models.NewsItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []models.NewsItem
	for _, item := range m.newsItems {
		if item.IsRead && item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Published.After(items[j].Published) })
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (m *MemoryStore) UpsertNewsItems(ctx context.Context, items []models.NewsItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.newsItems[item.ID] = item
	}
	return nil
}

func (m *MemoryStore) MarkNewsItemsRead(ctx context.Context, userID string, newsItemIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range newsItemIDs {
		item, ok := m.newsItems[id]
		if !ok || item.UserID != userID {
			continue
		}
		item.IsRead = true
		m.newsItems[id] = item
	}
	return nil
}

func (m *MemoryStore) DeleteNewsItems(ctx context.Context, userID, feedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.newsItems {
		if item.UserID == userID && item.FeedID == feedID {
			delete(m.newsItems, id)
		}
	}
	return nil
}

func (m *MemoryStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) UpsertUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *MemoryStore) UpsertUsers(ctx context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range users {
		m.users[user.ID] = user
	}
	return nil
}

func (m *MemoryStore) UsersSubscribedTo(ctx context.Context, feedID string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var users []models.User
	for userID, feeds := range m.subscriptions {
		if _, ok := feeds[feedID]; !ok {
			continue
		}
		if user, ok := m.users[userID]; ok {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) Subscribe(ctx context.Context, sub *models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscriptions[sub.UserID] == nil {
		m.subscriptions[sub.UserID] = make(map[string]models.Subscription)
	}
	if _, ok := m.subscriptions[sub.UserID][sub.FeedID]; !ok {
		m.subscriptions[sub.UserID][sub.FeedID] = *sub
	}
	return nil
}

func (m *MemoryStore) Unsubscribe(ctx context.Context, userID, feedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions[userID], feedID)
	return nil
}

func (m *MemoryStore) SubscribedFeedIDs(ctx context.Context, userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var feedIDs []string
	for feedID := range m.subscriptions[userID] {
		feedIDs = append(feedIDs, feedID)
	}
	sort.Strings(feedIDs)
	return feedIDs, nil
}
