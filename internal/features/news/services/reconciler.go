package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

// Reconciler turns a freshly fetched batch of feed items into the
// minimal set of storage mutations: new feed items, last-seen touches,
// new news items per subscriber, and alternate merges for near-duplicate
// stories.
type Reconciler struct {
	store  store.Store
	logger *core.Logger
	clock  func() time.Time
}

// NewReconciler creates a new reconciler.
func NewReconciler(s store.Store, logger *core.Logger) *Reconciler {
	return &Reconciler{
		store:  s,
		logger: logger,
		clock:  time.Now,
	}
}

// Reconcile processes one feed refresh. It classifies the fetched batch
// against stored feed items, runs the per-user duplicate merge, persists
// every mutation inside one transaction, and finally replaces the feed's
// mutable metadata. Once writes begin the operation runs to completion
// or fails as a whole; a failed reconciliation can be replayed because
// every write is an idempotent upsert.
func (r *Reconciler) Reconcile(ctx context.Context, feed *models.Feed, parsed models.ParsedFeed, fetched []models.FeedItem) (*models.RefreshResult, error) {
	now := r.clock()

	existing, err := r.store.FeedItemsForFeed(ctx, feed.ID)
	if err != nil {
		return nil, core.NewStorageError("failed to load stored feed items", err)
	}
	users, err := r.store.UsersSubscribedTo(ctx, feed.ID)
	if err != nil {
		return nil, core.NewStorageError("failed to load subscribed users", err)
	}

	touched, candidates := r.classify(feed, existing, fetched, now)

	var newItems, updatedItems []models.NewsItem
	storiesSurfaced := make(map[string]bool)

	for _, user := range users {
		unread, err := r.store.UnreadNewsItems(ctx, feed.ID, user.ID)
		if err != nil {
			return nil, core.NewStorageError("failed to load unread news items", err)
		}

		created, updated := r.mergeForUser(feed, user, candidates, unread, now)
		for _, item := range created {
			storiesSurfaced[item.Link] = true
			newItems = append(newItems, *item)
		}
		for _, item := range updated {
			updatedItems = append(updatedItems, *item)
		}
	}

	err = r.store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.UpsertFeedItems(ctx, candidates); err != nil {
			return err
		}
		if err := tx.UpsertFeedItems(ctx, touched); err != nil {
			return err
		}
		if err := tx.UpsertNewsItems(ctx, newItems); err != nil {
			return err
		}
		if err := tx.UpsertNewsItems(ctx, updatedItems); err != nil {
			return err
		}

		// Metadata goes last so number_of_items is never visible ahead
		// of the items it counts.
		feed.LastFetched = &now
		feed.Title = parsed.Title
		feed.Description = parsed.Description
		feed.NumberOfItems += len(candidates)
		return tx.UpsertFeed(ctx, feed)
	})
	if err != nil {
		return nil, core.NewStorageError("failed to persist reconciliation", err)
	}

	r.logger.Info("Reconciled feed",
		"feed_id", feed.ID,
		"fetched", len(fetched),
		"new_feed_items", len(candidates),
		"touched", len(touched),
		"new_news_items", len(storiesSurfaced),
		"subscribers", len(users),
	)

	return &models.RefreshResult{
		Feed:         feed,
		NewNewsItems: len(storiesSurfaced),
		CompletedAt:  now,
	}, nil
}

// classify splits the fetched batch into last-seen touches (link already
// stored) and new feed item candidates (link unseen). Candidates are
// deduplicated by link within the batch; a feed item is feed-scoped and
// inserted exactly once no matter how many subscribers reference it.
func (r *Reconciler) classify(feed *models.Feed, existing, fetched []models.FeedItem, now time.Time) (touched, candidates []models.FeedItem) {
	existingByLink := make(map[string][]int, len(existing))
	for i, item := range existing {
		existingByLink[item.Link] = append(existingByLink[item.Link], i)
	}

	touchedIDs := make(map[string]bool)
	candidateLinks := make(map[string]bool)

	for _, item := range fetched {
		if indexes, seen := existingByLink[item.Link]; seen {
			for _, i := range indexes {
				if touchedIDs[existing[i].ID] {
					continue
				}
				touchedIDs[existing[i].ID] = true
				stored := existing[i]
				stored.LastSeen = now
				touched = append(touched, stored)
			}
			continue
		}

		if candidateLinks[item.Link] {
			continue
		}
		candidateLinks[item.Link] = true

		item.ID = uuid.NewString()
		item.FeedID = feed.ID
		item.LastSeen = now
		item.CreatedAt = now
		if item.Published == nil {
			// No timestamp in the source document: the refresh time is
			// the item's effective timestamp everywhere downstream.
			published := now
			item.Published = &published
		}
		candidates = append(candidates, item)
	}

	return touched, candidates
}

// mergeForUser runs the duplicate decision for one subscriber. The
// working set of unread news items is private to the user and grows as
// candidates are classified, so later candidates in the same batch can
// merge into stories surfaced moments earlier.
func (r *Reconciler) mergeForUser(feed *models.Feed, user models.User, candidates []models.FeedItem, unread []models.NewsItem, now time.Time) (created, updated []*models.NewsItem) {
	working := make([]*models.NewsItem, 0, len(unread)+len(candidates))
	for i := range unread {
		working = append(working, &unread[i])
	}

	isNew := make(map[*models.NewsItem]bool)
	updatedSet := make(map[*models.NewsItem]bool)

	for _, candidate := range candidates {
		var similar []*models.NewsItem
		for _, item := range working {
			if TitlesAreSimilar(item.Title, candidate.Title) {
				similar = append(similar, item)
			}
		}

		if len(similar) == 0 {
			item := newsItemFromFeedItem(candidate, feed, user, now)
			working = append(working, item)
			isNew[item] = true
			created = append(created, item)
			continue
		}

		favicon := FaviconLink(candidate, *feed)
		for _, item := range similar {
			item.AppendAlternate(candidate.Link, candidate.Title, favicon)
			item.Published = candidate.PublishedOr(now)
			if !isNew[item] {
				updatedSet[item] = true
			}
		}
	}

	for item := range updatedSet {
		updated = append(updated, item)
	}
	return created, updated
}

// newsItemFromFeedItem builds the surfaced item for one subscriber from
// a new feed item.
func newsItemFromFeedItem(item models.FeedItem, feed *models.Feed, user models.User, now time.Time) *models.NewsItem {
	return &models.NewsItem{
		ID:          uuid.NewString(),
		FeedID:      feed.ID,
		UserID:      user.ID,
		FeedItemID:  item.ID,
		FeedTitle:   feed.Title,
		Title:       item.Title,
		Description: item.Description,
		Link:        item.Link,
		Favicon:     FaviconLink(item, *feed),
		Published:   item.PublishedOr(now),
		CreatedAt:   now,
	}
}
