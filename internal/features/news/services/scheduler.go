package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newsroom/internal/core"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/store"
)

// SchedulerService drives the periodic refresh cycle: fetch every feed,
// reconcile its items, then fan the results out to unread counters.
type SchedulerService struct {
	store      store.Store
	fetcher    *Fetcher
	reconciler *Reconciler
	unread     *UnreadService
	logger     *core.Logger
	config     *models.SchedulerConfig
	stopChan   chan struct{}
	wg         sync.WaitGroup
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(
	s store.Store,
	fetcher *Fetcher,
	reconciler *Reconciler,
	unread *UnreadService,
	logger *core.Logger,
	config *models.SchedulerConfig,
) *SchedulerService {
	return &SchedulerService{
		store:      s,
		fetcher:    fetcher,
		reconciler: reconciler,
		unread:     unread,
		logger:     logger,
		config:     config,
		stopChan:   make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *SchedulerService) Start(ctx context.Context) error {
	s.logger.Info("Starting feed scheduler", "interval", s.config.UpdateInterval, "max_workers", s.config.MaxWorkers)

	s.wg.Add(1)
	go s.updateLoop(ctx)

	return nil
}

// Stop gracefully stops the scheduler.
func (s *SchedulerService) Stop(ctx context.Context) error {
	s.logger.Info("Stopping feed scheduler")
	close(s.stopChan)
	s.wg.Wait()
	return nil
}

// updateLoop runs the main update loop.
func (s *SchedulerService) updateLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.UpdateInterval)
	defer ticker.Stop()

	// Do initial refresh
	s.RefreshAll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler context cancelled")
			return
		case <-s.stopChan:
			s.logger.Info("Scheduler stop signal received")
			return
		case <-ticker.C:
			s.RefreshAll(ctx)
		}
	}
}

// RefreshAll runs one refresh cycle over every registered feed. Feeds are
// refreshed concurrently up to MaxWorkers; the unread fan-out runs once
// at the end over the collected results.
func (s *SchedulerService) RefreshAll(ctx context.Context) {
	s.logger.Info("Starting feed refresh cycle")

	feeds, err := s.store.ListFeeds(ctx)
	if err != nil {
		s.logger.Error("Failed to list feeds for refresh", "error", err)
		return
	}

	if len(feeds) == 0 {
		s.logger.Info("No feeds to refresh")
		return
	}

	var mu sync.Mutex
	results := make([]*models.RefreshResult, 0, len(feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.MaxWorkers)

	for i := range feeds {
		feed := &feeds[i]
		g.Go(func() error {
			result, err := s.refreshFeed(gctx, feed)
			if err != nil {
				s.logger.Error("Failed to refresh feed", "feed_id", feed.ID, "url", feed.URL, "error", err)
				return nil
			}
			if result != nil {
				mu.Lock()
				results = append(results, result)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	s.unread.ApplyRefreshResults(ctx, results)

	s.logger.Info("Feed refresh cycle completed", "feeds", len(feeds), "refreshed", len(results))
}

// refreshFeed fetches and reconciles a single feed. A fetch failure is a
// no-op: nothing stored changes and no result is produced.
func (s *SchedulerService) refreshFeed(ctx context.Context, feed *models.Feed) (*models.RefreshResult, error) {
	parsed, items, err := s.fetcher.Fetch(ctx, feed.URL)
	if err != nil {
		s.logger.Warn("Skipping feed after fetch failure", "feed_id", feed.ID, "url", feed.URL, "error", err)
		return nil, nil
	}

	result, err := s.reconciler.Reconcile(ctx, feed, parsed, items)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile feed %s: %w", feed.ID, err)
	}
	return result, nil
}

// RefreshFeedByID fetches and reconciles a single feed immediately,
// applying its fan-out right away.
func (s *SchedulerService) RefreshFeedByID(ctx context.Context, feedID string) (*models.RefreshResult, error) {
	feed, err := s.store.FeedByID(ctx, feedID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, core.NewNotFoundError(fmt.Sprintf("feed %s not found", feedID), err)
		}
		return nil, core.NewStorageError("failed to load feed", err)
	}

	result, err := s.refreshFeed(ctx, feed)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, core.NewFetchError(fmt.Sprintf("feed %s could not be fetched", feedID), nil)
	}

	s.unread.ApplyRefreshResults(ctx, []*models.RefreshResult{result})
	return result, nil
}
