package news

import (
	"context"
	"fmt"

	"newsroom/internal/core"
	"newsroom/internal/features/news/handlers"
	"newsroom/internal/features/news/migrations"
	"newsroom/internal/features/news/models"
	"newsroom/internal/features/news/services"
	"newsroom/internal/features/news/store"
	"newsroom/internal/identity"
)

// Feature represents the news aggregation feature
type Feature struct {
	*core.BaseFeature
	config       *Config
	migrationMgr *migrations.Manager
	store        store.Store
	users        *services.UserService
	feeds        *services.FeedService
	news         *services.NewsService
	unread       *services.UnreadService
	scheduler    *services.SchedulerService
	ident        *identity.Middleware
	handlers     *handlers.Handlers
}

// NewFeature creates a new news feature
func NewFeature(logger *core.Logger, db *core.Database, config *Config) *Feature {
	migrationMgr := migrations.NewManager(db, logger)

	st := store.NewSQLiteStore(db)

	fetcher := services.NewFetcher(logger, &models.FetcherConfig{
		UserAgent: config.UserAgent,
		Timeout:   config.FetchTimeout,
	})

	userService := services.NewUserService(st, logger)
	newsService := services.NewNewsService(st, logger)
	unreadService := services.NewUnreadService(st, logger)
	reconciler := services.NewReconciler(st, logger)
	feedService := services.NewFeedService(st, fetcher, logger)

	schedulerConfig := models.DefaultSchedulerConfig()
	schedulerConfig.UpdateInterval = config.FetchInterval
	schedulerConfig.MaxWorkers = config.MaxWorkers
	schedulerService := services.NewSchedulerService(st, fetcher, reconciler, unreadService, logger, schedulerConfig)

	ident := identity.NewMiddleware(userService, logger)

	h := handlers.NewHandlers(logger, feedService, newsService, unreadService, userService, schedulerService)

	return &Feature{
		BaseFeature:  core.NewBaseFeature("news", "Feed aggregation and news fan-out", config.Enabled, logger, db),
		config:       config,
		migrationMgr: migrationMgr,
		store:        st,
		users:        userService,
		feeds:        feedService,
		news:         newsService,
		unread:       unreadService,
		scheduler:    schedulerService,
		ident:        ident,
		handlers:     h,
	}
}

// Init initializes the news feature
func (f *Feature) Init(ctx context.Context) error {
	if err := f.BaseFeature.Init(ctx); err != nil {
		return err
	}

	if err := f.config.Validate(); err != nil {
		return err
	}

	if err := f.migrationMgr.Migrate(ctx); err != nil {
		return err
	}

	if f.config.Enabled {
		if err := f.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start feed scheduler: %w", err)
		}
		f.Logger().Info("Feed scheduler started")
	}

	f.Logger().Info("News feature initialized successfully")
	return nil
}

// Routes returns the HTTP routes for the news feature
func (f *Feature) Routes() []core.Route {
	requireUser := f.ident.RequireUser

	return []core.Route{
		// News items
		{Method: "GET", Path: "/news/items", Handler: requireUser(f.handlers.ListUnreadItems)},
		{Method: "GET", Path: "/news/items/read", Handler: requireUser(f.handlers.ListReadItems)},
		{Method: "POST", Path: "/news/items/mark-as-read", Handler: requireUser(f.handlers.MarkAsRead)},

		// Feed management
		{Method: "GET", Path: "/news/feeds", Handler: requireUser(f.handlers.ListFeeds)},
		{Method: "POST", Path: "/news/feeds", Handler: f.handlers.CreateFeed},
		{Method: "POST", Path: "/news/feeds/{id}/refresh", Handler: f.handlers.RefreshFeed},

		// Subscriptions
		{Method: "POST", Path: "/news/feeds/{id}/subscribe", Handler: requireUser(f.handlers.Subscribe)},
		{Method: "POST", Path: "/news/feeds/{id}/unsubscribe", Handler: requireUser(f.handlers.Unsubscribe)},

		// Users
		{Method: "POST", Path: "/news/users", Handler: f.handlers.CreateUser},
	}
}

// Shutdown gracefully shuts down the news feature
func (f *Feature) Shutdown(ctx context.Context) error {
	f.Logger().Info("Shutting down news feature")

	if f.config.Enabled && f.scheduler != nil {
		if err := f.scheduler.Stop(ctx); err != nil {
			f.Logger().Error("Failed to stop feed scheduler", "error", err)
		}
	}

	return f.BaseFeature.Shutdown(ctx)
}

// IdentityMiddleware returns the middleware that resolves the calling
// user from the X-User-ID header. The server applies it router-wide.
func (f *Feature) IdentityMiddleware() *identity.Middleware {
	return f.ident
}

// GetMigrationManager returns the migration manager for this feature
func (f *Feature) GetMigrationManager() *migrations.Manager {
	return f.migrationMgr
}

// GetSchedulerService returns the scheduler service
func (f *Feature) GetSchedulerService() *services.SchedulerService {
	return f.scheduler
}
