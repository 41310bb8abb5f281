package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "modernc.org/sqlite"

	"newsroom/internal/core"
	"newsroom/internal/features/news"
)

// Server wires configuration, storage, the feature registry, and the
// HTTP router together.
type Server struct {
	config   *core.Config
	logger   *core.Logger
	db       *sql.DB
	registry *core.Registry
	server   *http.Server
}

// New builds a fully wired server from environment configuration.
func New(logger *core.Logger) (*Server, error) {
	config, err := core.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := sql.Open("sqlite", config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	coreDB := core.NewDatabase(db, logger)
	registry := core.NewRegistry(logger)

	var newsFeature *news.Feature
	if config.IsFeatureEnabled("news") {
		newsFeature = news.NewFeature(logger, coreDB, news.NewConfig(config))
		if err := registry.Register(newsFeature); err != nil {
			return nil, fmt.Errorf("failed to register news feature: %w", err)
		}
	}

	srv := &Server{
		config:   config,
		logger:   logger,
		db:       db,
		registry: registry,
	}
	srv.setupRoutes(newsFeature)

	return srv, nil
}

func (s *Server) setupRoutes(newsFeature *news.Feature) {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(middleware.RequestID)
	mux.Use(requestIDContext)
	mux.Use(middleware.RealIP)
	mux.Use(middleware.Logger)
	if newsFeature != nil {
		mux.Use(newsFeature.IdentityMiddleware().Identify)
	}

	// Health check
	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	})

	// Feature routes
	for _, route := range s.registry.GetAllRoutes() {
		mux.Method(route.Method, route.Path, route.Handler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler: mux,
	}
}

// requestIDContext exposes chi's request ID under the key the logger
// reads, so feature handlers can tag log lines with it.
func requestIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			r = r.WithContext(context.WithValue(r.Context(), core.RequestIDKey, requestID))
		}
		next.ServeHTTP(w, r)
	})
}

// Start initializes all features and serves HTTP until shutdown.
func (s *Server) Start() error {
	ctx := context.Background()
	if err := s.registry.InitAll(ctx); err != nil {
		return fmt.Errorf("failed to initialize features: %w", err)
	}

	s.logger.Info("Starting server", "host", s.config.Server.Host, "port", s.config.Server.Port)
	return s.server.ListenAndServe()
}

// Shutdown stops the features and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	if err := s.registry.ShutdownAll(ctx); err != nil {
		s.logger.Error("Failed to shutdown features", "error", err)
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
