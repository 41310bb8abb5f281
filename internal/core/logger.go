package core

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

// RequestIDKey is the context key under which the HTTP layer stores the
// request ID.
const RequestIDKey contextKey = "request_id"

// Logger wraps slog with per-feature child loggers
type Logger struct {
	*slog.Logger
	features map[string]*slog.Logger
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger() *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})

	return &Logger{
		Logger:   slog.New(handler),
		features: make(map[string]*slog.Logger),
	}
}

// ForFeature returns a logger scoped to a feature
func (l *Logger) ForFeature(featureName string) *Logger {
	if featureLogger, exists := l.features[featureName]; exists {
		return &Logger{
			Logger:   featureLogger,
			features: l.features,
		}
	}

	featureLogger := l.Logger.With("feature", featureName)
	l.features[featureName] = featureLogger

	return &Logger{
		Logger:   featureLogger,
		features: l.features,
	}
}

// WithContext returns a logger carrying the request ID, when present
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return &Logger{
			Logger:   l.Logger.With("request_id", requestID),
			features: l.features,
		}
	}

	return l
}
