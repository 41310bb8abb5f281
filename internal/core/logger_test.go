package core

import (
	"context"
	"testing"
)

func TestWithContextNoRequestID(t *testing.T) {
	logger := NewLogger()

	if got := logger.WithContext(context.Background()); got != logger {
		t.Error("expected the same logger when the context carries no request ID")
	}
	if got := logger.WithContext(nil); got != logger {
		t.Error("expected the same logger for a nil context")
	}
}

func TestWithContextRequestID(t *testing.T) {
	logger := NewLogger()
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	got := logger.WithContext(ctx)
	if got == logger {
		t.Error("expected a child logger carrying the request ID")
	}
	if got.Logger == logger.Logger {
		t.Error("expected the slog logger to differ once the request ID is attached")
	}
}
