package migrations

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"newsroom/internal/core"
)

func TestNewsMigrations(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	coreDB := core.NewDatabase(db, core.NewLogger())
	manager := NewManager(coreDB, core.NewLogger())

	ctx := context.Background()
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}

	expectedMigrations := len(manager.Migrations())
	if count != expectedMigrations {
		t.Errorf("Expected %d migrations, got %d", expectedMigrations, count)
	}

	tables := []string{"news_feeds", "news_feed_items", "news_users", "news_items", "news_subscriptions"}
	for _, table := range tables {
		var tableCount int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableCount)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if tableCount != 1 {
			t.Errorf("Table %s was not created", table)
		}
	}

	// Migrations are idempotent
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to re-apply migrations: %v", err)
	}

	if err := db.QueryRow("SELECT COUNT(*) FROM migrations").Scan(&count); err != nil {
		t.Fatalf("Failed to query migrations table: %v", err)
	}
	if count != expectedMigrations {
		t.Errorf("Expected %d migrations after re-apply, got %d", expectedMigrations, count)
	}
}

func TestNewsMigrationRollback(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	defer db.Close()

	coreDB := core.NewDatabase(db, core.NewLogger())
	manager := NewManager(coreDB, core.NewLogger())

	ctx := context.Background()
	if err := manager.Migrate(ctx); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}

	if err := manager.Rollback(ctx); err != nil {
		t.Fatalf("Failed to rollback migrations: %v", err)
	}

	tables := []string{"news_feeds", "news_feed_items", "news_users", "news_items", "news_subscriptions"}
	for _, table := range tables {
		var tableCount int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&tableCount)
		if err != nil {
			t.Fatalf("Failed to check table %s: %v", table, err)
		}
		if tableCount != 0 {
			t.Errorf("Table %s was not removed during rollback", table)
		}
	}
}
