// Package testutil provides shared fixtures for tests that need a report database or
// realistic transaction sets.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/spendscore/internal/storage"
)

// TestDB is a migrated in-memory database scoped to one test.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It automatically handles
// migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	svc := reporting.NewService(db.Storage, nil, nil)
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup    func(context.Context, *storage.SQLiteStorage) error
	SkipMigrations bool
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if !opts.SkipMigrations {
		if err := store.Migrate(ctx); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, store); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// MustSaveTransactions stores transactions under an existing report or fails the test.
func (db *TestDB) MustSaveTransactions(reportID string, b *TransactionBuilder) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), reportID, b.Build()); err != nil {
		db.t.Fatalf("failed to save transactions for %s: %v", reportID, err)
	}
}
