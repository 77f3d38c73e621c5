// Package testdb opens throwaway in-memory SQLite databases carrying the
// talentwatch schema, for store and service tests.
package testdb

import (
	"context"
	"testing"

	"github.com/talentwatch/talentwatch/infrastructure/persistence"
	"github.com/talentwatch/talentwatch/internal/database"
)

// New creates an in-memory SQLite database with the full schema migrated
// and validated, the same way the client prepares its database on startup.
// The database is closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	db, err := database.NewDatabase(context.Background(), "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := persistence.AutoMigrate(db); err != nil {
		t.Fatalf("testdb.New: auto migrate: %v", err)
	}
	if err := persistence.ValidateSchema(db); err != nil {
		t.Fatalf("testdb.New: validate schema: %v", err)
	}
	return db
}

// NewStores creates a migrated in-memory database together with the store
// bundle over it, for tests that exercise the stores directly.
func NewStores(t *testing.T) (database.Database, persistence.Stores) {
	t.Helper()
	db := New(t)
	return db, persistence.NewStores(db)
}
