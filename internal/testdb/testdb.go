// Package testdb provides a shared test database helper for fast,
// realistic testing against an in-memory SQLite database.
package testdb

import (
	"context"
	"testing"

	"github.com/dweb/dweb/infrastructure/persistence"
	"github.com/dweb/dweb/internal/database"
	"github.com/dweb/dweb/internal/log"
)

// New creates an in-memory SQLite database without any tables.
// The database is automatically closed when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()
	ctx := context.Background()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("testdb.New: open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// WithSchema creates an in-memory SQLite database and executes the given
// SQL statements to set up a custom schema.
func WithSchema(t *testing.T, statements ...string) database.Database {
	t.Helper()
	ctx := context.Background()
	db := New(t)
	for _, stmt := range statements {
		if err := db.Session(ctx).Exec(stmt).Error; err != nil {
			t.Fatalf("testdb.WithSchema: %v\nSQL: %s", err, stmt)
		}
	}
	return db
}

// Registry creates an in-memory database and a model registry on it that
// logs nowhere. Options are applied after the logger.
func Registry(t *testing.T, opts ...persistence.RegistryOption) *persistence.Registry {
	t.Helper()
	db := New(t)
	all := append([]persistence.RegistryOption{persistence.WithLogger(log.Discard().Slog())}, opts...)
	reg, err := persistence.NewRegistry(db, all...)
	if err != nil {
		t.Fatalf("testdb.Registry: %v", err)
	}
	return reg
}

// Migrate runs AutoMigrate on reg and fails the test on error.
func Migrate(t *testing.T, reg *persistence.Registry) {
	t.Helper()
	if err := reg.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("testdb.Migrate: %v", err)
	}
}
