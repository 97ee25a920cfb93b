package repository

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/estatehub/db/migrations"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := discardLogger()
	db, err := Open(context.Background(), Config{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "estatehub.db"),
	}, logger)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { Close(db, logger) })
	if err := Migrate(context.Background(), db, migrations.FS, ".", logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *DB, id string) {
	t.Helper()
	_, err := NewUserRepository(db, discardLogger()).UpsertUser(context.Background(), &entity.User{
		ID:    id,
		Email: id + "@example.com",
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func strPtr(s string) *string { return &s }
