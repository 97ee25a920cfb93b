package repository

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const migrationTable = "schema_migrations"

// Migrate executes the *.sql files under root in lexical order, each at most
// once, recording applied names in schema_migrations.
func Migrate(ctx context.Context, db *DB, migrationFS fs.FS, root string, logger *slog.Logger) error {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	entries, err := fs.ReadDir(migrationFS, root)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	sort.Strings(sqlFiles)

	createSQL := "CREATE TABLE IF NOT EXISTS " + migrationTable + " (name TEXT PRIMARY KEY, applied_at BIGINT NOT NULL)"
	if err := db.drv.Exec(ctx, createSQL, []any{}, nil); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range sqlFiles {
		applied, err := isApplied(ctx, db, file)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, path.Join(root, file))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		upSQL := ExtractUpMigration(string(content))
		if strings.TrimSpace(upSQL) == "" {
			continue
		}

		err = db.withTx(ctx, func(tx dialect.Tx) error {
			if err := tx.Exec(ctx, upSQL, []any{}, nil); err != nil {
				return fmt.Errorf("exec migration %s: %w", file, err)
			}
			query, args := db.builder().Insert(migrationTable).
				Columns("name", "applied_at").
				Values(file, toMillis(time.Now())).
				Query()
			if err := tx.Exec(ctx, query, args, nil); err != nil {
				return fmt.Errorf("record migration %s: %w", file, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		logger.Info("applied migration", "name", file)
	}
	return nil
}

// ExtractUpMigration returns the SQL in the -- +migrate Up section.
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

func isApplied(ctx context.Context, db *DB, name string) (bool, error) {
	b := db.builder()
	query, args := b.Select("name").
		From(b.Table(migrationTable)).
		Where(entsql.EQ("name", name)).
		Query()
	found := false
	err := queryRows(ctx, db.drv, query, args, func(rows *entsql.Rows) error {
		found = true
		return nil
	})
	return found, err
}
