package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"anbar/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies pending files from migrations/ in lexical order. Each file runs
// in its own transaction and is recorded in sys_schema_migrations.
func Migrate(ctx context.Context, txm *TxManager) error {
	if _, err := txm.GetQuerier(ctx).Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sys_schema_migrations (
			name        TEXT PRIMARY KEY,
			applied_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		applied := false
		err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
			q := txm.GetQuerier(ctx)

			var exists bool
			if err := q.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM sys_schema_migrations WHERE name = $1)`, name,
			).Scan(&exists); err != nil {
				return fmt.Errorf("check migration: %w", err)
			}
			if exists {
				return nil
			}

			if _, err := q.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("apply: %w", err)
			}
			if _, err := q.Exec(ctx, `INSERT INTO sys_schema_migrations (name) VALUES ($1)`, name); err != nil {
				return fmt.Errorf("record: %w", err)
			}
			applied = true
			return nil
		})
		if err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		if applied {
			logger.Info(ctx, "migration applied", "name", name)
		}
	}
	return nil
}
