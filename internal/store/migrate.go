package store

import (
	"adledger-server/internal/observability"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/V*.sql
var migrationFiles embed.FS

const sqlCreateMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version    TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const sqlSelectAppliedMigrations = `
SELECT version FROM schema_migrations`

const sqlInsertMigration = `
INSERT INTO schema_migrations (version) VALUES ($1)`

type migration struct {
	version string
	sql     string
}

func loadMigrations() ([]migration, error) {
	files, err := fs.Glob(migrationFiles, "migrations/V*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration files: %w", err)
	}
	sort.Strings(files)

	migrations := make([]migration, 0, len(files))
	for _, file := range files {
		content, err := migrationFiles.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", file, err)
		}
		name := strings.TrimPrefix(file, "migrations/")
		version, _, _ := strings.Cut(name, "__")
		migrations = append(migrations, migration{version: version, sql: string(content)})
	}
	return migrations, nil
}

// Migrate applies every embedded migration that has not been recorded yet, each in its own transaction
func (s *Store) Migrate(ctx context.Context) error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, sqlCreateMigrationsTable); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var applied []string
	if err := s.db.SelectContext(ctx, &applied, sqlSelectAppliedMigrations); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := s.withTx(ctx, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, sqlInsertMigration, m.version)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
		s.logger.Info(ctx, "applied migration", observability.Field{Key: "version", Value: m.version})
	}
	return nil
}
