package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

//go:embed sql/*.sql
var embedded embed.FS

// Migrator manages database migrations
type Migrator struct {
	db  *pgxpool.Pool
	log zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, log zerolog.Logger) *Migrator {
	return &Migrator{
		db:  db,
		log: log.With().Str("component", "migrator").Logger(),
	}
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1);`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// Versions lists the bundled migration files in apply order.
func Versions() ([]string, error) {
	return listSQL(embedded, "sql")
}

func listSQL(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Migrate applies every bundled migration that has not been applied yet.
func (m *Migrator) Migrate(ctx context.Context) error {
	return m.MigrateFS(ctx, embedded, "sql")
}

// MigrateFS applies the .sql files of dir in name order. The version is the
// file name prefix before the first underscore ("001_init.sql" => "001").
func (m *Migrator) MigrateFS(ctx context.Context, fsys fs.FS, dir string) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	files, err := listSQL(fsys, dir)
	if err != nil {
		return err
	}

	for _, name := range files {
		version := strings.Split(name, "_")[0]
		applied, err := m.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			m.log.Debug().Str("file", name).Msg("Migration already applied, skipping")
			continue
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration file: %w", err)
		}

		if err := m.apply(ctx, version, string(content)); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
		m.log.Info().Str("file", name).Msg("Migration applied")
	}
	return nil
}

func (m *Migrator) apply(ctx context.Context, version, sql string) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func(tx pgx.Tx) { _ = tx.Rollback(ctx) }(tx)

	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("error occurred during SQL migration execution: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`, version, time.Now()); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit(ctx)
}
