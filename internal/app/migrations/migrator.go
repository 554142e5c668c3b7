package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Migrator manages database migrations
type Migrator struct {
	db     *pgxpool.Pool
	logger zerolog.Logger
}

// NewMigrator creates a new migrator
func NewMigrator(db *pgxpool.Pool, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     db,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// ensureMigrationTableExists creates the migration tracking table if it doesn't exist
func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := m.db.Exec(ctx, createTableSQL)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

// isMigrationApplied checks if a specific migration has already been applied
func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1);`
	err := m.db.QueryRow(ctx, query, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// recordMigration marks a migration as applied within the migration's transaction
func recordMigration(ctx context.Context, tx pgx.Tx, version string) error {
	_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)`,
		version, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return nil
}

// Version extracts the version prefix of a migration file ("001_init.sql" => "001")
func Version(filename string) string {
	return strings.SplitN(filepath.Base(filename), "_", 2)[0]
}

// MigrateFromFile executes SQL statements from a file
func (m *Migrator) MigrateFromFile(ctx context.Context, filePath string) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}

	filename := filepath.Base(filePath)
	version := Version(filename)

	migrationApplied, err := m.isMigrationApplied(ctx, version)
	if err != nil {
		return err
	}
	if migrationApplied {
		m.logger.Debug().Str("file", filename).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("error occurred during SQL migration %s: %w", filename, err)
	}

	if err := recordMigration(ctx, tx, version); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.logger.Info().Str("file", filename).Str("version", version).Msg("Migration applied")
	return nil
}

// SQLFiles lists the .sql files of a directory in execution order
func SQLFiles(dirPath string) ([]string, error) {
	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var sqlFiles []string
	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(file.Name(), ".sql") {
			sqlFiles = append(sqlFiles, filepath.Join(dirPath, file.Name()))
		}
	}
	sort.Strings(sqlFiles)
	return sqlFiles, nil
}

// MigrateFromDirectory finds and executes all SQL files in a directory
func (m *Migrator) MigrateFromDirectory(ctx context.Context, dirPath string) error {
	sqlFiles, err := SQLFiles(dirPath)
	if err != nil {
		return err
	}

	for _, file := range sqlFiles {
		if err := m.MigrateFromFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}
