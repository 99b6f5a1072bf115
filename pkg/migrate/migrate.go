// Package migrate applies versioned SQL migrations to a SQLite database.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// DefaultTable records applied migration versions
const DefaultTable = "schema_migrations"

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// Source supplies migrations
type Source interface {
	Migrations() ([]Migration, error)
}

// Migrator handles the execution of migrations
type Migrator struct {
	db     *sql.DB
	source Source
	table  string
	logger *zap.SugaredLogger
}

// NewMigrator creates a new migrator instance. A nil logger disables
// logging.
func NewMigrator(db *sql.DB, source Source, logger *zap.SugaredLogger) *Migrator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Migrator{
		db:     db,
		source: source,
		table:  DefaultTable,
		logger: logger,
	}
}

// Up runs all pending migrations
func (m *Migrator) Up(ctx context.Context) error {
	return m.To(ctx, -1) // -1 means latest
}

// To migrates up or down until targetVersion is the current version
func (m *Migrator) To(ctx context.Context, targetVersion int) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}

	if targetVersion == -1 {
		targetVersion = 0
		if len(migrations) > 0 {
			targetVersion = migrations[len(migrations)-1].Version
		}
	}

	if targetVersion < current {
		return m.Down(ctx, targetVersion)
	}

	for _, migration := range migrations {
		if migration.Version > current && migration.Version <= targetVersion {
			if err := m.apply(ctx, migration, true); err != nil {
				return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
			}
		}
	}
	return nil
}

// Down rolls migrations back until targetVersion is the current version
func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if targetVersion >= current {
		return fmt.Errorf("target version %d must be less than current version %d", targetVersion, current)
	}

	migrations, err := m.sorted()
	if err != nil {
		return err
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		migration := migrations[i]
		if migration.Version > targetVersion && migration.Version <= current {
			if err := m.apply(ctx, migration, false); err != nil {
				return fmt.Errorf("failed to roll back migration %d: %w", migration.Version, err)
			}
		}
	}
	return nil
}

// Version returns the highest applied migration version, 0 for a fresh
// database
func (m *Migrator) Version(ctx context.Context) (int, error) {
	if err := m.createTable(ctx); err != nil {
		return 0, err
	}

	var version int
	query := fmt.Sprintf("SELECT COALESCE(MAX(version), 0) FROM %s", m.table)
	if err := m.db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// Pending returns migrations that haven't been applied yet, oldest first
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	current, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}

	migrations, err := m.sorted()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range migrations {
		if migration.Version > current {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

func (m *Migrator) sorted() ([]Migration, error) {
	migrations, err := m.source.Migrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

func (m *Migrator) createTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`, m.table)
	if _, err := m.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create migration table: %w", err)
	}
	return nil
}

// apply runs one migration and records the resulting version in the same
// transaction
func (m *Migrator) apply(ctx context.Context, migration Migration, up bool) error {
	direction := "up"
	script := migration.Up
	if !up {
		direction = "down"
		script = migration.Down
	}
	if script == "" {
		return fmt.Errorf("migration %d has no %s SQL", migration.Version, direction)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	if up {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT OR REPLACE INTO %s (version, applied_at) VALUES (?, CURRENT_TIMESTAMP)", m.table), migration.Version)
	} else {
		_, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE version >= ?", m.table), migration.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	m.logger.Debugf("applied migration %d (%s) %s", migration.Version, migration.Name, direction)
	return nil
}
