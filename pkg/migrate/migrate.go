// Package migrate applies versioned SQL schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// MigrationProvider defines how migrations are loaded and their version tracked
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	CreateMigrationTable(ctx context.Context, db *sql.DB) error
	GetCurrentVersion(ctx context.Context, db *sql.DB) (int, error)
	SetVersion(ctx context.Context, tx *sql.Tx, version int) error
}

// Migrator handles the execution of migrations
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider) *Migrator {
	return &Migrator{
		db:       db,
		provider: provider,
	}
}

// MigrateUp runs all pending migrations and returns how many were applied
func (m *Migrator) MigrateUp(ctx context.Context) (int, error) {
	return m.MigrateTo(ctx, -1) // -1 means migrate to latest
}

// MigrateTo runs migrations up or down to reach targetVersion and returns how
// many were applied
func (m *Migrator) MigrateTo(ctx context.Context, targetVersion int) (int, error) {
	current, err := m.CurrentVersion(ctx)
	if err != nil {
		return 0, err
	}

	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return 0, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	if targetVersion == -1 {
		targetVersion = 0
		if len(migrations) > 0 {
			targetVersion = migrations[len(migrations)-1].Version
		}
	}

	applied := 0
	if targetVersion < current {
		// Roll back newest first
		for i := len(migrations) - 1; i >= 0; i-- {
			mg := migrations[i]
			if mg.Version > targetVersion && mg.Version <= current {
				if err := m.execute(ctx, mg, false); err != nil {
					return applied, fmt.Errorf("failed to rollback migration %d: %w", mg.Version, err)
				}
				applied++
			}
		}
		return applied, nil
	}

	for _, mg := range migrations {
		if mg.Version > current && mg.Version <= targetVersion {
			if err := m.execute(ctx, mg, true); err != nil {
				return applied, fmt.Errorf("failed to apply migration %d: %w", mg.Version, err)
			}
			applied++
		}
	}
	return applied, nil
}

// CurrentVersion returns the current migration version
func (m *Migrator) CurrentVersion(ctx context.Context) (int, error) {
	if err := m.provider.CreateMigrationTable(ctx, m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	return m.provider.GetCurrentVersion(ctx, m.db)
}

// execute runs a single migration up or down in its own transaction
func (m *Migrator) execute(ctx context.Context, mg Migration, up bool) error {
	stmt, newVersion, direction := mg.Up, mg.Version, "up"
	if !up {
		stmt, newVersion, direction = mg.Down, mg.Version-1, "down"
	}
	if stmt == "" {
		return fmt.Errorf("migration %d has no %s SQL", mg.Version, direction)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(ctx, tx, newVersion); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	return tx.Commit()
}
