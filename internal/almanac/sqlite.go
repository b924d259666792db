package almanac

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/chrissnell/horologium/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var sqliteMigrations embed.FS

// SQLiteProvider serves the almanac from a SQLite database.
type SQLiteProvider struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

// NewSQLiteProvider opens the database at path, creating the tables if
// needed. An empty database is seeded with the bundled almanac.
func NewSQLiteProvider(ctx context.Context, path string, logger *zap.SugaredLogger) (*SQLiteProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite almanac needs a path")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	p := &SQLiteProvider{db: db, logger: logger}
	if err := p.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLiteProvider) init(ctx context.Context) error {
	m := migrate.NewMigrator(p.db, migrate.NewFSProvider(sqliteMigrations, "migrations", "almanac_migrations"))
	applied, err := m.MigrateUp(ctx)
	if err != nil {
		return fmt.Errorf("failed to migrate almanac tables: %w", err)
	}
	if applied > 0 {
		p.logger.Debugf("applied %d almanac migrations", applied)
	}

	var n int
	err = p.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM almanac_days) + (SELECT COUNT(*) FROM almanac_events)`).Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to count almanac rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	entries, err := DefaultEntries()
	if err != nil {
		return err
	}
	p.logger.Infof("seeding empty SQLite almanac with %d bundled entries", len(entries))
	return p.Import(ctx, entries)
}

// Import writes entries, replacing any stored data for the same days.
func (p *SQLiteProvider) Import(ctx context.Context, entries []Entry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range entries {
		month, day := int(e.Month), e.Day

		if _, err := tx.ExecContext(ctx, `DELETE FROM almanac_days WHERE month = ? AND day = ?`, month, day); err != nil {
			return fmt.Errorf("failed to clear day %s: %w", e.Key(), err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM almanac_events WHERE month = ? AND day = ?`, month, day); err != nil {
			return fmt.Errorf("failed to clear events for %s: %w", e.Key(), err)
		}

		if e.Status != "" {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO almanac_days (month, day, status, status_full, festival, description, deity)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				month, day, string(e.Status), e.StatusFull, e.Festival, e.Description, e.Deity)
			if err != nil {
				return fmt.Errorf("failed to insert day %s: %w", e.Key(), err)
			}
		}

		for _, ev := range e.Events {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO almanac_events (month, day, latin, translation) VALUES (?, ?, ?, ?)`,
				month, day, ev.Latin, ev.Translation)
			if err != nil {
				return fmt.Errorf("failed to insert event for %s: %w", e.Key(), err)
			}
		}
	}

	return tx.Commit()
}

func (p *SQLiteProvider) DayInfo(ctx context.Context, md MonthDay) (DayInfo, error) {
	e := Entry{Month: md.Month, Day: md.Day}
	var status string

	err := p.db.QueryRowContext(ctx, `
		SELECT status, status_full, festival, description, deity
		FROM almanac_days WHERE month = ? AND day = ?`,
		int(md.Month), md.Day).Scan(&status, &e.StatusFull, &e.Festival, &e.Description, &e.Deity)
	if err == sql.ErrNoRows {
		return Fallback(), nil
	}
	if err != nil {
		return DayInfo{}, fmt.Errorf("failed to query day %s: %w", md, err)
	}

	e.Status = Status(status)
	return e.Info(), nil
}

func (p *SQLiteProvider) Events(ctx context.Context, md MonthDay) ([]HistoricalEvent, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT latin, translation FROM almanac_events WHERE month = ? AND day = ? ORDER BY id`,
		int(md.Month), md.Day)
	if err != nil {
		return nil, fmt.Errorf("failed to query events for %s: %w", md, err)
	}
	defer rows.Close()

	events := []HistoricalEvent{}
	for rows.Next() {
		var ev HistoricalEvent
		if err := rows.Scan(&ev.Latin, &ev.Translation); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (p *SQLiteProvider) Close() error {
	return p.db.Close()
}
