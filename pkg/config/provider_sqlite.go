package config

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"

	"github.com/chrissnell/horologium/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var settingsMigrations embed.FS

// SQLiteProvider implements ConfigProvider for SQLite database configuration.
// Settings live in a single key/value table using the YAML key paths, e.g.
// "location.latitude" or "weather.refresh-interval".
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// InitSchema migrates the settings table to the latest version
func (s *SQLiteProvider) InitSchema() error {
	m := migrate.NewMigrator(s.db, migrate.NewFSProvider(settingsMigrations, "migrations", "config_migrations"))
	if _, err := m.MigrateUp(context.Background()); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}
	return nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	config := Default()
	var hasLat, hasLon bool

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		if err := applySetting(config, key, value); err != nil {
			return nil, err
		}
		switch key {
		case "location.latitude":
			hasLat = true
		case "location.longitude":
			hasLon = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	if hasLat != hasLon {
		return nil, ErrMissingLocation
	}

	return config, nil
}

// SaveConfig replaces every stored setting with the values of c
func (s *SQLiteProvider) SaveConfig(c *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM settings`); err != nil {
		return fmt.Errorf("failed to clear settings: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO settings (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, value := range flattenSettings(c) {
		if _, err := stmt.Exec(key, value); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false since SQLite settings can be rewritten
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func applySetting(c *ConfigData, key, value string) error {
	var err error
	switch key {
	case "location.name":
		c.Location.Name = value
	case "location.latitude":
		c.Location.Latitude, err = strconv.ParseFloat(value, 64)
	case "location.longitude":
		c.Location.Longitude, err = strconv.ParseFloat(value, 64)
	case "location.timezone":
		c.Location.Timezone = value
	case "tick-interval":
		c.TickInterval = value
	case "rest.cert":
		c.REST.Cert = value
	case "rest.key":
		c.REST.Key = value
	case "rest.port":
		c.REST.Port, err = strconv.Atoi(value)
	case "rest.listen-addr":
		c.REST.ListenAddr = value
	case "grpc.enabled":
		c.GRPC.Enabled, err = strconv.ParseBool(value)
	case "weather.enabled":
		c.Weather.Enabled, err = strconv.ParseBool(value)
	case "weather.api-endpoint":
		c.Weather.APIEndpoint = value
	case "weather.refresh-interval":
		c.Weather.RefreshInterval = value
	case "weather.timeout":
		c.Weather.Timeout = value
	case "almanac.backend":
		c.Almanac.Backend = value
	case "almanac.path":
		c.Almanac.Path = value
	case "almanac.connection-string":
		c.Almanac.ConnectionString = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

func flattenSettings(c *ConfigData) map[string]string {
	settings := map[string]string{
		"location.name":             c.Location.Name,
		"location.latitude":         strconv.FormatFloat(c.Location.Latitude, 'f', -1, 64),
		"location.longitude":        strconv.FormatFloat(c.Location.Longitude, 'f', -1, 64),
		"location.timezone":         c.Location.Timezone,
		"tick-interval":             c.TickInterval,
		"rest.cert":                 c.REST.Cert,
		"rest.key":                  c.REST.Key,
		"rest.port":                 strconv.Itoa(c.REST.Port),
		"rest.listen-addr":          c.REST.ListenAddr,
		"grpc.enabled":              strconv.FormatBool(c.GRPC.Enabled),
		"weather.enabled":           strconv.FormatBool(c.Weather.Enabled),
		"weather.api-endpoint":      c.Weather.APIEndpoint,
		"weather.refresh-interval":  c.Weather.RefreshInterval,
		"weather.timeout":           c.Weather.Timeout,
		"almanac.backend":           c.Almanac.Backend,
		"almanac.path":              c.Almanac.Path,
		"almanac.connection-string": c.Almanac.ConnectionString,
	}

	// empty strings would override defaults on load
	for k, v := range settings {
		if v == "" {
			delete(settings, k)
		}
	}
	return settings
}
