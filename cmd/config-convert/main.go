package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
)

func main() {
	var (
		yamlFile    = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile  = flag.String("sqlite", "", "Path to SQLite database file (required)")
		almanacFile = flag.String("almanac", "", "Also import this almanac YAML file into the SQLite database ('bundled' for the built-in almanac)")
		force       = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun      = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <horologium.yaml> -sqlite <horologium.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Check if YAML file exists
	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	// Check if SQLite file already exists
	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	if *dryRun {
		fmt.Println("DRY RUN - No changes will be made")
	}

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration...\n")
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	configData, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}
	if err := configData.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error validating YAML configuration: %v\n", err)
		os.Exit(1)
	}

	var entries []almanac.Entry
	if *almanacFile != "" {
		entries, err = loadAlmanac(*almanacFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading almanac: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  Loaded %d almanac entries\n", len(entries))
	}

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	// Remove existing SQLite file if force is specified
	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Loading configuration into SQLite database...\n")
	if err := convert(*sqliteFile, configData, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration into SQLite: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Conversion completed successfully!\n")
	fmt.Printf("You can now use the SQLite backend with: -config-backend sqlite -config %s\n", *sqliteFile)
	if len(entries) > 0 {
		fmt.Printf("Set almanac.backend to sqlite and almanac.path to %s to serve the imported almanac\n", *sqliteFile)
	}
}

func loadAlmanac(path string) ([]almanac.Entry, error) {
	if path == "bundled" {
		return almanac.DefaultEntries()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return almanac.ParseEntries(data)
}

// convert writes the settings, and the almanac if entries is not empty, into
// the database at dbPath
func convert(dbPath string, configData *config.ConfigData, entries []almanac.Entry) error {
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	sqliteProvider, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		return fmt.Errorf("failed to create SQLite provider: %w", err)
	}
	defer sqliteProvider.Close()

	if err := sqliteProvider.InitSchema(); err != nil {
		return err
	}
	if err := sqliteProvider.SaveConfig(configData); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	fmt.Printf("  Configuration successfully inserted into database\n")

	if len(entries) == 0 {
		return nil
	}

	ctx := context.Background()
	// opening seeds the bundled almanac, which the import then overrides
	store, err := almanac.NewSQLiteProvider(ctx, dbPath, zap.NewNop().Sugar())
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(ctx, entries); err != nil {
		return err
	}
	fmt.Printf("  %d almanac entries successfully inserted into database\n", len(entries))
	return nil
}

func printConfigSummary(configData *config.ConfigData) {
	fmt.Println("\nConfiguration Summary:")
	loc := configData.Location
	fmt.Printf("Location: %s (%.4f, %.4f) in %s\n", loc.Name, loc.Latitude, loc.Longitude, loc.Timezone)
	fmt.Printf("Tick interval: %s\n", configData.TickInterval)
	fmt.Printf("REST server: %s:%d\n", configData.REST.ListenAddr, configData.REST.Port)
	if configData.Weather.Enabled {
		fmt.Printf("Weather: %s every %s\n", configData.Weather.APIEndpoint, configData.Weather.RefreshInterval)
	} else {
		fmt.Println("Weather: disabled")
	}
	fmt.Printf("Almanac: %s %s\n", configData.Almanac.Backend, configData.Almanac.Path)
}
