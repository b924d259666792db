package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/horologium/internal/almanac"
	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
)

func TestConvert(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "horologium.db")

	cfg := config.Default()
	cfg.Location = config.LocationData{Name: "Londinium", Latitude: 51.5072, Longitude: -0.1276, Timezone: "Europe/London"}
	cfg.Weather.Enabled = true

	entries := []almanac.Entry{{Month: time.April, Day: 21, Status: almanac.NefastusPublica, Festival: "Parilia", Deity: "Pales"}}
	if err := convert(dbPath, cfg, entries); err != nil {
		t.Fatalf("convert: %v", err)
	}

	p, err := config.NewSQLiteProvider(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	loaded, err := p.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded %+v, expected %+v", loaded, cfg)
	}

	store, err := almanac.NewSQLiteProvider(context.Background(), dbPath, zap.NewNop().Sugar())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	info, err := store.DayInfo(context.Background(), almanac.MonthDay{Month: time.April, Day: 21})
	if err != nil {
		t.Fatal(err)
	}
	if info.Festival != "Parilia" {
		t.Errorf("imported day = %+v", info)
	}
}

func TestLoadAlmanac(t *testing.T) {
	entries, err := loadAlmanac("bundled")
	if err != nil || len(entries) == 0 {
		t.Errorf("bundled almanac: %d entries, err %v", len(entries), err)
	}
	if _, err := loadAlmanac(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
