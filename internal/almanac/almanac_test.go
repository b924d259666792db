package almanac

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
)

func TestMonthDay(t *testing.T) {
	tests := []struct {
		md    MonthDay
		valid bool
		str   string
	}{
		{MonthDay{time.March, 15}, true, "03-15"},
		{MonthDay{time.February, 29}, true, "02-29"},
		{MonthDay{time.February, 30}, false, "02-30"},
		{MonthDay{time.April, 31}, false, "04-31"},
		{MonthDay{time.December, 31}, true, "12-31"},
		{MonthDay{0, 1}, false, "00-01"},
		{MonthDay{13, 1}, false, "13-01"},
		{MonthDay{time.January, 0}, false, "01-00"},
	}

	for _, tt := range tests {
		if got := tt.md.Valid(); got != tt.valid {
			t.Errorf("%v.Valid() = %v, expected %v", tt.md, got, tt.valid)
		}
		if got := tt.md.String(); got != tt.str {
			t.Errorf("String() = %q, expected %q", got, tt.str)
		}
	}
}

func TestMonthDayOfUsesLocation(t *testing.T) {
	instant := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)
	if got := MonthDayOf(instant.In(time.FixedZone("CET", 3600))); got != (MonthDay{time.March, 15}) {
		t.Errorf("MonthDayOf = %v, expected 03-15", got)
	}
}

func TestEntryInfo(t *testing.T) {
	tests := []struct {
		name     string
		entry    Entry
		expected DayInfo
	}{
		{
			name:  "public festival",
			entry: Entry{Status: NefastusPublica, Festival: "Lupercalia", Deity: "Faunus"},
			expected: DayInfo{
				Status: NefastusPublica, StatusFull: "Dies Nefastus Publicus",
				Festival: "Lupercalia", Deity: "Faunus", IsMajorFestival: true,
			},
		},
		{
			name:     "named festival on a fastus day is major",
			entry:    Entry{Status: Fastus, Festival: "Feralia", Deity: "Manes"},
			expected: DayInfo{Status: Fastus, StatusFull: "Dies Fastus", Festival: "Feralia", Deity: "Manes", IsMajorFestival: true},
		},
		{
			name:     "comitial day without festival",
			entry:    Entry{Status: Comitialis, Deity: "Mars"},
			expected: DayInfo{Status: Comitialis, StatusFull: "Dies Comitialis", Deity: "Mars"},
		},
		{
			name:     "explicit status name and default deity",
			entry:    Entry{Status: Nefastus, StatusFull: "Nefas"},
			expected: DayInfo{Status: Nefastus, StatusFull: "Nefas", Deity: "Genius Huius Diei"},
		},
		{
			name:     "events only",
			entry:    Entry{Events: []HistoricalEvent{{Latin: "x", Translation: "y"}}},
			expected: Fallback(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Info(); got != tt.expected {
				t.Errorf("Info() = %+v, expected %+v", got, tt.expected)
			}
		})
	}
}

func TestParseEntries(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		count   int
	}{
		{"empty", "days: []", false, 0},
		{"one day", "days:\n  - month: 3\n    day: 15\n    status: NP\n", false, 1},
		{"invalid day", "days:\n  - month: 2\n    day: 30\n    status: F\n", true, 0},
		{"duplicate", "days:\n  - {month: 1, day: 1, status: F}\n  - {month: 1, day: 1, status: N}\n", true, 0},
		{"unknown status", "days:\n  - {month: 1, day: 2, status: X}\n", true, 0},
		{"malformed", "days: {", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseEntries([]byte(tt.yaml))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(entries) != tt.count {
				t.Errorf("len = %d, expected %d", len(entries), tt.count)
			}
		})
	}
}

func TestDefaultEntries(t *testing.T) {
	entries, err := DefaultEntries()
	if err != nil {
		t.Fatalf("bundled almanac does not parse: %v", err)
	}
	if len(entries) < 50 {
		t.Errorf("bundled almanac has only %d entries", len(entries))
	}
}

// checkProvider runs the same lookups against any backend seeded with the
// bundled almanac.
func checkProvider(t *testing.T, p Provider) {
	t.Helper()
	ctx := context.Background()

	tests := []struct {
		name     string
		md       MonthDay
		status   Status
		festival string
		deity    string
		major    bool
		events   int
	}{
		{"Ides of March", MonthDay{time.March, 15}, NefastusPublica, "Anna Perenna", "Anna Perenna", true, 1},
		{"Saturnalia", MonthDay{time.December, 17}, NefastusPublica, "Saturnalia", "Saturnus", true, 0},
		{"comitial day", MonthDay{time.January, 16}, Comitialis, "", "Concordia", false, 1},
		{"events only", MonthDay{time.January, 17}, Fastus, "", "Genius Huius Diei", false, 1},
		{"missing day", MonthDay{time.July, 1}, Fastus, "", "Genius Huius Diei", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := p.DayInfo(ctx, tt.md)
			if err != nil {
				t.Fatalf("DayInfo: %v", err)
			}
			if info.Status != tt.status || info.Festival != tt.festival || info.Deity != tt.deity || info.IsMajorFestival != tt.major {
				t.Errorf("DayInfo(%v) = %+v", tt.md, info)
			}
			if info.StatusFull == "" {
				t.Error("StatusFull is empty")
			}

			events, err := p.Events(ctx, tt.md)
			if err != nil {
				t.Fatalf("Events: %v", err)
			}
			if events == nil {
				t.Error("Events returned nil, expected an empty slice")
			}
			if len(events) != tt.events {
				t.Errorf("Events(%v) = %d events, expected %d", tt.md, len(events), tt.events)
			}
		})
	}

	events, _ := p.Events(ctx, MonthDay{time.March, 15})
	if len(events) == 1 && events[0].Latin != "C. Iulius Caesar in Curia occiditur." {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestYAMLProviderBundled(t *testing.T) {
	p, err := NewYAMLProvider("")
	if err != nil {
		t.Fatalf("NewYAMLProvider: %v", err)
	}
	defer p.Close()
	checkProvider(t, p)
}

func TestYAMLProviderFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "almanac.yaml")
	data := []byte(`
days:
  - month: 4
    day: 21
    status: NP
    festival: Parilia
    deity: Pales
    events:
      - latin: Roma condita.
        translation: Rome is founded.
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	p, err := NewYAMLProvider(path)
	if err != nil {
		t.Fatalf("NewYAMLProvider: %v", err)
	}

	info, _ := p.DayInfo(context.Background(), MonthDay{time.April, 21})
	if info.Festival != "Parilia" || !info.IsMajorFestival {
		t.Errorf("DayInfo = %+v", info)
	}
	if info, _ := p.DayInfo(context.Background(), MonthDay{time.March, 15}); info != Fallback() {
		t.Errorf("day outside the file = %+v, expected fallback", info)
	}

	// the returned slice is a copy
	events, _ := p.Events(context.Background(), MonthDay{time.April, 21})
	events[0].Latin = "changed"
	again, _ := p.Events(context.Background(), MonthDay{time.April, 21})
	if again[0].Latin != "Roma condita." {
		t.Error("Events exposes provider state")
	}
}

func TestYAMLProviderErrors(t *testing.T) {
	if _, err := NewYAMLProvider(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, expected not-exist", err)
	}

	p := NewMemoryProvider(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.DayInfo(ctx, MonthDay{time.March, 15}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, expected context.Canceled", err)
	}
}

func TestSQLiteProvider(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "almanac.db")

	p, err := NewSQLiteProvider(ctx, path, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewSQLiteProvider: %v", err)
	}
	checkProvider(t, p)

	override := []Entry{{
		Month: time.March, Day: 15, Status: Fastus, Deity: "Iuppiter",
		Events: []HistoricalEvent{{Latin: "a", Translation: "b"}, {Latin: "c", Translation: "d"}},
	}}
	if err := p.Import(ctx, override); err != nil {
		t.Fatalf("Import: %v", err)
	}

	info, _ := p.DayInfo(ctx, MonthDay{time.March, 15})
	if info.Status != Fastus || info.Deity != "Iuppiter" || info.IsMajorFestival {
		t.Errorf("after import DayInfo = %+v", info)
	}
	events, _ := p.Events(ctx, MonthDay{time.March, 15})
	if len(events) != 2 || events[0].Latin != "a" || events[1].Latin != "c" {
		t.Errorf("after import Events = %+v", events)
	}

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// reopening keeps the imported data instead of reseeding
	p, err = NewSQLiteProvider(ctx, path, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p.Close()
	if info, _ := p.DayInfo(ctx, MonthDay{time.March, 15}); info.Deity != "Iuppiter" {
		t.Errorf("reopened DayInfo = %+v", info)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop().Sugar()

	p, err := New(ctx, config.AlmanacData{Backend: "yaml"}, logger)
	if err != nil {
		t.Fatalf("New(yaml): %v", err)
	}
	p.Close()

	p, err = New(ctx, config.AlmanacData{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "a.db")}, logger)
	if err != nil {
		t.Fatalf("New(sqlite): %v", err)
	}
	p.Close()

	if _, err := New(ctx, config.AlmanacData{Backend: "sqlite"}, logger); err == nil {
		t.Error("expected an error for sqlite without a path")
	}

	if _, err := New(ctx, config.AlmanacData{Backend: "cassandra"}, logger); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, expected ErrUnknownBackend", err)
	}
}

func TestDayRecordConversion(t *testing.T) {
	e := Entry{
		Month: time.February, Day: 15, Status: NefastusPublica, Festival: "Lupercalia", Deity: "Faunus",
		Events: []HistoricalEvent{{Latin: "Lupercal", Translation: "The wolf's cave"}},
	}

	r, err := recordFromEntry(e)
	if err != nil {
		t.Fatalf("recordFromEntry: %v", err)
	}
	if r.Month != 2 || r.Day != 15 || r.Status != "NP" {
		t.Errorf("record = %+v", r)
	}

	back, err := r.entry()
	if err != nil {
		t.Fatalf("entry: %v", err)
	}
	if back.Info() != e.Info() || len(back.Events) != 1 || back.Events[0] != e.Events[0] {
		t.Errorf("conversion lost data: %+v", back)
	}

	empty, err := recordFromEntry(Entry{Month: time.July, Day: 1})
	if err != nil {
		t.Fatal(err)
	}
	if string(empty.Events.Bytes) != "[]" {
		t.Errorf("events column = %s, expected []", empty.Events.Bytes)
	}
}

func TestPostgresProvider(t *testing.T) {
	dsn := os.Getenv("HOROLOGIUM_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("HOROLOGIUM_TEST_POSTGRES not set")
	}

	p, err := NewPostgresProvider(context.Background(), dsn, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewPostgresProvider: %v", err)
	}
	defer p.Close()
	checkProvider(t, p)
}
