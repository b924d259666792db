// Package almanac looks up the religious status, festival and deity of each
// day of the Roman year, along with historical events that fell on it.
package almanac

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("unknown almanac backend")

// MonthDay identifies a day of the year independent of the year itself.
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// MonthDayOf returns the month and day of t in t's location.
func MonthDayOf(t time.Time) MonthDay {
	_, m, d := t.Date()
	return MonthDay{Month: m, Day: d}
}

// Valid reports whether md can occur in some year, including 29 February.
func (md MonthDay) Valid() bool {
	if md.Month < time.January || md.Month > time.December || md.Day < 1 {
		return false
	}
	// 2000 is a leap year, so February allows the 29th
	return md.Day <= time.Date(2000, md.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// Status is the religious and legal character of a day.
type Status string

const (
	Fastus          Status = "F"  // legal business permitted
	Nefastus        Status = "N"  // no legal business
	NefastusPublica Status = "NP" // public festival
	Comitialis      Status = "C"  // assemblies may meet
	Endotercisus    Status = "EN" // nefastus morning and evening, fastus at midday
)

var statusNames = map[Status]string{
	Fastus:          "Dies Fastus",
	Nefastus:        "Dies Nefastus",
	NefastusPublica: "Dies Nefastus Publicus",
	Comitialis:      "Dies Comitialis",
	Endotercisus:    "Dies Endotercisus",
}

// FullName returns the Latin name of the status.
func (s Status) FullName() string {
	return statusNames[s]
}

// DayInfo describes one day of the Roman year.
type DayInfo struct {
	Status          Status `json:"status"`
	StatusFull      string `json:"status_full"`
	Festival        string `json:"festival,omitempty"`
	Description     string `json:"description,omitempty"`
	Deity           string `json:"deity"`
	IsMajorFestival bool   `json:"is_major_festival"`
}

// HistoricalEvent is a bilingual note of something that happened on a day.
type HistoricalEvent struct {
	Latin       string `json:"latin" yaml:"latin"`
	Translation string `json:"translation" yaml:"translation"`
}

// Fallback is returned for days the almanac has no entry for.
func Fallback() DayInfo {
	return DayInfo{
		Status:      Fastus,
		StatusFull:  Fastus.FullName(),
		Description: "An ordinary day in the Roman calendar.",
		Deity:       "Genius Huius Diei",
	}
}

// Provider is a source of almanac data. Missing days are not an error: they
// yield Fallback and no events.
type Provider interface {
	DayInfo(ctx context.Context, md MonthDay) (DayInfo, error)
	Events(ctx context.Context, md MonthDay) ([]HistoricalEvent, error)
	Close() error
}

// Entry is one day of almanac source data. An entry without a status only
// carries events.
type Entry struct {
	Month       time.Month        `yaml:"month"`
	Day         int               `yaml:"day"`
	Status      Status            `yaml:"status,omitempty"`
	StatusFull  string            `yaml:"status-full,omitempty"`
	Festival    string            `yaml:"festival,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Deity       string            `yaml:"deity,omitempty"`
	Events      []HistoricalEvent `yaml:"events,omitempty"`
}

// Key returns the entry's day.
func (e Entry) Key() MonthDay {
	return MonthDay{Month: e.Month, Day: e.Day}
}

// Info converts the entry into a DayInfo.
func (e Entry) Info() DayInfo {
	if e.Status == "" {
		return Fallback()
	}

	info := DayInfo{
		Status:      e.Status,
		StatusFull:  e.StatusFull,
		Festival:    e.Festival,
		Description: e.Description,
		Deity:       e.Deity,
	}
	if info.StatusFull == "" {
		info.StatusFull = e.Status.FullName()
	}
	if info.Deity == "" {
		info.Deity = Fallback().Deity
	}
	info.IsMajorFestival = e.Status == NefastusPublica || e.Festival != ""
	return info
}

//go:embed almanac.yaml
var defaultAlmanac []byte

type almanacFile struct {
	Days []Entry `yaml:"days"`
}

// ParseEntries decodes almanac YAML and validates every entry.
func ParseEntries(data []byte) ([]Entry, error) {
	var f almanacFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing almanac: %w", err)
	}

	seen := make(map[MonthDay]bool, len(f.Days))
	for i, e := range f.Days {
		if !e.Key().Valid() {
			return nil, fmt.Errorf("almanac entry %d: invalid day %s", i, e.Key())
		}
		if seen[e.Key()] {
			return nil, fmt.Errorf("almanac entry %d: duplicate day %s", i, e.Key())
		}
		seen[e.Key()] = true
		if e.Status != "" && e.Status.FullName() == "" {
			return nil, fmt.Errorf("almanac entry %d (%s): unknown status %q", i, e.Key(), e.Status)
		}
	}
	return f.Days, nil
}

// DefaultEntries returns the almanac bundled with the binary.
func DefaultEntries() ([]Entry, error) {
	return ParseEntries(defaultAlmanac)
}

// New opens the provider selected by cfg.Backend.
func New(ctx context.Context, cfg config.AlmanacData, logger *zap.SugaredLogger) (Provider, error) {
	switch cfg.Backend {
	case "", "yaml":
		return NewYAMLProvider(cfg.Path)
	case "sqlite":
		return NewSQLiteProvider(ctx, cfg.Path, logger)
	case "postgres":
		return NewPostgresProvider(ctx, cfg.ConnectionString, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
