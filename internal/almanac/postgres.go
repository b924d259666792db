package almanac

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/horologium/internal/database"
	"github.com/jackc/pgtype"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayRecord is one row of the almanac_days table. Days that only carry
// events have an empty status.
type DayRecord struct {
	Month       int          `gorm:"primaryKey;autoIncrement:false"`
	Day         int          `gorm:"primaryKey;autoIncrement:false"`
	Status      string       `gorm:"type:varchar(2);not null;default:''"`
	StatusFull  string       `gorm:"type:text"`
	Festival    string       `gorm:"type:text"`
	Description string       `gorm:"type:text"`
	Deity       string       `gorm:"type:text"`
	Events      pgtype.JSONB `gorm:"type:jsonb;default:'[]';not null"`
	UpdatedAt   time.Time
}

func (DayRecord) TableName() string {
	return "almanac_days"
}

func recordFromEntry(e Entry) (DayRecord, error) {
	r := DayRecord{
		Month:       int(e.Month),
		Day:         e.Day,
		Status:      string(e.Status),
		StatusFull:  e.StatusFull,
		Festival:    e.Festival,
		Description: e.Description,
		Deity:       e.Deity,
	}

	events := e.Events
	if events == nil {
		events = []HistoricalEvent{}
	}
	if err := r.Events.Set(events); err != nil {
		return DayRecord{}, fmt.Errorf("error encoding events for %s: %w", e.Key(), err)
	}
	return r, nil
}

func (r DayRecord) entry() (Entry, error) {
	e := Entry{
		Month:       time.Month(r.Month),
		Day:         r.Day,
		Status:      Status(r.Status),
		StatusFull:  r.StatusFull,
		Festival:    r.Festival,
		Description: r.Description,
		Deity:       r.Deity,
	}
	if err := r.Events.AssignTo(&e.Events); err != nil {
		return Entry{}, fmt.Errorf("error decoding events for %s: %w", e.Key(), err)
	}
	return e, nil
}

// PostgresProvider serves the almanac from PostgreSQL through GORM.
type PostgresProvider struct {
	client *database.Client
	logger *zap.SugaredLogger
}

// NewPostgresProvider connects, migrates the almanac_days table and seeds
// it with the bundled almanac when it is empty.
func NewPostgresProvider(ctx context.Context, connectionString string, logger *zap.SugaredLogger) (*PostgresProvider, error) {
	client := database.NewClient(connectionString, logger)
	if err := client.Connect(); err != nil {
		return nil, err
	}

	p := &PostgresProvider{client: client, logger: logger}
	if err := p.init(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return p, nil
}

func (p *PostgresProvider) db(ctx context.Context) *gorm.DB {
	return p.client.DB.WithContext(ctx)
}

func (p *PostgresProvider) init(ctx context.Context) error {
	if err := p.db(ctx).AutoMigrate(&DayRecord{}); err != nil {
		return fmt.Errorf("error migrating almanac table: %w", err)
	}

	var n int64
	if err := p.db(ctx).Model(&DayRecord{}).Count(&n).Error; err != nil {
		return fmt.Errorf("error counting almanac rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	entries, err := DefaultEntries()
	if err != nil {
		return err
	}
	p.logger.Infof("seeding empty PostgreSQL almanac with %d bundled entries", len(entries))
	return p.Import(ctx, entries)
}

// Import upserts entries, replacing any stored data for the same days.
func (p *PostgresProvider) Import(ctx context.Context, entries []Entry) error {
	records := make([]DayRecord, 0, len(entries))
	for _, e := range entries {
		r, err := recordFromEntry(e)
		if err != nil {
			return err
		}
		records = append(records, r)
	}
	if len(records) == 0 {
		return nil
	}

	err := p.db(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("error importing almanac: %w", err)
	}
	return nil
}

func (p *PostgresProvider) find(ctx context.Context, md MonthDay) (Entry, bool, error) {
	var r DayRecord
	err := p.db(ctx).Where("month = ? AND day = ?", int(md.Month), md.Day).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("error querying day %s: %w", md, err)
	}

	e, err := r.entry()
	if err != nil {
		return Entry{}, false, err
	}
	return e, true, nil
}

func (p *PostgresProvider) DayInfo(ctx context.Context, md MonthDay) (DayInfo, error) {
	e, ok, err := p.find(ctx, md)
	if err != nil {
		return DayInfo{}, err
	}
	if !ok {
		return Fallback(), nil
	}
	return e.Info(), nil
}

func (p *PostgresProvider) Events(ctx context.Context, md MonthDay) ([]HistoricalEvent, error) {
	e, _, err := p.find(ctx, md)
	if err != nil {
		return nil, err
	}
	return append([]HistoricalEvent{}, e.Events...), nil
}

func (p *PostgresProvider) Close() error {
	return p.client.Close()
}
