// Package clock keeps the current Roman time snapshot for the configured
// location up to date.
package clock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chrissnell/horologium/internal/weather"
	"github.com/chrissnell/horologium/pkg/config"
	"github.com/chrissnell/horologium/pkg/romantime"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// WeatherSource fetches current conditions. *weather.Client implements it.
type WeatherSource interface {
	Current(ctx context.Context, lat, lon float64) (*weather.Report, error)
}

// Clock recomputes a romantime.Snapshot on every tick. Readers always see a
// complete snapshot; a new one replaces the old in a single atomic swap.
type Clock struct {
	zone    *time.Location
	tick    time.Duration
	refresh time.Duration
	source  WeatherSource
	logger  *zap.SugaredLogger

	coord    atomic.Pointer[romantime.GeoCoordinate]
	snapshot atomic.Pointer[romantime.Snapshot]
	weather  atomic.Pointer[weather.Report]

	scheduler *gocron.Scheduler
	now       func() time.Time

	// refreshes tracks weather fetches started by SetLocation
	mu        sync.Mutex
	stopped   bool
	refreshes sync.WaitGroup
}

// New creates a clock for the configured location. source may be nil to
// disable weather.
func New(cfg *config.ConfigData, source WeatherSource, logger *zap.SugaredLogger) (*Clock, error) {
	zone, err := cfg.Zone()
	if err != nil {
		return nil, err
	}

	c := &Clock{
		zone:    zone,
		tick:    cfg.TickDuration(),
		refresh: cfg.Weather.RefreshDuration(),
		source:  source,
		logger:  logger,
		now:     time.Now,
	}
	c.coord.Store(&romantime.GeoCoordinate{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
	})
	return c, nil
}

// Start computes the first snapshot and schedules ticks and weather
// refreshes until ctx is cancelled.
func (c *Clock) Start(ctx context.Context, wg *sync.WaitGroup) error {
	c.Tick()

	s := gocron.NewScheduler(c.zone)
	s.SingletonModeAll()

	if _, err := s.Every(c.tick).Do(func() { c.Tick() }); err != nil {
		return fmt.Errorf("error scheduling clock tick: %w", err)
	}

	if c.source != nil {
		_, err := s.Every(c.refresh).Do(func() {
			if err := c.RefreshWeather(ctx); err != nil {
				c.logger.Warnf("weather refresh failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("error scheduling weather refresh: %w", err)
		}
	}

	c.scheduler = s
	s.StartAsync()
	c.logger.Infof("clock started: tick every %v, weather %v", c.tick, c.source != nil)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		s.Stop()
		c.stop()
		c.logger.Info("clock stopped")
	}()

	return nil
}

// Tick computes and publishes a snapshot for the current instant.
func (c *Clock) Tick() *romantime.Snapshot {
	return c.TickAt(c.now())
}

// TickAt computes and publishes a snapshot for now, read in the configured
// zone.
func (c *Clock) TickAt(now time.Time) *romantime.Snapshot {
	s := romantime.Calculate(now.In(c.zone), *c.coord.Load())
	c.snapshot.Store(&s)
	return &s
}

// Snapshot returns the latest snapshot, or nil before the first tick.
func (c *Clock) Snapshot() *romantime.Snapshot {
	return c.snapshot.Load()
}

// Location returns the coordinate the clock keeps time for.
func (c *Clock) Location() romantime.GeoCoordinate {
	return *c.coord.Load()
}

// Zone returns the civil timezone of the clock.
func (c *Clock) Zone() *time.Location {
	return c.zone
}

// SetLocation moves the clock, recomputes immediately and, with weather
// enabled, starts a refresh for the new place. The timezone is unchanged.
// Once the clock has stopped, no refresh is started.
func (c *Clock) SetLocation(ctx context.Context, coord romantime.GeoCoordinate) *romantime.Snapshot {
	c.coord.Store(&coord)
	c.logger.Infof("location changed to %.4f, %.4f", coord.Latitude, coord.Longitude)
	s := c.Tick()

	if c.source != nil {
		c.goRefresh(ctx)
	}
	return s
}

func (c *Clock) goRefresh(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}

	c.refreshes.Add(1)
	go func() {
		defer c.refreshes.Done()
		if err := c.RefreshWeather(ctx); err != nil {
			c.logger.Warnf("weather refresh after location change failed: %v", err)
		}
	}()
}

// stop refuses new location refreshes and waits for those in flight
func (c *Clock) stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
	c.refreshes.Wait()
}

// Weather returns the last fetched report, or nil if weather is disabled or
// the last fetch failed.
func (c *Clock) Weather() *weather.Report {
	return c.weather.Load()
}

// RefreshWeather fetches weather for the current location. A failure clears
// the stored report. A result for a location that has since changed is
// discarded.
func (c *Clock) RefreshWeather(ctx context.Context) error {
	if c.source == nil {
		return nil
	}

	coord := c.coord.Load()
	report, err := c.source.Current(ctx, coord.Latitude, coord.Longitude)

	if c.coord.Load() != coord {
		c.logger.Debug("discarding weather for a previous location")
		return nil
	}

	if err != nil {
		c.weather.Store(nil)
		return err
	}
	c.weather.Store(report)
	c.logger.Debugf("weather: %s, %.1f°C", report.Description, report.Temperature)
	return nil
}
