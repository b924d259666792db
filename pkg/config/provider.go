package config

import (
	"errors"
	"fmt"
	"time"
	// zone names must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// ErrGRPCWithTLS is returned when gRPC is enabled on a REST server that
// terminates TLS itself.
var ErrGRPCWithTLS = errors.New("grpc shares the REST listener and cannot be combined with rest.cert and rest.key")

// ErrMissingLocation is returned when a location section names only one of
// latitude and longitude.
var ErrMissingLocation = errors.New("location needs both latitude and longitude")

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	IsReadOnly() bool
	Close() error
}

// Defaults applied to any setting the source leaves empty
const (
	DefaultLocationName    = "Basel"
	DefaultLatitude        = 47.5632
	DefaultLongitude       = 7.5744
	DefaultTimezone        = "Europe/Zurich"
	DefaultTickInterval    = "1s"
	DefaultRESTPort        = 8080
	DefaultWeatherEndpoint = "https://api.open-meteo.com/v1/forecast"
	DefaultWeatherRefresh  = "30m"
	DefaultWeatherTimeout  = "10s"
	DefaultAlmanacBackend  = "yaml"
)

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Location     LocationData   `json:"location"`
	TickInterval string         `json:"tick_interval,omitempty"`
	REST         RESTServerData `json:"rest"`
	GRPC         GRPCData       `json:"grpc"`
	Weather      WeatherData    `json:"weather"`
	Almanac      AlmanacData    `json:"almanac"`
}

// LocationData is the place the clock keeps time for. Timezone is an IANA
// zone name; it is never derived from the coordinates.
type LocationData struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone,omitempty"`
}

type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
}

// GRPCData enables the gRPC service. It shares the REST listener, so it
// needs a cleartext REST server.
type GRPCData struct {
	Enabled bool `json:"enabled"`
}

type WeatherData struct {
	Enabled         bool   `json:"enabled"`
	APIEndpoint     string `json:"api_endpoint,omitempty"`
	RefreshInterval string `json:"refresh_interval,omitempty"`
	Timeout         string `json:"timeout,omitempty"`
}

// AlmanacData selects the day-status and history backend. Path is used by
// the yaml and sqlite backends, ConnectionString by postgres.
type AlmanacData struct {
	Backend          string `json:"backend,omitempty"`
	Path             string `json:"path,omitempty"`
	ConnectionString string `json:"connection_string,omitempty"`
}

// Default returns a configuration with every default filled in.
func Default() *ConfigData {
	c := &ConfigData{
		Location: LocationData{
			Latitude:  DefaultLatitude,
			Longitude: DefaultLongitude,
		},
	}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills empty settings. Coordinates are left alone; a source
// without a location section should start from Default instead.
func (c *ConfigData) ApplyDefaults() {
	if c.Location.Name == "" {
		c.Location.Name = DefaultLocationName
	}
	if c.Location.Timezone == "" {
		c.Location.Timezone = DefaultTimezone
	}
	if c.TickInterval == "" {
		c.TickInterval = DefaultTickInterval
	}
	if c.REST.Port == 0 {
		c.REST.Port = DefaultRESTPort
	}
	if c.Weather.APIEndpoint == "" {
		c.Weather.APIEndpoint = DefaultWeatherEndpoint
	}
	if c.Weather.RefreshInterval == "" {
		c.Weather.RefreshInterval = DefaultWeatherRefresh
	}
	if c.Weather.Timeout == "" {
		c.Weather.Timeout = DefaultWeatherTimeout
	}
	if c.Almanac.Backend == "" {
		c.Almanac.Backend = DefaultAlmanacBackend
	}
}

// Validate checks that every duration and the timezone parse.
func (c *ConfigData) Validate() error {
	if _, err := c.Zone(); err != nil {
		return err
	}
	if c.GRPC.Enabled && (c.REST.Cert != "" || c.REST.Key != "") {
		return ErrGRPCWithTLS
	}
	for name, v := range map[string]string{
		"tick-interval":            c.TickInterval,
		"weather.refresh-interval": c.Weather.RefreshInterval,
		"weather.timeout":          c.Weather.Timeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s %q: must be positive", name, v)
		}
	}
	return nil
}

// Zone loads the configured timezone.
func (c *ConfigData) Zone() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Location.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Location.Timezone, err)
	}
	return loc, nil
}

// TickDuration returns the snapshot recomputation interval.
func (c *ConfigData) TickDuration() time.Duration {
	return parseDurationOr(c.TickInterval, time.Second)
}

// RefreshDuration returns the weather refresh interval.
func (w WeatherData) RefreshDuration() time.Duration {
	return parseDurationOr(w.RefreshInterval, 30*time.Minute)
}

// TimeoutDuration returns the weather request timeout.
func (w WeatherData) TimeoutDuration() time.Duration {
	return parseDurationOr(w.Timeout, 10*time.Second)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
