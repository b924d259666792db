package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

func parseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	config := Default()

	if loc := yamlConfig.Location; loc != nil {
		if (loc.Latitude == nil) != (loc.Longitude == nil) {
			return nil, ErrMissingLocation
		}
		if loc.Latitude != nil {
			config.Location.Latitude = *loc.Latitude
			config.Location.Longitude = *loc.Longitude
		}
		if loc.Name != "" {
			config.Location.Name = loc.Name
		}
		if loc.Timezone != "" {
			config.Location.Timezone = loc.Timezone
		}
	}

	if yamlConfig.TickInterval != "" {
		config.TickInterval = yamlConfig.TickInterval
	}

	if rest := yamlConfig.REST; rest != nil {
		config.REST.Cert = rest.Cert
		config.REST.Key = rest.Key
		config.REST.ListenAddr = rest.ListenAddr
		if rest.Port != 0 {
			config.REST.Port = rest.Port
		}
	}

	if g := yamlConfig.GRPC; g != nil {
		config.GRPC.Enabled = g.Enabled
	}

	if w := yamlConfig.Weather; w != nil {
		config.Weather.Enabled = w.Enabled
		if w.APIEndpoint != "" {
			config.Weather.APIEndpoint = w.APIEndpoint
		}
		if w.RefreshInterval != "" {
			config.Weather.RefreshInterval = w.RefreshInterval
		}
		if w.Timeout != "" {
			config.Weather.Timeout = w.Timeout
		}
	}

	if a := yamlConfig.Almanac; a != nil {
		if a.Backend != "" {
			config.Almanac.Backend = a.Backend
		}
		config.Almanac.Path = a.Path
		config.Almanac.ConnectionString = a.ConnectionString
	}

	return config, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type ConfigYAML struct {
	Location     *LocationYAML `yaml:"location,omitempty"`
	TickInterval string        `yaml:"tick-interval,omitempty"`
	REST         *RESTYAML     `yaml:"rest,omitempty"`
	GRPC         *GRPCYAML     `yaml:"grpc,omitempty"`
	Weather      *WeatherYAML  `yaml:"weather,omitempty"`
	Almanac      *AlmanacYAML  `yaml:"almanac,omitempty"`
}

type LocationYAML struct {
	Name      string   `yaml:"name,omitempty"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
	Timezone  string   `yaml:"timezone,omitempty"`
}

type RESTYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
}

type GRPCYAML struct {
	Enabled bool `yaml:"enabled"`
}

type WeatherYAML struct {
	Enabled         bool   `yaml:"enabled"`
	APIEndpoint     string `yaml:"api-endpoint,omitempty"`
	RefreshInterval string `yaml:"refresh-interval,omitempty"`
	Timeout         string `yaml:"timeout,omitempty"`
}

type AlmanacYAML struct {
	Backend          string `yaml:"backend,omitempty"`
	Path             string `yaml:"path,omitempty"`
	ConnectionString string `yaml:"connection-string,omitempty"`
}
