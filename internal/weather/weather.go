// Package weather fetches current conditions from the Open-Meteo forecast API
// and describes them in Latin.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chrissnell/horologium/pkg/config"
	"go.uber.org/zap"
)

// Condition is the coarse sky state used to pick a display style.
type Condition string

const (
	Clear  Condition = "clear"
	Cloudy Condition = "cloudy"
	Rain   Condition = "rain"
	Snow   Condition = "snow"
	Storm  Condition = "storm"
	Fog    Condition = "fog"
)

// Report is the current weather at a location.
type Report struct {
	Temperature float64   `json:"temperature"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Code        int       `json:"code"`
}

type codeInfo struct {
	condition   Condition
	description string
}

// WMO weather interpretation codes
var wmoCodes = map[int]codeInfo{
	0:  {Clear, "Caelum Serenum"},
	1:  {Clear, "Caelum Placitum"},
	2:  {Cloudy, "Nubes Sparsae"},
	3:  {Cloudy, "Nubilum"},
	45: {Fog, "Nebula"},
	48: {Fog, "Nebula Gelida"},
	51: {Rain, "Pluvia Levis"},
	53: {Rain, "Pluvia Modica"},
	55: {Rain, "Pluvia Gravis"},
	56: {Rain, "Pluvia Gelida Levis"},
	57: {Rain, "Pluvia Gelida Gravis"},
	61: {Rain, "Imber Levis"},
	63: {Rain, "Imber Modicus"},
	65: {Rain, "Imber Gravis"},
	66: {Rain, "Imber Gelidus Levis"},
	67: {Rain, "Imber Gelidus Gravis"},
	71: {Snow, "Nix Levis"},
	73: {Snow, "Nix Modica"},
	75: {Snow, "Nix Gravis"},
	77: {Snow, "Granula Nivis"},
	80: {Rain, "Nimbi Pluvii"},
	81: {Rain, "Nimbi Pluvii Graves"},
	82: {Rain, "Nimbi Pluvii Violenti"},
	85: {Snow, "Nimbi Nivales"},
	86: {Snow, "Nimbi Nivales Graves"},
	95: {Storm, "Tempestas"},
	96: {Storm, "Tempestas cum Grandine"},
	99: {Storm, "Tempestas Saeva"},
}

// Describe maps a WMO code to a condition and Latin description. Unknown
// codes are reported as clear.
func Describe(code int) (Condition, string) {
	if info, ok := wmoCodes[code]; ok {
		return info.condition, info.description
	}
	return Clear, "Caelum Ignotum"
}

type forecastResponse struct {
	CurrentWeather *struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Client talks to an Open-Meteo compatible forecast endpoint.
type Client struct {
	endpoint string
	client   *http.Client
	logger   *zap.SugaredLogger
}

// NewClient creates a client from the weather section of the config.
func NewClient(cfg config.WeatherData, logger *zap.SugaredLogger) *Client {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = config.DefaultWeatherEndpoint
	}
	return &Client{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		logger: logger,
	}
}

// Current fetches the current weather at lat/lon. Any failure returns a nil
// report; there are no retries.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*Report, error) {
	v := url.Values{}
	v.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	v.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	v.Set("current_weather", "true")

	reqURL := c.endpoint + "?" + v.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating Open-Meteo request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching weather: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	c.logger.Debugf("Open-Meteo responded %d in %v", resp.StatusCode, time.Since(start))

	var fr forecastResponse
	if resp.StatusCode != http.StatusOK {
		// Open-Meteo explains 4xx errors in the body
		if json.Unmarshal(bodyBytes, &fr) == nil && fr.Reason != "" {
			return nil, fmt.Errorf("weather request failed with status %d: %s", resp.StatusCode, fr.Reason)
		}
		return nil, fmt.Errorf("weather request failed with status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(bodyBytes, &fr); err != nil {
		return nil, fmt.Errorf("error decoding weather response: %w", err)
	}
	if fr.CurrentWeather == nil {
		return nil, fmt.Errorf("weather response has no current_weather")
	}

	condition, description := Describe(fr.CurrentWeather.WeatherCode)
	return &Report{
		Temperature: fr.CurrentWeather.Temperature,
		Condition:   condition,
		Description: description,
		Code:        fr.CurrentWeather.WeatherCode,
	}, nil
}
