// Package openweather implements the rainfall provider backed by the
// OpenWeather API. Monthly rainfall is extrapolated from current
// precipitation, falling back to the 5-day forecast when the current
// observation reports no rain.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

const (
	// ProviderName identifies this rainfall provider.
	ProviderName = "openweather"

	// DefaultBaseURL is the OpenWeather API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultTimeout bounds a single weather request.
	DefaultTimeout = 8 * time.Second

	// hoursPerDay * daysPerMonth extrapolates an hourly rate to a month.
	monthlyHours = 24 * 30
)

// ErrNoRainfallData is returned when neither the current observation nor
// the forecast carries precipitation data.
var ErrNoRainfallData = errors.New("no rainfall data available")

// ClientConfig holds configuration for the OpenWeather client.
type ClientConfig struct {
	// APIKey is the OpenWeather API key (required).
	APIKey string

	// BaseURL is the API base URL (optional, defaults to OpenWeather).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with adapter defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeather API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.AdapterClientConfig(ProviderName, DefaultTimeout))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetMonthlyRainfall estimates the monthly rainfall in mm at a coordinate.
// The current observation's hourly rate is preferred; a zero observation
// falls back to the average forecast rate.
func (c *Client) GetMonthlyRainfall(ctx context.Context, lat, lng float64) (float64, error) {
	current, err := c.getCurrentWeather(ctx, lat, lng)
	if err != nil {
		return 0, err
	}

	rainfall := 0.0
	switch {
	case current.Rain.OneHour > 0:
		rainfall = current.Rain.OneHour * monthlyHours
	case current.Rain.ThreeHours > 0:
		rainfall = current.Rain.ThreeHours / 3 * monthlyHours
	}

	if rainfall == 0 {
		rainfall, err = c.getForecastRainfall(ctx, lat, lng)
		if err != nil {
			return 0, err
		}
	}

	return math.Max(0, rainfall), nil
}

func (c *Client) getCurrentWeather(ctx context.Context, lat, lng float64) (*currentWeatherResponse, error) {
	url := fmt.Sprintf("%s/weather?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		c.baseURL, lat, lng, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owResp currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &owResp, nil
}

// getForecastRainfall averages the 3-hour precipitation over the 5-day
// forecast and extrapolates it to a month.
func (c *Client) getForecastRainfall(ctx context.Context, lat, lng float64) (float64, error) {
	url := fmt.Sprintf("%s/forecast?lat=%.6f&lon=%.6f&appid=%s&units=metric",
		c.baseURL, lat, lng, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var owResp forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&owResp); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	total := 0.0
	count := 0
	for _, entry := range owResp.List {
		if entry.Rain.ThreeHours > 0 {
			total += entry.Rain.ThreeHours
			count++
		}
	}

	if count == 0 {
		return 0, ErrNoRainfallData
	}

	avg := total / float64(count)
	return avg / 3 * monthlyHours, nil
}

// OpenWeather API response structures.

type rainVolume struct {
	OneHour    float64 `json:"1h"`
	ThreeHours float64 `json:"3h"`
}

type currentWeatherResponse struct {
	Rain rainVolume `json:"rain"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64      `json:"dt"`
		Rain rainVolume `json:"rain"`
	} `json:"list"`
}
