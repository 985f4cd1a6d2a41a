// Package geonames implements the population provider backed by the
// GeoNames findNearby API.
package geonames

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

const (
	// ProviderName identifies this population provider.
	ProviderName = "geonames"

	// DefaultBaseURL is the GeoNames API base URL.
	DefaultBaseURL = "http://api.geonames.org"

	// DefaultTimeout bounds a single lookup request.
	DefaultTimeout = 5 * time.Second

	// areaEstimateKm2 is the assumed catchment area when deriving a
	// density from a place's raw population count.
	areaEstimateKm2 = 100

	// minDensity floors the derived density.
	minDensity = 100
)

// ErrNoPopulation is returned when the nearest place carries no
// population figure.
var ErrNoPopulation = errors.New("nearest place has no population data")

// ClientConfig holds configuration for the GeoNames client.
type ClientConfig struct {
	// Username is the GeoNames account username (required).
	Username string

	// BaseURL is the API base URL (optional, defaults to GeoNames).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with adapter defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a GeoNames API client.
type Client struct {
	username   string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new GeoNames client.
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
		username:   cfg.Username,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetPopulationDensity derives a population density from the nearest
// populated place. The place's raw population is spread over an assumed
// 100 square kilometre catchment area, floored at 100 people per km2.
func (c *Client) GetPopulationDensity(ctx context.Context, lat, lng float64) (float64, error) {
	reqURL := fmt.Sprintf("%s/findNearbyJSON?lat=%.6f&lng=%.6f&username=%s&maxRows=1",
		c.baseURL, lat, lng, url.QueryEscape(c.username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
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

	var gnResp findNearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&gnResp); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	if len(gnResp.GeoNames) == 0 || gnResp.GeoNames[0].Population == 0 {
		return 0, ErrNoPopulation
	}

	place := gnResp.GeoNames[0]
	density := math.Max(minDensity, float64(place.Population)/areaEstimateKm2)

	c.logger.Debug().
		Str("place", place.Name).
		Int64("population", place.Population).
		Float64("density", density).
		Msg("derived population density from nearest place")

	return density, nil
}

// GeoNames API response structures.

type findNearbyResponse struct {
	GeoNames []struct {
		Name        string `json:"name"`
		CountryName string `json:"countryName"`
		AdminName1  string `json:"adminName1"`
		Population  int64  `json:"population"`
		FcodeName   string `json:"fcodeName"`
	} `json:"geonames"`
}
