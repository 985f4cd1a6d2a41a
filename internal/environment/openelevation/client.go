// Package openelevation implements the elevation provider backed by the
// Open-Elevation public API.
package openelevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

const (
	// ProviderName identifies this elevation provider.
	ProviderName = "open-elevation"

	// DefaultBaseURL is the Open-Elevation API base URL.
	DefaultBaseURL = "https://api.open-elevation.com"

	// DefaultTimeout bounds a single lookup request.
	DefaultTimeout = 10 * time.Second
)

// ClientConfig holds configuration for the Open-Elevation client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public API).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with adapter defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Open-Elevation API client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Open-Elevation client.
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
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetElevation fetches the elevation in meters for a coordinate.
func (c *Client) GetElevation(ctx context.Context, lat, lng float64) (float64, error) {
	body, err := json.Marshal(lookupRequest{
		Locations: []location{{Latitude: lat, Longitude: lng}},
	})
	if err != nil {
		return 0, fmt.Errorf("encoding request: %w", err)
	}

	url := c.baseURL + "/api/v1/lookup"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var lookupResp lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&lookupResp); err != nil {
		return 0, fmt.Errorf("decoding response: %w", err)
	}

	if len(lookupResp.Results) == 0 {
		return 0, fmt.Errorf("no elevation result for %.4f,%.4f", lat, lng)
	}

	return lookupResp.Results[0].Elevation, nil
}

// Open-Elevation API request/response structures.

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupRequest struct {
	Locations []location `json:"locations"`
}

type lookupResponse struct {
	Results []struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}
