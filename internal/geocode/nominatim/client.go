// Package nominatim implements reverse geocoding against the OpenStreetMap
// Nominatim API, formatting results as Indonesian address hierarchies.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/geocode"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoder.
	ProviderName = "nominatim"

	// DefaultBaseURL is the public Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"

	// DefaultTimeout bounds a single reverse lookup.
	DefaultTimeout = 5 * time.Second

	// userAgent is required by the Nominatim usage policy.
	userAgent = "lerengaman-api/1.0"

	// defaultProvince is reported when the geocoder returns no state.
	defaultProvince = "Daerah Istimewa Yogyakarta"

	// reverseZoom targets village-level detail.
	reverseZoom = 16
)

// ClientConfig holds configuration for the Nominatim client.
type ClientConfig struct {
	// BaseURL is the Nominatim base URL (optional, defaults to the
	// public instance).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with adapter defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Nominatim reverse geocoding client.
type Client struct {
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Nominatim client.
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

// ReverseGeocode resolves a coordinate into Indonesian address details.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*geocode.AddressDetails, error) {
	url := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f&zoom=%d&addressdetails=1&accept-language=id",
		c.baseURL, lat, lng, reverseZoom)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var nmResp reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&nmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(nmResp.Address) == 0 {
		return nil, geocode.ErrNoAddressData
	}

	return &geocode.AddressDetails{
		Full:       buildHierarchy(nmResp.Address),
		Display:    buildDisplay(nmResp.Address),
		Components: nmResp.Address,
		Source:     geocode.SourceNominatim,
	}, nil
}

// buildHierarchy joins the address components into one line, most specific
// first, with Indonesian administrative prefixes.
func buildHierarchy(addr map[string]string) string {
	parts := make([]string, 0, 8)

	if v := addr["building"]; v != "" {
		parts = append(parts, v)
	}
	if v := addr["road"]; v != "" {
		parts = append(parts, "Jalan "+v)
	}

	if v := addr["hamlet"]; v != "" {
		parts = append(parts, "Dusun "+v)
	}
	switch {
	case addr["village"] != "":
		parts = append(parts, "Desa "+addr["village"])
	case addr["neighbourhood"] != "":
		parts = append(parts, "Perumahan "+addr["neighbourhood"])
	case addr["suburb"] != "":
		parts = append(parts, "Kelurahan "+addr["suburb"])
	}

	if v := addr["city_district"]; v != "" {
		parts = append(parts, "Kecamatan "+v)
	}

	switch {
	case addr["city"] != "":
		parts = append(parts, addr["city"])
	case addr["town"] != "":
		parts = append(parts, "Kota "+addr["town"])
	case addr["county"] != "":
		parts = append(parts, "Kabupaten "+addr["county"])
	}

	if v := addr["state"]; v != "" {
		parts = append(parts, v)
	} else {
		parts = append(parts, defaultProvince)
	}

	if v := addr["postcode"]; v != "" {
		parts = append(parts, "Kode Pos "+v)
	}

	return strings.Join(parts, ", ")
}

// buildDisplay formats the address as UI lines. The province and postcode
// share the final line.
func buildDisplay(addr map[string]string) []string {
	lines := make([]string, 0, 5)

	switch {
	case addr["road"] != "":
		lines = append(lines, "Jalan "+addr["road"])
	case addr["building"] != "":
		lines = append(lines, addr["building"])
	}

	switch {
	case addr["hamlet"] != "":
		lines = append(lines, "Dusun "+addr["hamlet"])
	case addr["village"] != "":
		lines = append(lines, "Desa "+addr["village"])
	case addr["suburb"] != "":
		lines = append(lines, "Kelurahan "+addr["suburb"])
	}

	if v := addr["city_district"]; v != "" {
		lines = append(lines, "Kecamatan "+v)
	}

	switch {
	case addr["city"] != "":
		lines = append(lines, addr["city"])
	case addr["town"] != "":
		lines = append(lines, "Kota "+addr["town"])
	case addr["county"] != "":
		lines = append(lines, "Kabupaten "+addr["county"])
	}

	province := addr["state"]
	if province == "" {
		province = defaultProvince
	}
	if v := addr["postcode"]; v != "" {
		province += " - Kode Pos " + v
	}
	lines = append(lines, province)

	return lines
}

// Nominatim API response structure.

type reverseResponse struct {
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}
