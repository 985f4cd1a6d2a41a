// Package overpass implements the land-cover provider backed by the
// OpenStreetMap Overpass API. The dominant land cover is derived from the
// most frequent land-use tag on ways within 500m of the coordinate.
package overpass

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	overpassapi "github.com/serjvanilla/go-overpass"
)

const (
	// ProviderName identifies this land-cover provider.
	ProviderName = "overpass"

	// DefaultEndpoint is the public Overpass API interpreter endpoint.
	DefaultEndpoint = "https://overpass-api.de/api/interpreter"

	// DefaultTimeout bounds a single Overpass query.
	DefaultTimeout = 10 * time.Second

	// queryRadius is the search radius in meters around the coordinate.
	queryRadius = 500
)

// ErrNoFeatures is returned when the query yields no mapped features
// around the coordinate.
var ErrNoFeatures = errors.New("no land use features around coordinate")

// landCoverLabels maps OSM land-use values to Indonesian land cover
// categories.
var landCoverLabels = map[string]string{
	"residential":       "Permukiman",
	"building":          "Permukiman",
	"commercial":        "Komersial",
	"industrial":        "Industri",
	"farmland":          "Lahan Pertanian",
	"orchard":           "Lahan Pertanian",
	"farmyard":          "Halaman Ternak",
	"forest":            "Hutan",
	"wood":              "Hutan",
	"water":             "Badan Air",
	"meadow":            "Padang Rumput",
	"grass":             "Rumput",
	"vineyard":          "Kebun Anggur",
	"allotments":        "Lahan Kebun",
	"recreation_ground": "Rekreasi",
	"village_green":     "Lapangan Desa",
	"cemetery":          "Pemakaman",
	"military":          "Militer",
	"quarry":            "Tambang",
	"railway":           "Rel Kereta",
	"brownfield":        "Lahan Terbengkalai",
	"greenfield":        "Lahan Hijau",
	"landfill":          "TPA",
	"construction":      "Konstruksi",
}

// defaultLabel is reported for OSM values without a mapping.
const defaultLabel = "Area Terbuka"

// ClientConfig holds configuration for the Overpass client.
type ClientConfig struct {
	// Endpoint is the Overpass interpreter URL (optional, defaults to the
	// public instance).
	Endpoint string

	// Timeout bounds a single query (optional).
	Timeout time.Duration

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an Overpass API land-cover client.
type Client struct {
	client *overpassapi.Client
	logger zerolog.Logger
}

// NewClient creates a new Overpass client.
func NewClient(cfg ClientConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	client := overpassapi.NewWithSettings(endpoint, 2, httpClient)

	return &Client{
		client: &client,
		logger: cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetLandCover resolves the dominant land cover label around a coordinate.
func (c *Client) GetLandCover(ctx context.Context, lat, lng float64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := c.client.Query(c.buildQuery(lat, lng))
	if err != nil {
		return "", fmt.Errorf("overpass query: %w", err)
	}

	tag, count := dominantTag(&result)
	if count == 0 {
		return "", ErrNoFeatures
	}

	label, ok := landCoverLabels[tag]
	if !ok {
		label = defaultLabel
	}

	c.logger.Debug().
		Str("tag", tag).
		Int("count", count).
		Str("land_cover", label).
		Msg("resolved dominant land cover")

	return label, nil
}

func (c *Client) buildQuery(lat, lng float64) string {
	return fmt.Sprintf(`
		[out:json][timeout:25];
		(
			way["landuse"](around:%d,%f,%f);
			way["natural"](around:%d,%f,%f);
			way["leisure"](around:%d,%f,%f);
			way["highway"](around:%d,%f,%f);
			way["building"](around:%d,%f,%f);
			way["water"](around:%d,%f,%f);
		);
		out body;
		>;
		out skel qt;
	`,
		queryRadius, lat, lng,
		queryRadius, lat, lng,
		queryRadius, lat, lng,
		queryRadius, lat, lng,
		queryRadius, lat, lng,
		queryRadius, lat, lng)
}

// dominantTag tallies the land-use related tags over all returned ways and
// picks the most frequent value. Ties break on the lexicographically
// smaller value so results are stable.
func dominantTag(result *overpassapi.Result) (string, int) {
	counts := make(map[string]int)
	for _, way := range result.Ways {
		for key, value := range way.Tags {
			switch key {
			case "landuse", "natural", "leisure":
				counts[value]++
			case "building":
				counts["building"]++
			case "highway":
				counts["highway"]++
			case "water":
				counts["water"]++
			}
		}
	}

	var dominant string
	var best int
	for value, n := range counts {
		if n > best || (n == best && n > 0 && value < dominant) {
			dominant = value
			best = n
		}
	}
	return dominant, best
}
