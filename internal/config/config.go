// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all externally supplied configuration. It is read once at
// process start and passed by value to the components that need it.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// Bounds is the supported analysis region (DIY, Yogyakarta).
	SouthWestLat float64
	SouthWestLng float64
	NorthEastLat float64
	NorthEastLng float64

	// CacheTTL is how long aggregated environmental snapshots stay fresh.
	CacheTTL time.Duration

	// External service endpoints.
	ElevationURL string
	OverpassURL  string
	NominatimURL string

	// External service credentials.
	OpenWeatherAPIKey string
	GeoNamesUsername  string

	// Per-call timeouts.
	ElevationTimeout  time.Duration
	LandCoverTimeout  time.Duration
	RainfallTimeout   time.Duration
	AddressTimeout    time.Duration
	PopulationTimeout time.Duration
}

// FromEnv creates a Config from environment variables, applying defaults
// for everything except credentials.
func FromEnv() Config {
	return Config{
		Port:              getEnvOrDefault("APP_PORT", "8080"),
		SouthWestLat:      getEnvFloat("DIY_SOUTHWEST_LAT", -8.35),
		SouthWestLng:      getEnvFloat("DIY_SOUTHWEST_LNG", 109.95),
		NorthEastLat:      getEnvFloat("DIY_NORTHEAST_LAT", -7.35),
		NorthEastLng:      getEnvFloat("DIY_NORTHEAST_LNG", 110.85),
		CacheTTL:          getEnvDuration("CACHE_TTL", 30*time.Minute),
		ElevationURL:      os.Getenv("ELEVATION_API_URL"),
		OverpassURL:       os.Getenv("OVERPASS_URL"),
		NominatimURL:      os.Getenv("NOMINATIM_URL"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		GeoNamesUsername:  os.Getenv("GEONAMES_USERNAME"),
		ElevationTimeout:  getEnvDuration("ELEVATION_TIMEOUT", 10*time.Second),
		LandCoverTimeout:  getEnvDuration("LANDCOVER_TIMEOUT", 10*time.Second),
		RainfallTimeout:   getEnvDuration("RAINFALL_TIMEOUT", 8*time.Second),
		AddressTimeout:    getEnvDuration("ADDRESS_TIMEOUT", 5*time.Second),
		PopulationTimeout: getEnvDuration("POPULATION_TIMEOUT", 5*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
