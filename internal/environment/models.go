// Package environment aggregates the per-point environmental signals used
// by the risk scorer: elevation, slope, land cover, rainfall, soil type,
// vegetation index, and population density.
package environment

import (
	"errors"
	"time"
)

// Aggregation errors. Each adapter failure is wrapped with the stage name
// so the orchestrator can report which lookup failed.
var (
	ErrElevationUnavailable  = errors.New("elevation data unavailable")
	ErrLandCoverUnavailable  = errors.New("land cover data unavailable")
	ErrRainfallUnavailable   = errors.New("rainfall data unavailable")
	ErrPopulationUnavailable = errors.New("population density unavailable")
	ErrNotConfigured         = errors.New("provider not configured")
)

// Data source labels recorded in snapshot provenance.
const (
	SourceElevation     = "Open-Elevation API"
	SourceLandCover     = "OpenStreetMap Overpass"
	SourceRainfall      = "OpenWeather API"
	SourceSoil          = "DIY Soil Database (Real Data)"
	SourceNDVI          = "NDVI Research Data"
	SourceGeoNames      = "GeoNames"
	SourcePopulationBPS = "DIY Population Database (BPS 2023)"
)

// Snapshot is the aggregated environmental state of one coordinate.
// Immutable once built; cached copies differ only in Cached and
// ProcessingTime.
type Snapshot struct {
	// Elevation in meters, rounded to the nearest meter.
	Elevation float64 `json:"elevation"`

	// Slope in degrees, one decimal place.
	Slope float64 `json:"slope"`

	// LandCover is the dominant cover category around the point.
	LandCover string `json:"landCover"`

	// Rainfall is the estimated monthly total in mm.
	Rainfall float64 `json:"rainfall"`

	// SoilType is the dominant soil category for the district.
	SoilType string `json:"soilType"`

	// NDVI is the vegetation index (0.0-1.0), two decimal places.
	NDVI float64 `json:"ndvi"`

	// PopulationDensity in people per square kilometre.
	PopulationDensity float64 `json:"populationDensity"`

	// Resolution is the declared spatial resolution of the data.
	Resolution string `json:"resolution"`

	// Confidence is the aggregator's confidence in the snapshot (0-100).
	Confidence float64 `json:"confidence"`

	// ProcessingTime is how long the aggregation took.
	ProcessingTime time.Duration `json:"processingTime"`

	// Cached reports whether the snapshot was served from cache.
	Cached bool `json:"cached"`

	// DataSources lists the provenance of each contributing source, in
	// fetch order.
	DataSources []string `json:"dataSources"`
}
