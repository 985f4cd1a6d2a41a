package environment

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/region"
	"github.com/lerengaman/lerengaman/internal/telemetry"
)

// ElevationProvider fetches the elevation in meters for a coordinate.
type ElevationProvider interface {
	GetElevation(ctx context.Context, lat, lng float64) (float64, error)
	Name() string
}

// LandCoverProvider resolves the dominant land cover category around a
// coordinate.
type LandCoverProvider interface {
	GetLandCover(ctx context.Context, lat, lng float64) (string, error)
	Name() string
}

// RainfallProvider estimates the monthly rainfall in mm at a coordinate.
type RainfallProvider interface {
	GetMonthlyRainfall(ctx context.Context, lat, lng float64) (float64, error)
	Name() string
}

// PopulationProvider looks up the population density near a coordinate.
// It is optional: when absent or failing, the service falls back to the
// district density table.
type PopulationProvider interface {
	GetPopulationDensity(ctx context.Context, lat, lng float64) (float64, error)
	Name() string
}

// Nominal processing time reported for cache hits.
const cachedProcessingTime = 50 * time.Millisecond

// Fixed quality metadata for aggregated snapshots. The elevation source
// dominates, so its resolution is declared.
const (
	snapshotResolution = "30m"
	snapshotConfidence = 85
)

// ServiceConfig holds configuration for the aggregation service.
type ServiceConfig struct {
	Elevation  ElevationProvider
	LandCover  LandCoverProvider
	Rainfall   RainfallProvider
	Population PopulationProvider

	// Logger for service operations.
	Logger zerolog.Logger

	// CacheTTL is how long snapshots stay fresh (default: 30 minutes).
	CacheTTL time.Duration

	// Metrics records cache hits/misses and provider call durations.
	// Optional.
	Metrics *telemetry.ProviderMetrics
}

// Service aggregates environmental data for coordinates inside the DIY
// region, with a TTL cache keyed on the coordinate rounded to 4 decimals.
type Service struct {
	elevation  ElevationProvider
	landCover  LandCoverProvider
	rainfall   RainfallProvider
	population PopulationProvider
	logger     zerolog.Logger
	cacheTTL   time.Duration
	metrics    *telemetry.ProviderMetrics

	mu    sync.RWMutex
	cache map[string]*cachedSnapshot
}

type cachedSnapshot struct {
	snapshot  *Snapshot
	fetchedAt time.Time
	expiresAt time.Time
}

// NewService creates a new aggregation service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 30 * time.Minute
	}

	return &Service{
		elevation:  cfg.Elevation,
		landCover:  cfg.LandCover,
		rainfall:   cfg.Rainfall,
		population: cfg.Population,
		logger:     cfg.Logger,
		cacheTTL:   cacheTTL,
		metrics:    cfg.Metrics,
		cache:      make(map[string]*cachedSnapshot),
	}
}

// Aggregate returns the environmental snapshot for a coordinate. A live
// cache entry is returned immediately with the cache flag set and a fixed
// nominal processing time. Otherwise every adapter runs; if any fails, the
// whole aggregation fails and nothing is cached.
func (s *Service) Aggregate(ctx context.Context, lat, lng float64) (*Snapshot, error) {
	key := cacheKey(lat, lng)

	s.mu.RLock()
	if cached, ok := s.cache[key]; ok && time.Now().Before(cached.expiresAt) {
		s.mu.RUnlock()
		if s.metrics != nil {
			s.metrics.RecordCacheHit("environment", "aggregate")
		}
		hit := *cached.snapshot
		hit.Cached = true
		hit.ProcessingTime = cachedProcessingTime
		s.logger.Debug().
			Str("cache_key", key).
			Msg("serving cached environmental snapshot")
		return &hit, nil
	}
	s.mu.RUnlock()

	if s.metrics != nil {
		s.metrics.RecordCacheMiss("environment", "aggregate")
	}

	snapshot, err := s.fetch(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.mu.Lock()
	s.cache[key] = &cachedSnapshot{
		snapshot:  snapshot,
		fetchedAt: now,
		expiresAt: now.Add(s.cacheTTL),
	}
	s.mu.Unlock()

	return snapshot, nil
}

// fetch runs every adapter for one coordinate. Elevation runs first because
// the slope derivation needs it; the remaining lookups are independent.
func (s *Service) fetch(ctx context.Context, lat, lng float64) (*Snapshot, error) {
	start := time.Now()
	dataSources := make([]string, 0, 6)

	s.logger.Info().
		Float64("lat", lat).
		Float64("lng", lng).
		Msg("fetching environmental data")

	elevation, err := s.fetchElevation(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrElevationUnavailable, err)
	}
	dataSources = append(dataSources, SourceElevation)

	slope := region.SlopeAt(lat, lng, elevation)

	landCover, err := s.fetchLandCover(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLandCoverUnavailable, err)
	}
	dataSources = append(dataSources, SourceLandCover)

	rainfall, err := s.fetchRainfall(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRainfallUnavailable, err)
	}
	dataSources = append(dataSources, SourceRainfall)

	soilType, err := region.DominantSoil(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("soil type: %w", err)
	}
	dataSources = append(dataSources, SourceSoil)

	ndvi := region.NDVIAt(lat, lng)
	dataSources = append(dataSources, SourceNDVI)

	populationDensity, populationSource, err := s.fetchPopulation(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPopulationUnavailable, err)
	}
	dataSources = append(dataSources, populationSource)

	snapshot := &Snapshot{
		Elevation:         math.Round(elevation),
		Slope:             slope,
		LandCover:         landCover,
		Rainfall:          math.Round(rainfall),
		SoilType:          soilType,
		NDVI:              math.Round(ndvi*100) / 100,
		PopulationDensity: math.Round(populationDensity),
		Resolution:        snapshotResolution,
		Confidence:        snapshotConfidence,
		ProcessingTime:    time.Since(start),
		Cached:            false,
		DataSources:       dataSources,
	}

	s.logger.Info().
		Float64("elevation", snapshot.Elevation).
		Float64("slope", snapshot.Slope).
		Str("land_cover", snapshot.LandCover).
		Float64("rainfall", snapshot.Rainfall).
		Str("soil_type", snapshot.SoilType).
		Dur("duration", snapshot.ProcessingTime).
		Msg("environmental data aggregated")

	return snapshot, nil
}

func (s *Service) fetchElevation(ctx context.Context, lat, lng float64) (float64, error) {
	if s.elevation == nil {
		return 0, ErrNotConfigured
	}
	return s.timed("elevation", func() (float64, error) {
		return s.elevation.GetElevation(ctx, lat, lng)
	})
}

func (s *Service) fetchLandCover(ctx context.Context, lat, lng float64) (string, error) {
	if s.landCover == nil {
		return "", ErrNotConfigured
	}
	start := time.Now()
	cover, err := s.landCover.GetLandCover(ctx, lat, lng)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.landCover.Name(), "land_cover", time.Since(start), err)
	}
	return cover, err
}

func (s *Service) fetchRainfall(ctx context.Context, lat, lng float64) (float64, error) {
	if s.rainfall == nil {
		return 0, ErrNotConfigured
	}
	return s.timed("rainfall", func() (float64, error) {
		return s.rainfall.GetMonthlyRainfall(ctx, lat, lng)
	})
}

// fetchPopulation tries the place-lookup provider first, then falls back
// to the district density table. It only fails when both paths fail.
func (s *Service) fetchPopulation(ctx context.Context, lat, lng float64) (float64, string, error) {
	if s.population != nil {
		density, err := s.timed("population", func() (float64, error) {
			return s.population.GetPopulationDensity(ctx, lat, lng)
		})
		if err == nil {
			return density, SourceGeoNames, nil
		}
		s.logger.Warn().Err(err).Msg("place lookup failed, using district density table")
	}

	density, err := region.PopulationDensity(lat, lng)
	if err != nil {
		return 0, "", err
	}
	return density, SourcePopulationBPS, nil
}

func (s *Service) timed(operation string, fn func() (float64, error)) (float64, error) {
	start := time.Now()
	v, err := fn()
	if s.metrics != nil {
		s.metrics.RecordRequest("environment", operation, time.Since(start), err)
	}
	return v, err
}

// cacheKey rounds the coordinate to 4 decimal places (~11m), matching the
// effective resolution of the underlying data.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}

// CacheStats contains cache statistics for the health surface.
type CacheStats struct {
	Entries      int           `json:"entries"`
	FreshEntries int           `json:"freshEntries"`
	TTL          time.Duration `json:"ttl"`
}

// CacheStats returns current cache statistics.
func (s *Service) CacheStats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	fresh := 0
	for _, c := range s.cache {
		if now.Before(c.expiresAt) {
			fresh++
		}
	}

	return CacheStats{
		Entries:      len(s.cache),
		FreshEntries: fresh,
		TTL:          s.cacheTTL,
	}
}

// InvalidateCache clears all cached snapshots.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*cachedSnapshot)
}
