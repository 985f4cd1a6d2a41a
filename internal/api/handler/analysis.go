package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lerengaman/lerengaman/internal/api/middleware"
	"github.com/lerengaman/lerengaman/internal/api/models"
	"github.com/lerengaman/lerengaman/internal/api/response"
	"github.com/lerengaman/lerengaman/internal/environment"
	"github.com/lerengaman/lerengaman/internal/geocode"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
	"github.com/lerengaman/lerengaman/internal/region"
	"github.com/lerengaman/lerengaman/internal/risk"
)

// analysisRequires lists the preconditions reported with failed analyses.
var analysisRequires = []string{
	"Koordinat dalam wilayah DIY",
	"Koneksi internet untuk API eksternal",
	"API keys yang valid (OpenWeather, GeoNames)",
	"Konfigurasi URL API (Elevation, Nominatim, Overpass)",
}

// analysisNote states the live-data contract on every failure response.
const analysisNote = "Sistem ini menggunakan 100% data real. Tidak ada simulasi atau fallback data."

// ServiceAvailability reports which external services are configured.
type ServiceAvailability struct {
	Elevation   bool
	Overpass    bool
	OpenWeather bool
	GeoNames    bool
	Nominatim   bool
}

// AllConfigured reports whether every required service is configured.
func (a ServiceAvailability) AllConfigured() bool {
	return a.Elevation && a.Overpass && a.OpenWeather && a.GeoNames && a.Nominatim
}

// AnalysisHandlerConfig holds dependencies for the analysis handler.
type AnalysisHandlerConfig struct {
	Environment *environment.Service
	Geocoder    *geocode.Service
	Bounds      region.Bounds
	Registry    *resilience.Registry
	Services    ServiceAvailability
	Version     string
	Logger      zerolog.Logger
}

// AnalysisHandler handles risk analysis requests.
type AnalysisHandler struct {
	environment *environment.Service
	geocoder    *geocode.Service
	bounds      region.Bounds
	registry    *resilience.Registry
	services    ServiceAvailability
	version     string
	logger      zerolog.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(cfg AnalysisHandlerConfig) *AnalysisHandler {
	return &AnalysisHandler{
		environment: cfg.Environment,
		geocoder:    cfg.Geocoder,
		bounds:      cfg.Bounds,
		registry:    cfg.Registry,
		services:    cfg.Services,
		version:     cfg.Version,
		logger:      cfg.Logger,
	}
}

// Analyze handles POST /v1/analysis.
func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	traceID := middleware.GetRequestID(r.Context())

	var req models.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.validationError(w, r, "Latitude dan longitude harus berupa angka", nil)
		return
	}

	if req.Latitude == nil || req.Longitude == nil {
		h.validationError(w, r, "Latitude dan longitude diperlukan", nil)
		return
	}

	lat, lng := *req.Latitude, *req.Longitude

	if !h.bounds.Contains(lat, lng) {
		detail := fmt.Sprintf("Koordinat di luar wilayah analisis DIY. Area valid: Latitude %g hingga %g, Longitude %g hingga %g",
			h.bounds.SouthWestLat, h.bounds.NorthEastLat, h.bounds.SouthWestLng, h.bounds.NorthEastLng)
		h.validationError(w, r, detail, h.boundsPayload())
		return
	}

	h.logger.Info().
		Str("request_id", traceID).
		Float64("lat", lat).
		Float64("lng", lng).
		Msg("starting risk analysis")

	var (
		snapshot *environment.Snapshot
		address  *geocode.AddressDetails
	)

	// Both fetch chains run to completion so a failure names its own
	// stage rather than cancelling the sibling.
	var g errgroup.Group
	g.Go(func() error {
		var err error
		snapshot, err = h.environment.Aggregate(r.Context(), lat, lng)
		if err != nil {
			return fmt.Errorf("environmental data: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		address, err = h.geocoder.Lookup(r.Context(), lat, lng)
		if err != nil {
			return fmt.Errorf("geocoding: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Error().
			Err(err).
			Str("request_id", traceID).
			Dur("elapsed", time.Since(start)).
			Msg("risk analysis failed")

		// An open circuit means the upstream is known-bad; report it as
		// unavailable rather than an internal fault.
		base := models.NewInternalError(traceID, err.Error())
		if errors.Is(err, resilience.ErrCircuitOpen) {
			base = models.NewServiceUnavailable(traceID, err.Error())
		}

		problem := &models.AnalysisProblem{
			Problem:  *base,
			Solution: "Periksa koneksi internet dan konfigurasi API keys",
			Requires: analysisRequires,
			Note:     analysisNote,
		}
		problem.Instance = r.URL.Path
		problem.Write(w)
		return
	}

	score := risk.Score(snapshot.Elevation, snapshot.Slope, snapshot.Rainfall, snapshot.LandCover, snapshot.SoilType)
	level := risk.LevelForScore(score)
	narrative := risk.Narrative(level, snapshot.Slope, snapshot.Elevation, lat, lng)
	accuracy := risk.Accuracy(snapshot.Resolution, snapshot.Confidence, snapshot.DataSources)

	resp := models.AnalysisResponse{
		Elevation:         snapshot.Elevation,
		Slope:             snapshot.Slope,
		LandCover:         snapshot.LandCover,
		Rainfall:          snapshot.Rainfall,
		SoilType:          snapshot.SoilType,
		NDVI:              snapshot.NDVI,
		PopulationDensity: snapshot.PopulationDensity,
		RiskLevel:         string(level),
		RiskScore:         score,
		GeologicalRisk:    narrative,
		Address:           address.Full,
		AddressDetails:    *address,
		Accuracy:          accuracy,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Metadata: models.AnalysisMetadata{
			Sources:        h.sourceAttribution(snapshot),
			Resolution:     snapshot.Resolution,
			Confidence:     int(snapshot.Confidence),
			Cached:         snapshot.Cached,
			ProcessingTime: time.Since(start).Milliseconds(),
			DataSources:    snapshot.DataSources,
		},
	}

	h.logger.Info().
		Str("request_id", traceID).
		Int("risk_score", score).
		Str("risk_level", string(level)).
		Int("accuracy", accuracy).
		Bool("cached", snapshot.Cached).
		Dur("elapsed", time.Since(start)).
		Msg("risk analysis completed")

	response.JSON(w, r, http.StatusOK, resp)
}

// Info handles GET /v1/analysis, dispatching on the query string to the
// health, config, or default info payloads.
func (h *AnalysisHandler) Info(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Query().Get("health") == "true":
		h.health(w, r)
	case r.URL.Query().Get("config") == "true":
		h.configSummary(w, r)
	default:
		h.describe(w, r)
	}
}

// Preflight handles OPTIONS /v1/analysis.
func (h *AnalysisHandler) Preflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
}

func (h *AnalysisHandler) health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !h.services.AllConfigured() {
		status = "degraded"
	}

	cacheStats := h.environment.CacheStats()

	services := map[string]string{
		"elevationApi":   availability(h.services.Elevation),
		"openweatherApi": availability(h.services.OpenWeather),
		"geonamesApi":    availability(h.services.GeoNames),
		"osmGeocoding":   availability(h.services.Nominatim),
		"osmOverpass":    availability(h.services.Overpass),
		"caching":        fmt.Sprintf("Active (%dmin TTL)", int(cacheStats.TTL.Minutes())),
	}

	providers := make(map[string]string)
	if h.registry != nil {
		for _, ph := range h.registry.GetAllHealth() {
			providers[ph.Name] = ph.CircuitState.String()
		}
	}

	coverage := "Partial"
	if h.services.AllConfigured() {
		coverage = "100%"
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  services,
		"providers": providers,
		"statistics": map[string]interface{}{
			"cacheSize":        cacheStats.Entries,
			"cacheTTLMinutes":  int(cacheStats.TTL.Minutes()),
			"realDataCoverage": coverage,
		},
		"limits": map[string]interface{}{
			"region":     "DIY Yogyakarta",
			"bounds":     h.boundsPayload(),
			"resolution": "10-100m (varies by source)",
		},
	})
}

func (h *AnalysisHandler) configSummary(w http.ResponseWriter, r *http.Request) {
	cacheStats := h.environment.CacheStats()

	real := make([]string, 0, 5)
	if h.services.OpenWeather {
		real = append(real, "OpenWeather API (rainfall)")
	}
	if h.services.Elevation {
		real = append(real, "Open-Elevation API (elevation)")
	}
	if h.services.GeoNames {
		real = append(real, "GeoNames (population)")
	}
	if h.services.Nominatim {
		real = append(real, "OpenStreetMap Nominatim (address)")
	}
	if h.services.Overpass {
		real = append(real, "OpenStreetMap Overpass (land cover)")
	}

	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environmentConfig": map[string]interface{}{
			"bounds": h.boundsPayload(),
			"apiStatus": map[string]bool{
				"openWeather":  h.services.OpenWeather,
				"geonames":     h.services.GeoNames,
				"elevationApi": h.services.Elevation,
				"nominatim":    h.services.Nominatim,
				"overpass":     h.services.Overpass,
			},
		},
		"cacheStats": map[string]interface{}{
			"size":       cacheStats.Entries,
			"ttlMinutes": int(cacheStats.TTL.Minutes()),
		},
		"dataSources": map[string][]string{
			"real": real,
			"database": {
				"DIY Soil Database (real research data)",
				"DIY Population Database (BPS 2023)",
			},
			"research": {
				"NDVI Data (research-based)",
				"Slope Data (DEM-based)",
			},
		},
	})
}

func (h *AnalysisHandler) describe(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, map[string]interface{}{
		"name":        "Lereng Aman Risk Analysis API",
		"version":     h.version,
		"description": "Landslide risk analysis for the DIY region using live environmental data with full address hierarchy",
		"status":      "OPERATIONAL",
		"endpoints": map[string]string{
			"POST":       "/v1/analysis",
			"GET-health": "/v1/analysis?health=true",
			"GET-config": "/v1/analysis?config=true",
		},
		"requiredApis": []string{
			"OpenWeather API (rainfall)",
			"Open-Elevation API (elevation)",
			"GeoNames (population)",
			"OpenStreetMap Nominatim (addresses)",
			"OpenStreetMap Overpass (land cover)",
		},
		"region":    "Daerah Istimewa Yogyakarta, Indonesia",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *AnalysisHandler) validationError(w http.ResponseWriter, r *http.Request, detail string, bounds *models.BoundsPayload) {
	traceID := middleware.GetRequestID(r.Context())
	problem := &models.AnalysisProblem{
		Problem:     *models.NewBadRequest(traceID, detail, nil),
		ValidBounds: bounds,
	}
	problem.Instance = r.URL.Path
	problem.Write(w)
}

func (h *AnalysisHandler) boundsPayload() *models.BoundsPayload {
	return &models.BoundsPayload{
		SouthWest: [2]float64{h.bounds.SouthWestLat, h.bounds.SouthWestLng},
		NorthEast: [2]float64{h.bounds.NorthEastLat, h.bounds.NorthEastLng},
	}
}

// sourceAttribution builds the per-datum source map. The population
// attribution depends on whether the place lookup or the district table
// served the request.
func (h *AnalysisHandler) sourceAttribution(snapshot *environment.Snapshot) models.SourceAttribution {
	population := environment.SourcePopulationBPS
	for _, s := range snapshot.DataSources {
		if strings.Contains(s, "GeoNames") {
			population = "GeoNames (Real)"
			break
		}
	}

	return models.SourceAttribution{
		Elevation:  environment.SourceElevation,
		Rainfall:   "OpenWeather API (Real-time)",
		LandCover:  "OpenStreetMap (Real)",
		SoilType:   environment.SourceSoil,
		Population: population,
		Address:    "OpenStreetMap Nominatim (Real)",
	}
}

func availability(configured bool) string {
	if configured {
		return "Available"
	}
	return "REQUIRED"
}
