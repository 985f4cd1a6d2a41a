// Package main provides the entrypoint for the Lereng Aman API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lerengaman/lerengaman/internal/api"
	"github.com/lerengaman/lerengaman/internal/api/handler"
	"github.com/lerengaman/lerengaman/internal/api/middleware"
	"github.com/lerengaman/lerengaman/internal/config"
	"github.com/lerengaman/lerengaman/internal/environment"
	"github.com/lerengaman/lerengaman/internal/environment/geonames"
	"github.com/lerengaman/lerengaman/internal/environment/openelevation"
	"github.com/lerengaman/lerengaman/internal/environment/openweather"
	"github.com/lerengaman/lerengaman/internal/environment/overpass"
	"github.com/lerengaman/lerengaman/internal/geocode"
	"github.com/lerengaman/lerengaman/internal/geocode/nominatim"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
	"github.com/lerengaman/lerengaman/internal/region"
	"github.com/lerengaman/lerengaman/internal/telemetry"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "lerengaman-api"

	// Local development convenience; the file is absent in production.
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting Lereng Aman API")

	cfg := config.FromEnv()

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := telemetry.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Provider registry tracks circuit breaker health for every upstream.
	registry := resilience.NewRegistry()

	adapterClient := func(name string, timeout time.Duration) *resilience.Client {
		clientCfg := resilience.AdapterClientConfig(name, timeout)
		clientCfg.Registry = registry
		return resilience.NewClient(clientCfg)
	}

	// Environmental data adapters. Every adapter is wired even without
	// credentials; requests fail per-stage with a clear message instead of
	// refusing to start.
	elevationClient := openelevation.NewClient(openelevation.ClientConfig{
		BaseURL:    cfg.ElevationURL,
		HTTPClient: adapterClient(openelevation.ProviderName, cfg.ElevationTimeout),
		Logger:     log,
	})

	overpassClient := overpass.NewClient(overpass.ClientConfig{
		Endpoint: cfg.OverpassURL,
		Timeout:  cfg.LandCoverTimeout,
		Logger:   log,
	})

	weatherClient := openweather.NewClient(openweather.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		HTTPClient: adapterClient(openweather.ProviderName, cfg.RainfallTimeout),
		Logger:     log,
	})

	geonamesClient := geonames.NewClient(geonames.ClientConfig{
		Username:   cfg.GeoNamesUsername,
		HTTPClient: adapterClient(geonames.ProviderName, cfg.PopulationTimeout),
		Logger:     log,
	})

	nominatimClient := nominatim.NewClient(nominatim.ClientConfig{
		BaseURL:    cfg.NominatimURL,
		HTTPClient: adapterClient(nominatim.ProviderName, cfg.AddressTimeout),
		Logger:     log,
	})

	envService := environment.NewService(environment.ServiceConfig{
		Elevation:  elevationClient,
		LandCover:  overpassClient,
		Rainfall:   weatherClient,
		Population: geonamesClient,
		Logger:     log,
		CacheTTL:   cfg.CacheTTL,
		Metrics:    providerMetrics,
	})
	log.Info().Dur("cache_ttl", cfg.CacheTTL).Msg("environment service initialized")

	geoService := geocode.NewService(geocode.ServiceConfig{
		Geocoder: nominatimClient,
		Logger:   log,
	})
	log.Info().Msg("geocode service initialized")

	bounds := region.Bounds{
		SouthWestLat: cfg.SouthWestLat,
		SouthWestLng: cfg.SouthWestLng,
		NorthEastLat: cfg.NorthEastLat,
		NorthEastLng: cfg.NorthEastLng,
	}

	services := handler.ServiceAvailability{
		Elevation:   true, // public API, no credential required
		Overpass:    true,
		OpenWeather: cfg.OpenWeatherAPIKey != "",
		GeoNames:    cfg.GeoNamesUsername != "",
		Nominatim:   true,
	}
	if !services.AllConfigured() {
		log.Warn().
			Bool("openweather", services.OpenWeather).
			Bool("geonames", services.GeoNames).
			Msg("missing external API credentials, analyses will be degraded")
	}

	analysisHandler := handler.NewAnalysisHandler(handler.AnalysisHandlerConfig{
		Environment: envService,
		Geocoder:    geoService,
		Bounds:      bounds,
		Registry:    registry,
		Services:    services,
		Version:     Version,
		Logger:      log,
	})

	opsHandler := handler.NewOpsHandler(Version, BuildTime, registry)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:         Version,
		BuildTime:       BuildTime,
		Logger:          log,
		ServiceName:     serviceName,
		Metrics:         metrics,
		AnalysisHandler: analysisHandler,
		OpsHandler:      opsHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
