package geocode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// ReverseGeocoder resolves a coordinate into address details.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (*AddressDetails, error)
	Name() string
}

// ServiceConfig holds configuration for the geocoding service.
type ServiceConfig struct {
	// Geocoder performs the reverse lookups.
	Geocoder ReverseGeocoder

	// Logger for service operations.
	Logger zerolog.Logger

	// RequestsPerSecond throttles outbound lookups (default: 1, the
	// public Nominatim usage policy).
	RequestsPerSecond float64
}

// Service wraps a reverse geocoder behind a request throttle.
type Service struct {
	geocoder ReverseGeocoder
	logger   zerolog.Logger
	limiter  *rate.Limiter
}

// NewService creates a new geocoding service.
func NewService(cfg ServiceConfig) *Service {
	rps := cfg.RequestsPerSecond
	if rps == 0 {
		rps = 1
	}

	return &Service{
		geocoder: cfg.Geocoder,
		logger:   cfg.Logger,
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Lookup resolves a coordinate into address details. Lookups are spaced
// out to respect the upstream usage policy; the wait is bounded by the
// caller's context.
func (s *Service) Lookup(ctx context.Context, lat, lng float64) (*AddressDetails, error) {
	if s.geocoder == nil {
		return nil, ErrNotConfigured
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for geocode slot: %w", err)
	}

	details, err := s.geocoder.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAddressUnavailable, err)
	}

	s.logger.Debug().
		Str("geocoder", s.geocoder.Name()).
		Str("address", details.Full).
		Msg("resolved address")

	return details, nil
}
