package geocode_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerengaman/lerengaman/internal/geocode"
)

type mockGeocoder struct {
	details *geocode.AddressDetails
	err     error
	calls   int
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (*geocode.AddressDetails, error) {
	m.calls++
	return m.details, m.err
}

func (m *mockGeocoder) Name() string { return "mock" }

func TestService_Lookup(t *testing.T) {
	geocoder := &mockGeocoder{
		details: &geocode.AddressDetails{
			Full:   "Jalan Malioboro, Kota Yogyakarta, Daerah Istimewa Yogyakarta",
			Source: geocode.SourceNominatim,
		},
	}

	svc := geocode.NewService(geocode.ServiceConfig{Geocoder: geocoder})

	details, err := svc.Lookup(context.Background(), -7.7925, 110.3658)
	require.NoError(t, err)
	assert.Equal(t, geocoder.details.Full, details.Full)
	assert.Equal(t, 1, geocoder.calls)
}

func TestService_Lookup_GeocoderFailure(t *testing.T) {
	geocoder := &mockGeocoder{err: errors.New("upstream down")}

	svc := geocode.NewService(geocode.ServiceConfig{Geocoder: geocoder})

	_, err := svc.Lookup(context.Background(), -7.80, 110.40)
	require.Error(t, err)
	assert.ErrorIs(t, err, geocode.ErrAddressUnavailable)
}

func TestService_Lookup_NotConfigured(t *testing.T) {
	svc := geocode.NewService(geocode.ServiceConfig{})

	_, err := svc.Lookup(context.Background(), -7.80, 110.40)
	assert.ErrorIs(t, err, geocode.ErrNotConfigured)
}

func TestService_Lookup_Throttled(t *testing.T) {
	geocoder := &mockGeocoder{details: &geocode.AddressDetails{Full: "x"}}

	svc := geocode.NewService(geocode.ServiceConfig{
		Geocoder:          geocoder,
		RequestsPerSecond: 20,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := svc.Lookup(context.Background(), -7.80, 110.40)
		require.NoError(t, err)
	}

	// Burst of 1 means the second and third calls wait a slot each.
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
	assert.Equal(t, 3, geocoder.calls)
}

func TestService_Lookup_ThrottleCancelled(t *testing.T) {
	geocoder := &mockGeocoder{details: &geocode.AddressDetails{Full: "x"}}

	svc := geocode.NewService(geocode.ServiceConfig{
		Geocoder:          geocoder,
		RequestsPerSecond: 0.001,
	})

	// First call consumes the burst slot.
	_, err := svc.Lookup(context.Background(), -7.80, 110.40)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = svc.Lookup(ctx, -7.80, 110.40)
	require.Error(t, err)
	assert.Equal(t, 1, geocoder.calls)
}
