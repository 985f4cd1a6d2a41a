package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerengaman/lerengaman/internal/api/handler"
	"github.com/lerengaman/lerengaman/internal/api/models"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

func newTestRegistry(names ...string) *resilience.Registry {
	registry := resilience.NewRegistry()
	for _, name := range names {
		client := resilience.NewClient(resilience.AdapterClientConfig(name, time.Second))
		registry.Register(name, client)
	}
	return registry
}

func TestHealthCheck(t *testing.T) {
	h := handler.NewOpsHandler("1.2.3", "2026-01-01T00:00:00Z", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "1.2.3", health.Details["version"])
	assert.Equal(t, "2026-01-01T00:00:00Z", health.Details["buildTime"])
}

func TestReadinessCheck(t *testing.T) {
	registry := newTestRegistry("open-elevation", "openweather")
	h := handler.NewOpsHandler("1.2.3", "", registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestReadinessCheck_NoRegistry(t *testing.T) {
	h := handler.NewOpsHandler("1.2.3", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(models.HealthStatusOK))
}

func TestSystemStatus(t *testing.T) {
	registry := newTestRegistry("open-elevation", "nominatim")
	registry.RecordSuccess("open-elevation")
	registry.RecordFailure("nominatim", assert.AnError)

	h := handler.NewOpsHandler("1.2.3", "", registry)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	rec := httptest.NewRecorder()
	h.SystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Providers, 2)

	byName := make(map[string]models.ProviderStatus, len(status.Providers))
	for _, p := range status.Providers {
		byName[p.Provider] = p
	}

	elevation := byName["open-elevation"]
	assert.Equal(t, models.HealthStatusOK, elevation.Status)
	assert.NotNil(t, elevation.LastSuccessAt)
	assert.Nil(t, elevation.Message)

	nominatim := byName["nominatim"]
	require.NotNil(t, nominatim.Message)
	assert.Equal(t, assert.AnError.Error(), *nominatim.Message)
	assert.NotNil(t, nominatim.LastFailureAt)
}

func TestSystemStatus_EmptyRegistry(t *testing.T) {
	h := handler.NewOpsHandler("1.2.3", "", resilience.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	rec := httptest.NewRecorder()
	h.SystemStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status models.SystemStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, models.HealthStatusOK, status.Status)
	assert.Empty(t, status.Providers)
}
