package openweather_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerengaman/lerengaman/internal/environment/openweather"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

func newTestClient(serverURL string) *openweather.Client {
	return openweather.NewClient(openweather.ClientConfig{
		APIKey:     "****",
		BaseURL:    serverURL,
		HTTPClient: resilience.NewClient(resilience.AdapterClientConfig("test", 5*time.Second)),
	})
}

func TestClient_GetMonthlyRainfall_HourlyRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/weather", r.URL.Path)
		assert.Equal(t, "****", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))

		response := map[string]interface{}{
			"rain": map[string]float64{"1h": 2.5},
			"main": map[string]float64{"temp": 27.4, "humidity": 88},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	rainfall, err := newTestClient(server.URL).GetMonthlyRainfall(context.Background(), -7.80, 110.40)
	require.NoError(t, err)
	assert.Equal(t, 2.5*24*30, rainfall)
}

func TestClient_GetMonthlyRainfall_ThreeHourRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"rain": map[string]float64{"3h": 6.0},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	rainfall, err := newTestClient(server.URL).GetMonthlyRainfall(context.Background(), -7.80, 110.40)
	require.NoError(t, err)
	assert.Equal(t, 6.0/3*24*30, rainfall)
}

func TestClient_GetMonthlyRainfall_ForecastFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/weather":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"main": map[string]float64{"temp": 30.1},
			})
		case "/forecast":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"list": []map[string]interface{}{
					{"dt": 1700000000, "rain": map[string]float64{"3h": 3.0}},
					{"dt": 1700010800},
					{"dt": 1700021600, "rain": map[string]float64{"3h": 9.0}},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	rainfall, err := newTestClient(server.URL).GetMonthlyRainfall(context.Background(), -7.80, 110.40)
	require.NoError(t, err)

	// Average of 3.0 and 9.0 over the rainy entries only.
	assert.Equal(t, 6.0/3*24*30, rainfall)
}

func TestClient_GetMonthlyRainfall_NoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/weather":
			json.NewEncoder(w).Encode(map[string]interface{}{})
		case "/forecast":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"list": []map[string]interface{}{
					{"dt": 1700000000},
					{"dt": 1700010800},
				},
			})
		}
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetMonthlyRainfall(context.Background(), -7.80, 110.40)
	require.Error(t, err)
	assert.ErrorIs(t, err, openweather.ErrNoRainfallData)
}

func TestClient_GetMonthlyRainfall_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetMonthlyRainfall(context.Background(), -7.80, 110.40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_GetMonthlyRainfall_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(server.URL).GetMonthlyRainfall(ctx, -7.80, 110.40)
	require.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := openweather.NewClient(openweather.ClientConfig{APIKey: "****"})
	assert.Equal(t, "openweather", client.Name())
}
