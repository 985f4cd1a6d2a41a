package openelevation_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lerengaman/lerengaman/internal/environment/openelevation"
	"github.com/lerengaman/lerengaman/internal/provider/resilience"
)

func TestClient_GetElevation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/lookup", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Locations []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"locations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Locations, 1)
		assert.InDelta(t, -7.797068, body.Locations[0].Latitude, 1e-9)
		assert.InDelta(t, 110.370529, body.Locations[0].Longitude, 1e-9)

		response := map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"latitude":  -7.797068,
					"longitude": 110.370529,
					"elevation": 113.0,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	client := openelevation.NewClient(openelevation.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.AdapterClientConfig("test", 5*time.Second)),
	})

	elevation, err := client.GetElevation(context.Background(), -7.797068, 110.370529)
	require.NoError(t, err)
	assert.Equal(t, 113.0, elevation)
}

func TestClient_GetElevation_EmptyResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"results": []interface{}{}})
	}))
	defer server.Close()

	client := openelevation.NewClient(openelevation.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.AdapterClientConfig("test", 5*time.Second)),
	})

	_, err := client.GetElevation(context.Background(), -7.80, 110.40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no elevation result")
}

func TestClient_GetElevation_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := openelevation.NewClient(openelevation.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.AdapterClientConfig("test", 5*time.Second)),
	})

	_, err := client.GetElevation(context.Background(), -7.80, 110.40)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestClient_GetElevation_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := openelevation.NewClient(openelevation.ClientConfig{
		BaseURL:    server.URL,
		HTTPClient: resilience.NewClient(resilience.AdapterClientConfig("test", 5*time.Second)),
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetElevation(ctx, -7.80, 110.40)
	require.Error(t, err)
}

func TestClient_Name(t *testing.T) {
	client := openelevation.NewClient(openelevation.ClientConfig{})
	assert.Equal(t, "open-elevation", client.Name())
}
