package render

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL)
}

func TestOwners(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/owners", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode([]any{
			map[string]any{"owner": map[string]any{"id": "own-1", "name": "Velora"}},
			map[string]any{"id": "own-2", "name": "Personal"},
		})
	})

	owners, err := client.Owners(context.Background())
	require.NoError(t, err)
	require.Len(t, owners, 2)
	assert.Equal(t, "own-1", owners[0].ID)
	assert.Equal(t, "Velora", owners[0].Name)
	assert.Equal(t, "own-2", owners[1].ID)
}

func TestServices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "own-1", r.URL.Query().Get("ownerId"))

		json.NewEncoder(w).Encode([]any{
			map[string]any{"service": map[string]any{
				"id":             "srv-1",
				"name":           "velora-api",
				"type":           "web_service",
				"serviceDetails": map[string]any{"url": "https://velora-api.onrender.com"},
			}},
		})
	})

	services, err := client.Services(context.Background(), "own-1")
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, "srv-1", services[0].ID)
	assert.Equal(t, "web_service", services[0].Type)
	assert.Equal(t, "https://velora-api.onrender.com", services[0].URL)
}

func TestBandwidth(t *testing.T) {
	t.Run("map shape strips serviceId", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "srv-1", r.URL.Query().Get("serviceId"))
			json.NewEncoder(w).Encode(map[string]any{
				"serviceId": "srv-1",
				"unit":      "GB",
				"total":     12.5,
			})
		})

		metrics, err := client.Bandwidth(context.Background(), "srv-1")
		require.NoError(t, err)
		assert.NotContains(t, metrics, "serviceId")
		assert.Equal(t, "GB", metrics["unit"])
	})

	t.Run("array shape is wrapped", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]any{map[string]any{"timestamp": "2026-08-24T00:00:00Z", "value": 3}})
		})

		metrics, err := client.Bandwidth(context.Background(), "srv-1")
		require.NoError(t, err)
		series, ok := metrics["data"].([]any)
		require.True(t, ok)
		assert.Len(t, series, 1)
	})
}

func TestAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Owners(context.Background())
	assert.ErrorContains(t, err, "401")
}
