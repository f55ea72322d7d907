package client

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_Get_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/sync/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"last_sync_at":null,"next_sync_at":"2026-08-24T12:00:00Z"}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL)
	require.NoError(t, err)

	resp, err := api.Get("/api/sync/status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_sync_at":null,"next_sync_at":"2026-08-24T12:00:00Z"}`, string(resp.Data))
}

func TestAPIClient_Post_SendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"data":{"answer":"ok","citations":[]}}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL)
	require.NoError(t, err)

	resp, err := api.Post("/api/ask", AskRequest{Question: "what is the refund policy?"})
	require.NoError(t, err)
	assert.Contains(t, string(resp.Data), `"answer":"ok"`)
}

func TestAPIClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid cursor"}`))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL)
	require.NoError(t, err)

	_, err = api.Get("/api/intel/feed?cursor=bogus")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "invalid cursor", apiErr.Message)
}

func TestAPIClient_NonJSONErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	api, err := NewAPIClientWithConfig(srv.URL)
	require.NoError(t, err)

	_, err = api.Get("/api/usage")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
}

func TestTruncateLine(t *testing.T) {
	assert.Equal(t, "short text", truncateLine("short  text", 120))

	long := ""
	for i := 0; i < 50; i++ {
		long += "abcdef "
	}
	truncated := truncateLine(long, 40)
	assert.Len(t, truncated, 40)
	assert.True(t, len(truncated) <= 40)
}
