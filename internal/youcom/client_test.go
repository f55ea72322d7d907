package youcom

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "intercom pricing", r.URL.Query().Get("query"))
		assert.Equal(t, "20", r.URL.Query().Get("count"))
		assert.Equal(t, "month", r.URL.Query().Get("freshness"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": map[string]any{
				"web": []any{
					map[string]any{
						"title":       "Intercom Pricing",
						"description": "Plans start at $39 per seat.",
						"url":         "https://intercom.com/pricing",
					},
					map[string]any{
						"title":    "Snippet only",
						"snippets": []any{"From the snippet."},
					},
					map[string]any{"url": "https://example.com/empty"},
				},
				"news": []any{
					map[string]any{
						"title":       "Intercom raises prices",
						"description": "Effective next quarter.",
						"thumbnail":   map[string]any{"src": "https://cdn.example.com/t.png"},
						"page_age":    "2025-08-01",
						"source_name": "TechNews",
					},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1", srv.URL)

	result, err := client.Search(context.Background(), "intercom pricing", 25, "month")
	require.NoError(t, err)

	require.Len(t, result.Web, 2)
	assert.Equal(t, "Intercom Pricing", result.Web[0].Title)
	assert.Equal(t, "Plans start at $39 per seat.", result.Web[0].Content)
	assert.Equal(t, "https://intercom.com/pricing", result.Web[0].URL)
	assert.Equal(t, "From the snippet.", result.Web[1].Content)

	require.Len(t, result.News, 1)
	assert.Equal(t, "https://cdn.example.com/t.png", result.News[0].ThumbnailURL)
	assert.Equal(t, "2025-08-01", result.News[0].PageAge)
	assert.Equal(t, "TechNews", result.News[0].SourceName)
}

func TestSearchNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/livenews", r.URL.Path)
		assert.Equal(t, "zendesk", r.URL.Query().Get("q"))

		json.NewEncoder(w).Encode(map[string]any{
			"news": map[string]any{
				"results": []any{
					map[string]any{"title": "Zendesk AI launch", "description": "New agent suite.", "url": "https://news.example.com/z"},
					map[string]any{},
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1", srv.URL)

	hits, err := client.SearchNews(context.Background(), "zendesk", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Zendesk AI launch", hits[0].Title)
	assert.Equal(t, "New agent suite.", hits[0].Content)
}

func TestSearchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", srv.URL+"/v1", srv.URL)

	_, err := client.Search(context.Background(), "anything", 5, "month")
	assert.ErrorContains(t, err, "429")
}

func TestClampContent(t *testing.T) {
	long := strings.Repeat("a", contentMax+100)
	clamped := clampContent(long)
	assert.Len(t, clamped, contentMax+3)
	assert.True(t, strings.HasSuffix(clamped, "..."))

	assert.Equal(t, "short", clampContent("  short  "))
}
