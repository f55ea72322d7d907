package composio

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-hq/onboardai/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient("test-key", srv.URL)
}

func TestConnections(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/connected_accounts", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "notion,github,slack", r.URL.Query().Get("toolkit_slugs"))

		json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{"id": "acc-1", "toolkit": map[string]any{"slug": "notion"}},
				map[string]any{"id": "acc-2", "toolkit": map[string]any{"slug": "notion"}},
				map[string]any{"id": "acc-3", "toolkit": "github"},
			},
		})
	})

	accounts, err := client.Connections(context.Background(), []string{"notion", "github", "slack"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"notion": "acc-1", "github": "acc-3"}, accounts)
}

func TestNotionDocuments(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "NOTION_SEARCH_NOTION_PAGE"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"results": []any{map[string]any{"id": "page-1"}}},
			})
		case strings.HasSuffix(r.URL.Path, "NOTION_FETCH_BLOCK_CONTENTS"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"title": "Product Strategy",
					"children": []any{
						map[string]any{"plain_text": "We build AI support agents."},
					},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	docs, err := client.NotionDocuments(context.Background(), "acc-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.KnowledgeSourceNotion, docs[0].Source)
	assert.Contains(t, docs[0].Content, "Product Strategy")
	assert.Contains(t, docs[0].Content, "We build AI support agents.")
	assert.Equal(t, "page-1", docs[0].Metadata["page_id"])
}

func TestGitHubDocuments(t *testing.T) {
	readme := base64.StdEncoding.EncodeToString([]byte("# velora-api\nThe core API."))

	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "GITHUB_REPOS_LIST_FOR_AUTHENTICATED_USER"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"repos": []any{
					map[string]any{
						"name":        "velora-api",
						"owner":       map[string]any{"login": "velora-hq"},
						"description": "Core API",
					},
				}},
			})
		case strings.Contains(r.URL.Path, "GITHUB_REPOS_GET_README"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"content": "data:text/markdown;base64," + readme},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	docs, err := client.GitHubDocuments(context.Background(), "acc-gh")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.KnowledgeSourceGitHub, docs[0].Source)
	assert.Contains(t, docs[0].Content, "Core API")
	assert.Contains(t, docs[0].Content, "The core API.")
	assert.Equal(t, "velora-hq/velora-api", docs[0].Metadata["full_name"])
}

func TestSlackMessages(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "SLACK_CONVERSATIONS_LIST"):
			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"channels": []any{
					map[string]any{"id": "C1", "name": "general"},
					map[string]any{"id": "C2", "name": "random"},
				}},
			})
		case strings.Contains(r.URL.Path, "SLACK_CONVERSATIONS_HISTORY"):
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			args := body["arguments"].(map[string]any)
			assert.Equal(t, "C1", args["channel"])

			json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"messages": []any{
					map[string]any{"text": "Standup moved to 9:30.", "user": "dana", "ts": "123.456"},
					map[string]any{"text": "   "},
				}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	docs, err := client.SlackMessages(context.Background(), "acc-slack")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.KnowledgeSourceSlack, docs[0].Source)
	assert.Equal(t, "Standup moved to 9:30.", docs[0].Content)
	assert.Equal(t, "#general", docs[0].Metadata["channel"])
	assert.Equal(t, "dana", docs[0].Metadata["author"])
}

func TestAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Connections(context.Background(), nil)
	assert.ErrorContains(t, err, "502")
}

func TestDecodeReadmeContent(t *testing.T) {
	t.Run("plain string", func(t *testing.T) {
		assert.Equal(t, "hello", decodeReadmeContent(map[string]any{"content": "hello"}))
	})

	t.Run("data uri", func(t *testing.T) {
		encoded := "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("decoded"))
		assert.Equal(t, "decoded", decodeReadmeContent(map[string]any{"content": encoded}))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Equal(t, "", decodeReadmeContent(map[string]any{}))
	})
}
