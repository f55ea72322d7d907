//go:build e2e

package e2e

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora-hq/onboardai/internal/domain"
	"github.com/velora-hq/onboardai/internal/repository"
)

// TestE2E_AskLifecycle covers health, seeding, and question answering
// with no providers configured.
func TestE2E_AskLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("health reports connected database", func(t *testing.T) {
		resp, err := env.Get("/health")
		require.NoError(t, err)

		var health struct {
			Status   string `json:"status"`
			Database string `json:"database"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &health))
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "connected", health.Database)
	})

	t.Run("ask before any sync returns the no-information answer", func(t *testing.T) {
		resp, err := env.Post("/api/ask", map[string]string{"question": "What is the PTO policy?"})
		require.NoError(t, err)

		var answer struct {
			Answer    string            `json:"answer"`
			Citations []domain.Citation `json:"citations"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &answer))
		assert.Contains(t, answer.Answer, "couldn't find relevant information")
		assert.Empty(t, answer.Citations)
	})

	t.Run("ask after seeding returns a grounded fallback answer", func(t *testing.T) {
		added := env.SeedFile("../../seed/velora.json")
		require.Greater(t, added, 0)

		resp, err := env.Post("/api/ask", map[string]string{"question": "How many PTO days do employees get?"})
		require.NoError(t, err)

		var answer struct {
			Answer    string            `json:"answer"`
			Citations []domain.Citation `json:"citations"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &answer))
		assert.NotEmpty(t, answer.Answer)
		assert.NotEmpty(t, answer.Citations)
		for _, citation := range answer.Citations {
			assert.NotEmpty(t, citation.Source)
		}
	})

	t.Run("brief question returns the brief payload", func(t *testing.T) {
		resp, err := env.Post("/api/ask", map[string]string{"question": "Give me the daily brief"})
		require.NoError(t, err)

		var answer struct {
			Brief *domain.DailyBrief `json:"brief"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &answer))
		require.NotNil(t, answer.Brief)
		// No completion provider: the brief degrades to a notice.
		require.NotEmpty(t, answer.Brief.Summary)
		assert.Contains(t, answer.Brief.Summary[0], "OpenAI API key")
	})
}

// TestE2E_SyncSchedule covers the sync status and trigger endpoints
// with the integration unconfigured.
func TestE2E_SyncSchedule(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("status before first sync has null last_sync_at", func(t *testing.T) {
		resp, err := env.Get("/api/sync/status")
		require.NoError(t, err)

		var status struct {
			LastSyncAt *string `json:"last_sync_at"`
			NextSyncAt string  `json:"next_sync_at"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &status))
		assert.Nil(t, status.LastSyncAt)
		assert.NotEmpty(t, status.NextSyncAt)
	})

	t.Run("trigger advances the schedule even with no integration", func(t *testing.T) {
		resp, err := env.Post("/api/sync/trigger", nil)
		require.NoError(t, err)

		var result struct {
			Status     string `json:"status"`
			Total      int    `json:"total"`
			LastSyncAt string `json:"last_sync_at"`
			NextSyncAt string `json:"next_sync_at"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, 0, result.Total)

		last, err := time.Parse(time.RFC3339, result.LastSyncAt)
		require.NoError(t, err)
		next, err := time.Parse(time.RFC3339, result.NextSyncAt)
		require.NoError(t, err)
		assert.True(t, next.After(last))

		statusResp, err := env.Get("/api/sync/status")
		require.NoError(t, err)

		var status struct {
			LastSyncAt *string `json:"last_sync_at"`
		}
		require.NoError(t, json.Unmarshal(statusResp.Data, &status))
		require.NotNil(t, status.LastSyncAt)
	})
}

// TestE2E_IntelFeed covers the cached feed, refresh, and live search
// endpoints.
func TestE2E_IntelFeed(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("feed starts empty", func(t *testing.T) {
		resp, err := env.Get("/api/intel/feed")
		require.NoError(t, err)

		var feed struct {
			Items   []json.RawMessage `json:"items"`
			HasMore bool              `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &feed))
		assert.Empty(t, feed.Items)
		assert.False(t, feed.HasMore)
	})

	t.Run("cached rows appear in the feed", func(t *testing.T) {
		repo := repository.NewIntelRepository(env.Pool)
		intel := domain.NewCompetitorIntel(
			uuid.NewString(),
			"Intercom",
			domain.IntelTypePricing,
			"Intercom raised list prices for its AI agent tier this quarter.",
			"https://example.com/intercom-pricing",
			time.Now().UTC(),
		)
		inserted, err := repo.Insert(env.Ctx, intel)
		require.NoError(t, err)
		require.True(t, inserted)

		resp, err := env.Get("/api/intel/feed?limit=10")
		require.NoError(t, err)

		var feed struct {
			Items []struct {
				Competitor string `json:"competitor"`
				Title      string `json:"title"`
				Content    string `json:"content"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &feed))
		require.Len(t, feed.Items, 1)
		assert.Equal(t, "Intercom", feed.Items[0].Competitor)
		assert.Contains(t, feed.Items[0].Content, "raised list prices")
	})

	t.Run("refresh without a provider adds nothing", func(t *testing.T) {
		resp, err := env.Post("/api/intel/refresh", nil)
		require.NoError(t, err)

		var result struct {
			Status string `json:"status"`
			Added  int    `json:"added"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, 0, result.Added)
	})

	t.Run("live search without a provider returns empty hits", func(t *testing.T) {
		resp, err := env.Get("/api/intel/search?q=Zendesk+AI")
		require.NoError(t, err)

		var result struct {
			Web  []json.RawMessage `json:"web"`
			News []json.RawMessage `json:"news"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Empty(t, result.Web)
		assert.Empty(t, result.News)
	})

	t.Run("live search requires a query", func(t *testing.T) {
		_, err := env.Get("/api/intel/search")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
	})
}

// TestE2E_DegradedProviders covers the endpoints whose providers are
// unconfigured in this environment.
func TestE2E_DegradedProviders(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("usage reports the missing key", func(t *testing.T) {
		resp, err := env.Get("/api/usage")
		require.NoError(t, err)

		var usage struct {
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &usage))
		assert.False(t, usage.OK)
		assert.Contains(t, usage.Error, "RENDER_API_KEY")
	})

	t.Run("brief generation degrades to a notice", func(t *testing.T) {
		resp, err := env.Post("/api/brief", nil)
		require.NoError(t, err)

		var brief domain.DailyBrief
		require.NoError(t, json.Unmarshal(resp.Data, &brief))
		require.NotEmpty(t, brief.Summary)
		assert.Contains(t, brief.Summary[0], "Run a Composio sync")
	})

	t.Run("brief archive is absent without object storage", func(t *testing.T) {
		_, err := env.Get("/api/brief/archive?date=2026-08-24")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}
