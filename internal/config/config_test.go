package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ONBOARD_DATABASE_URL", "postgres://localhost:5432/onboard")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 5, cfg.TopK)
	assert.Equal(t, 5, cfg.IntelLimit)
	assert.Equal(t, 6, cfg.SyncIntervalHours)
	assert.Equal(t, "https://backend.composio.dev/api/v3", cfg.ComposioBaseURL)
	assert.Equal(t, "https://api.render.com/v1", cfg.RenderBaseURL)
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("ONBOARD_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_FeatureProbes(t *testing.T) {
	cfg := &Config{}
	assert.False(t, cfg.HasOpenAI())
	assert.False(t, cfg.HasComposio())
	assert.False(t, cfg.HasYou())
	assert.False(t, cfg.HasRender())
	assert.False(t, cfg.HasS3())

	cfg.OpenAIAPIKey = "sk-test"
	cfg.ComposioAPIKey = "comp-test"
	cfg.YouAPIKey = "you-test"
	cfg.RenderAPIKey = "rnd-test"
	assert.True(t, cfg.HasOpenAI())
	assert.True(t, cfg.HasComposio())
	assert.True(t, cfg.HasYou())
	assert.True(t, cfg.HasRender())

	cfg.S3Endpoint = "http://localhost:9000"
	assert.False(t, cfg.HasS3(), "S3 requires endpoint and both keys")
	cfg.S3AccessKey = "access"
	cfg.S3SecretKey = "secret"
	assert.True(t, cfg.HasS3())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ONBOARD_DATABASE_URL", "postgres://localhost:5432/onboard")
	t.Setenv("ONBOARD_TOP_K", "8")
	t.Setenv("ONBOARD_SYNC_INTERVAL_HOURS", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.TopK)
	assert.Equal(t, 2, cfg.SyncIntervalHours)
}
