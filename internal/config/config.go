package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	Environment           string  `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN             string  `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE" default:"1.0"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Provider credentials are read from the environment only and are
	// never echoed in responses or logs.
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	ComposioAPIKey string `envconfig:"COMPOSIO_API_KEY"`
	YouAPIKey      string `envconfig:"YOU_API_KEY"`
	RenderAPIKey   string `envconfig:"RENDER_API_KEY"`

	ComposioBaseURL string `envconfig:"COMPOSIO_BASE_URL" default:"https://backend.composio.dev/api/v3"`
	YouBaseURL      string `envconfig:"YOU_BASE_URL" default:"https://ydc-index.io/v1"`
	YouNewsBaseURL  string `envconfig:"YOU_NEWS_BASE_URL" default:"https://api.ydc-index.io"`
	RenderBaseURL   string `envconfig:"RENDER_BASE_URL" default:"https://api.render.com/v1"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"onboardai-briefs"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`

	// Retrieval limits for the RAG pipeline.
	TopK       int `envconfig:"TOP_K" default:"5"`
	IntelLimit int `envconfig:"INTEL_LIMIT" default:"5"`

	SyncIntervalHours int `envconfig:"SYNC_INTERVAL_HOURS" default:"6"`

	// Directory with the built frontend; served when present.
	WebDist string `envconfig:"WEB_DIST" default:"web/dist"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("ONBOARD", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}

func (c *Config) HasComposio() bool {
	return c.ComposioAPIKey != ""
}

func (c *Config) HasYou() bool {
	return c.YouAPIKey != ""
}

func (c *Config) HasRender() bool {
	return c.RenderAPIKey != ""
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
