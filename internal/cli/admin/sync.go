package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/composio"
	"github.com/velora-hq/onboardai/internal/config"
	"github.com/velora-hq/onboardai/internal/database"
	"github.com/velora-hq/onboardai/internal/openai"
	"github.com/velora-hq/onboardai/internal/repository"
	"github.com/velora-hq/onboardai/internal/service"
	"github.com/velora-hq/onboardai/internal/youcom"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a knowledge sync now",
		Long:  "Fetch documents from the connected Composio integrations, refresh competitor intel, and advance the sync schedule",
		RunE:  runSync,
	}

	cmd.Flags().Bool("no-intel", false, "Skip the competitor intel refresh")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	var embeddingClient service.EmbeddingClient
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
	}

	var composioGateway service.ComposioGateway
	if cfg.HasComposio() {
		composioGateway = composio.NewClient(cfg.ComposioAPIKey, cfg.ComposioBaseURL)
	}

	embeddings := service.NewEmbeddingService(embeddingClient, openai.DefaultEmbeddingDimensions)
	syncSvc := service.NewSyncService(
		composioGateway,
		repository.NewKnowledgeRepository(pool),
		repository.NewSyncStateRepository(pool),
		embeddings,
		time.Duration(cfg.SyncIntervalHours)*time.Hour,
	)

	result, err := syncSvc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("synced %d documents (notion=%d github=%d slack=%d), next sync at %s\n",
		result.Total(), result.Notion, result.GitHub, result.Slack, result.NextSyncAt.Format(time.RFC3339))

	noIntel, _ := cmd.Flags().GetBool("no-intel")
	if !noIntel && cfg.HasYou() {
		intelSvc := service.NewIntelService(
			youcom.NewClient(cfg.YouAPIKey, cfg.YouBaseURL, cfg.YouNewsBaseURL),
			repository.NewIntelRepository(pool),
		)
		added, err := intelSvc.Refresh(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("refreshed intel: %d new items\n", added)
	}

	return nil
}
