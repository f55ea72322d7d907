package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/config"
	"github.com/velora-hq/onboardai/internal/database"
	"github.com/velora-hq/onboardai/internal/openai"
	"github.com/velora-hq/onboardai/internal/repository"
	"github.com/velora-hq/onboardai/internal/service"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load seed documents into the knowledge base",
		Long:  "Load a JSON array of documents (source, content, metadata) into the knowledge base, embedding each when OPENAI_API_KEY is set",
		Args:  cobra.ExactArgs(1),
		RunE:  runSeed,
	}

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
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

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var embeddingClient service.EmbeddingClient
	if cfg.HasOpenAI() {
		embeddingClient = openai.NewClient(cfg.OpenAIAPIKey)
	} else {
		log.Println("OPENAI_API_KEY not set: seeding without embeddings")
	}

	embeddings := service.NewEmbeddingService(embeddingClient, openai.DefaultEmbeddingDimensions)
	seeder := service.NewSeedService(repository.NewKnowledgeRepository(pool), embeddings)

	added, err := seeder.LoadFile(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("seeded %d documents from %s\n", added, args[0])
	return nil
}
