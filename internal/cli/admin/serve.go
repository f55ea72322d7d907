package admin

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/velora-hq/onboardai/internal/api/handlers"
	"github.com/velora-hq/onboardai/internal/composio"
	"github.com/velora-hq/onboardai/internal/config"
	"github.com/velora-hq/onboardai/internal/database"
	"github.com/velora-hq/onboardai/internal/jobs"
	"github.com/velora-hq/onboardai/internal/openai"
	"github.com/velora-hq/onboardai/internal/render"
	"github.com/velora-hq/onboardai/internal/repository"
	"github.com/velora-hq/onboardai/internal/server"
	"github.com/velora-hq/onboardai/internal/service"
	"github.com/velora-hq/onboardai/internal/storage"
	"github.com/velora-hq/onboardai/internal/telemetry"
	"github.com/velora-hq/onboardai/internal/youcom"
)

const workerPollInterval = time.Minute

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the onboardai API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().Bool("no-worker", false, "Disable the background sync worker")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.SentryDSN != "" {
		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.SentryTracesSampleRate,
			Debug:            cfg.Debug,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	intelRepo := repository.NewIntelRepository(pool)
	syncStateRepo := repository.NewSyncStateRepository(pool)

	// Each provider is optional: a missing key leaves its client nil and
	// the dependent feature degrades per its service rules.
	var embeddingClient service.EmbeddingClient
	var completionClient service.CompletionClient
	if cfg.HasOpenAI() {
		client := openai.NewClient(cfg.OpenAIAPIKey)
		embeddingClient = client
		completionClient = client
		log.Println("openai provider configured")
	} else {
		log.Println("OPENAI_API_KEY not set: using deterministic embeddings and fallback answers")
	}

	var composioGateway service.ComposioGateway
	if cfg.HasComposio() {
		composioGateway = composio.NewClient(cfg.ComposioAPIKey, cfg.ComposioBaseURL)
		log.Println("composio integration configured")
	}

	var youGateway service.YouGateway
	if cfg.HasYou() {
		youGateway = youcom.NewClient(cfg.YouAPIKey, cfg.YouBaseURL, cfg.YouNewsBaseURL)
		log.Println("you.com search configured")
	}

	var renderGateway service.RenderGateway
	if cfg.HasRender() {
		renderGateway = render.NewClient(cfg.RenderAPIKey, cfg.RenderBaseURL)
		log.Println("render usage configured")
	}

	var briefArchive service.BriefArchiver
	if cfg.HasS3() {
		archive, err := storage.NewBriefArchive(ctx, storage.BriefArchiveConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create brief archive: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure brief archive bucket: %w", err)
		}
		log.Printf("brief archive bucket '%s' ready", cfg.S3Bucket)
		briefArchive = archive
	}

	embeddings := service.NewEmbeddingService(embeddingClient, openai.DefaultEmbeddingDimensions)
	syncSvc := service.NewSyncService(composioGateway, knowledgeRepo, syncStateRepo, embeddings, time.Duration(cfg.SyncIntervalHours)*time.Hour)
	intelSvc := service.NewIntelService(youGateway, intelRepo)
	briefSvc := service.NewBriefService(completionClient, knowledgeRepo, intelRepo, briefArchive)
	answerSvc := service.NewAnswerService(completionClient, embeddings, knowledgeRepo, intelRepo, intelSvc, briefSvc, cfg.TopK, cfg.IntelLimit)
	usageSvc := service.NewUsageService(renderGateway)

	var syncWorker *jobs.Worker
	noWorker, _ := cmd.Flags().GetBool("no-worker")
	if !noWorker {
		processor := jobs.NewSyncWorker(syncSvc, intelSvc)
		syncWorker = jobs.NewWorker(processor, workerPollInterval)
		go syncWorker.Start(ctx)
		log.Println("sync worker started")
	}

	router := server.NewRouter(server.RouterConfig{
		DB:           pool,
		AskHandler:   handlers.NewAskHandler(answerSvc),
		BriefHandler: handlers.NewBriefHandler(briefSvc),
		SyncHandler:  handlers.NewSyncHandler(syncSvc),
		IntelHandler: handlers.NewIntelHandler(intelSvc),
		UsageHandler: handlers.NewUsageHandler(usageSvc),
		WebDist:      cfg.WebDist,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	if syncWorker != nil {
		syncWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	if err == migrate.ErrNilVersion {
		log.Println("migrations: database is up to date (no migrations applied)")
	} else if dirty {
		return fmt.Errorf("migration version %d is dirty - manual intervention required", version)
	} else if err == migrate.ErrNoChange {
		log.Printf("migrations: database is up to date (version %d)", version)
	} else {
		log.Printf("migrations: applied successfully (version %d)", version)
	}

	return nil
}
