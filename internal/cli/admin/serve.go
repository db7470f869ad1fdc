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
	openaisdk "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"

	"github.com/horizon-ai/sowlens/internal/api/handlers"
	"github.com/horizon-ai/sowlens/internal/api/middleware"
	"github.com/horizon-ai/sowlens/internal/chunker"
	"github.com/horizon-ai/sowlens/internal/config"
	"github.com/horizon-ai/sowlens/internal/database"
	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/extract"
	"github.com/horizon-ai/sowlens/internal/jobs"
	"github.com/horizon-ai/sowlens/internal/openai"
	"github.com/horizon-ai/sowlens/internal/recommend"
	"github.com/horizon-ai/sowlens/internal/repository"
	"github.com/horizon-ai/sowlens/internal/server"
	"github.com/horizon-ai/sowlens/internal/storage"
	"github.com/horizon-ai/sowlens/internal/telemetry"
	"github.com/horizon-ai/sowlens/internal/vocab"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the sowlens API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize Sentry with tracing if a DSN is configured
	if cfg.SentryDSN != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	if cmd.Flags().Changed("port") {
		cfg.Port, _ = cmd.Flags().GetString("port")
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("SOWLENS_OPENAI_API_KEY is required")
	}
	if !cfg.HasAuth() {
		log.Println("warning: SOWLENS_API_KEY not set, all authenticated routes will reject requests")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	// Run migrations unless --no-migrate flag is set
	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	chunkRepo := repository.NewChunkRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)

	aiClient := newAIClient(cfg)

	var vocabulary vocab.Vocabulary
	if cfg.HasVocabulary() {
		vocabulary, err = vocab.Load(cfg.VocabularyPath)
		if err != nil {
			log.Printf("vocabulary load failed, continuing without controlled values: %v", err)
		} else {
			log.Printf("loaded vocabulary from %s", cfg.VocabularyPath)
		}
	}

	extractor := extract.NewExtractor(chunkRepo, aiClient, aiClient, vocabulary, extract.Options{
		Chunking:   chunker.Config{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap},
		TopK:       cfg.TopK,
		EarlyPages: cfg.EarlyPages,
	})

	recommender := recommend.NewRecommender(profileRepo, aiClient, aiClient, recommenderOptions(cfg))

	indexer := recommend.NewIndexer(profileRepo, aiClient)
	sources := sourceFiles(cfg)
	if err := indexer.EnsureIndexed(ctx, sources); err != nil {
		return fmt.Errorf("failed to index candidate profiles: %w", err)
	}

	reindexer := jobs.NewProfileReindexer(indexer, sources)
	reindexer.Prime()
	profileWorker := jobs.NewWorker(reindexer, cfg.ProfileRefreshInterval)
	go profileWorker.Start(ctx)
	log.Println("profile reindex worker started")

	var archive handlers.DocumentArchive
	if cfg.HasS3() {
		s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
		archive = s3Client
	}

	routerCfg := server.RouterConfig{
		AuthValidator:         middleware.NewStaticKeyValidator(cfg.APIKey),
		SOWHandler:            handlers.NewSOWHandler(extractor, chunkRepo, archive),
		RecommendationHandler: handlers.NewRecommendationHandler(recommender),
	}

	router := server.NewRouter(routerCfg)

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

	profileWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

func newAIClient(cfg *config.Config) *openai.Client {
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		AzureEndpoint:       cfg.AzureOpenAIEndpoint,
		AzureAPIVersion:     cfg.AzureAPIVersion,
		EmbeddingModel:      openaisdk.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDims,
		CompletionModel:     cfg.CompletionModel,
		Stream:              cfg.StreamCompletions,
	})
}

func sourceFiles(cfg *config.Config) recommend.SourceFiles {
	return recommend.SourceFiles{
		Managers:   cfg.ManagerCSVPath,
		Testers:    cfg.TesterCSVPath,
		Developers: cfg.DeveloperCSVPath,
	}
}

func recommenderOptions(cfg *config.Config) recommend.Options {
	return recommend.Options{
		QueryLimits: map[domain.Pool]int{
			domain.PoolManager:   cfg.ManagersQuery,
			domain.PoolTester:    cfg.TestersQuery,
			domain.PoolDeveloper: cfg.DevelopersQuery,
		},
		Targets: map[domain.Pool]int{
			domain.PoolManager:   cfg.ManagersTarget,
			domain.PoolTester:    cfg.TestersTarget,
			domain.PoolDeveloper: cfg.DevelopersTarget,
		},
	}
}

func runMigrations(databaseURL string) error {
	// Create a sql.DB connection for golang-migrate
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database for migrations: %w", err)
	}
	defer db.Close()

	// Create postgres driver instance
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Create migrate instance with file source
	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// Run migrations
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	// Get migration version and status
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
