package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/horizon-ai/sowlens/internal/config"
	"github.com/horizon-ai/sowlens/internal/database"
	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/recommend"
	"github.com/horizon-ai/sowlens/internal/repository"
)

// SeedCmd returns the seed command
func SeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Index candidate profiles from CSV files",
		Long:  "Embed and store the configured candidate profile CSVs, replacing any existing pool data",
		RunE:  runSeed,
	}

	cmd.Flags().Bool("force", false, "Reindex pools even when already populated")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if !cfg.HasOpenAI() {
		return fmt.Errorf("SOWLENS_OPENAI_API_KEY is required")
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	profileRepo := repository.NewProfileRepository(pool)
	aiClient := newAIClient(cfg)
	indexer := recommend.NewIndexer(profileRepo, aiClient)
	sources := sourceFiles(cfg)

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		if err := indexer.EnsureIndexed(ctx, sources); err != nil {
			return fmt.Errorf("failed to index profiles: %w", err)
		}
		log.Println("profile pools indexed")
		return nil
	}

	for _, p := range domain.Pools() {
		path := sources.Path(p)
		if path == "" {
			log.Printf("pool %s: no CSV configured, skipping", p)
			continue
		}
		count, err := indexer.IndexPoolFromFile(ctx, p, path)
		if err != nil {
			return fmt.Errorf("failed to index pool %s: %w", p, err)
		}
		log.Printf("pool %s: indexed %d profiles from %s", p, count, path)
	}

	return nil
}
