package recommend

import (
	"context"
	"log"

	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/prompt"
	"github.com/horizon-ai/sowlens/internal/telemetry"
)

// SourceFiles maps each pool to its CSV path.
type SourceFiles struct {
	Managers   string
	Testers    string
	Developers string
}

// Path returns the CSV path for a pool.
func (s SourceFiles) Path(pool domain.Pool) string {
	switch pool {
	case domain.PoolManager:
		return s.Managers
	case domain.PoolTester:
		return s.Testers
	default:
		return s.Developers
	}
}

// Indexer embeds candidate profile summaries and writes them to the
// profile store.
type Indexer struct {
	store    ProfileStoreInterface
	embedder EmbedderInterface
}

func NewIndexer(store ProfileStoreInterface, embedder EmbedderInterface) *Indexer {
	return &Indexer{store: store, embedder: embedder}
}

// IndexPool replaces a pool's stored profiles with the given set.
func (ix *Indexer) IndexPool(ctx context.Context, pool domain.Pool, profiles []domain.CandidateProfile) error {
	ctx, span := telemetry.StartSpan(ctx, "Indexer.IndexPool", telemetry.SpanAttributes{
		Pool:      string(pool),
		Operation: "index_pool",
	})
	defer span.End()

	if err := domain.ValidatePool(pool); err != nil {
		return err
	}
	if len(profiles) == 0 {
		return ix.store.ReplaceProfiles(ctx, pool, nil)
	}

	summaries := make([]string, len(profiles))
	for i := range profiles {
		summaries[i] = prompt.ProfileSummary(profiles[i])
	}
	embeddings, err := ix.embedder.GenerateEmbeddings(ctx, summaries)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeIngestion,
			"profile embedding failed", err)
	}

	indexed := make([]domain.IndexedProfile, len(profiles))
	for i := range profiles {
		indexed[i] = domain.IndexedProfile{
			Profile:   profiles[i],
			Summary:   summaries[i],
			Embedding: embeddings[i],
		}
	}
	return ix.store.ReplaceProfiles(ctx, pool, indexed)
}

// IndexPoolFromFile loads a pool's CSV and indexes it.
func (ix *Indexer) IndexPoolFromFile(ctx context.Context, pool domain.Pool, path string) (int, error) {
	profiles, err := LoadProfiles(path, pool)
	if err != nil {
		return 0, err
	}
	if err := ix.IndexPool(ctx, pool, profiles); err != nil {
		return 0, err
	}
	return len(profiles), nil
}

// EnsureIndexed indexes every pool whose store count is zero. Pools
// that already hold profiles are left alone.
func (ix *Indexer) EnsureIndexed(ctx context.Context, files SourceFiles) error {
	counts, err := ix.store.CountByPool(ctx)
	if err != nil {
		return domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval,
			"profile count lookup failed", err)
	}

	for _, pool := range domain.Pools() {
		if counts[pool] > 0 {
			continue
		}
		path := files.Path(pool)
		if path == "" {
			log.Printf("recommend: no %s source file configured, pool stays empty", pool)
			continue
		}
		n, err := ix.IndexPoolFromFile(ctx, pool, path)
		if err != nil {
			return err
		}
		log.Printf("recommend: indexed %d %s profiles from %s", n, pool, path)
	}
	return nil
}
