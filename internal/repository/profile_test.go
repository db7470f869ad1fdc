//go:build integration

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/testutil"
)

func profileFixture(pool domain.Pool, resourceID, name string, axis int) domain.IndexedProfile {
	return domain.IndexedProfile{
		Profile: domain.CandidateProfile{
			ResourceID:       resourceID,
			Name:             name,
			Designation:      "Engineer",
			Skills:           "Go (Expert)",
			ExperienceMonths: 48,
			WeeklyHours:      30,
			AvailabilityPct:  75,
			Pool:             pool,
		},
		Summary:   name + " profile summary",
		Embedding: testVec(axis),
	}
}

func TestProfileRepository_ReplaceAndCount(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProfileRepository(pool)

	counts, err := repo.CountByPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[domain.Pool]int{
		domain.PoolManager:   0,
		domain.PoolTester:    0,
		domain.PoolDeveloper: 0,
	}, counts)

	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolDeveloper, []domain.IndexedProfile{
		profileFixture(domain.PoolDeveloper, "D1", "Alice", 0),
		profileFixture(domain.PoolDeveloper, "D2", "Bob", 1),
	}))
	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolManager, []domain.IndexedProfile{
		profileFixture(domain.PoolManager, "M1", "Carol", 2),
	}))

	counts, err = repo.CountByPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.PoolDeveloper])
	assert.Equal(t, 1, counts[domain.PoolManager])
	assert.Equal(t, 0, counts[domain.PoolTester])

	// replace clears the pool before inserting
	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolDeveloper, []domain.IndexedProfile{
		profileFixture(domain.PoolDeveloper, "D3", "Dave", 3),
	}))
	counts, err = repo.CountByPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.PoolDeveloper])
}

func TestProfileRepository_SearchScopedToPool(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProfileRepository(pool)

	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolDeveloper, []domain.IndexedProfile{
		profileFixture(domain.PoolDeveloper, "D1", "Alice", 0),
		profileFixture(domain.PoolDeveloper, "D2", "Bob", 1),
	}))
	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolTester, []domain.IndexedProfile{
		profileFixture(domain.PoolTester, "T1", "Tess", 0),
	}))

	results, err := repo.SearchProfiles(ctx, testVec(0), domain.PoolDeveloper, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alice", results[0].Profile.Name)
	assert.Equal(t, domain.PoolDeveloper, results[0].Profile.Pool)
	assert.Equal(t, "Alice profile summary", results[0].Summary)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
	assert.InDelta(t, 48.0, results[0].Profile.ExperienceMonths, 0.001)
}

func TestProfileRepository_FailedReplaceKeepsPreviousProfiles(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProfileRepository(pool)

	require.NoError(t, repo.ReplaceProfiles(ctx, domain.PoolDeveloper, []domain.IndexedProfile{
		profileFixture(domain.PoolDeveloper, "D1", "Alice", 0),
		profileFixture(domain.PoolDeveloper, "D2", "Bob", 1),
	}))

	// A wrong-dimension embedding fails the insert after the delete has
	// already run inside the transaction.
	bad := profileFixture(domain.PoolDeveloper, "D3", "Dave", 0)
	bad.Embedding = []float32{1, 2, 3}
	err := repo.ReplaceProfiles(ctx, domain.PoolDeveloper, []domain.IndexedProfile{bad})
	require.Error(t, err)

	counts, err := repo.CountByPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.PoolDeveloper])

	results, err := repo.SearchProfiles(ctx, testVec(0), domain.PoolDeveloper, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alice", results[0].Profile.Name)
}

func TestProfileRepository_InvalidPool(t *testing.T) {
	repo := &ProfileRepository{}

	err := repo.ReplaceProfiles(context.Background(), domain.Pool("intern"), nil)
	assert.Error(t, err)

	_, err = repo.SearchProfiles(context.Background(), testVec(0), domain.Pool("intern"), 5)
	assert.Error(t, err)
}

func TestProfileRepository_UpsertKeepsExisting(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewProfileRepository(pool)

	require.NoError(t, repo.UpsertProfiles(ctx, []domain.IndexedProfile{
		profileFixture(domain.PoolManager, "M1", "Carol", 0),
	}))
	updated := profileFixture(domain.PoolManager, "M1", "Caroline", 0)
	require.NoError(t, repo.UpsertProfiles(ctx, []domain.IndexedProfile{
		updated,
		profileFixture(domain.PoolManager, "M2", "Mallory", 1),
	}))

	counts, err := repo.CountByPool(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[domain.PoolManager])

	results, err := repo.SearchProfiles(ctx, testVec(0), domain.PoolManager, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Caroline", results[0].Profile.Name)
}
