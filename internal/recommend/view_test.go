package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-ai/sowlens/internal/domain"
)

func rankedSet() *domain.RecommendationSet {
	return &domain.RecommendationSet{
		Requirements: requirements(),
		Recommendations: []domain.RankedRecommendation{
			{
				Rank:                1,
				Name:                "Mia",
				Designation:         "Project Manager",
				MatchScore:          0.87654,
				Reasons:             []string{"r1", "r2", "r3", "r4", "r5"},
				Concerns:            []string{"c1", "c2", "c3"},
				WhyPick:             "best fit",
				AllocationHours:     20,
				RecommendedSkills:   []string{"Agile"},
				RecommendedExpYears: 4,
				RecommendationLevel: "Highly recommended",
				Pool:                domain.PoolManager,
			},
		},
		CandidatesFound: domain.CandidateCounts{Managers: 2, Testers: 1, Developers: 4, Total: 7},
	}
}

func TestCleanViewTrimsAndRounds(t *testing.T) {
	resp := CleanView(rankedSet())

	assert.Equal(t, StatusSuccess, resp.Summary.Status)
	assert.Equal(t, 7, resp.Summary.ShortlistedCandidates.Total)

	require.Len(t, resp.Recommendations, 1)
	rec := resp.Recommendations[0]
	assert.Equal(t, 1, rec.Rank)
	assert.InDelta(t, 0.88, rec.MatchScore, 0.0001)
	assert.Equal(t, []string{"r1", "r2", "r3"}, rec.KeyStrengths)
	assert.Equal(t, []string{"c1", "c2"}, rec.Concerns)
	assert.Equal(t, "Highly recommended", rec.RecommendationLevel)
}

func TestCleanViewDefaultsMissingLevel(t *testing.T) {
	set := rankedSet()
	set.Recommendations[0].RecommendationLevel = ""
	set.Recommendations[0].Reasons = nil
	set.Recommendations[0].RecommendedSkills = nil

	resp := CleanView(set)
	rec := resp.Recommendations[0]

	assert.Equal(t, "Consider", rec.RecommendationLevel)
	assert.Equal(t, []string{}, rec.KeyStrengths)
	assert.Equal(t, []string{}, rec.RecommendedSkills)
}

func TestCleanViewFallbackFromShortlist(t *testing.T) {
	set := &domain.RecommendationSet{
		Requirements:    requirements(),
		Recommendations: []domain.RankedRecommendation{},
		CandidatesFound: domain.CandidateCounts{Managers: 2, Developers: 4, Total: 6},
		RawCandidates: map[domain.Pool][]domain.Candidate{
			domain.PoolManager: {
				{
					Profile: domain.CandidateProfile{
						Name:             "Mia",
						Designation:      "PM",
						Skills:           "Agile (Expert)",
						ExperienceMonths: 60,
						WeeklyHours:      25,
						Pool:             domain.PoolManager,
					},
					Similarity: 0.912345,
				},
				{Profile: domain.CandidateProfile{Name: "Max", Pool: domain.PoolManager}, Similarity: 0.8},
			},
			domain.PoolDeveloper: {
				{Profile: domain.CandidateProfile{Name: "Dev1", Pool: domain.PoolDeveloper}, Similarity: 0.7},
				{Profile: domain.CandidateProfile{Name: "Dev2", Pool: domain.PoolDeveloper}, Similarity: 0.6},
				{Profile: domain.CandidateProfile{Name: "Dev3", Pool: domain.PoolDeveloper}, Similarity: 0.5},
				{Profile: domain.CandidateProfile{Name: "Dev4", Pool: domain.PoolDeveloper}, Similarity: 0.4},
			},
		},
	}

	resp := CleanView(set)

	assert.Equal(t, StatusFallback, resp.Summary.Status)
	require.Len(t, resp.Recommendations, 5) // capped shortlist

	first := resp.Recommendations[0]
	assert.Equal(t, 1, first.Rank)
	assert.Equal(t, "Mia", first.Name)
	assert.InDelta(t, 0.91, first.MatchScore, 0.0001)
	assert.Equal(t, "Consider", first.RecommendationLevel)
	assert.Equal(t, "Fallback recommendation based on vector similarity.", first.WhyPick)
	assert.Contains(t, first.KeyStrengths[0], "Agile (Expert)")
	assert.Contains(t, first.KeyStrengths[1], "60 months")
	assert.InDelta(t, 25, first.AllocationHours, 0.001)
	assert.Equal(t, []string{"Check availability"}, first.Concerns)

	// merge order holds: managers before developers
	assert.Equal(t, "Max", resp.Recommendations[1].Name)
	assert.Equal(t, "Dev1", resp.Recommendations[2].Name)
	assert.Equal(t, "Dev3", resp.Recommendations[4].Name)
}

func TestCleanViewFallbackWithNoCandidates(t *testing.T) {
	set := &domain.RecommendationSet{
		Requirements:    requirements(),
		Recommendations: []domain.RankedRecommendation{},
		RawCandidates:   map[domain.Pool][]domain.Candidate{},
	}

	resp := CleanView(set)
	assert.Equal(t, StatusFallback, resp.Summary.Status)
	assert.Empty(t, resp.Recommendations)
}
