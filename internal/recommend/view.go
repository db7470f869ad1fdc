package recommend

import (
	"fmt"
	"math"

	"github.com/horizon-ai/sowlens/internal/domain"
)

const (
	maxKeyStrengths   = 3
	maxConcerns       = 2
	fallbackShortlist = 5
)

// Clean-view summary statuses.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
)

// CleanRecommendation is the trimmed per-candidate view served to UIs.
type CleanRecommendation struct {
	Rank                int      `json:"rank"`
	Name                string   `json:"name"`
	Designation         string   `json:"designation"`
	MatchScore          float64  `json:"match_score"`
	RecommendationLevel string   `json:"recommendation_level"`
	KeyStrengths        []string `json:"key_strengths"`
	Concerns            []string `json:"concerns"`
	WhyPick             string   `json:"why_pick"`
	AllocationHours     float64  `json:"allocation_suggestion"`
	RecommendedSkills   []string `json:"recommended_skills"`
	RecommendedExpYears float64  `json:"recommended_experience"`
}

// CleanSummary reports shortlist size and whether the list came from
// model ranking or the lower-confidence similarity fallback.
type CleanSummary struct {
	ShortlistedCandidates domain.CandidateCounts `json:"initial_shortlisted_candidates"`
	Status                string                 `json:"status"`
}

// CleanResponse is the UI-facing recommendation payload.
type CleanResponse struct {
	Recommendations []CleanRecommendation `json:"recommendations"`
	Summary         CleanSummary          `json:"summary"`
	Requirements    domain.Requirements   `json:"sow_data"`
}

// CleanView reduces a recommendation set for UI consumption: top three
// strengths, top two concerns, scores rounded to two decimals. When the
// model produced no recommendations at all, the shortlist itself is
// served ranked by similarity and flagged as a fallback.
func CleanView(set *domain.RecommendationSet) *CleanResponse {
	resp := &CleanResponse{
		Recommendations: []CleanRecommendation{},
		Summary: CleanSummary{
			ShortlistedCandidates: set.CandidatesFound,
			Status:                StatusSuccess,
		},
		Requirements: set.Requirements,
	}

	if len(set.Recommendations) == 0 {
		resp.Summary.Status = StatusFallback
		resp.Recommendations = fallbackFromShortlist(set.RawCandidates)
		return resp
	}

	for _, rec := range set.Recommendations {
		resp.Recommendations = append(resp.Recommendations, CleanRecommendation{
			Rank:                rec.Rank,
			Name:                rec.Name,
			Designation:         rec.Designation,
			MatchScore:          round2(rec.MatchScore),
			RecommendationLevel: levelOrDefault(rec.RecommendationLevel),
			KeyStrengths:        capped(rec.Reasons, maxKeyStrengths),
			Concerns:            capped(rec.Concerns, maxConcerns),
			WhyPick:             rec.WhyPick,
			AllocationHours:     rec.AllocationHours,
			RecommendedSkills:   orEmptyStrings(rec.RecommendedSkills),
			RecommendedExpYears: rec.RecommendedExpYears,
		})
	}
	return resp
}

// fallbackFromShortlist ranks raw candidates by retrieval similarity
// when the model list is entirely absent, pools merged in the usual
// manager, tester, developer order.
func fallbackFromShortlist(raw map[domain.Pool][]domain.Candidate) []CleanRecommendation {
	out := []CleanRecommendation{}
	rank := 1
	for _, pool := range domain.Pools() {
		for _, c := range raw[pool] {
			if rank > fallbackShortlist {
				return out
			}
			p := c.Profile
			out = append(out, CleanRecommendation{
				Rank:                rank,
				Name:                nameOrUnknown(p.Name),
				Designation:         nameOrUnknown(p.Designation),
				MatchScore:          round2(c.Similarity),
				RecommendationLevel: "Consider",
				KeyStrengths: []string{
					fmt.Sprintf("Skills: %s", valueOr(p.Skills, "Not specified")),
					fmt.Sprintf("Experience: %.0f months", p.ExperienceMonths),
					fmt.Sprintf("Capacity: %.0f hours", p.WeeklyHours),
				},
				Concerns:          []string{"Check availability"},
				WhyPick:           "Fallback recommendation based on vector similarity.",
				AllocationHours:   p.WeeklyHours,
				RecommendedSkills: []string{},
			})
			rank++
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func capped(values []string, n int) []string {
	if values == nil {
		return []string{}
	}
	if len(values) > n {
		return values[:n]
	}
	return values
}

func orEmptyStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func levelOrDefault(level string) string {
	if level == "" {
		return "Consider"
	}
	return level
}

func nameOrUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
