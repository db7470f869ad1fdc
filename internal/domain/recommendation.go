package domain

// RankedRecommendation is one candidate ranked by the model for a pool.
// Rank is unique within a pool and increases from 1.
type RankedRecommendation struct {
	Rank                int      `json:"rank"`
	Name                string   `json:"name"`
	Designation         string   `json:"designation"`
	MatchScore          float64  `json:"match_score"`
	Reasons             []string `json:"reasons"`
	Concerns            []string `json:"concerns"`
	WhyPick             string   `json:"why_pick"`
	AllocationHours     float64  `json:"allocation_suggestion"`
	RecommendedSkills   []string `json:"recommended_skills"`
	RecommendedExpYears float64  `json:"recommended_experience"`
	RecommendationLevel string   `json:"recommendation"`
	Pool                Pool     `json:"pool"`
}

// TeamComposition summarizes the merged recommendation set.
type TeamComposition struct {
	Managers   int    `json:"managers"`
	Testers    int    `json:"testers"`
	Developers int    `json:"developers"`
	Total      int    `json:"total"`
	Rationale  string `json:"rationale"`
}

// PoolBreakdown keeps the per-pool lists alongside the merged sequence.
type PoolBreakdown struct {
	Managers   []RankedRecommendation `json:"managers"`
	Testers    []RankedRecommendation `json:"testers"`
	Developers []RankedRecommendation `json:"developers"`
}

// CandidateCounts reports how many candidates retrieval produced per pool.
type CandidateCounts struct {
	Managers   int `json:"managers"`
	Testers    int `json:"testers"`
	Developers int `json:"developers"`
	Total      int `json:"total"`
}

// RecommendationSet is the merged decision artifact: manager, tester and
// developer recommendations concatenated in that fixed order, with no
// cross-pool re-ranking.
type RecommendationSet struct {
	Requirements    Requirements           `json:"sow_data"`
	Recommendations []RankedRecommendation `json:"recommendations"`
	Composition     TeamComposition        `json:"team_composition"`
	Breakdown       PoolBreakdown          `json:"breakdown"`
	CandidatesFound CandidateCounts        `json:"candidates_found"`
	RawCandidates   map[Pool][]Candidate   `json:"-"`
}
