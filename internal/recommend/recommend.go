// Package recommend matches staffing candidates to extracted SOW
// requirements: pool-scoped vector retrieval, per-pool ranking prompts
// and a fixed-order merge of the results.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"

	"github.com/horizon-ai/sowlens/internal/domain"
	"github.com/horizon-ai/sowlens/internal/prompt"
	"github.com/horizon-ai/sowlens/internal/sanitize"
	"github.com/horizon-ai/sowlens/internal/telemetry"
)

// ProfileStoreInterface defines the profile persistence and search
// operations the recommender depends on.
type ProfileStoreInterface interface {
	SearchProfiles(ctx context.Context, embedding []float32, pool domain.Pool, k int) ([]domain.Candidate, error)
	ReplaceProfiles(ctx context.Context, pool domain.Pool, profiles []domain.IndexedProfile) error
	CountByPool(ctx context.Context) (map[domain.Pool]int, error)
}

// EmbedderInterface defines embedding generation.
type EmbedderInterface interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// CompleterInterface defines the blocking completion call.
type CompleterInterface interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options tunes retrieval depth and ranking targets per pool.
type Options struct {
	QueryLimits map[domain.Pool]int
	Targets     map[domain.Pool]int
}

// DefaultOptions returns the pool defaults: shortlist 5/5/10, recommend
// 1 manager, 1 tester and 4 developers.
func DefaultOptions() Options {
	return Options{
		QueryLimits: map[domain.Pool]int{
			domain.PoolManager:   5,
			domain.PoolTester:    5,
			domain.PoolDeveloper: 10,
		},
		Targets: map[domain.Pool]int{
			domain.PoolManager:   1,
			domain.PoolTester:    1,
			domain.PoolDeveloper: 4,
		},
	}
}

// Recommender produces ranked staffing recommendations for a SOW.
type Recommender struct {
	store     ProfileStoreInterface
	embedder  EmbedderInterface
	completer CompleterInterface
	opts      Options
}

func NewRecommender(
	store ProfileStoreInterface,
	embedder EmbedderInterface,
	completer CompleterInterface,
	opts Options,
) *Recommender {
	defaults := DefaultOptions()
	if opts.QueryLimits == nil {
		opts.QueryLimits = defaults.QueryLimits
	}
	if opts.Targets == nil {
		opts.Targets = defaults.Targets
	}
	return &Recommender{
		store:     store,
		embedder:  embedder,
		completer: completer,
		opts:      opts,
	}
}

// Recommend retrieves and ranks candidates in each pool, then merges
// the pool results in manager, tester, developer order. A failing pool
// contributes an empty list and never aborts its siblings.
func (r *Recommender) Recommend(ctx context.Context, req domain.Requirements) (*domain.RecommendationSet, error) {
	ctx, span := telemetry.StartSpan(ctx, "Recommender.Recommend", telemetry.SpanAttributes{
		Operation: "recommend",
	})
	defer span.End()

	query := prompt.SearchQuery(req)
	embedding, err := r.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		err = domain.NewDomainErrorWithCause(domain.ErrCodeRetrieval,
			"search query embedding failed", err)
		span.SetError(err)
		return nil, err
	}

	raw := make(map[domain.Pool][]domain.Candidate, len(domain.Pools()))
	ranked := make(map[domain.Pool][]domain.RankedRecommendation, len(domain.Pools()))

	for _, pool := range domain.Pools() {
		candidates, err := r.store.SearchProfiles(ctx, embedding, pool, r.opts.QueryLimits[pool])
		if err != nil {
			log.Printf("recommend: %s retrieval failed: %v", pool, err)
			raw[pool] = nil
			ranked[pool] = nil
			continue
		}
		raw[pool] = candidates
		ranked[pool] = r.rankPool(ctx, pool, req, candidates)
	}

	set := &domain.RecommendationSet{
		Requirements:  req,
		RawCandidates: raw,
	}
	set.Recommendations = []domain.RankedRecommendation{}
	for _, pool := range domain.Pools() {
		set.Recommendations = append(set.Recommendations, ranked[pool]...)
	}
	set.Breakdown = domain.PoolBreakdown{
		Managers:   orEmpty(ranked[domain.PoolManager]),
		Testers:    orEmpty(ranked[domain.PoolTester]),
		Developers: orEmpty(ranked[domain.PoolDeveloper]),
	}
	set.Composition = composition(set.Breakdown)
	set.CandidatesFound = domain.CandidateCounts{
		Managers:   len(raw[domain.PoolManager]),
		Testers:    len(raw[domain.PoolTester]),
		Developers: len(raw[domain.PoolDeveloper]),
	}
	set.CandidatesFound.Total = set.CandidatesFound.Managers +
		set.CandidatesFound.Testers + set.CandidatesFound.Developers

	return set, nil
}

// rankPool asks the model to pick this pool's recommendations from the
// shortlist. Any failure yields an empty list for the pool.
func (r *Recommender) rankPool(ctx context.Context, pool domain.Pool, req domain.Requirements, candidates []domain.Candidate) []domain.RankedRecommendation {
	if len(candidates) == 0 {
		return nil
	}

	target := r.opts.Targets[pool]
	raw, err := r.completer.Complete(ctx, prompt.Ranking(pool, req, candidates, target))
	if err != nil {
		log.Printf("recommend: %s ranking completion failed: %v", pool, err)
		return nil
	}

	data, err := sanitize.ExtractJSON(raw)
	if err != nil {
		log.Printf("recommend: %s ranking output unusable: %v", pool, err)
		return nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		log.Printf("recommend: %s ranking JSON has unexpected shape: %v", pool, err)
		return nil
	}

	var wire []wireRecommendation
	if entries, ok := payload[prompt.ResponseKey(pool)]; ok {
		if err := json.Unmarshal(entries, &wire); err != nil {
			log.Printf("recommend: %s ranking entries undecodable: %v", pool, err)
			return nil
		}
	}
	recs := make([]domain.RankedRecommendation, 0, len(wire))
	for i, w := range wire {
		rec := w.toDomain(pool)
		if rec.Rank == 0 {
			rec.Rank = i + 1
		}
		logAllocationOverrun(pool, rec, candidates)
		recs = append(recs, rec)
	}
	return recs
}

// logAllocationOverrun flags suggested allocations above the
// candidate's weekly capacity. The value is reported as-is; the log
// line is the data-quality signal.
func logAllocationOverrun(pool domain.Pool, rec domain.RankedRecommendation, candidates []domain.Candidate) {
	for _, c := range candidates {
		if c.Profile.Name == rec.Name {
			if rec.AllocationHours > c.Profile.WeeklyHours {
				log.Printf("recommend: %s %q allocation %.0fh exceeds weekly capacity %.0fh",
					pool, rec.Name, rec.AllocationHours, c.Profile.WeeklyHours)
			}
			return
		}
	}
}

func composition(b domain.PoolBreakdown) domain.TeamComposition {
	c := domain.TeamComposition{
		Managers:   len(b.Managers),
		Testers:    len(b.Testers),
		Developers: len(b.Developers),
	}
	c.Total = c.Managers + c.Testers + c.Developers
	c.Rationale = fmt.Sprintf(
		"Selected %d manager(s) for project leadership, %d tester(s) for quality assurance, and %d developer(s) for implementation.",
		c.Managers, c.Testers, c.Developers)
	return c
}

func orEmpty(recs []domain.RankedRecommendation) []domain.RankedRecommendation {
	if recs == nil {
		return []domain.RankedRecommendation{}
	}
	return recs
}

// wireRecommendation decodes one ranking entry as models actually emit
// them: numbers arrive as JSON numbers or as quoted strings.
type wireRecommendation struct {
	Rank                flexInt   `json:"rank"`
	Name                string    `json:"name"`
	Designation         string    `json:"designation"`
	MatchScore          flexFloat `json:"match_score"`
	Reasons             []string  `json:"reasons"`
	Concerns            []string  `json:"concerns"`
	WhyPick             string    `json:"why_pick"`
	AllocationHours     flexFloat `json:"allocation_suggestion"`
	RecommendedSkills   []string  `json:"recommended_skills"`
	RecommendedExpYears flexFloat `json:"recommended_experience"`
	RecommendationLevel string    `json:"recommendation"`
}

func (w wireRecommendation) toDomain(pool domain.Pool) domain.RankedRecommendation {
	return domain.RankedRecommendation{
		Rank:                int(w.Rank),
		Name:                w.Name,
		Designation:         w.Designation,
		MatchScore:          float64(w.MatchScore),
		Reasons:             w.Reasons,
		Concerns:            w.Concerns,
		WhyPick:             w.WhyPick,
		AllocationHours:     float64(w.AllocationHours),
		RecommendedSkills:   w.RecommendedSkills,
		RecommendedExpYears: float64(w.RecommendedExpYears),
		RecommendationLevel: w.RecommendationLevel,
		Pool:                pool,
	}
}

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt(v)
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := flexNumber(data)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// flexNumber accepts a JSON number, a quoted number, or null. Anything
// else coerces to 0 rather than failing the whole pool.
func flexNumber(data []byte) (float64, error) {
	s := string(bytes.TrimSpace(data))
	if s == "" || s == "null" {
		return 0, nil
	}
	if s[0] == '"' {
		var quoted string
		if err := json.Unmarshal(data, &quoted); err != nil {
			return 0, err
		}
		s = quoted
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, nil
	}
	return v, nil
}
