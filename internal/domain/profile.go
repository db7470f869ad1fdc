package domain

import "fmt"

// Pool identifies one of the candidate populations, each with its own
// retrieval collection and ranking prompt.
type Pool string

const (
	PoolManager   Pool = "manager"
	PoolTester    Pool = "tester"
	PoolDeveloper Pool = "developer"
)

// Pools lists the candidate pools in merge order.
func Pools() []Pool {
	return []Pool{PoolManager, PoolTester, PoolDeveloper}
}

// ValidatePool checks that p is a known pool.
func ValidatePool(p Pool) error {
	switch p {
	case PoolManager, PoolTester, PoolDeveloper:
		return nil
	}
	return NewDomainError(ErrCodeValidation, fmt.Sprintf("invalid pool %q", p))
}

// CandidateProfile is one employee loaded from tabular source data.
// Numeric fields are coerced to 0 on parse failure, never left unset.
type CandidateProfile struct {
	ResourceID       string
	Name             string
	Designation      string
	DesignationLevel string
	Department       string
	BaseDepartment   string
	Skills           string // semi-structured "skill (proficiency)" list
	ExperienceMonths float64
	HoursWorked      float64
	AvailabilityPct  float64
	WeeklyHours      float64
	PracticeHours    string
	Pool             Pool
}

// ProfileID builds the collection-unique identifier for a profile.
func (p *CandidateProfile) ProfileID() string {
	return fmt.Sprintf("%s_%s", p.Pool, p.ResourceID)
}

// Candidate is a profile returned from a pool-scoped retrieval query,
// carrying the similarity computed as 1 - distance.
type Candidate struct {
	Profile    CandidateProfile
	Summary    string
	Similarity float64
}

// IndexedProfile pairs a profile with its rendered summary and the
// summary's embedding, ready for persistence.
type IndexedProfile struct {
	Profile   CandidateProfile
	Summary   string
	Embedding []float32
}
