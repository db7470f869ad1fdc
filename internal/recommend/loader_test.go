package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-ai/sowlens/internal/domain"
)

const profileCSV = `ResourceId,ResourceName,ResourceDesignationName,ResourceExperienceInMonths,ResourceAvailabilityInPercentage,HoursAvailableOutOf40,ResourceSubSkillWithProficiency
R1,Alice,Senior Developer,84,75%,30,"Go (Expert), SQL (Advanced)"
R2,Bob,Developer,36,50,20,Python (Intermediate)
R3,  ,Developer,12,100,40,
R1,Alice Updated,Lead Developer,90,80%,28,"Go (Expert)"
R4,Dana,Developer,abc,n/a,oops,React
`

func TestParseProfiles(t *testing.T) {
	profiles, err := ParseProfiles(strings.NewReader(profileCSV), domain.PoolDeveloper)
	require.NoError(t, err)

	// blank-name row dropped, R1 deduped keeping the later occurrence
	require.Len(t, profiles, 3)

	assert.Equal(t, "Bob", profiles[0].Name)
	assert.InDelta(t, 50, profiles[0].AvailabilityPct, 0.001)

	assert.Equal(t, "Alice Updated", profiles[1].Name)
	assert.Equal(t, "Lead Developer", profiles[1].Designation)
	assert.InDelta(t, 90, profiles[1].ExperienceMonths, 0.001)
	assert.InDelta(t, 80, profiles[1].AvailabilityPct, 0.001)
	assert.InDelta(t, 28, profiles[1].WeeklyHours, 0.001)
	assert.Equal(t, domain.PoolDeveloper, profiles[1].Pool)

	// non-numeric values coerce to zero
	assert.Equal(t, "Dana", profiles[2].Name)
	assert.Zero(t, profiles[2].ExperienceMonths)
	assert.Zero(t, profiles[2].AvailabilityPct)
	assert.Zero(t, profiles[2].WeeklyHours)
}

func TestParseProfilesMissingColumns(t *testing.T) {
	csv := "ResourceId,ResourceName\nR1,Alice\n"
	profiles, err := ParseProfiles(strings.NewReader(csv), domain.PoolManager)
	require.NoError(t, err)

	require.Len(t, profiles, 1)
	assert.Equal(t, "Alice", profiles[0].Name)
	assert.Empty(t, profiles[0].Skills)
	assert.Zero(t, profiles[0].WeeklyHours)
}

func TestParseProfilesHeaderWhitespace(t *testing.T) {
	csv := " ResourceId , ResourceName \nR1,Alice\n"
	profiles, err := ParseProfiles(strings.NewReader(csv), domain.PoolTester)
	require.NoError(t, err)

	require.Len(t, profiles, 1)
	assert.Equal(t, "R1", profiles[0].ResourceID)
}

func TestParseProfilesEmptyInput(t *testing.T) {
	_, err := ParseProfiles(strings.NewReader(""), domain.PoolTester)
	assert.Error(t, err)
}

func TestParseProfilesInvalidPool(t *testing.T) {
	_, err := LoadProfiles("whatever.csv", domain.Pool("intern"))
	assert.Error(t, err)
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles("does-not-exist.csv", domain.PoolManager)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrCodeIngestion, derr.Code)
}

func TestDedupeKeepsRowsWithoutID(t *testing.T) {
	csv := "ResourceId,ResourceName\n,Alice\n,Bob\n"
	profiles, err := ParseProfiles(strings.NewReader(csv), domain.PoolDeveloper)
	require.NoError(t, err)
	assert.Len(t, profiles, 2)
}
