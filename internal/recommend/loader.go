package recommend

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// Source CSV column names. Files are header-keyed so column order is
// free to vary.
const (
	colResourceID     = "ResourceId"
	colName           = "ResourceName"
	colDesignation    = "ResourceDesignationName"
	colLevel          = "ResourceDesignationLevel"
	colDepartment     = "ResourceDepartmentName"
	colBaseDepartment = "ResourceBaseDepartment"
	colSkills         = "ResourceSubSkillWithProficiency"
	colExperience     = "ResourceExperienceInMonths"
	colHoursWorked    = "HoursWorkedOnSkill"
	colAvailability   = "ResourceAvailabilityInPercentage"
	colWeeklyHours    = "HoursAvailableOutOf40"
	colPracticeHours  = "ResourcePracticesWithHoursWorked"
)

// LoadProfiles reads candidate profiles of one pool from a CSV file.
// Rows without a name are dropped, duplicate resource IDs keep the last
// occurrence, and numeric fields coerce to 0 on parse failure.
func LoadProfiles(path string, pool domain.Pool) ([]domain.CandidateProfile, error) {
	if err := domain.ValidatePool(pool); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIngestion,
			fmt.Sprintf("%s profile file not found", pool), err)
	}
	defer f.Close()

	return ParseProfiles(f, pool)
}

// ParseProfiles reads profiles from CSV content.
func ParseProfiles(r io.Reader, pool domain.Pool) ([]domain.CandidateProfile, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIngestion,
			"profile CSV has no header row", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var profiles []domain.CandidateProfile
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeIngestion,
				fmt.Sprintf("profile CSV line %d unreadable", line), err)
		}

		get := func(col string) string {
			idx, ok := cols[col]
			if !ok || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := get(colName)
		if name == "" {
			continue
		}

		profiles = append(profiles, domain.CandidateProfile{
			ResourceID:       get(colResourceID),
			Name:             name,
			Designation:      get(colDesignation),
			DesignationLevel: get(colLevel),
			Department:       get(colDepartment),
			BaseDepartment:   get(colBaseDepartment),
			Skills:           get(colSkills),
			ExperienceMonths: coerceFloat(get(colExperience)),
			HoursWorked:      coerceFloat(get(colHoursWorked)),
			AvailabilityPct:  coerceFloat(strings.TrimSuffix(get(colAvailability), "%")),
			WeeklyHours:      coerceFloat(get(colWeeklyHours)),
			PracticeHours:    get(colPracticeHours),
			Pool:             pool,
		})
	}

	return dedupeLastWins(profiles), nil
}

// dedupeLastWins keeps only the last occurrence of each resource ID,
// in the order those last occurrences appear. Profiles without an ID
// are always kept.
func dedupeLastWins(profiles []domain.CandidateProfile) []domain.CandidateProfile {
	seen := make(map[string]struct{}, len(profiles))
	kept := make([]domain.CandidateProfile, 0, len(profiles))
	for i := len(profiles) - 1; i >= 0; i-- {
		p := profiles[i]
		if p.ResourceID != "" {
			if _, dup := seen[p.ResourceID]; dup {
				continue
			}
			seen[p.ResourceID] = struct{}{}
		}
		kept = append(kept, p)
	}
	// restore original order
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func coerceFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
