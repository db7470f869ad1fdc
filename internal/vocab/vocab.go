// Package vocab holds the controlled vocabularies used to constrain and
// correct model output, with approximate matching against them.
package vocab

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultCutoff is the minimum similarity for a fuzzy match to count.
const DefaultCutoff = 0.7

// Vocabulary maps a normalized field key (e.g. "practice", "technology")
// to its list of valid values.
type Vocabulary map[string][]string

type vocabularyFile struct {
	Data map[string][]string `json:"data"`
}

// Load reads a vocabulary file of the form {"data": {field: [values]}}.
func Load(path string) (Vocabulary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}

	var file vocabularyFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file: %w", err)
	}
	if file.Data == nil {
		file.Data = map[string][]string{}
	}
	return Vocabulary(file.Data), nil
}

// Values returns the valid values for a canonical field name, keyed the
// way the vocabulary file keys them ("Billing Type" -> "billing_type").
func (v Vocabulary) Values(fieldName string) []string {
	if v == nil {
		return nil
	}
	return v[FieldKey(fieldName)]
}

// FieldKey normalizes a canonical field name to its vocabulary key.
func FieldKey(fieldName string) string {
	return strings.ReplaceAll(strings.ToLower(fieldName), " ", "_")
}

// Similarity scores two strings in [0,1] from their edit distance,
// case-insensitively. Identical strings score 1.
func Similarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Match finds the closest valid value for a candidate, or "" when nothing
// clears the cutoff.
func Match(candidate string, valid []string, cutoff float64) string {
	best := ""
	bestScore := cutoff
	for _, v := range valid {
		if score := Similarity(candidate, v); score >= bestScore {
			best = v
			bestScore = score
		}
	}
	return best
}

// MatchAll maps each candidate to its closest valid value, silently
// dropping candidates that fall below the cutoff.
func MatchAll(candidates, valid []string, cutoff float64) []string {
	matched := []string{}
	for _, c := range candidates {
		if m := Match(c, valid, cutoff); m != "" {
			matched = append(matched, m)
		}
	}
	return matched
}
