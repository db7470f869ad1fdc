// Package sanitize turns free-form model output into usable values. The
// completion service returns whatever it likes; every parser here is a
// chain of tolerant strategies tried in fixed order, and none of them
// fabricates structure that was not present in the text.
package sanitize

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/horizon-ai/sowlens/internal/domain"
)

// Pattern order matters: later passes operate on already-stripped text.
var cleanPasses = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(Based on|According to|From|In|The|Looking at).*?[,:]`),
	regexp.MustCompile(`(?i)(the document|the context|the text|above|below|mentioned)`),
	regexp.MustCompile(`(?i)(appears to be|seems to be|is likely|probably)`),
	regexp.MustCompile(`(?i)\b(I|me|my|we|our)\b`),
	regexp.MustCompile(`(?i)^(Answer:|Response:|Result:)`),
	regexp.MustCompile(`(?i)^the\s+`),
	regexp.MustCompile(`\.$`),
}

// Clean strips conversational filler from a model response: leading
// meta-commentary, hedging, first-person pronouns, response-label
// prefixes, a leading bare article left behind by clause stripping, and a
// single trailing period.
func Clean(response string) string {
	if response == "" {
		return ""
	}

	cleaned := strings.TrimSpace(response)
	for _, re := range cleanPasses {
		cleaned = strings.TrimSpace(re.ReplaceAllString(cleaned, ""))
	}
	return cleaned
}

var (
	fencedListRe  = regexp.MustCompile("(?s)```(?:python)?\\s*(\\[.*?\\])\\s*```")
	bracketSpanRe = regexp.MustCompile(`\[([^\]]*)\]`)
	anyBracketRe  = regexp.MustCompile(`(?s)(\[.*?\])`)
	listDelimRe   = regexp.MustCompile(`[,\n;]`)
)

// ParseList extracts a list of strings from a model response. It tries a
// fenced code block, then the first bracketed span, then any bracketed
// span, parsing each as a quoted literal list. When no bracketed form
// parses, the whole response is split on commas, semicolons and newlines.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}

	for _, re := range []*regexp.Regexp{fencedListRe, bracketSpanRe, anyBracketRe} {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if items, ok := parseLiteralList(m[1]); ok {
			return items
		}
	}

	items := []string{}
	for _, piece := range listDelimRe.Split(strings.TrimSpace(raw), -1) {
		piece = trimQuotes(piece)
		if piece != "" {
			items = append(items, piece)
		}
	}
	return items
}

// parseLiteralList splits a bracketed (or bare) comma-separated literal
// into its items, honouring single and double quotes. It is a restricted
// structure parser, never an evaluator.
func parseLiteralList(span string) ([]string, bool) {
	span = strings.TrimSpace(span)
	span = strings.TrimPrefix(span, "[")
	span = strings.TrimSuffix(span, "]")
	if strings.TrimSpace(span) == "" {
		return []string{}, true
	}

	items := []string{}
	var current strings.Builder
	var quote rune

	flush := func() bool {
		item := trimQuotes(current.String())
		current.Reset()
		if item == "" {
			return false
		}
		items = append(items, item)
		return true
	}

	for _, r := range span {
		switch {
		case quote != 0:
			current.WriteRune(r)
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
			current.WriteRune(r)
		case r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	if quote != 0 {
		return nil, false // unterminated quote, let the caller fall back
	}
	return items, true
}

func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

var (
	smartQuoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
		" ", " ",
	)
	jsonFenceRe    = regexp.MustCompile("(?i)```(?:json)?\n?")
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	controlCharRe  = regexp.MustCompile(`[\x00-\x08\x0B-\x1F\x7F]`)
)

// ExtractJSON pulls the most plausible JSON object out of messy model
// output and returns it as raw bytes ready for unmarshalling. Smart
// quotes, markdown fences, comments, stray control characters and
// newlines embedded inside string literals are all repaired first; then
// brace-delimited candidate spans are tried longest-first, falling back
// to the whole trimmed text. Exhausting every candidate yields a
// MalformedOutputError.
func ExtractJSON(raw string) ([]byte, error) {
	text := smartQuoteReplacer.Replace(raw)
	text = jsonFenceRe.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "```", "")
	text = lineCommentRe.ReplaceAllString(text, "")
	text = blockCommentRe.ReplaceAllString(text, "")
	text = controlCharRe.ReplaceAllString(text, "")
	text = rewriteNewlinesInStrings(text)

	var lastErr error
	for _, candidate := range jsonCandidates(text) {
		var probe any
		if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
			lastErr = err
			continue
		}
		return []byte(candidate), nil
	}

	trimmed := strings.TrimSpace(text)
	var probe any
	if err := json.Unmarshal([]byte(trimmed), &probe); err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return nil, domain.NewMalformedOutputError(lastErr, raw)
	}
	return []byte(trimmed), nil
}

// ParseObject is ExtractJSON decoded into a generic mapping.
func ParseObject(raw string) (map[string]any, error) {
	blob, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, domain.NewMalformedOutputError(err, raw)
	}
	return out, nil
}

// rewriteNewlinesInStrings replaces newlines that occur inside a quoted
// string literal with spaces, in a single escape-aware pass.
func rewriteNewlinesInStrings(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))

	inString := false
	escaped := false
	for _, r := range s {
		if r == '"' && !escaped {
			inString = !inString
		}
		if r == '\n' && inString {
			sb.WriteRune(' ')
		} else {
			sb.WriteRune(r)
		}
		escaped = r == '\\' && !escaped
	}
	return sb.String()
}

// jsonCandidates returns brace-delimited spans worth attempting to parse,
// longest first: the widest first-to-last brace span plus every balanced
// top-level object found by a quote-aware scan.
func jsonCandidates(text string) []string {
	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first == -1 || last <= first {
		return nil
	}

	seen := map[string]struct{}{}
	candidates := []string{}
	add := func(span string) {
		if _, ok := seen[span]; ok {
			return
		}
		seen[span] = struct{}{}
		candidates = append(candidates, span)
	}

	add(text[first : last+1])

	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == '"' && !escaped {
			inString = !inString
		}
		escaped = c == '\\' && !escaped
		if inString {
			continue
		}
		switch c {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					add(text[start : i+1])
					start = -1
				}
			}
		}
	}

	// Longest candidate first; equal lengths keep insertion order.
	for i := 1; i < len(candidates); i++ {
		for j := i; j > 0 && len(candidates[j]) > len(candidates[j-1]); j-- {
			candidates[j], candidates[j-1] = candidates[j-1], candidates[j]
		}
	}
	return candidates
}
