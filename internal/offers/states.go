package offers

import (
	"regexp"
	"sort"
	"strings"
)

// AllStates is the sentinel used when an offer is available everywhere.
const AllStates = "ALL"

var stateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "DC",
	"FL", "GA", "HI", "ID", "IL", "IN", "IA", "KS", "KY",
	"LA", "ME", "MD", "MA", "MI", "MN", "MS", "MO", "MT",
	"NE", "NV", "NH", "NJ", "NM", "NY", "NC", "ND", "OH",
	"OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT",
	"VT", "VA", "WA", "WV", "WI", "WY", "ON", "PR",
}

var stateNames = map[string]string{
	"alabama": "AL", "alaska": "AK", "arizona": "AZ", "arkansas": "AR",
	"california": "CA", "colorado": "CO", "connecticut": "CT", "delaware": "DE",
	"district of columbia": "DC", "florida": "FL", "georgia": "GA", "hawaii": "HI",
	"idaho": "ID", "illinois": "IL", "indiana": "IN", "iowa": "IA",
	"kansas": "KS", "kentucky": "KY", "louisiana": "LA", "maine": "ME",
	"maryland": "MD", "massachusetts": "MA", "michigan": "MI", "minnesota": "MN",
	"mississippi": "MS", "missouri": "MO", "montana": "MT", "nebraska": "NE",
	"nevada": "NV", "new hampshire": "NH", "new jersey": "NJ", "new mexico": "NM",
	"new york": "NY", "north carolina": "NC", "north dakota": "ND", "ohio": "OH",
	"oklahoma": "OK", "oregon": "OR", "pennsylvania": "PA", "rhode island": "RI",
	"south carolina": "SC", "south dakota": "SD", "tennessee": "TN", "texas": "TX",
	"utah": "UT", "vermont": "VT", "virginia": "VA", "washington": "WA",
	"west virginia": "WV", "wisconsin": "WI", "wyoming": "WY", "ontario": "ON",
	"puerto rico": "PR", "washington dc": "DC", "washington d c": "DC", "d c": "DC",
	"dc": "DC",
}

type stateName struct {
	pattern *regexp.Regexp
	code    string
}

var (
	stateCodeSet     = make(map[string]bool, len(stateCodes))
	stateCodePattern = regexp.MustCompile(`\b(` + strings.Join(stateCodes, "|") + `)\b`)
	stateNameIndex   []stateName
	punctuation      = regexp.MustCompile(`[^\w\s]`)
	stateSeparators  = regexp.MustCompile(`[,|/;]+`)
)

var eligibilityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bin the following states:\s*(.+?)(?:\.|;|$)`),
	regexp.MustCompile(`(?i)\bavailable in\s+(.+?)(?:\bonly\b|\.|;|$)`),
	regexp.MustCompile(`(?i)\bnew (?:customers|players|users) in\s+(.+?)(?:\bonly\b|\.|;|$)`),
	regexp.MustCompile(`(?i)\bphysically present in\s+(.+?)(?:\bin order to wager\b|\.|;|$)`),
}

var positiveCues = []string{
	"in the following states:",
	"new customers in",
	"new players in",
	"new users in",
	"physically present in",
}

func init() {
	for _, code := range stateCodes {
		stateCodeSet[code] = true
	}
	names := make([]string, 0, len(stateNames))
	for name := range stateNames {
		names = append(names, name)
	}
	// Longest names first so "west virginia" is consumed before "virginia".
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		words := strings.Fields(name)
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		stateNameIndex = append(stateNameIndex, stateName{
			pattern: regexp.MustCompile(`\b` + strings.Join(words, `\s+`) + `\b`),
			code:    stateNames[name],
		})
	}
}

// ParseStates normalizes an explicit states field. Entries may be codes,
// names, or separator-joined lists. "ALL" or "NATIONWIDE" anywhere yields
// ["ALL"]. Unknown entries are dropped and order is preserved.
func ParseStates(values []string) []string {
	var codes []string
	for _, value := range values {
		for _, part := range stateSeparators.Split(value, -1) {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			upper := strings.ToUpper(part)
			if upper == AllStates || upper == "NATIONWIDE" {
				return []string{AllStates}
			}
			if stateCodeSet[upper] {
				codes = append(codes, upper)
				continue
			}
			codes = append(codes, statesInFragment(part)...)
		}
	}
	return dedupe(codes)
}

// EligibleStates extracts the eligible state list from terms text. Only
// positive enumerations count; a cue preceded by "not " is ignored so an
// exclusion list is never read as an eligibility list.
func EligibleStates(terms string) []string {
	if strings.TrimSpace(terms) == "" {
		return nil
	}
	for _, re := range eligibilityPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(terms, -1) {
			if negated(terms, m[0]) {
				continue
			}
			if codes := statesInFragment(terms[m[2]:m[3]]); len(codes) > 0 {
				return codes
			}
		}
	}

	lower := strings.ToLower(terms)
	positive := hasPositiveAvailable(lower)
	for _, cue := range positiveCues {
		if strings.Contains(lower, cue) {
			positive = true
			break
		}
	}
	if positive {
		return statesInFragment(withoutExclusions(terms))
	}
	return nil
}

var (
	clauseBreak     = regexp.MustCompile(`[.;]\s*`)
	exclusionClause = regexp.MustCompile(`(?i)\b(?:not|excluding|except|excludes|void|prohibited)\b`)
)

// withoutExclusions drops every sentence or clause that names excluded
// states, so the fallback scan only sees positive mentions.
func withoutExclusions(terms string) string {
	var kept []string
	for _, clause := range clauseBreak.Split(terms, -1) {
		if !exclusionClause.MatchString(clause) {
			kept = append(kept, clause)
		}
	}
	return strings.Join(kept, ". ")
}

func negated(text string, start int) bool {
	from := start - 12
	if from < 0 {
		from = 0
	}
	return strings.Contains(strings.ToLower(text[from:start]), "not ")
}

// hasPositiveAvailable reports whether "available in" occurs at least once
// without being directly preceded by "not" and whitespace.
func hasPositiveAvailable(lower string) bool {
	const phrase = "available in"
	offset := 0
	for {
		idx := strings.Index(lower[offset:], phrase)
		if idx < 0 {
			return false
		}
		pos := offset + idx
		prefix := strings.TrimRight(lower[:pos], " \t\r\n")
		if len(prefix) == pos || !strings.HasSuffix(prefix, "not") {
			return true
		}
		offset = pos + len(phrase)
	}
}

type foundState struct {
	pos  int
	code string
}

// statesInFragment returns state codes mentioned in a text fragment,
// ordered by where they appear.
func statesInFragment(fragment string) []string {
	if fragment == "" {
		return nil
	}
	var found []foundState
	for _, m := range stateCodePattern.FindAllStringSubmatchIndex(fragment, -1) {
		found = append(found, foundState{pos: m[2], code: fragment[m[2]:m[3]]})
	}

	normalized := []byte(punctuation.ReplaceAllStringFunc(strings.ToLower(fragment), func(s string) string {
		return strings.Repeat(" ", len(s))
	}))
	for _, name := range stateNameIndex {
		for _, loc := range name.pattern.FindAllIndex(normalized, -1) {
			found = append(found, foundState{pos: loc[0], code: name.code})
			for i := loc[0]; i < loc[1]; i++ {
				normalized[i] = '#'
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].pos < found[j].pos })
	codes := make([]string, 0, len(found))
	for _, f := range found {
		codes = append(codes, f.code)
	}
	return dedupe(codes)
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
