// Package offers extracts canonical facts from free-text offer copy and terms.
//
// Every extractor is a pure, total function: it applies an ordered list of
// patterns, returns the first match, and returns the zero value when nothing
// matches. Numbers are only ever copied from the source text.
package offers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	expirationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`expire[sd]?\s+(?:in|within)\s+(\d+)\s+days?`),
		regexp.MustCompile(`valid\s+for\s+(\d+)\s+days?`),
		regexp.MustCompile(`must\s+be\s+used\s+within\s+(\d+)\s+days?`),
		regexp.MustCompile(`(\d+)[-\s]day\s+expiration`),
	}

	minimumOddsPatterns = []*regexp.Regexp{
		regexp.MustCompile(`minimum\s+odds\s+(?:of\s+)?([+-]?\d+)`),
		regexp.MustCompile(`odds\s+of\s+([+-]?\d+)\s+or\s+(?:longer|better|higher)`),
		regexp.MustCompile(`([+-]?\d+)\s+odds\s+(?:or\s+(?:longer|better))?`),
	}

	wageringPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)x\s+(?:playthrough|rollover|wagering)`),
		regexp.MustCompile(`(?:playthrough|rollover|wagering)\s+(?:requirement\s+of\s+)?(\d+)x`),
		regexp.MustCompile(`must\s+be\s+wagered\s+(\d+)\s+times?`),
	}

	bonusAmountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\$(\d+(?:,\d+)?(?:\.\d+)?)`),
		regexp.MustCompile(`(\d+(?:,\d+)?)\s+(?:dollars?|bucks)`),
	}
)

// ExpirationDays returns the bonus expiration window in days, or 0 when the
// terms do not state one.
func ExpirationDays(terms string) int {
	text := strings.ToLower(terms)
	for _, re := range expirationPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		days, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		return days
	}
	return 0
}

// MinimumOdds returns the minimum odds requirement as written, e.g. "-500".
func MinimumOdds(terms string) string {
	return firstGroup(strings.ToLower(terms), minimumOddsPatterns)
}

// WageringRequirement returns the playthrough requirement formatted as "Nx".
func WageringRequirement(terms string) string {
	n := firstGroup(strings.ToLower(terms), wageringPatterns)
	if n == "" {
		return ""
	}
	return n + "x"
}

// BonusAmount returns the first dollar amount in the offer copy formatted as
// "$N" with thousands separators removed.
func BonusAmount(offerText string) string {
	n := firstGroup(offerText, bonusAmountPatterns)
	if n == "" {
		return ""
	}
	return "$" + strings.ReplaceAll(n, ",", "")
}

func firstGroup(text string, patterns []*regexp.Regexp) string {
	if text == "" {
		return ""
	}
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// Facts is the set of values derived from an offer's copy and terms.
type Facts struct {
	BonusAmount         string
	ExpirationDays      int
	MinimumOdds         string
	WageringRequirement string
	States              []string
}

// Extract runs every extractor over the given copy and terms.
func Extract(offerText, terms string) Facts {
	return Facts{
		BonusAmount:         BonusAmount(offerText),
		ExpirationDays:      ExpirationDays(terms),
		MinimumOdds:         MinimumOdds(terms),
		WageringRequirement: WageringRequirement(terms),
		States:              EligibleStates(terms),
	}
}

// String renders the facts for prompts and logs.
func (f Facts) String() string {
	return fmt.Sprintf("amount=%q expiration_days=%d min_odds=%q wagering=%q states=%v",
		f.BonusAmount, f.ExpirationDays, f.MinimumOdds, f.WageringRequirement, f.States)
}
