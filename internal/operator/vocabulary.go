package operator

import (
	"regexp"
	"strings"
	"unicode"
)

var marketTerms = map[string]string{
	"sportsbook":  "operator",
	"sportsbooks": "operators",
	"bonus bet":   "promo credit",
	"bonus bets":  "promo credits",
	"wager":       "trade",
	"wagers":      "trades",
	"wagered":     "traded",
	"wagering":    "trading",
	"bet":         "trade",
	"bets":        "trades",
	"betting":     "trading",
	"bettor":      "trader",
	"bettors":     "traders",
}

var (
	marketTermPattern = regexp.MustCompile(`(?i)\b(sportsbooks?|bonus\s+bets?|wager(?:s|ed|ing)?|bet(?:s|ting|tors?)?)\b`)
	tagPattern        = regexp.MustCompile(`<[^>]*>`)
)

// MarketVocabulary rewrites sportsbook vocabulary (bet, wager, sportsbook,
// bonus bets) into prediction-market vocabulary. Only text outside HTML tags
// is touched, so attributes and URLs survive unchanged. Capitalization of the
// original word is preserved.
func MarketVocabulary(text string) string {
	if text == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(text, -1) {
		b.WriteString(replaceTerms(text[last:loc[0]]))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(replaceTerms(text[last:]))
	return b.String()
}

// Apply rewrites text with MarketVocabulary when predictionMarket is set and
// returns it unchanged otherwise.
func Apply(text string, predictionMarket bool) string {
	if !predictionMarket {
		return text
	}
	return MarketVocabulary(text)
}

func replaceTerms(segment string) string {
	return marketTermPattern.ReplaceAllStringFunc(segment, func(match string) string {
		key := strings.ToLower(strings.Join(strings.Fields(match), " "))
		repl, ok := marketTerms[key]
		if !ok {
			return match
		}
		return matchCase(match, repl)
	})
}

func matchCase(original, repl string) string {
	letters := 0
	upper := 0
	for _, r := range original {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	switch {
	case letters > 1 && upper == letters:
		return strings.ToUpper(repl)
	case unicode.IsUpper([]rune(original)[0]):
		return strings.ToUpper(repl[:1]) + repl[1:]
	default:
		return repl
	}
}
