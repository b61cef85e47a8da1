// Package operator maps free-form brand mentions to canonical operator keys
// and decides whether content should be written in prediction-market mode.
package operator

import (
	"regexp"
	"strings"
)

type alias struct {
	pattern  *regexp.Regexp
	operator string
}

// Order matters: the first matching alias wins.
var aliases = []alias{
	{regexp.MustCompile(`(?i)\bkalshi\b`), "kalshi"},
	{regexp.MustCompile(`(?i)\bpolymarket\b`), "polymarket"},
	{regexp.MustCompile(`(?i)\bbet365\b`), "bet365"},
	{regexp.MustCompile(`(?i)\bfanduel\b`), "fanduel"},
	{regexp.MustCompile(`(?i)\bdraftkings\b`), "draftkings"},
	{regexp.MustCompile(`(?i)\bbetmgm\b`), "betmgm"},
	{regexp.MustCompile(`(?i)\bcaesars\b`), "caesars"},
	{regexp.MustCompile(`(?i)\bfanatics\b`), "fanatics"},
	{regexp.MustCompile(`(?i)\bunderdog\b`), "underdog"},
	{regexp.MustCompile(`(?i)\bsleeper\b`), "sleeper"},
	{regexp.MustCompile(`(?i)\bnovig\b`), "novig"},
	{regexp.MustCompile(`(?i)\bthescore\b|\bthe score\b`), "thescore"},
	{regexp.MustCompile(`(?i)\bcrypto\.com\b|\bcrypto\b`), "crypto"},
	{regexp.MustCompile(`(?i)\bfliff\b`), "fliff"},
	{regexp.MustCompile(`(?i)\bdabble\b`), "dabble"},
	{regexp.MustCompile(`(?i)\bprophetx\b|\bprophet\b`), "prophetx"},
}

var predictionMarkets = map[string]bool{
	"kalshi":     true,
	"polymarket": true,
}

// Normalize infers the canonical operator key from any number of free-form
// values. It returns "" when no known operator is mentioned.
func Normalize(values ...string) string {
	text := strings.TrimSpace(strings.Join(nonEmpty(values), " "))
	if text == "" {
		return ""
	}
	for _, a := range aliases {
		if a.pattern.MatchString(text) {
			return a.operator
		}
	}
	return ""
}

// Key canonicalizes an explicit operator tag such as "DraftKings
// Sportsbook". Tags no alias recognizes are kept, lowercased.
func Key(tag string) string {
	if op := Normalize(tag); op != "" {
		return op
	}
	return strings.ToLower(strings.TrimSpace(tag))
}

// IsPredictionMarket reports whether the operator key is a prediction market.
func IsPredictionMarket(op string) bool {
	return predictionMarkets[strings.ToLower(strings.TrimSpace(op))]
}

// DetectPredictionMarket reports whether the given signals (operator tag,
// brand, offer text, keyword, title) point at a prediction-market operator.
func DetectPredictionMarket(values ...string) bool {
	return IsPredictionMarket(Normalize(values...))
}

// Conflicts reports whether a candidate operator tag belongs to a different
// operator than the requesting one. Untagged candidates never conflict.
func Conflicts(candidate, requesting string) bool {
	candidate = strings.ToLower(strings.TrimSpace(candidate))
	requesting = strings.ToLower(strings.TrimSpace(requesting))
	if candidate == "" || requesting == "" {
		return false
	}
	return candidate != requesting
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
