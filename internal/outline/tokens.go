package outline

import (
	"regexp"
	"strings"

	"planwrite/internal/core"
)

// Legacy outlines are a flat list of bracket tokens without talking points.

// DefaultShortcodeToken is the token inserted when a token list has no promo block.
const DefaultShortcodeToken = "[SHORTCODE]"

var (
	bracketToken = regexp.MustCompile(`(?i)^\[(?:INTRO|SHORTCODE(?:_[A-Z0-9]+)?|H[23]:\s*.+)\]$`)
	bareToken    = regexp.MustCompile(`(?i)^(?:INTRO|SHORTCODE(?:_[A-Z0-9]+)?)$`)
	bareHeading  = regexp.MustCompile(`(?i)^H[23]:\s*.+$`)
)

// DefaultTokens is the token outline used when legacy input holds no tokens.
func DefaultTokens() []string {
	return []string{
		"[INTRO]",
		"[SHORTCODE]",
		"[H2: Promo Code Overview]",
		"[SHORTCODE]",
		"[H2: How to Claim the Promo Code]",
		"[H2: Daily Promos Today]",
		"[H2: How to Sign Up]",
		"[H2: Terms & Conditions]",
	}
}

// DefaultTokensMulti builds the default token outline for articles that
// carry alternate offers, placing one alternate block per extra offer.
func DefaultTokensMulti(numOffers int, keyword string) []string {
	if keyword == "" {
		keyword = "Offer"
	}
	main := DefaultShortcodeToken
	if numOffers > 1 {
		main = "[SHORTCODE_MAIN]"
	}
	tokens := []string{"[INTRO]", main, "[H2: " + keyword + " Overview]", main}
	if numOffers > 1 {
		tokens = append(tokens, "[SHORTCODE_1]")
	}
	if numOffers > 2 {
		tokens = append(tokens, "[SHORTCODE_2]")
	}
	return append(tokens,
		"[H2: How to Claim the "+keyword+"]",
		main,
		"[H2: Daily Promos Today]",
		"[H2: How to Sign Up for "+keyword+"]",
		"[H2: Terms & Conditions]",
	)
}

// ParseTokens extracts bracket tokens from free-form text. Bare INTRO,
// SHORTCODE and "H2: title" lines are accepted too. The result always holds
// an intro and a shortcode, and alternate shortcodes move directly after the
// first shortcode. Text without any token yields the default outline.
func ParseTokens(text, defaultShortcode string) []string {
	if defaultShortcode == "" {
		defaultShortcode = DefaultShortcodeToken
	}

	var tokens []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case bracketToken.MatchString(line):
			tokens = append(tokens, line)
		case bareToken.MatchString(line):
			tokens = append(tokens, "["+strings.ToUpper(line)+"]")
		case bareHeading.MatchString(line):
			tokens = append(tokens, "["+line+"]")
		}
	}

	if len(tokens) == 0 {
		if defaultShortcode != DefaultShortcodeToken {
			return DefaultTokensMulti(2, "Offer")
		}
		return DefaultTokens()
	}

	if indexOf(tokens, isIntroToken) < 0 {
		tokens = append([]string{"[INTRO]"}, tokens...)
	}
	if indexOf(tokens, isShortcodeToken) < 0 {
		at := indexOf(tokens, isIntroToken) + 1
		tokens = append(tokens[:at], append([]string{defaultShortcode}, tokens[at:]...)...)
	}
	return repositionAltShortcodes(tokens)
}

// repositionAltShortcodes moves [SHORTCODE_1] and [SHORTCODE_2] right after
// the first shortcode token, keeping their relative order.
func repositionAltShortcodes(tokens []string) []string {
	var alts, rest []string
	for _, t := range tokens {
		switch strings.ToUpper(t) {
		case "[SHORTCODE_1]", "[SHORTCODE_2]":
			alts = append(alts, t)
		default:
			rest = append(rest, t)
		}
	}
	if len(alts) == 0 {
		return tokens
	}

	at := indexOf(rest, isShortcodeToken)
	if at < 0 {
		at = indexOf(rest, isIntroToken)
	}
	out := make([]string, 0, len(tokens))
	out = append(out, rest[:at+1]...)
	out = append(out, alts...)
	return append(out, rest[at+1:]...)
}

// ToTokens flattens an outline into legacy tokens, dropping talking points.
func ToTokens(o core.Outline) []string {
	tokens := make([]string, 0, len(o))
	for _, s := range o {
		switch {
		case s.Level == core.LevelIntro:
			tokens = append(tokens, "[INTRO]")
		case s.Level.IsShortcode():
			tokens = append(tokens, "["+strings.ToUpper(string(s.Level))+"]")
		case s.Level.IsHeading():
			tokens = append(tokens, "["+strings.ToUpper(string(s.Level))+": "+s.Title+"]")
		}
	}
	return tokens
}

// FromTokens converts legacy tokens into an outline with empty talking
// points. Tokens naming an unknown level are skipped.
func FromTokens(tokens []string) core.Outline {
	return FromText(strings.Join(tokens, "\n"))
}

func isIntroToken(t string) bool { return strings.EqualFold(t, "[INTRO]") }

func isShortcodeToken(t string) bool { return strings.HasPrefix(strings.ToUpper(t), "[SHORTCODE") }

func indexOf(tokens []string, match func(string) bool) int {
	for i, t := range tokens {
		if match(t) {
			return i
		}
	}
	return -1
}
