// Package intent classifies section headings into the handful of section
// kinds the planner and the draft executor treat specially.
package intent

import "strings"

// Intent is the editorial purpose of a section heading.
type Intent string

const (
	Generic     Intent = "generic"
	Overview    Intent = "overview"
	Claim       Intent = "claim"
	Signup      Intent = "signup"
	Terms       Intent = "terms"
	DailyPromos Intent = "daily_promos"
	Eligibility Intent = "eligibility"
)

type rule struct {
	intent  Intent
	phrases []string
}

// Rules are checked in order; the first rule with a matching phrase wins.
var rules = []rule{
	{Terms, []string{"terms", "conditions", "fine print"}},
	{DailyPromos, []string{"daily promo", "promos today"}},
	{Claim, []string{"claim", "how to use", "example"}},
	{Signup, []string{"sign up", "sign-up", "how to sign", "register", "step"}},
	{Overview, []string{"overview", "what is", "about", "get bonus for", "promo for top markets"}},
	{Eligibility, []string{"eligibility", "key details"}},
}

// renameRules are the narrower phrases that make a planned heading take the
// canonical title of its section.
var renameRules = []rule{
	{Claim, []string{"how to claim", "how to use"}},
	{DailyPromos, []string{"daily promo", "promos today"}},
	{Signup, []string{"how to sign", "sign up", "sign-up", "register"}},
	{Terms, []string{"terms", "conditions", "fine print"}},
}

// Classify returns the intent of a heading. Matching is case-insensitive
// substring matching; headings that match nothing are Generic.
func Classify(title string) Intent {
	return match(rules, title)
}

// Rename returns the canonical section a heading names outright, or Generic.
// Unlike Classify it ignores loose cues like "step" or "example", so
// "Step-by-step odds guide" keeps its own title.
func Rename(title string) Intent {
	return match(renameRules, title)
}

func match(rs []rule, title string) Intent {
	lower := strings.ToLower(title)
	if strings.TrimSpace(lower) == "" {
		return Generic
	}
	for _, r := range rs {
		for _, p := range r.phrases {
			if strings.Contains(lower, p) {
				return r.intent
			}
		}
	}
	return Generic
}

// Canonical reports whether the intent is one of the sections every article
// must carry (claim, signup, terms and daily promos).
func (i Intent) Canonical() bool {
	switch i {
	case Claim, Signup, Terms, DailyPromos:
		return true
	}
	return false
}

// Deterministic reports whether sections with this intent are rendered
// from templates instead of generated text.
func (i Intent) Deterministic() bool {
	return i == Terms || i == DailyPromos
}
