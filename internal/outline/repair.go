package outline

import (
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/intent"
)

// maxH2WithoutShortcode is the number of h2 sections allowed in a row before
// a promo block must break them up.
const maxH2WithoutShortcode = 2

// Repair enforces the structural rules of an outline: it starts with an
// intro followed by a shortcode, and no more than two h2 sections run
// without a shortcode between them. A missing intro is synthesized; a
// misplaced one moves to the front. Repair never fails and repairing a
// repaired outline changes nothing.
func Repair(o core.Outline) core.Outline {
	var (
		intro *core.OutlineSection
		rest  = make(core.Outline, 0, len(o))
	)
	for i := range o {
		if o[i].Level == core.LevelIntro {
			if intro == nil {
				s := o[i]
				intro = &s
			}
			continue
		}
		rest = append(rest, o[i])
	}
	if intro == nil {
		intro = &core.OutlineSection{
			Level:         core.LevelIntro,
			TalkingPoints: []string{"Hook with date and offer value", "Mention promo code twice"},
			Avoid:         []string{},
		}
	}

	out := make(core.Outline, 0, len(o)+4)
	out = append(out, *intro)
	if len(rest) == 0 || !rest[0].Level.IsShortcode() {
		out = append(out, shortcode())
	}

	run := 0
	for _, s := range rest {
		switch {
		case s.Level.IsShortcode():
			run = 0
		case s.Level == core.LevelH2:
			if run >= maxH2WithoutShortcode {
				out = append(out, shortcode())
				run = 0
			}
			run++
		}
		out = append(out, s)
	}
	return out
}

// ApplyEditorialRules applies the house section rules to a planned outline.
// Canonical sections get contextual titles and the first h2 becomes the
// overview. Standalone eligibility sections are dropped because intro,
// claim and terms already cover them. Missing claim, daily promos, signup
// and terms sections are added with default talking points; daily promos
// goes before signup or terms.
func ApplyEditorialRules(o core.Outline, keyword, brand, eventContext string, predictionMarket bool) core.Outline {
	if len(o) == 0 {
		return o
	}
	t := SectionTitles(keyword, brand, eventContext, predictionMarket)

	out := make(core.Outline, 0, len(o)+4)
	seen := make(map[intent.Intent]int)
	firstH2 := -1
	var firstKind intent.Intent
	for _, s := range o.Clone() {
		if s.Level != core.LevelH2 {
			out = append(out, s)
			continue
		}

		lower := strings.ToLower(s.Title)
		if intent.Classify(s.Title) == intent.Eligibility && (strings.Contains(lower, "key details") || strings.Contains(lower, "eligibility")) {
			continue
		}
		kind := intent.Rename(s.Title)
		switch kind {
		case intent.Claim:
			s.Title = t.Claim
		case intent.DailyPromos:
			s.Title = t.DailyPromos
		case intent.Signup:
			s.Title = t.Signup
		case intent.Terms:
			s.Title = t.Terms
		}
		if firstH2 < 0 {
			firstH2 = len(out)
			firstKind = kind
		}
		seen[kind]++
		out = append(out, s)
	}
	// The first h2 always becomes the overview, so it no longer counts
	// toward the canonical section it was titled after.
	if firstH2 >= 0 {
		out[firstH2].Title = t.Overview
		seen[firstKind]--
	}

	if seen[intent.Claim] == 0 {
		out = append(out, h2(t.Claim, []string{
			pick(predictionMarket, "Worked example with win/loss outcomes", "Worked example with contract settlement outcomes"),
			pick(predictionMarket, "How bonus credits are applied", "How promo credits apply to eligible market positions"),
		}, []string{"Rewriting legal terms"}))
	}

	if seen[intent.DailyPromos] == 0 {
		daily := h2(t.DailyPromos, []string{
			"Placeholder for today's rotating promos",
			pick(predictionMarket, "List sportsbook, promo code, and eligible states", "List operator, promo code, and eligible states"),
			"Update this section daily before publishing",
		}, []string{"Using stale promos from prior days"})
		at := len(out)
		for i, s := range out {
			lower := strings.ToLower(s.Title)
			if s.Level == core.LevelH2 && (strings.Contains(lower, "sign up") || strings.Contains(lower, "terms")) {
				at = i
				break
			}
		}
		out = append(out[:at], append(core.Outline{daily}, out[at:]...)...)
	}

	if seen[intent.Signup] == 0 {
		out = append(out, h2(t.Signup, []string{
			"Five-step registration flow",
			"Where to enter promo code",
			pick(predictionMarket, "How to place first qualifying bet", "How to place first qualifying market position"),
		}, []string{"Deep legal terms"}))
	}

	if seen[intent.Terms] == 0 {
		out = append(out, h2(t.Terms, []string{
			pick(predictionMarket, "Reference official operator terms", "Reference official market terms"),
			pick(predictionMarket, "State restrictions and expiry windows", "State restrictions and settlement timelines"),
		}, []string{"Repeating claim walkthrough"}))
	}
	return out
}
