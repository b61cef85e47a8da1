package draft

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/intent"
	"planwrite/internal/offers"
	"planwrite/internal/outline"
	"planwrite/internal/render"
	"planwrite/internal/style"
)

const (
	previousContentChars = 1500
	maxRepeatedPhrases   = 6
	unknownFact          = "[see terms - do not guess]"
)

var fillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bto (?:qualify|claim|get|unlock|activate|receive) (?:for|this|the) [a-z ]{3,30}`),
	regexp.MustCompile(`(?i)\bin order to [a-z ]{3,30}`),
	regexp.MustCompile(`(?i)\b(?:this|the) (?:offer|promo|bonus) (?:is|allows|gives|provides) [a-z ]{3,30}`),
	regexp.MustCompile(`(?i)\b(?:new|eligible) (?:users|customers|bettors) can [a-z ]{3,30}`),
	regexp.MustCompile(`(?i)\bavailable (?:to|for) (?:new|eligible) [a-z ]{3,30}`),
}

func buildSystemPrompt(pm bool) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are an expert %s content writer for a sports media publication.\n",
		pick(pm, "sports betting", "prediction market")))
	prompt.WriteString("You write one section of a promo code article at a time.\n\n")
	prompt.WriteString("RULES:\n")
	prompt.WriteString("- Output HTML only: <p>, <strong>, <em>, <a>, <ul>, <ol> and <li>\n")
	prompt.WriteString("- Never output headings; the section heading is added for you\n")
	prompt.WriteString("- Use only the facts in SOURCE OF TRUTH; never invent amounts, odds or dates\n")
	prompt.WriteString("- Do not include the responsible gaming helpline; it is added once at the end of the article\n")
	prompt.WriteString("- No exclamation points\n")
	if pm {
		prompt.WriteString("- Use prediction-market language (trade, market, position, contract), never bet, wager or sportsbook\n")
	}
	return prompt.String()
}

func (e *Executor) buildIntroPrompt(s *session, section core.OutlineSection) string {
	o := s.primary()
	var prompt strings.Builder

	prompt.WriteString("Write the introduction of this article:\n\n")
	prompt.WriteString(fmt.Sprintf("TITLE: %s\n", s.req.Title))
	prompt.WriteString(fmt.Sprintf("KEYWORD: %s\n", s.req.Keyword))
	prompt.WriteString(fmt.Sprintf("DATE: %s\n\n", outline.TodayLong(e.now())))

	prompt.WriteString(sourceOfTruth(o, s.pm))
	if s.req.EventContext != "" {
		prompt.WriteString(fmt.Sprintf("EVENT CONTEXT:\n%s\n\n", s.req.EventContext))
	}
	writePoints(&prompt, section)

	prompt.WriteString("REQUIREMENTS:\n")
	if o.HasCode() {
		strong := fmt.Sprintf("<strong>%s bonus code %s</strong>", o.Brand, o.BonusCode)
		prompt.WriteString(fmt.Sprintf("- Mention %s twice: once in the first sentence and once near the end\n", strong))
	} else {
		prompt.WriteString(fmt.Sprintf("- Make clear that no promo code is required to claim the %s offer\n", o.Brand))
	}
	if states := offers.StateList(o.States); states != "" {
		prompt.WriteString(fmt.Sprintf("- Say who is eligible: new users 21+ in %s\n", states))
	} else {
		prompt.WriteString("- Say the offer is for new users 21+ in eligible states\n")
	}
	prompt.WriteString(fmt.Sprintf("- Include the keyword %q naturally\n", s.req.Keyword))
	prompt.WriteString("- Tell readers to see full terms before claiming\n")
	prompt.WriteString("- Two short <p> paragraphs, 80-120 words total\n\n")

	writeStyle(&prompt, s.pm)
	prompt.WriteString("Output ONLY the HTML.")
	return prompt.String()
}

func (e *Executor) buildSectionPrompt(s *session, section core.OutlineSection, kind intent.Intent, linkBlock string) string {
	o := s.primary()
	objective := style.ObjectiveFor(objectiveKey(kind))
	var prompt strings.Builder

	prompt.WriteString("Write the body of this article section:\n\n")
	prompt.WriteString(fmt.Sprintf("ARTICLE: %s\n", s.req.Title))
	prompt.WriteString(fmt.Sprintf("SECTION: %s\n\n", section.Title))

	prompt.WriteString("OBJECTIVE:\n")
	prompt.WriteString(fmt.Sprintf("- Purpose: %s\n", objective.Purpose))
	prompt.WriteString(fmt.Sprintf("- Focus: %s\n", objective.Focus))
	prompt.WriteString(fmt.Sprintf("- Avoid: %s\n", objective.Avoid))
	prompt.WriteString(fmt.Sprintf("- Length: %s\n\n", objective.Length))

	writePoints(&prompt, section)
	prompt.WriteString(sourceOfTruth(o, s.pm))
	if o.HasCode() {
		prompt.WriteString(fmt.Sprintf("When you mention the code, write it as <strong>%s Promo Code %s</strong>.\n\n", o.Brand, o.BonusCode))
	}
	if kind == intent.Claim && s.req.BetExample != "" {
		prompt.WriteString(fmt.Sprintf("WORKED EXAMPLE (use these numbers):\n%s\n\n", s.req.BetExample))
	}
	if s.req.EventContext != "" {
		prompt.WriteString(fmt.Sprintf("EVENT CONTEXT:\n%s\n\n", s.req.EventContext))
	}
	if linkBlock != "" {
		prompt.WriteString("INTERNAL LINKS (use at most two, with natural anchors):\n")
		prompt.WriteString(linkBlock + "\n\n")
	}

	prompt.WriteString("KEYWORD USAGE:\n")
	if s.keywordCount < e.keywordTarget {
		prompt.WriteString(fmt.Sprintf("- You MUST include %q at least once (current: %d, target: %d)\n\n", s.req.Keyword, s.keywordCount, e.keywordTarget))
	} else {
		prompt.WriteString(fmt.Sprintf("- You SHOULD include %q only if it reads naturally (current: %d, target: %d)\n\n", s.req.Keyword, s.keywordCount, e.keywordTarget))
	}

	if previous := s.tail(previousContentChars); previous != "" {
		prompt.WriteString("PREVIOUS CONTENT (do not repeat it):\n")
		prompt.WriteString(previous + "\n\n")
	}
	if phrases := repeatedPhrases(s.previous.String()); len(phrases) > 0 {
		prompt.WriteString("PHRASES TO AVOID (already used):\n")
		for _, p := range phrases {
			prompt.WriteString(fmt.Sprintf("- %q\n", p))
		}
		prompt.WriteString("\n")
	}

	writeStyle(&prompt, s.pm)
	prompt.WriteString("FORMAT: 2-3 <p> paragraphs. Output ONLY the HTML.")
	return prompt.String()
}

func buildSignupPrompt(s *session) string {
	o := s.primary()
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("Write exactly %d numbered sign-up steps for the %s offer.\n\n", signupStepCount, o.Brand))
	prompt.WriteString(sourceOfTruth(o, s.pm))
	prompt.WriteString("RULES:\n")
	prompt.WriteString("- Each step is one short sentence without a leading number\n")
	if o.HasCode() {
		prompt.WriteString(fmt.Sprintf("- Step two is creating an account and entering <strong>%s promo code %s</strong>\n", o.Brand, o.BonusCode))
	} else {
		prompt.WriteString("- Step two is creating an account; say no promo code is required\n")
	}
	prompt.WriteString("- " + pick(s.pm,
		"The last step is placing the first qualifying bet",
		"The last step is opening the first qualifying market position") + "\n")
	prompt.WriteString(`- Respond as JSON: {"steps": ["...", "...", "...", "...", "..."]}`)
	return prompt.String()
}

// sourceOfTruth lists the offer facts the writer may state. Unknown facts
// are marked so the model does not fill them in.
func sourceOfTruth(o core.Offer, pm bool) string {
	fact := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return unknownFact
		}
		return v
	}
	code := o.BonusCode
	if !o.HasCode() {
		code = "none required"
	}
	expiration := ""
	if o.ExpirationDays > 0 {
		expiration = fmt.Sprintf("%d days", o.ExpirationDays)
	}

	var b strings.Builder
	b.WriteString("SOURCE OF TRUTH:\n")
	b.WriteString(fmt.Sprintf("- Brand: %s\n", o.Brand))
	b.WriteString(fmt.Sprintf("- Offer: %s\n", o.OfferText))
	b.WriteString(fmt.Sprintf("- Bonus code: %s\n", code))
	b.WriteString(fmt.Sprintf("- Bonus amount: %s\n", fact(o.BonusAmount)))
	b.WriteString(fmt.Sprintf("- Expiration: %s\n", fact(expiration)))
	if !pm {
		b.WriteString(fmt.Sprintf("- Minimum odds: %s\n", fact(o.MinimumOdds)))
		b.WriteString(fmt.Sprintf("- Wagering requirement: %s\n", fact(o.WageringRequirement)))
	}
	b.WriteString(fmt.Sprintf("- Eligible states: %s\n\n", fact(offers.StateList(o.States))))
	return b.String()
}

func writePoints(prompt *strings.Builder, section core.OutlineSection) {
	if len(section.TalkingPoints) > 0 {
		prompt.WriteString("TALKING POINTS:\n")
		for _, p := range section.TalkingPoints {
			prompt.WriteString("- " + p + "\n")
		}
		prompt.WriteString("\n")
	}
	if len(section.Avoid) > 0 {
		prompt.WriteString("DO NOT COVER (handled elsewhere): " + strings.Join(section.Avoid, ", ") + "\n\n")
	}
}

func writeStyle(prompt *strings.Builder, pm bool) {
	prompt.WriteString(style.Guide() + "\n\n")
	if pm {
		prompt.WriteString(style.MarketGuide() + "\n\n")
	}
}

func objectiveKey(kind intent.Intent) string {
	switch kind {
	case intent.Overview, intent.Claim, intent.Eligibility:
		return string(kind)
	}
	return "generic"
}

// repeatedPhrases collects stock phrases already present in the draft so
// later sections can be told to avoid them.
func repeatedPhrases(previous string) []string {
	text := strings.ToLower(strings.Join(strings.Fields(render.StripTags(previous)), " "))
	if text == "" {
		return nil
	}

	var out []string
	for _, re := range fillerPatterns {
		for _, m := range re.FindAllString(text, -1) {
			if len(out) >= maxRepeatedPhrases {
				break
			}
			if m = strings.TrimSpace(m); len(m) > 10 && !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	for _, p := range style.FillerPhrases {
		if strings.Contains(text, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}
