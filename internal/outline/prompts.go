package outline

import (
	"fmt"
	"strings"
	"time"

	"planwrite/internal/llm"
	"planwrite/internal/style"
)

const (
	maxOutlineTokens  = 2000
	termsExcerptChars = 500
	betExampleChars   = 200
	competitorChars   = 2000
)

// TodayLong formats t as "Monday, January 2, 2006" in Eastern time.
func TodayLong(t time.Time) string {
	return t.In(eastern()).Format("Monday, January 2, 2006")
}

// sectionSchema constrains planner output to an array of sections.
func sectionSchema() *llm.Schema {
	section := llm.ObjectSchema(
		[]string{"level", "title", "talking_points", "avoid"},
		map[string]*llm.Schema{
			"level":          llm.StringSchema("intro", "shortcode", "h2", "h3"),
			"title":          llm.StringSchema(),
			"talking_points": llm.ArraySchema(llm.StringSchema(), 0, 0),
			"avoid":          llm.ArraySchema(llm.StringSchema(), 0, 0),
		},
	)
	return llm.ArraySchema(section, 3, 0)
}

func buildSystemPrompt(predictionMarket bool) string {
	var prompt strings.Builder

	prompt.WriteString(fmt.Sprintf("You are a senior content strategist for a %s publication.\n",
		pick(predictionMarket, "sports betting", "prediction market")))
	prompt.WriteString("Your job is to create a DETAILED CONTENT PLAN for a promo code article.\n\n")
	prompt.WriteString("CRITICAL: Each section must have UNIQUE talking points. Never repeat information across sections.\n")
	prompt.WriteString("The outline you create will be reviewed by human writers who may modify it.\n\n")

	prompt.WriteString("Output a JSON array of sections. Each section has level (intro, shortcode, h2 or h3), ")
	prompt.WriteString("title (empty for intro and shortcode), talking_points and avoid.\n\n")

	prompt.WriteString("RULES:\n")
	prompt.WriteString("- INTRO: 2-3 talking points about the hook, date, and offer value\n")
	prompt.WriteString("- SHORTCODE: Place after intro, between major sections, and before sign-up\n")
	prompt.WriteString("- H2 sections: Each needs 2-4 UNIQUE talking points\n")
	prompt.WriteString("- H3 subsections: Only when genuinely helpful, 1-2 talking points\n")
	prompt.WriteString("- \"avoid\" lists what other sections cover (to prevent repetition)\n")
	prompt.WriteString("- Maximum 5 H2 sections total\n")
	prompt.WriteString("- Include keyword in first H2 title\n")
	prompt.WriteString("- " + pick(predictionMarket,
		"Use natural sportsbook language with clear, factual mechanics",
		"Use prediction-market language (trade, market, position, contract) and avoid sportsbook/bet/wager terms") + "\n")

	return prompt.String()
}

func buildUserPrompt(req Request, today string, predictionMarket bool) string {
	pm := predictionMarket
	t := SectionTitles(req.Keyword, req.Offer.Brand, req.EventContext, pm)
	var prompt strings.Builder

	prompt.WriteString("Create a detailed content plan for this article:\n\n")
	prompt.WriteString(fmt.Sprintf("KEYWORD: %s\n", req.Keyword))
	prompt.WriteString(fmt.Sprintf("TITLE: %s\n", req.Title))
	prompt.WriteString(fmt.Sprintf("DATE: %s\n\n", today))

	terms := truncate(req.Offer.Terms, termsExcerptChars)
	if terms == "" {
		terms = "See operator site"
	}
	prompt.WriteString("OFFER DETAILS:\n")
	prompt.WriteString(fmt.Sprintf("- Brand: %s\n", req.Offer.Brand))
	prompt.WriteString(fmt.Sprintf("- Offer: %s\n", req.Offer.OfferText))
	prompt.WriteString(fmt.Sprintf("- Bonus Code: %s\n", req.Offer.BonusCode))
	prompt.WriteString(fmt.Sprintf("- Terms excerpt: %s\n\n", terms))

	if req.EventContext != "" {
		prompt.WriteString(fmt.Sprintf("EVENT CONTEXT: %s\n", req.EventContext))
	}
	if req.BetExample != "" {
		prompt.WriteString(fmt.Sprintf("BET EXAMPLE AVAILABLE: %s...\n", truncate(req.BetExample, betExampleChars)))
	}

	competitor := truncate(req.CompetitorContext, competitorChars)
	if competitor == "" {
		competitor = "(none provided)"
	}
	prompt.WriteString(fmt.Sprintf("\nCOMPETITOR RESEARCH:\n%s\n\n", competitor))

	prompt.WriteString("STYLE GUIDE (follow for tone/structure):\n")
	prompt.WriteString(style.Guide() + "\n\n")
	if pm {
		prompt.WriteString(style.MarketGuide() + "\n\n")
	}

	prompt.WriteString("REQUIRED STRUCTURE:\n")
	prompt.WriteString("1. [INTRO] - Hook with date, offer value, promo code mention\n")
	prompt.WriteString("2. [SHORTCODE] - Promo card\n")
	prompt.WriteString(fmt.Sprintf("3. [H2: %s] - Why this offer matters (NOT how to claim)\n", t.Overview))
	prompt.WriteString("4. [SHORTCODE]\n")
	prompt.WriteString(fmt.Sprintf("5. [H2: %s] - Worked example with calculations\n", t.Claim))
	prompt.WriteString("6. [SHORTCODE]\n")
	prompt.WriteString(fmt.Sprintf("7. [H2: %s] - Placeholder section for daily promo updates\n", t.DailyPromos))
	prompt.WriteString(fmt.Sprintf("8. [H2: %s] - Step-by-step numbered list\n", t.Signup))
	prompt.WriteString(fmt.Sprintf("9. [H2: %s] - Fine print summary\n\n", t.Terms))

	claimPoint := "Use this worked example: " + req.BetExample
	if req.BetExample == "" {
		claimPoint = pick(pm, "Create hypothetical bet example with $50-100 wager",
			"Create a hypothetical worked example using a $50-100 market position")
	}

	prompt.WriteString("TALKING POINTS GUIDANCE:\n")
	prompt.WriteString("- INTRO: " + pick(pm,
		`Should mention date, offer value, that code is needed, and explicit eligible states (not generic "nationwide")`,
		`Should mention date, offer value, and explicit eligible states (not generic "nationwide")`) + "\n")
	prompt.WriteString("- OVERVIEW: " + pick(pm,
		"Why it's valuable, timing advantage, who benefits (NOT claiming steps)",
		"Why it's valuable, market timing angle, who benefits (NOT claiming steps)") + "\n")
	prompt.WriteString("- HOW TO CLAIM: " + claimPoint + "\n")
	prompt.WriteString("- DAILY PROMOS: " + pick(pm,
		"Use placeholder bullets for editor updates (book, code, offer, states)",
		"Use placeholder bullets for editor updates (operator, code, offer, states)") + "\n")
	prompt.WriteString("- SIGN UP: Numbered steps (1. Go to site 2. Register 3. Enter code 4. Deposit " +
		pick(pm, "5. Place bet", "5. Place first qualifying market position") + ")\n")
	prompt.WriteString("- TERMS: " + pick(pm,
		"Full T&C reference, responsible gaming, state helpline",
		"Reference official terms, eligibility, and settlement notes") + "\n\n")

	prompt.WriteString("Output ONLY the JSON array, no other text.")
	return prompt.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
