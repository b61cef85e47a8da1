package outline

import "planwrite/internal/core"

func shortcode() core.OutlineSection {
	return core.OutlineSection{Level: core.LevelShortcode, TalkingPoints: []string{}, Avoid: []string{}}
}

func h2(title string, points, avoid []string) core.OutlineSection {
	return core.OutlineSection{Level: core.LevelH2, Title: title, TalkingPoints: points, Avoid: avoid}
}

// pick returns market when predictionMarket is set and sportsbook otherwise.
func pick(predictionMarket bool, sportsbook, market string) string {
	if predictionMarket {
		return market
	}
	return sportsbook
}

// DefaultOutline is the house outline used when planning fails.
func DefaultOutline(keyword, brand, eventContext, betExample string, predictionMarket bool) core.Outline {
	t := SectionTitles(keyword, brand, eventContext, predictionMarket)
	example := betExample
	if example == "" {
		example = pick(predictionMarket, "Worked example with $50 bet", "Worked example with a $50 market position")
	}

	return core.Outline{
		{
			Level: core.LevelIntro,
			TalkingPoints: []string{
				"Hook with today's date and " + brand + " offer value",
				"Mention the promo code twice naturally",
				"State eligibility (21+, new users, explicit eligible states)",
			},
			Avoid: []string{},
		},
		shortcode(),
		h2(t.Overview, []string{
			pick(predictionMarket, "Why this offer is valuable for bettors", "Why this offer is valuable for prediction-market users"),
			"Timing advantage (sign up now)",
			"What makes it stand out from other promos",
		}, []string{"Step-by-step claiming instructions", "Full terms details"}),
		shortcode(),
		h2(t.Claim, []string{
			example,
			pick(predictionMarket, "Show win scenario with profit calculation", "Show settlement scenario with payout calculation"),
			pick(predictionMarket, "Show loss scenario with bonus bet receipt", "Show loss scenario and how promo credits can be used"),
		}, []string{"Restating what the offer is", "Eligibility requirements"}),
		shortcode(),
		h2(t.DailyPromos, []string{
			"Placeholder for today's rotating promos (editor updates daily)",
			pick(predictionMarket, "List sportsbook, offer, promo code, and state availability", "List operator, offer, promo code, and state availability"),
			"Note expiration window for today's promos",
		}, []string{"Using stale promos from previous days"}),
		h2(t.Signup, []string{
			"Step 1: Visit site/app",
			"Step 2: Click Join/Register",
			"Step 3: Enter promo code",
			"Step 4: Complete verification",
			pick(predictionMarket, "Step 5: Make deposit and place first bet", "Step 5: Fund account and place first market position"),
		}, []string{"Offer details", "Terms explanation"}),
		h2(t.Terms, []string{
			"Reference to full terms on operator site",
			"Key restrictions summary",
			pick(predictionMarket, "Responsible gaming reminder with helpline", "Eligibility and settlement notes"),
		}, []string{"Eligibility (covered above)", "Claiming steps"}),
	}
}
