// Package style holds the house writing guide shared by the planning and
// drafting prompts.
package style

// Section names used to pick a sampling temperature.
const (
	SectionIntro   = "intro"
	SectionOutline = "outline"
	SectionH2      = "h2"
	SectionH3      = "h3"
	SectionTerms   = "terms"
	SectionSignup  = "signup"
)

var temperatures = map[string]float32{
	SectionIntro:   0.7,
	SectionOutline: 0.6,
	SectionH2:      0.5,
	SectionH3:      0.4,
	SectionTerms:   0.3,
	SectionSignup:  0.3,
}

// Temperature returns the sampling temperature for a kind of section.
// Legal and procedural content runs cooler than the intro.
func Temperature(section string) float32 {
	if t, ok := temperatures[section]; ok {
		return t
	}
	return 0.5
}

// Objective describes what one kind of section is for.
type Objective struct {
	Purpose string
	Focus   string
	Avoid   string
	Length  string
}

var objectives = map[string]Objective{
	"overview": {
		Purpose: "Explain why this offer matters and what makes it valuable",
		Focus:   "Value proposition, timing advantage, who it's for",
		Avoid:   "Step-by-step instructions (save for How to Claim)",
		Length:  "2-3 paragraphs",
	},
	"claim": {
		Purpose: "Provide a worked example with actual dollar amounts",
		Focus:   "First-person example showing win/loss scenarios",
		Avoid:   "Restating what the offer is (already covered)",
		Length:  "2-3 paragraphs with calculations",
	},
	"eligibility": {
		Purpose: "Cover essential eligibility and requirements",
		Focus:   "21+, new users, eligible states, minimum odds, expiration",
		Avoid:   "Repeating the full offer explanation",
		Length:  "1-2 paragraphs",
	},
	"signup": {
		Purpose: "Step-by-step registration instructions",
		Focus:   "Numbered list of 5 specific steps",
		Avoid:   "Marketing language, repeating offer details",
		Length:  "Numbered list only",
	},
	"terms": {
		Purpose: "Cover the fine print and legal requirements",
		Focus:   "Wagering requirements, restrictions, disclaimers",
		Avoid:   "Repeating eligibility (covered in Key Details)",
		Length:  "1 paragraph + standard disclaimer",
	},
}

var genericObjective = Objective{
	Purpose: "Provide relevant information",
	Focus:   "Stay on topic",
	Avoid:   "Repetition from previous sections",
	Length:  "2-3 paragraphs",
}

// ObjectiveFor returns the objective of a section kind, such as "overview"
// or "claim". Unknown kinds get a generic objective.
func ObjectiveFor(kind string) Objective {
	if o, ok := objectives[kind]; ok {
		return o
	}
	return genericObjective
}

// FillerPhrases are stock phrases the writer tends to repeat across
// sections. Once one appears in the draft, later prompts forbid it.
var FillerPhrases = []string{
	"it's important to note",
	"in order to",
	"whether you're a seasoned bettor",
	"look no further",
	"stands out",
	"solid choice",
	"user-friendly",
	"commitment to",
	"premier",
	"generous",
	"exciting",
	"amazing",
	"incredible",
	"outstanding",
	"exceptional",
	"revolutionary",
}

// Guide returns the house style guide included in every prompt.
func Guide() string {
	return `STYLE GUIDE (Top Stories - Sports Betting Promo):

VOICE & TONE:
- Conversational and informative, like a knowledgeable friend sharing a deal
- Use active voice, avoid passive constructions
- Use contractions naturally (do not sound robotic)
- NO EXCLAMATION POINTS anywhere in the content
- Excited but not overselling - avoid hyperbolic marketing language
- Honest about limitations, clear about requirements

FORBIDDEN PHRASES (never use):
- "risk-free" (except in official bonus name like "risk-free bet credit")
- "guaranteed win", "can't lose", "sure thing", "easy money"
- "revolutionary", "premier", "exceptional", "stands out as"
- "generous bonuses and user-friendly app" (overused cliché)
- Marketing hype like "experience the thrill like never before"
- Any exclamation points

SECTION VARIETY (critical - avoid repetition):
- Each section should ADD new information, not restate previous sections
- If the intro mentioned the states, don't list them again in every section
- If you explained the mechanic in Overview, don't re-explain it in Eligibility
- Later sections should be SHORTER and more specific
- Use varied sentence structures - not every section starts with "To..."
- Do NOT repeat responsible gaming disclaimers in multiple sections

SECTION-SPECIFIC GUIDANCE:
- Overview: Why this offer matters, what makes it valuable
- How to Claim: Worked example with dollar amounts and outcomes
- Eligibility: Who qualifies (brief) - skip restating the offer
- Terms: Fine print only - odds requirements, expirations, restrictions
- Responsible Gaming: 2-3 sentences max with helpline

SENTENCE STRUCTURE:
- Mix short (8-12 words) and medium (15-25 words) sentences
- Max 25 words per sentence
- Vary rhythm - don't start every sentence the same way

SIMPLER PHRASING (important):
- Prefer direct, plain sentences
- Good: "Bonus bets expire in seven days."
- Bad: "Timing is also crucial, as these bonus bets expire in 7 days, encouraging you to engage quickly."
- Avoid filler like "it's important to note" or "in order to"

PARAGRAPH FLOW:
- 2-4 sentences per paragraph, 40-70 words total
- Front-load important info (offer amount, promo code, key dates)
- Details and fine print come later
- Natural flow over rigid list formatting

VOCABULARY:
- Beginner-friendly - explain betting terms inline if needed
- Say "bet" not "wager" (more natural)
- Avoid marketing jargon and clichés
- Be specific: "$150 in bonus bets" not "generous bonus"

COMPLIANCE (non-negotiable):
- Always mention 21+ age requirement
- Include responsible gaming helpline ONCE at the end of the article
- State-specific restrictions when applicable
- Never imply guaranteed outcomes
- No "risk-free" claims (unless quoting official bonus name)`
}

// MarketGuide is the vocabulary addendum for prediction-market articles.
func MarketGuide() string {
	return `PREDICTION MARKET LANGUAGE:
- Use trade, market, position and contract instead of bet, wager and sportsbook
- Say "promo credits" instead of "bonus bets"
- Describe outcomes as contracts that settle, not bets that win or lose
- Do not mention minimum odds or wagering requirements`
}
