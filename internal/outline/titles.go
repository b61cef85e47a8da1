package outline

import (
	"regexp"
	"strings"
)

var (
	featuredGame  = regexp.MustCompile(`(?i)Featured game:[ \t]*([^\n]+)`)
	directMatchup = regexp.MustCompile(`(?i)([A-Za-z0-9 .'\-]+?)\s+(?:vs\.?|@)\s+([A-Za-z0-9 .'\-]+)`)
)

// Titles are the house headings used for the canonical sections.
type Titles struct {
	Overview    string
	Claim       string
	Signup      string
	DailyPromos string
	Terms       string
}

// ExtractMatchup pulls "Away vs. Home" out of free-form event context. It
// prefers an explicit "Featured game:" line and returns "" when no matchup
// is present.
func ExtractMatchup(eventContext string) string {
	if strings.TrimSpace(eventContext) == "" {
		return ""
	}

	var raw string
	if m := featuredGame.FindStringSubmatch(eventContext); m != nil {
		raw = firstSentence(m[1])
	} else if m := directMatchup.FindStringSubmatch(eventContext); m != nil {
		raw = strings.TrimSpace(m[1]) + " vs. " + strings.TrimSpace(m[2])
	} else {
		return ""
	}

	if away, home, ok := strings.Cut(raw, "@"); ok {
		away, home = strings.TrimSpace(away), strings.TrimSpace(home)
		if away != "" && home != "" {
			raw = away + " vs. " + home
		}
	}
	return strings.Join(strings.Fields(raw), " ")
}

// firstSentence cuts s at the first period that ends a sentence. The period
// of "vs." does not count.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < len(s); i++ {
		if s[i] != '.' || (i+1 < len(s) && s[i+1] != ' ') {
			continue
		}
		if strings.HasSuffix(strings.ToLower(s[:i]), "vs") {
			continue
		}
		return strings.TrimSpace(s[:i])
	}
	return s
}

// Topic is the phrase headings are built around: the keyword, else the
// brand's promo code, else a generic promo code phrase.
func Topic(keyword, brand string, predictionMarket bool) string {
	if k := strings.TrimSpace(keyword); k != "" {
		return k
	}
	if b := strings.TrimSpace(brand); b != "" {
		return b + " promo code"
	}
	if predictionMarket {
		return "prediction market promo code"
	}
	return "sportsbook promo code"
}

// SectionTitles builds the canonical headings, naming the matchup when the
// event context carries one.
func SectionTitles(keyword, brand, eventContext string, predictionMarket bool) Titles {
	topic := Topic(keyword, brand, predictionMarket)
	matchup := ExtractMatchup(eventContext)

	t := Titles{
		DailyPromos: "Daily Promos Today",
		Terms:       "Terms & Conditions",
	}
	if predictionMarket {
		t.Terms = "Terms & Eligibility"
	}

	switch {
	case predictionMarket && matchup != "":
		t.Claim = "How to Use " + topic + " for " + matchup
	case predictionMarket:
		t.Claim = "How to Use " + topic + " for Any Market"
	case matchup != "":
		t.Claim = "How to Claim " + topic + " for " + matchup
	default:
		t.Claim = "How to Claim " + topic + " for Any Sport"
	}

	if matchup != "" {
		t.Overview = topic + " for " + matchup
		t.Signup = "How to Sign Up Before " + matchup
		return t
	}
	if predictionMarket {
		t.Overview = topic + ": Promo for Top Markets Today"
	} else {
		t.Overview = topic + ": Get Bonus for All Sports Today"
	}
	t.Signup = "How to Sign Up for " + topic
	return t
}
