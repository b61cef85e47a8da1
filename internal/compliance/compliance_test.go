package compliance

import (
	"strings"
	"testing"

	"planwrite/internal/core"
)

func issueTypes(r core.ComplianceResult) map[string]int {
	out := map[string]int{}
	for _, issue := range r.Issues {
		out[issue.Type]++
	}
	return out
}

func TestGuaranteedWinWithoutResponsibleGaming(t *testing.T) {
	r := Validate("This parlay is a guaranteed win for everyone.", "NJ", Options{})

	if r.Valid {
		t.Error("Expected content to be invalid")
	}
	if r.Score > 70 {
		t.Errorf("Expected score <= 70, got %v", r.Score)
	}
	types := issueTypes(r)
	if types["banned_phrase"] == 0 || types["responsible_gaming"] != 1 {
		t.Errorf("Expected banned phrase and responsible gaming issues, got %v", types)
	}
}

func TestGuaranteedWinAloneStillFails(t *testing.T) {
	r := Validate("A guaranteed win.", "ALL", Options{})
	if r.Valid || r.Score > 70 {
		t.Errorf("Expected invalid with score <= 70, got valid=%v score=%v", r.Valid, r.Score)
	}
}

func TestCleanContent(t *testing.T) {
	filler := strings.Repeat("Solid value for new players. ", 15)
	content := "## Claim the Offer\n\n" + filler + "\n\n" + filler + "\n\nPlace a bet after you [Claim Offer](https://example.com/claim).\n\n21+. Please bet responsibly."
	r := Validate(content, "ALL", Options{AllowedDomains: []string{"example.com"}})

	if !r.Valid {
		t.Errorf("Expected valid content, got %+v", r.Issues)
	}
	if r.Score != 100 {
		t.Errorf("Expected score 100, got %v (%+v)", r.Score, r.Issues)
	}
	if r.WordCount == 0 {
		t.Error("Expected word count")
	}
}

func TestRiskFreeBetCreditIsExempt(t *testing.T) {
	r := Validate("Get a risk-free bet credit. 21+ [Claim Offer](https://a.com/x y)", "ALL", Options{})
	if issueTypes(r)["banned_phrase"] != 0 {
		t.Errorf("Expected bet credit exemption, got %+v", r.Issues)
	}

	r = Validate("This is risk-free.", "ALL", Options{})
	if issueTypes(r)["banned_phrase"] != 1 {
		t.Errorf("Expected risk-free to be flagged, got %+v", r.Issues)
	}
}

func TestHTMLContentUsesTrackedLinksAsCTA(t *testing.T) {
	content := `<p>Use <a data-id="switchboard_tracking" href="https://switchboard.actionnetwork.com/offers?x=1" rel="nofollow"><strong>FanDuel Promo Code</strong></a> to bet.</p><p>21+. Gambling problem? Call 1-800-GAMBLER.</p>`
	r := Validate(content, "NJ", Options{})

	if issueTypes(r)["missing_cta"] != 0 {
		t.Errorf("Expected tracked link to count as CTA, got %+v", r.Issues)
	}
	if !r.Valid {
		t.Errorf("Expected valid, got %+v", r.Issues)
	}
}

func TestSEOChecks(t *testing.T) {
	long := strings.Repeat("word ", 140)
	content := "# Title\n\n### Skipped\n\n" + long + "\n\n[a](https://x.com) [b](https://y.com)"
	types := issueTypes(Validate(content, "ALL", Options{AllowedDomains: []string{"x.com"}}))

	for _, want := range []string{"long_paragraph", "heading_skip", "short_anchor", "external_link", "missing_cta"} {
		if types[want] == 0 {
			t.Errorf("Expected %s issue, got %v", want, types)
		}
	}
	if types["short_anchor"] != 2 || types["external_link"] != 1 {
		t.Errorf("Expected 2 short anchors and 1 external link, got %v", types)
	}
}

func TestLinkDensity(t *testing.T) {
	content := "[Claim Offer](https://a.com/1) [Claim Offer](https://a.com/2) some words here"
	if issueTypes(Validate(content, "ALL", Options{}))["link_density"] != 1 {
		t.Error("Expected link density warning")
	}
}

func TestOfferChecks(t *testing.T) {
	offer := &core.Offer{Brand: "FanDuel", BonusCode: "SAVE100", ExpirationDays: 7}

	r := Validate("Bonus bets expire in 14 days. 21+ [Claim Offer](https://a.com/c)", "ALL", Options{Offer: offer})
	types := issueTypes(r)
	if types["missing_bonus_code"] != 1 {
		t.Errorf("Expected missing bonus code error, got %v", types)
	}
	if types["expiration_mismatch"] != 1 {
		t.Errorf("Expected expiration mismatch, got %v", types)
	}
	// two errors plus the link density warning
	if r.Valid || r.Score != 65 {
		t.Errorf("Expected invalid with score 65, got valid=%v score=%v", r.Valid, r.Score)
	}

	r = Validate("Use code save100. Bonus bets expire in 7 days. 21+ [Claim Offer](https://a.com/c)", "ALL", Options{Offer: offer})
	if !r.Valid {
		t.Errorf("Expected matching facts to pass, got %+v", r.Issues)
	}
}

func TestKeywordBand(t *testing.T) {
	base := " 21+ [Claim Offer](https://a.com/c)"
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"too few", 2, 1},
		{"in band", 5, 0},
		{"too many", 16, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Repeat("fanduel promo code ", tt.count) + base
			got := issueTypes(Validate(content, "ALL", Options{Keyword: "FanDuel Promo Code"}))["keyword_density"]
			if got != tt.want {
				t.Errorf("Expected %d keyword issues, got %d", tt.want, got)
			}
		})
	}
}

func TestScoreFloorsAtZero(t *testing.T) {
	content := strings.Repeat("surefire free money no-brainer easy win ", 3) + "bet"
	r := Validate(content, "ALL", Options{})
	if r.Score != 0 {
		t.Errorf("Expected score 0, got %v", r.Score)
	}
}

func TestDisclaimerForState(t *testing.T) {
	tests := []struct {
		state string
		want  string
	}{
		{"NY", "HOPENY"},
		{"oh", "1-800-589-9966"},
		{"TX", "1-800-GAMBLER. Please bet responsibly."},
		{"", "1-800-GAMBLER"},
	}

	for _, tt := range tests {
		if got := DisclaimerForState(tt.state); !strings.Contains(got, tt.want) {
			t.Errorf("DisclaimerForState(%q) = %q, expected it to contain %q", tt.state, got, tt.want)
		}
	}
}

func TestIsDisclaimer(t *testing.T) {
	if !IsDisclaimer(DisclaimerForState("MI")) {
		t.Error("Expected state disclaimer to be detected")
	}
	if IsDisclaimer("21+. Terms apply.") {
		t.Error("Expected promo card note not to count as a disclaimer")
	}
}
