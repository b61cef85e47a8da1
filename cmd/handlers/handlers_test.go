package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"planwrite/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"plan", "outline-fmt", "draft", "validate", "links", "serve"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Expected subcommand %q to be registered", name)
		}
	}

	links, _, _ := root.Find([]string{"links"})
	for _, name := range []string{"ingest", "suggest", "build-seed"} {
		if cmd, _, err := links.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("Expected links subcommand %q to be registered", name)
		}
	}
}

func TestReadOutlineText(t *testing.T) {
	path := writeFile(t, "outline.txt", "[INTRO]\n> Hook\n\n[SHORTCODE]\n\n[H2: How to Claim]\n> Steps\n")
	o, err := readOutline(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(o) != 3 {
		t.Fatalf("Expected 3 sections, got %d", len(o))
	}
	if o[2].Level != core.LevelH2 || o[2].Title != "How to Claim" {
		t.Errorf("Expected H2 'How to Claim', got %s %q", o[2].Level, o[2].Title)
	}
}

func TestReadOutlineJSON(t *testing.T) {
	path := writeFile(t, "outline.json", `[{"level":"intro"},{"level":"h2","title":"Terms","talking_points":["expiry"]}]`)
	o, err := readOutline(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(o) != 2 || o[1].Title != "Terms" {
		t.Errorf("Expected the JSON outline to load, got %+v", o)
	}
}

func TestReadOutlineEmpty(t *testing.T) {
	path := writeFile(t, "empty.txt", "nothing to see here\n")
	if _, err := readOutline(path); err == nil {
		t.Error("Expected an error for a file without sections")
	}
}

func TestOfferInputOverrides(t *testing.T) {
	offerFile := writeFile(t, "offer.json", `{"brand":"FanDuel","offer_text":"Bet $5, Get $200","bonus_code":"OLD"}`)
	termsFile := writeFile(t, "terms.txt", "  Bonus bets expire in 7 days.  \n")

	in := offerInput{file: offerFile, code: "NEW", termsFile: termsFile}
	offer, err := in.load()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if offer.Brand != "FanDuel" {
		t.Errorf("Expected brand from file, got %q", offer.Brand)
	}
	if offer.BonusCode != "NEW" {
		t.Errorf("Expected flag to override the code, got %q", offer.BonusCode)
	}
	if offer.Terms != "Bonus bets expire in 7 days." {
		t.Errorf("Expected trimmed terms, got %q", offer.Terms)
	}
}

func TestPlanInputRequiresKeyword(t *testing.T) {
	in := planInput{}
	if _, err := in.request(); err == nil {
		t.Error("Expected an error without a keyword")
	}
}

func TestPlanInputGameContext(t *testing.T) {
	gameFile := writeFile(t, "game.json", `{"away_team":"Atlanta Hawks","home_team":"Charlotte Hornets"}`)
	in := planInput{keyword: " fanduel promo code ", gameFile: gameFile, offer: offerInput{brand: "FanDuel"}}

	req, err := in.request()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if req.Keyword != "fanduel promo code" {
		t.Errorf("Expected trimmed keyword, got %q", req.Keyword)
	}
	if !strings.Contains(req.EventContext, "Atlanta Hawks vs Charlotte Hornets") {
		t.Errorf("Expected game context, got %q", req.EventContext)
	}
	if req.RequestID == "" {
		t.Error("Expected a request id")
	}
}

func TestRenderReport(t *testing.T) {
	result := core.ComplianceResult{
		Valid:     false,
		WordCount: 420,
		Score:     70,
		Issues: []core.ComplianceIssue{
			{Type: "prohibited_language", Message: "Prohibited phrase: guaranteed win", Severity: core.SeverityError, Suggestion: "Remove the claim"},
			{Type: "keyword_density", Message: "Keyword appears 2 times", Severity: core.SeverityWarning},
		},
	}

	out := renderReport(result, "nj")
	for _, want := range []string{"FAIL", "NJ", "Prohibited phrase: guaranteed win", "fix: Remove the claim", "1 errors, 1 warnings, 0 info"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderReportClean(t *testing.T) {
	out := renderReport(core.ComplianceResult{Valid: true, Score: 100}, "ALL")
	if !strings.Contains(out, "PASS") || !strings.Contains(out, "No issues found.") {
		t.Errorf("Expected a passing report, got:\n%s", out)
	}
}
