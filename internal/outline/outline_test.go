package outline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"planwrite/internal/core"
	"planwrite/internal/llm"
	"planwrite/internal/logger"
	"planwrite/internal/observability"
)

type fakeGenerator struct {
	response string
	err      error
	prompts  []llm.Prompt
}

func (f *fakeGenerator) Complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.response, f.err
}

func (f *fakeGenerator) CompleteStructured(ctx context.Context, prompt llm.Prompt, schema *llm.Schema, out any) error {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return f.err
	}
	return llm.DecodeJSON(f.response, out)
}

func assertShortcodeInvariant(t *testing.T, o core.Outline) {
	t.Helper()
	if len(o) < 2 {
		t.Fatalf("Expected at least 2 sections, got %d", len(o))
	}
	if o[0].Level != core.LevelIntro {
		t.Errorf("Expected outline to start with intro, got %s", o[0].Level)
	}
	if !o[1].Level.IsShortcode() {
		t.Errorf("Expected shortcode after intro, got %s", o[1].Level)
	}
	run := 0
	for i, s := range o {
		switch {
		case s.Level.IsShortcode():
			run = 0
		case s.Level == core.LevelH2:
			run++
			if run > 2 {
				t.Errorf("Section %d (%q) is the third h2 in a row without a shortcode", i, s.Title)
			}
		}
	}
}

func levels(o core.Outline) []core.Level {
	out := make([]core.Level, len(o))
	for i, s := range o {
		out[i] = s.Level
	}
	return out
}

func h2Titles(o core.Outline) []string {
	var out []string
	for _, s := range o {
		if s.Level == core.LevelH2 {
			out = append(out, s.Title)
		}
	}
	return out
}

func TestRepairInsertsShortcodes(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro, TalkingPoints: []string{"hook"}},
		h2("A", []string{"a"}, nil),
		h2("B", []string{"b"}, nil),
		h2("C", []string{"c"}, nil),
	}
	got := Repair(in)

	want := []core.Level{core.LevelIntro, core.LevelShortcode, core.LevelH2, core.LevelH2, core.LevelShortcode, core.LevelH2}
	if !reflect.DeepEqual(levels(got), want) {
		t.Errorf("Expected levels %v, got %v", want, levels(got))
	}
	assertShortcodeInvariant(t, got)
}

func TestRepairSynthesizesIntro(t *testing.T) {
	got := Repair(core.Outline{h2("Only", []string{"x", "y"}, nil)})
	if got[0].Level != core.LevelIntro || len(got[0].TalkingPoints) != 2 {
		t.Errorf("Expected synthesized intro with 2 talking points, got %+v", got[0])
	}
	if got[1].Level != core.LevelShortcode {
		t.Errorf("Expected shortcode at index 1, got %s", got[1].Level)
	}
	if got[2].Title != "Only" {
		t.Errorf("Expected original h2 to follow, got %q", got[2].Title)
	}
}

func TestRepairMovesIntroToFront(t *testing.T) {
	in := core.Outline{
		h2("First", nil, nil),
		{Level: core.LevelIntro, TalkingPoints: []string{"real hook"}},
	}
	got := Repair(in)
	if got[0].TalkingPoints[0] != "real hook" {
		t.Errorf("Expected planned intro at the front, got %+v", got[0])
	}
	if got.CountLevel(core.LevelIntro) != 1 {
		t.Errorf("Expected exactly one intro, got %d", got.CountLevel(core.LevelIntro))
	}
}

func TestRepairKeepsMainShortcode(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro},
		{Level: core.LevelShortcodeMain},
		h2("A", nil, nil),
	}
	got := Repair(in)
	if len(got) != 3 {
		t.Errorf("Expected no shortcode to be added after shortcode_main, got levels %v", levels(got))
	}
}

func TestRepairIdempotent(t *testing.T) {
	once := Repair(core.Outline{h2("A", nil, nil), h2("B", nil, nil), h2("C", nil, nil), h2("D", nil, nil), h2("E", nil, nil)})
	twice := Repair(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Expected Repair to be idempotent\nonce:  %v\ntwice: %v", levels(once), levels(twice))
	}
	assertShortcodeInvariant(t, twice)
}

func TestApplyEditorialRules(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro, TalkingPoints: []string{"hook"}},
		shortcode(),
		h2("What is the bet365 bonus", []string{"value"}, nil),
		h2("Key Details", []string{"21+"}, nil),
		h2("How to Claim the Offer", []string{"example"}, nil),
	}
	event := "Featured game: Atlanta Hawks vs Charlotte Hornets\nNetwork: ESPN"
	got := ApplyEditorialRules(in, "bet365 promo code", "bet365", event, false)

	want := []string{
		"bet365 promo code for Atlanta Hawks vs Charlotte Hornets",
		"How to Claim bet365 promo code for Atlanta Hawks vs Charlotte Hornets",
		"Daily Promos Today",
		"How to Sign Up Before Atlanta Hawks vs Charlotte Hornets",
		"Terms & Conditions",
	}
	if !reflect.DeepEqual(h2Titles(got), want) {
		t.Errorf("Expected h2 titles %v, got %v", want, h2Titles(got))
	}
	if in[2].Title != "What is the bet365 bonus" {
		t.Error("Expected input outline to be left untouched")
	}
}

func TestApplyEditorialRulesInsertsDailyPromosBeforeSignup(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro},
		shortcode(),
		h2("Overview", []string{"a"}, nil),
		h2("How to Claim", []string{"a"}, nil),
		h2("How to Sign Up", []string{"a"}, nil),
		h2("Terms and Conditions", []string{"a"}, nil),
	}
	got := h2Titles(ApplyEditorialRules(in, "kw", "Brand", "", false))
	if len(got) != 5 || got[2] != "Daily Promos Today" {
		t.Errorf("Expected daily promos as the third h2, got %v", got)
	}
}

func TestApplyEditorialRulesClaimAsFirstH2(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro},
		shortcode(),
		h2("How to Claim the DraftKings Promo", []string{"a"}, nil),
		h2("Odds Boosts", []string{"a"}, nil),
	}
	got := h2Titles(ApplyEditorialRules(in, "draftkings promo code", "DraftKings", "", false))

	want := []string{
		"draftkings promo code: Get Bonus for All Sports Today",
		"Odds Boosts",
		"How to Claim draftkings promo code for Any Sport",
		"Daily Promos Today",
		"How to Sign Up for draftkings promo code",
		"Terms & Conditions",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected h2 titles %v, got %v", want, got)
	}
}

func TestApplyEditorialRulesKeepsLooseHeadings(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro},
		shortcode(),
		h2("Overview", []string{"a"}, nil),
		h2("Bet Example: Hawks Moneyline", []string{"a"}, nil),
		h2("Step-by-step odds guide", []string{"a"}, nil),
	}
	got := h2Titles(ApplyEditorialRules(in, "kw", "Brand", "", false))
	if got[1] != "Bet Example: Hawks Moneyline" || got[2] != "Step-by-step odds guide" {
		t.Errorf("Expected loose headings to keep their titles, got %v", got)
	}
}

func TestApplyEditorialRulesKeepsMarketTerms(t *testing.T) {
	in := core.Outline{
		{Level: core.LevelIntro},
		shortcode(),
		h2("Kalshi overview", []string{"a"}, nil),
		h2("Terms & Eligibility", []string{"a"}, nil),
	}
	got := ApplyEditorialRules(in, "kalshi promo code", "Kalshi", "", true)

	terms := 0
	for _, title := range h2Titles(got) {
		if title == "Terms & Eligibility" {
			terms++
		}
	}
	if terms != 1 {
		t.Errorf("Expected exactly one Terms & Eligibility section, got titles %v", h2Titles(got))
	}
	for _, s := range got {
		for _, p := range s.TalkingPoints {
			if strings.Contains(p, "qualifying bet") {
				t.Errorf("Expected market wording, got talking point %q", p)
			}
		}
	}
}

func TestSectionTitlesPredictionMarket(t *testing.T) {
	titles := SectionTitles("kalshi promo code", "Kalshi", "", true)
	if !strings.HasPrefix(titles.Claim, "How to Use") {
		t.Errorf("Expected claim title to start with 'How to Use', got %q", titles.Claim)
	}
	if titles.Terms != "Terms & Eligibility" {
		t.Errorf("Expected market terms title, got %q", titles.Terms)
	}

	book := SectionTitles("", "FanDuel", "", false)
	if book.Claim != "How to Claim FanDuel promo code for Any Sport" {
		t.Errorf("Unexpected claim title %q", book.Claim)
	}
}

func TestExtractMatchup(t *testing.T) {
	tests := []struct {
		name    string
		context string
		want    string
	}{
		{"featured line", "Featured game: Atlanta Hawks vs Charlotte Hornets\nGame time: Friday", "Atlanta Hawks vs Charlotte Hornets"},
		{"at sign", "Featured game: Celtics @ Knicks. Tipoff at 7", "Celtics vs. Knicks"},
		{"vs with period", "Featured game: Lakers vs. Suns. Late game.", "Lakers vs. Suns"},
		{"direct", "Lakers vs. Suns tonight", "Lakers vs. Suns tonight"},
		{"none", "Big night of hoops", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractMatchup(tt.context); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDefaultOutlineSatisfiesRepair(t *testing.T) {
	for _, pm := range []bool{false, true} {
		o := Repair(DefaultOutline("bet365 promo code", "bet365", "", "", pm))
		assertShortcodeInvariant(t, o)
		if got := o.CountLevel(core.LevelH2); got != 5 {
			t.Errorf("Expected 5 h2 sections, got %d", got)
		}
	}
}

func TestDefaultOutlineMarketWording(t *testing.T) {
	text := ToText(DefaultOutline("kalshi promo code", "Kalshi", "", "", true))
	if strings.Contains(text, "place first bet") || strings.Contains(text, "for bettors") {
		t.Errorf("Expected no sportsbook wording in market outline:\n%s", text)
	}
	if !strings.Contains(text, "first market position") {
		t.Errorf("Expected market signup step:\n%s", text)
	}
}

func TestTextRoundTrip(t *testing.T) {
	o := Repair(DefaultOutline("bet365 promo code", "bet365", "Featured game: A vs B", "Bet $50 on A", false))
	o = append(o, core.OutlineSection{Level: core.ShortcodeLevel(2), TalkingPoints: []string{}, Avoid: []string{}})
	o = append(o, core.OutlineSection{Level: core.LevelH3, Title: "Sub", TalkingPoints: []string{"one"}, Avoid: []string{"x", "y"}})

	text := ToText(o)
	back := FromText(text)
	if !reflect.DeepEqual(back, o) {
		t.Errorf("Expected round trip to preserve the outline\ntext:\n%s", text)
	}
	if again := ToText(back); again != text {
		t.Errorf("Expected stable text, got:\n%s", again)
	}
}

func TestFromTextFormat(t *testing.T) {
	text := `
  [intro]
  > Hook with date

[SHORTCODE_MAIN]
> stray
[SHORTCODE_FOO]
[H2:   How to Claim  ]
> Worked example
!  avoid: Terms, , Eligibility
`
	got := FromText(text)
	want := []core.Level{core.LevelIntro, core.LevelShortcodeMain, core.LevelH2}
	if !reflect.DeepEqual(levels(got), want) {
		t.Fatalf("Expected levels %v, got %v", want, levels(got))
	}
	if got[2].Title != "How to Claim" {
		t.Errorf("Expected trimmed title, got %q", got[2].Title)
	}
	if !reflect.DeepEqual(got[2].Avoid, []string{"Terms", "Eligibility"}) {
		t.Errorf("Expected avoid items [Terms Eligibility], got %v", got[2].Avoid)
	}
	if len(got[1].TalkingPoints) != 1 || got[1].TalkingPoints[0] != "stray" {
		t.Errorf("Expected shortcode_main to keep its point, got %v", got[1].TalkingPoints)
	}
}

func TestValidate(t *testing.T) {
	o := Repair(DefaultOutline("bet365 promo code", "bet365", "", "", false))
	if warnings := Validate(o, "bet365 promo code"); len(warnings) != 0 {
		t.Errorf("Expected no warnings for the default outline, got %v", warnings)
	}

	warnings := Validate(core.Outline{}, "bet365 promo code")
	if len(warnings) != 4 {
		t.Errorf("Expected 4 warnings for an empty outline, got %v", warnings)
	}

	thin := core.Outline{h2("Overview", []string{"one"}, nil)}
	found := false
	for _, w := range Validate(thin, "kw") {
		if w == "Section 'Overview' has too few talking points" {
			found = true
		}
	}
	if !found {
		t.Error("Expected talking point warning for thin section")
	}
}

func TestParseTokens(t *testing.T) {
	got := ParseTokens("intro\nH2: Overview\n[SHORTCODE_1]\n[H2: Terms]", "")
	want := []string{"[INTRO]", "[SHORTCODE_1]", "[H2: Overview]", "[H2: Terms]"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got = ParseTokens("H2: A\nsome prose\n[SHORTCODE_2]\n[SHORTCODE]", "")
	want = []string{"[INTRO]", "[H2: A]", "[SHORTCODE]", "[SHORTCODE_2]"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got = ParseTokens("[H2: A]", "[SHORTCODE_MAIN]")
	want = []string{"[INTRO]", "[SHORTCODE_MAIN]", "[H2: A]"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestParseTokensDefaults(t *testing.T) {
	if got := ParseTokens("nothing here", ""); !reflect.DeepEqual(got, DefaultTokens()) {
		t.Errorf("Expected default tokens, got %v", got)
	}
	multi := ParseTokens("", "[SHORTCODE_MAIN]")
	if multi[1] != "[SHORTCODE_MAIN]" || multi[4] != "[SHORTCODE_1]" {
		t.Errorf("Expected multi-offer defaults, got %v", multi)
	}
}

func TestTokensConversion(t *testing.T) {
	o := DefaultOutline("kw", "Brand", "", "", false)
	back := FromTokens(ToTokens(o))
	if !reflect.DeepEqual(levels(back), levels(o)) {
		t.Errorf("Expected levels %v, got %v", levels(o), levels(back))
	}
	if !reflect.DeepEqual(h2Titles(back), h2Titles(o)) {
		t.Errorf("Expected titles %v, got %v", h2Titles(o), h2Titles(back))
	}
}

func TestFormatGameContext(t *testing.T) {
	got := FormatGameContext(Game{
		AwayTeam:  "Atlanta Hawks",
		HomeTeam:  "Charlotte Hornets",
		StartTime: "2026-02-14T01:00Z",
		Network:   "ESPN",
	})
	for _, want := range []string{
		"Featured game: Atlanta Hawks vs Charlotte Hornets",
		"Game time: Friday, February 13 at 8:00 PM ET",
		"Network: ESPN",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "2026-02-14T01:00Z") {
		t.Error("Expected raw ISO time to be replaced")
	}
}

func TestFormatGameTimePassThrough(t *testing.T) {
	if got := FormatGameTime("Mon, Feb 9, 9:00 PM ET"); got != "Mon, Feb 9, 9:00 PM ET" {
		t.Errorf("Expected preformatted time unchanged, got %q", got)
	}
}

const plannedJSON = `[
  {"level": "intro", "title": "", "talking_points": ["Hook with date"], "avoid": []},
  {"level": "h2", "title": "Bet365 Bonus Overview", "talking_points": ["Value", "Timing"], "avoid": []},
  {"level": "h2", "title": "How to Claim the Bonus", "talking_points": ["Example"], "avoid": ["Terms"]},
  {"level": "h2", "title": "Key Details", "talking_points": ["21+"], "avoid": []},
  {"level": "h2", "title": "How to Sign Up", "talking_points": ["Steps"], "avoid": []},
  {"level": "h2", "title": "Terms and Conditions", "talking_points": ["Fine print"], "avoid": []},
  {"level": "sidebar", "title": "Nope", "talking_points": [], "avoid": []}
]`

func fixedClock() time.Time {
	return time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC)
}

func TestPlan(t *testing.T) {
	gen := &fakeGenerator{response: plannedJSON}
	rec := &observability.Recorder{}
	p := NewPlanner(gen, WithLogger(logger.Discard()), WithTracker(rec), WithClock(fixedClock))

	got := p.Plan(context.Background(), Request{
		Keyword: "bet365 promo code",
		Title:   "Bet365 Bonus Code",
		Offer:   core.Offer{Brand: "bet365", OfferText: "Bet $5, Get $200", BonusCode: "ACTION"},
	})

	assertShortcodeInvariant(t, got)
	titles := h2Titles(got)
	if titles[0] != "bet365 promo code: Get Bonus for All Sports Today" {
		t.Errorf("Expected overview title first, got %q", titles[0])
	}
	for _, title := range titles {
		if title == "Key Details" || title == "Nope" {
			t.Errorf("Expected %q to be dropped", title)
		}
	}
	if len(titles) != 5 {
		t.Errorf("Expected 5 h2 sections, got %v", titles)
	}

	if len(gen.prompts) != 1 {
		t.Fatalf("Expected 1 generation call, got %d", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	if !strings.Contains(prompt.User, "DATE: Monday, January 5, 2026") {
		t.Error("Expected Eastern date in the prompt")
	}
	if prompt.Temperature != 0.6 {
		t.Errorf("Expected outline temperature 0.6, got %v", prompt.Temperature)
	}

	if len(rec.Events) != 1 || rec.Events[0].Event != "outline_generated" {
		t.Fatalf("Expected one outline_generated event, got %v", rec.Names())
	}
	if rec.Events[0].Properties["fallback"] != false {
		t.Errorf("Expected fallback=false, got %v", rec.Events[0].Properties["fallback"])
	}
}

func sameItems(a, b []string) bool {
	return len(a) == len(b) && (len(a) == 0 || reflect.DeepEqual(a, b))
}

func TestPlanOutputSurvivesTextFormat(t *testing.T) {
	gen := &fakeGenerator{response: `[
  {"level": "intro", "title": "", "talking_points": ["Hook"], "avoid": []},
  {"level": "h2", "title": "Odds\n Boosts", "talking_points": ["line one\nline two", "  spaced   out  "], "avoid": ["odds, lines and props", " "]},
  {"level": "h2", "title": "How to Claim", "talking_points": ["Steps"], "avoid": []}
]`}
	p := NewPlanner(gen, WithLogger(logger.Discard()))

	got := p.Plan(context.Background(), Request{Keyword: "fanduel promo code", Offer: core.Offer{Brand: "FanDuel"}})

	var boosts *core.OutlineSection
	for i := range got {
		if got[i].Title == "Odds Boosts" {
			boosts = &got[i]
		}
	}
	if boosts == nil {
		t.Fatalf("Expected an 'Odds Boosts' section, got %v", h2Titles(got))
	}
	if want := []string{"line one line two", "spaced out"}; !reflect.DeepEqual(boosts.TalkingPoints, want) {
		t.Errorf("Expected talking points %v, got %v", want, boosts.TalkingPoints)
	}
	if want := []string{"odds", "lines and props"}; !reflect.DeepEqual(boosts.Avoid, want) {
		t.Errorf("Expected avoid items %v, got %v", want, boosts.Avoid)
	}

	back := FromText(ToText(got))
	if len(back) != len(got) {
		t.Fatalf("Expected %d sections after the text round trip, got %d", len(got), len(back))
	}
	for i := range got {
		if back[i].Level != got[i].Level || back[i].Title != got[i].Title {
			t.Errorf("Section %d: expected %s %q, got %s %q", i, got[i].Level, got[i].Title, back[i].Level, back[i].Title)
		}
		if !sameItems(back[i].TalkingPoints, got[i].TalkingPoints) {
			t.Errorf("Section %d: expected talking points %v, got %v", i, got[i].TalkingPoints, back[i].TalkingPoints)
		}
		if !sameItems(back[i].Avoid, got[i].Avoid) {
			t.Errorf("Section %d: expected avoid %v, got %v", i, got[i].Avoid, back[i].Avoid)
		}
	}
}

func TestPlanFallsBackOnError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("provider down")}
	rec := &observability.Recorder{}
	p := NewPlanner(gen, WithLogger(logger.Discard()), WithTracker(rec))

	req := Request{Keyword: "fanduel promo code", Offer: core.Offer{Brand: "FanDuel"}}
	got := p.Plan(context.Background(), req)

	want := Repair(DefaultOutline("fanduel promo code", "FanDuel", "", "", false))
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected repaired default outline\ngot:  %v\nwant: %v", h2Titles(got), h2Titles(want))
	}
	if rec.Events[0].Properties["fallback"] != true {
		t.Error("Expected fallback=true")
	}
}

func TestPlanFallsBackOnMalformedOutput(t *testing.T) {
	gen := &fakeGenerator{response: `[{"level": "shortcode", "title": "", "talking_points": [], "avoid": []}]`}
	p := NewPlanner(gen, WithLogger(logger.Discard()))

	got := p.Plan(context.Background(), Request{Keyword: "kw", Offer: core.Offer{Brand: "Caesars"}})
	if got.CountLevel(core.LevelH2) != 5 {
		t.Errorf("Expected default outline with 5 h2 sections, got %v", h2Titles(got))
	}
}

func TestPlanPredictionMarketPrompt(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("skip")}
	p := NewPlanner(gen, WithLogger(logger.Discard()))

	got := p.Plan(context.Background(), Request{Keyword: "kalshi promo code", Offer: core.Offer{Brand: "Kalshi"}})
	if !strings.Contains(gen.prompts[0].System, "prediction market publication") {
		t.Error("Expected prediction market system prompt")
	}
	if !strings.HasPrefix(h2Titles(got)[1], "How to Use") {
		t.Errorf("Expected market claim title, got %v", h2Titles(got))
	}
}
