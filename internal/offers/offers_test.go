package offers

import (
	"reflect"
	"testing"

	"planwrite/internal/core"
)

func TestExpirationDays(t *testing.T) {
	tests := []struct {
		terms string
		want  int
	}{
		{"Bonus bets expire in 7 days.", 7},
		{"Credits are valid for 14 days from issuance.", 14},
		{"Bonus must be used within 30 days.", 30},
		{"Subject to a 5-day expiration window.", 5},
		{"Bonus Bets Expire Within 3 Days", 3},
		{"No expiration is listed here.", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := ExpirationDays(tt.terms); got != tt.want {
			t.Errorf("ExpirationDays(%q): expected %d, got %d", tt.terms, tt.want, got)
		}
	}
}

func TestMinimumOdds(t *testing.T) {
	tests := []struct {
		terms string
		want  string
	}{
		{"Minimum odds of -500 apply.", "-500"},
		{"Place a bet at odds of -200 or longer.", "-200"},
		{"Qualifying wager must be placed at +100 odds or better.", "+100"},
		{"Nothing relevant.", ""},
	}

	for _, tt := range tests {
		if got := MinimumOdds(tt.terms); got != tt.want {
			t.Errorf("MinimumOdds(%q): expected %q, got %q", tt.terms, tt.want, got)
		}
	}
}

func TestWageringRequirement(t *testing.T) {
	tests := []struct {
		terms string
		want  string
	}{
		{"1x playthrough required.", "1x"},
		{"Wagering requirement of 5x applies.", "5x"},
		{"Bonus must be wagered 3 times before withdrawal.", "3x"},
		{"No rollover.", ""},
	}

	for _, tt := range tests {
		if got := WageringRequirement(tt.terms); got != tt.want {
			t.Errorf("WageringRequirement(%q): expected %q, got %q", tt.terms, tt.want, got)
		}
	}
}

func TestBonusAmount(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Bet $5, Get $200 in Bonus Bets", "$5"},
		{"Get up to $1,500 back", "$1500"},
		{"Get 100 dollars in credits", "$100"},
		{"First bet safety net", ""},
	}

	for _, tt := range tests {
		if got := BonusAmount(tt.text); got != tt.want {
			t.Errorf("BonusAmount(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}

func TestParseStates(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"mixed codes and names", []string{"SN", "IN", "AZ", "D.C.", "New York"}, []string{"IN", "AZ", "DC", "NY"}},
		{"all sentinel", []string{"NJ", "ALL"}, []string{"ALL"}},
		{"nationwide", []string{"nationwide"}, []string{"ALL"}},
		{"joined list", []string{"NJ, PA | MI/NY"}, []string{"NJ", "PA", "MI", "NY"}},
		{"duplicates", []string{"NJ", "New Jersey", "nj"}, []string{"NJ"}},
		{"longest name wins", []string{"West Virginia"}, []string{"WV"}},
		{"washington dc", []string{"Washington DC"}, []string{"DC"}},
		{"unknown only", []string{"XX"}, nil},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseStates(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEligibleStatesPositiveList(t *testing.T) {
	terms := "Available in AZ, CO, IL, IN, IA, KS, KY, LA, MD, MA, MI, NJ, NY, NC, OH, PA, TN, VA, WV, WY only."
	want := []string{"AZ", "CO", "IL", "IN", "IA", "KS", "KY", "LA", "MD", "MA", "MI", "NJ", "NY", "NC", "OH", "PA", "TN", "VA", "WV", "WY"}

	got := EligibleStates(terms)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEligibleStatesIgnoresExclusions(t *testing.T) {
	for _, terms := range []string{
		"US Promotional Offers Not Available in MS, NY, ON, or PR.",
		"Available in states where DraftKings operates. Not available in NY or PA.",
		"New customers in eligible states; void in NY, PA and MS.",
	} {
		if got := EligibleStates(terms); len(got) != 0 {
			t.Errorf("Expected no states from an exclusion list in %q, got %v", terms, got)
		}
	}
}

func TestEligibleStatesKeepsPositiveClause(t *testing.T) {
	terms := "New customers in NJ and MI only. Not available in NY."
	want := []string{"NJ", "MI"}
	if got := EligibleStates(terms); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEligibleStatesNames(t *testing.T) {
	terms := "Must be physically present in New Jersey or West Virginia in order to wager."
	want := []string{"NJ", "WV"}
	if got := EligibleStates(terms); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEligibleStatesFollowingStates(t *testing.T) {
	terms := "Offer valid for new customers in the following states: NJ, PA, MI; other terms apply."
	want := []string{"NJ", "PA", "MI"}
	if got := EligibleStates(terms); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestEligibleStatesNoCue(t *testing.T) {
	if got := EligibleStates("Call 1-800-GAMBLER. NJ residents welcome."); got != nil {
		t.Errorf("Expected nil without a positive cue, got %v", got)
	}
}

func TestEnrich(t *testing.T) {
	offer := core.Offer{
		Brand:     "DraftKings",
		OfferText: "Bet $5, Get $200 in Bonus Bets",
		BonusCode: " DKBONUS ",
		Terms:     "Bonus bets expire in 7 days. Minimum odds of -500. 1x playthrough. Available in NJ, PA only.",
	}

	got := Enrich(offer)
	if got.BonusAmount != "$5" {
		t.Errorf("Expected bonus amount $5, got %q", got.BonusAmount)
	}
	if got.ExpirationDays != 7 {
		t.Errorf("Expected 7 expiration days, got %d", got.ExpirationDays)
	}
	if got.MinimumOdds != "-500" {
		t.Errorf("Expected min odds -500, got %q", got.MinimumOdds)
	}
	if got.WageringRequirement != "1x" {
		t.Errorf("Expected wagering 1x, got %q", got.WageringRequirement)
	}
	if !reflect.DeepEqual(got.States, []string{"NJ", "PA"}) {
		t.Errorf("Expected states [NJ PA], got %v", got.States)
	}
	if got.Operator != "draftkings" {
		t.Errorf("Expected operator draftkings, got %q", got.Operator)
	}
	if got.BonusCode != "DKBONUS" {
		t.Errorf("Expected trimmed bonus code, got %q", got.BonusCode)
	}

	if again := Enrich(got); !reflect.DeepEqual(again, got) {
		t.Errorf("Expected Enrich to be idempotent, got %+v then %+v", got, again)
	}
}

func TestEnrichExplicitValuesWin(t *testing.T) {
	offer := core.Offer{
		Brand:          "FanDuel",
		OfferText:      "Bet $5, Get $300",
		Terms:          "Bonus bets expire in 7 days. Available in NJ only.",
		States:         []string{"New York"},
		ExpirationDays: 14,
		BonusAmount:    "$300",
		Operator:       "FanDuel",
	}

	got := Enrich(offer)
	if got.ExpirationDays != 14 {
		t.Errorf("Expected explicit expiration 14, got %d", got.ExpirationDays)
	}
	if got.BonusAmount != "$300" {
		t.Errorf("Expected explicit amount $300, got %q", got.BonusAmount)
	}
	if !reflect.DeepEqual(got.States, []string{"NY"}) {
		t.Errorf("Expected explicit states [NY], got %v", got.States)
	}
	if got.Operator != "fanduel" {
		t.Errorf("Expected normalized operator fanduel, got %q", got.Operator)
	}
}

func TestEnrichCanonicalizesOperatorTag(t *testing.T) {
	tests := []struct {
		operator string
		want     string
	}{
		{"DraftKings Sportsbook", "draftkings"},
		{" Kalshi Exchange ", "kalshi"},
		{"Hard Rock Bet", "hard rock bet"},
	}
	for _, tt := range tests {
		got := Enrich(core.Offer{Brand: "Any", Operator: tt.operator})
		if got.Operator != tt.want {
			t.Errorf("Operator %q: expected %q, got %q", tt.operator, tt.want, got.Operator)
		}
	}
}

func TestExtractDeterministic(t *testing.T) {
	terms := "Bonus bets expire in 7 days. Minimum odds of -200. Available in NJ, PA only."
	first := Extract("Bet $10, Get $100", terms)
	for i := 0; i < 5; i++ {
		if again := Extract("Bet $10, Get $100", terms); !reflect.DeepEqual(first, again) {
			t.Fatalf("Expected identical facts on every run, got %v then %v", first, again)
		}
	}
}

func TestStateList(t *testing.T) {
	if got := StateList([]string{"NJ", "PA"}); got != "NJ, PA" {
		t.Errorf("Expected \"NJ, PA\", got %q", got)
	}
	if got := StateList([]string{"ALL"}); got != "all eligible states" {
		t.Errorf("Expected nationwide wording, got %q", got)
	}
	if got := StateList(nil); got != "" {
		t.Errorf("Expected empty string for unknown states, got %q", got)
	}
}
