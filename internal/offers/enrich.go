package offers

import (
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/operator"
)

// Enrich fills the derived facts of an offer from its copy and terms.
// Values already present on the offer are kept, so calling Enrich twice
// yields the same result as calling it once.
func Enrich(offer core.Offer) core.Offer {
	out := offer
	out.States = append([]string(nil), offer.States...)

	if out.BonusAmount == "" {
		out.BonusAmount = BonusAmount(offer.OfferText)
	}
	if out.ExpirationDays == 0 {
		out.ExpirationDays = ExpirationDays(offer.Terms)
	}
	if out.MinimumOdds == "" {
		out.MinimumOdds = MinimumOdds(offer.Terms)
	}
	if out.WageringRequirement == "" {
		out.WageringRequirement = WageringRequirement(offer.Terms)
	}

	if states := ParseStates(out.States); len(states) > 0 {
		out.States = states
	} else {
		out.States = EligibleStates(offer.Terms)
	}

	if out.Operator == "" {
		out.Operator = operator.Normalize(offer.Brand, offer.OfferText)
	} else {
		out.Operator = operator.Key(out.Operator)
	}
	out.BonusCode = strings.TrimSpace(out.BonusCode)
	return out
}

// EnrichAll enriches every offer in order.
func EnrichAll(offers []core.Offer) []core.Offer {
	out := make([]core.Offer, len(offers))
	for i, o := range offers {
		out[i] = Enrich(o)
	}
	return out
}

// StateList renders the eligible states for prose. An empty result means
// the states are unknown.
func StateList(states []string) string {
	if len(states) == 0 {
		return ""
	}
	if len(states) == 1 && states[0] == AllStates {
		return "all eligible states"
	}
	return strings.Join(states, ", ")
}

// IsNationwide reports whether the list is the ALL sentinel.
func IsNationwide(states []string) bool {
	return len(states) == 1 && states[0] == AllStates
}
