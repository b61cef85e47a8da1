package draft

import (
	"strings"
	"unicode"

	"planwrite/internal/core"
	"planwrite/internal/inject"
	"planwrite/internal/offers"
	"planwrite/internal/operator"
	"planwrite/internal/render"
)

const (
	maxAltOffers   = 2
	maxDailyOffers = 4
)

// session is the state carried across the sections of one draft.
type session struct {
	req          Request
	state        string
	pm           bool
	offers       []core.Offer
	daily        []core.Offer
	previous     strings.Builder
	keywordCount int
	seen         map[string]bool
	failed       int
}

func newSession(req Request) *session {
	primary := offers.Enrich(req.Offer)
	alts := offers.EnrichAll(req.AltOffers)

	s := &session{
		req:   req,
		state: strings.ToUpper(strings.TrimSpace(req.State)),
		pm:    operator.DetectPredictionMarket(primary.Operator, primary.Brand, primary.OfferText, req.Keyword, req.Title),
		seen:  make(map[string]bool),
	}
	if s.state == "" {
		s.state = offers.AllStates
	}
	s.offers = append([]core.Offer{primary}, alts[:min(maxAltOffers, len(alts))]...)
	s.daily = append([]core.Offer{primary}, alts[:min(maxDailyOffers-1, len(alts))]...)
	return s
}

func (s *session) primary() core.Offer {
	return s.offers[0]
}

// offerFor resolves the offer a shortcode level points at. Indexes past the
// available offers fall back to the primary offer.
func (s *session) offerFor(level core.Level) core.Offer {
	idx := level.ShortcodeIndex()
	if idx < 0 || idx >= len(s.offers) {
		idx = 0
	}
	return s.offers[idx]
}

// trackingURL returns the affiliate link for an offer, building a
// switchboard URL from its affiliate and campaign ids when none is set.
func (s *session) trackingURL(o core.Offer) string {
	if o.TrackingURL != "" {
		return o.TrackingURL
	}
	if o.AffiliateID == "" || o.CampaignID == "" {
		return ""
	}
	params := inject.TrackingParams{AffiliateID: o.AffiliateID, CampaignID: o.CampaignID}
	if s.state != offers.AllStates {
		params.StateCode = s.state
	}
	return inject.BuildTrackingURL(params)
}

// markSeen records a heading and reports whether it was new.
func (s *session) markSeen(title string) bool {
	key := normalizeHeading(title)
	if key == "" || s.seen[key] {
		return false
	}
	s.seen[key] = true
	return true
}

func (s *session) record(content string) {
	s.previous.WriteString(content)
	s.previous.WriteString("\n")
	s.keywordCount += countKeyword(content, s.req.Keyword)
}

// tail returns the last n runes of the content written so far.
func (s *session) tail(n int) string {
	runes := []rune(s.previous.String())
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[len(runes)-n:])
}

func normalizeHeading(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, title)
}

func countKeyword(content, keyword string) int {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return 0
	}
	return strings.Count(strings.ToLower(render.StripTags(content)), keyword)
}
