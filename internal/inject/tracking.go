package inject

import (
	"net/url"
	"strings"
)

const (
	// SwitchboardBase is the affiliate redirect endpoint.
	SwitchboardBase = "https://switchboard.actionnetwork.com/offers"
	// DefaultContext is the placement label sent with tracked links.
	DefaultContext = "web-article-top-stories"
)

// TrackingParams identifies one tracked placement.
type TrackingParams struct {
	AffiliateID string
	CampaignID  string
	Context     string
	PropertyID  string
	StateCode   string
}

// BuildTrackingURL builds a switchboard URL. Parameters keep a fixed order so
// the same placement always yields the same URL.
func BuildTrackingURL(p TrackingParams) string {
	if p.Context == "" {
		p.Context = DefaultContext
	}
	if p.PropertyID == "" {
		p.PropertyID = "1"
	}

	params := []string{
		"affiliateId=" + url.QueryEscape(p.AffiliateID),
		"campaignId=" + url.QueryEscape(p.CampaignID),
		"context=" + url.QueryEscape(p.Context),
		"propertyId=" + url.QueryEscape(p.PropertyID),
	}
	if p.StateCode != "" {
		params = append(params, "stateCode="+url.QueryEscape(strings.ToUpper(p.StateCode)))
	}
	return SwitchboardBase + "?" + strings.Join(params, "&")
}
