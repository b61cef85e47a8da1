package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Offer represents a promotional record for a single operator.
// Derived facts (BonusAmount through WageringRequirement) are filled by the
// offers package; an empty value means the fact is unknown.
type Offer struct {
	ID          string   `json:"id,omitempty"`          // Upstream offer identifier
	Brand       string   `json:"brand"`                 // Display brand, e.g. "DraftKings"
	OfferText   string   `json:"offer_text"`            // Headline offer copy
	BonusCode   string   `json:"bonus_code,omitempty"`  // Promo code; empty when none is required
	Terms       string   `json:"terms,omitempty"`       // Raw terms and conditions text
	States      []string `json:"states,omitempty"`      // Eligible state codes, or ["ALL"]
	AffiliateID string   `json:"affiliate_id,omitempty"`
	CampaignID  string   `json:"campaign_id,omitempty"`
	TrackingURL string   `json:"tracking_url,omitempty"` // Affiliate tracking link
	ReviewURL   string   `json:"review_url,omitempty"`   // Brand review page on the property
	Operator    string   `json:"operator,omitempty"`     // Canonical operator key, e.g. "draftkings"

	// Derived facts
	BonusAmount         string `json:"bonus_amount,omitempty"`          // "$200"
	ExpirationDays      int    `json:"expiration_days,omitempty"`       // 0 when unknown
	MinimumOdds         string `json:"minimum_odds,omitempty"`          // "-500"
	WageringRequirement string `json:"wagering_requirement,omitempty"` // "1x"
}

// HasCode reports whether the offer carries a usable promo code.
func (o Offer) HasCode() bool {
	return strings.TrimSpace(o.BonusCode) != ""
}

// Level identifies the kind of an outline section.
type Level string

const (
	LevelIntro         Level = "intro"
	LevelShortcode     Level = "shortcode"
	LevelShortcodeMain Level = "shortcode_main"
	LevelH2            Level = "h2"
	LevelH3            Level = "h3"
)

// ShortcodeLevel returns the level for the n-th alternate offer block.
func ShortcodeLevel(n int) Level {
	if n <= 0 {
		return LevelShortcodeMain
	}
	return Level(fmt.Sprintf("shortcode_%d", n))
}

// ParseLevel converts a raw level string into a Level. Anything outside
// intro, shortcode, shortcode_main, shortcode_N, h2 and h3 is rejected.
func ParseLevel(raw string) (Level, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch Level(value) {
	case LevelIntro, LevelShortcode, LevelShortcodeMain, LevelH2, LevelH3:
		return Level(value), nil
	}
	if suffix, ok := strings.CutPrefix(value, "shortcode_"); ok {
		if n, err := strconv.Atoi(suffix); err == nil && n >= 0 && suffix == strconv.Itoa(n) {
			return Level(value), nil
		}
	}
	return "", fmt.Errorf("unknown section level %q", raw)
}

// IsShortcode reports whether the level renders a promo block.
func (l Level) IsShortcode() bool {
	return l == LevelShortcode || strings.HasPrefix(string(l), "shortcode_")
}

// IsHeading reports whether the level is an h2 or h3 section.
func (l Level) IsHeading() bool {
	return l == LevelH2 || l == LevelH3
}

// ShortcodeIndex returns the offer index a shortcode level points at.
// shortcode and shortcode_main map to 0, shortcode_N maps to N. Callers are
// responsible for falling back to 0 when N is out of range.
func (l Level) ShortcodeIndex() int {
	suffix, ok := strings.CutPrefix(string(l), "shortcode_")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// OutlineSection is one planned section of an article.
type OutlineSection struct {
	Level         Level    `json:"level"`
	Title         string   `json:"title"`
	TalkingPoints []string `json:"talking_points"`
	Avoid         []string `json:"avoid"`
}

// Outline is the ordered plan consumed by the draft executor.
type Outline []OutlineSection

// Clone returns a deep copy of the outline.
func (o Outline) Clone() Outline {
	if o == nil {
		return nil
	}
	out := make(Outline, len(o))
	for i, s := range o {
		out[i] = OutlineSection{
			Level:         s.Level,
			Title:         s.Title,
			TalkingPoints: append([]string(nil), s.TalkingPoints...),
			Avoid:         append([]string(nil), s.Avoid...),
		}
	}
	return out
}

// CountLevel returns how many sections have the given level.
func (o Outline) CountLevel(level Level) int {
	n := 0
	for _, s := range o {
		if s.Level == level {
			n++
		}
	}
	return n
}

// InternalLinkSpec describes an internal link the writer may weave in.
type InternalLinkSpec struct {
	Title              string   `json:"title"`
	URL                string   `json:"url"`
	RecommendedAnchors []string `json:"recommended_anchors"`
	Description        string   `json:"description,omitempty"`
	Score              float64  `json:"score"`
	Operator           string   `json:"operator,omitempty"`
	AlwaysInclude      bool     `json:"always_include,omitempty"`
}

// NewInternalLinkSpec builds a link spec, defaulting the anchors to the title.
func NewInternalLinkSpec(title, url string, anchors []string) InternalLinkSpec {
	spec := InternalLinkSpec{Title: title, URL: url}
	for _, a := range anchors {
		if a = strings.TrimSpace(a); a != "" {
			spec.RecommendedAnchors = append(spec.RecommendedAnchors, a)
		}
	}
	if len(spec.RecommendedAnchors) == 0 {
		spec.RecommendedAnchors = []string{title, strings.ToLower(title)}
	}
	return spec
}

// Severity grades a compliance issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ComplianceIssue is a single finding from the compliance validator.
type ComplianceIssue struct {
	Type       string   `json:"type"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	Location   string   `json:"location,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// ComplianceResult aggregates all issues found in a piece of content.
type ComplianceResult struct {
	Valid     bool              `json:"valid"`
	Issues    []ComplianceIssue `json:"issues"`
	WordCount int               `json:"word_count"`
	Score     float64           `json:"compliance_score"`
}

// Count returns the number of issues with the given severity.
func (r ComplianceResult) Count(sev Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == sev {
			n++
		}
	}
	return n
}

// Format selects the output encoding of a draft.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps a user-supplied format name to a Format, defaulting to HTML.
func ParseFormat(raw string) Format {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "markdown", "md":
		return FormatMarkdown
	default:
		return FormatHTML
	}
}
