// Package compliance scores finished article content against banned-phrase,
// disclosure, SEO and offer-consistency rules. Validation is stateless and
// every check runs independently.
package compliance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/inject"
	"planwrite/internal/render"
)

const (
	maxParagraphWords = 130
	wordsPerLink      = 120
	minKeywordCount   = 3
	maxKeywordCount   = 15
)

// Options carries the optional inputs of Validate.
type Options struct {
	Keyword        string
	Offer          *core.Offer
	AllowedDomains []string
}

type bannedRule struct {
	pattern *regexp.Regexp
	message string
	// exempt lists suffixes that make a match acceptable.
	exempt []string
}

var bannedRules = []bannedRule{
	{pattern: regexp.MustCompile(`(?i)\bsurefire\b`), message: "Avoid 'surefire' - implies guaranteed outcomes"},
	{pattern: regexp.MustCompile(`(?i)\bguarantee[d]?\b`), message: "Avoid 'guarantee' - no betting outcomes are guaranteed"},
	{pattern: regexp.MustCompile(`(?i)\bguaranteed wins?\b`), message: "Avoid promising wins"},
	{pattern: regexp.MustCompile(`(?i)\brisk[-\s]?free\b`), message: "Avoid 'risk-free' unless referring to bet credits", exempt: []string{" bet credit"}},
	{pattern: regexp.MustCompile(`(?i)\bcan'?t lose\b`), message: "Avoid 'can't lose' - misleading claim"},
	{pattern: regexp.MustCompile(`(?i)\bfree money\b`), message: "Avoid 'free money' - misleading"},
	{pattern: regexp.MustCompile(`(?i)\beasy win\b`), message: "Avoid 'easy win' - misleading claim"},
	{pattern: regexp.MustCompile(`(?i)\bno[- ]brainer\b`), message: "Avoid 'no-brainer' - implies certainty"},
}

var (
	betTriggers       = regexp.MustCompile(`(?i)\bbet\b|\bwager\b|\bparlay\b|\bgambl|\bsportsbook\b`)
	responsiblePhrase = []string{"responsible", "21+", "gambler", "gambling problem", "bet responsibly"}

	htmlPattern        = regexp.MustCompile(`(?i)<(p|h[1-6]|a|div|ul|ol|strong|br)[\s>/]`)
	ctaPattern         = regexp.MustCompile(`(?i)\[Claim Offer\]\(([^)]+)\)`)
	linkPattern        = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
	headingLinkPattern = regexp.MustCompile(`(?m)^#+ .*\]\(`)
	headingPattern     = regexp.MustCompile(`(?m)^(#{1,6}) `)

	expirationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)expir\w*\s+(?:in|after|within)\s+(\d+)\s+days?`),
		regexp.MustCompile(`(?i)(\d+)\s+days?\s+(?:to\s+use|to\s+expire|before\s+(?:they\s+)?expir)`),
		regexp.MustCompile(`(?i)valid\s+for\s+(\d+)\s+days?`),
	}
)

// Validate runs every check on content and scores the result. HTML content
// is reduced to markdown before the text checks run.
func Validate(content, state string, opts Options) core.ComplianceResult {
	text := content
	trackedCTA := false
	if htmlPattern.MatchString(content) {
		text = render.HTMLToMarkdown(content)
		trackedCTA = inject.HasTrackedLink(content) || strings.Contains(content, inject.SwitchboardBase)
	}

	var issues []core.ComplianceIssue
	issues = append(issues, checkBannedPhrases(text)...)
	issues = append(issues, checkResponsibleGaming(text)...)
	issues = append(issues, checkCTA(text, trackedCTA)...)
	issues = append(issues, checkSEO(text)...)
	issues = append(issues, checkLinkQuality(text, opts.AllowedDomains)...)
	if opts.Offer != nil {
		issues = append(issues, checkOffer(content, text, *opts.Offer)...)
	}
	if opts.Keyword != "" {
		issues = append(issues, checkKeyword(text, opts.Keyword)...)
	}

	result := core.ComplianceResult{
		Issues:    issues,
		WordCount: len(strings.Fields(text)),
	}
	errs := result.Count(core.SeverityError)
	warnings := result.Count(core.SeverityWarning)
	result.Valid = errs == 0
	result.Score = max(0, 100-15*float64(errs)-5*float64(warnings))
	if result.Issues == nil {
		result.Issues = []core.ComplianceIssue{}
	}
	return result
}

func checkBannedPhrases(text string) []core.ComplianceIssue {
	var issues []core.ComplianceIssue
	for _, rule := range bannedRules {
	matches:
		for _, m := range rule.pattern.FindAllStringIndex(text, -1) {
			for _, suffix := range rule.exempt {
				if strings.HasPrefix(strings.ToLower(text[m[1]:]), suffix) {
					continue matches
				}
			}
			issues = append(issues, core.ComplianceIssue{
				Type:       "banned_phrase",
				Message:    rule.message,
				Severity:   core.SeverityError,
				Location:   fmt.Sprintf("'%s' at position %d", text[m[0]:m[1]], m[0]),
				Suggestion: "Remove or rephrase this term",
			})
		}
	}
	return issues
}

func checkResponsibleGaming(text string) []core.ComplianceIssue {
	if !betTriggers.MatchString(text) {
		return nil
	}
	lower := strings.ToLower(text)
	for _, phrase := range responsiblePhrase {
		if strings.Contains(lower, phrase) {
			return nil
		}
	}
	return []core.ComplianceIssue{{
		Type:       "responsible_gaming",
		Message:    "Content mentions betting but lacks responsible gaming language",
		Severity:   core.SeverityError,
		Suggestion: "Add '21+' and responsible gaming disclaimer",
	}}
}

func checkCTA(text string, trackedCTA bool) []core.ComplianceIssue {
	if trackedCTA || ctaPattern.MatchString(text) {
		return nil
	}
	return []core.ComplianceIssue{{
		Type:       "missing_cta",
		Message:    "No CTA link found",
		Severity:   core.SeverityWarning,
		Suggestion: "Add at least one '[Claim Offer](url)' link or a tracked offer link",
	}}
}

func checkSEO(text string) []core.ComplianceIssue {
	var issues []core.ComplianceIssue

	long := 0
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		if len(strings.Fields(p)) > maxParagraphWords {
			long++
		}
	}
	if long > 0 {
		issues = append(issues, core.ComplianceIssue{
			Type:       "long_paragraph",
			Message:    fmt.Sprintf("%d paragraph(s) exceed ~120 words", long),
			Severity:   core.SeverityWarning,
			Suggestion: "Break long paragraphs into smaller chunks",
		})
	}

	links := len(linkPattern.FindAllString(text, -1))
	words := len(strings.Fields(text))
	if words > 0 && float64(links)/float64(words) > 1.0/wordsPerLink {
		issues = append(issues, core.ComplianceIssue{
			Type:       "link_density",
			Message:    "Link density too high (> 1 per ~120 words)",
			Severity:   core.SeverityWarning,
			Suggestion: "Reduce number of links or add more content",
		})
	}

	headings := headingPattern.FindAllStringSubmatch(text, -1)
	for i := 1; i < len(headings); i++ {
		if len(headings[i][1]) > len(headings[i-1][1])+1 {
			issues = append(issues, core.ComplianceIssue{
				Type:       "heading_skip",
				Message:    "Heading level skipped (e.g., H2 to H4)",
				Severity:   core.SeverityInfo,
				Suggestion: "Use sequential heading levels (H1 → H2 → H3)",
			})
			break
		}
	}
	return issues
}

func checkLinkQuality(text string, allowedDomains []string) []core.ComplianceIssue {
	var issues []core.ComplianceIssue
	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		anchor := strings.Trim(strings.TrimSpace(m[1]), "*")
		url := m[2]
		if len(strings.Fields(anchor)) < 2 {
			issues = append(issues, core.ComplianceIssue{
				Type:       "short_anchor",
				Message:    fmt.Sprintf("Anchor text too short: '%s'", anchor),
				Severity:   core.SeverityWarning,
				Location:   url,
				Suggestion: "Use descriptive anchor text (2+ words)",
			})
		}
		if len(allowedDomains) > 0 && !allowedURL(url, allowedDomains) {
			issues = append(issues, core.ComplianceIssue{
				Type:       "external_link",
				Message:    "External link detected: " + url,
				Severity:   core.SeverityInfo,
				Suggestion: "Verify external link is appropriate",
			})
		}
	}
	if headingLinkPattern.MatchString(text) {
		issues = append(issues, core.ComplianceIssue{
			Type:       "heading_link",
			Message:    "Link found in heading",
			Severity:   core.SeverityWarning,
			Suggestion: "Move links from headings to body text",
		})
	}
	return issues
}

func allowedURL(url string, domains []string) bool {
	if strings.HasPrefix(url, inject.SwitchboardBase) {
		return true
	}
	for _, d := range domains {
		if d != "" && strings.Contains(url, d) {
			return true
		}
	}
	return false
}

func checkOffer(raw, text string, offer core.Offer) []core.ComplianceIssue {
	var issues []core.ComplianceIssue

	if offer.HasCode() && !strings.Contains(strings.ToLower(raw), strings.ToLower(strings.TrimSpace(offer.BonusCode))) {
		issues = append(issues, core.ComplianceIssue{
			Type:       "missing_bonus_code",
			Message:    fmt.Sprintf("Bonus code %s does not appear in the content", offer.BonusCode),
			Severity:   core.SeverityError,
			Suggestion: "Mention the bonus code at least once",
		})
	}

	if offer.ExpirationDays > 0 {
		for _, p := range expirationPatterns {
			for _, m := range p.FindAllStringSubmatch(text, -1) {
				days, err := strconv.Atoi(m[1])
				if err != nil || days == offer.ExpirationDays {
					continue
				}
				issues = append(issues, core.ComplianceIssue{
					Type:       "expiration_mismatch",
					Message:    fmt.Sprintf("Content says %d days but the offer expires in %d days", days, offer.ExpirationDays),
					Severity:   core.SeverityError,
					Location:   m[0],
					Suggestion: fmt.Sprintf("Use %d days", offer.ExpirationDays),
				})
			}
		}
	}
	return issues
}

func checkKeyword(text, keyword string) []core.ComplianceIssue {
	count := strings.Count(strings.ToLower(text), strings.ToLower(strings.TrimSpace(keyword)))
	switch {
	case count < minKeywordCount:
		return []core.ComplianceIssue{{
			Type:       "keyword_density",
			Message:    fmt.Sprintf("Keyword %q appears %d time(s), expected at least %d", keyword, count, minKeywordCount),
			Severity:   core.SeverityWarning,
			Suggestion: "Work the keyword into more headings or paragraphs",
		}}
	case count > maxKeywordCount:
		return []core.ComplianceIssue{{
			Type:       "keyword_density",
			Message:    fmt.Sprintf("Keyword %q appears %d times, expected at most %d", keyword, count, maxKeywordCount),
			Severity:   core.SeverityWarning,
			Suggestion: "Reduce keyword repetition",
		}}
	}
	return nil
}
