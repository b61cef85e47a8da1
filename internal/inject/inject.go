// Package inject wraps brand and bonus code mentions in tracked affiliate
// links. Every function is a pure string transform.
package inject

import (
	"html"
	"regexp"
	"strings"
)

const (
	// DefaultMaxLinks caps tracked links per document when Options.MaxLinks is unset.
	DefaultMaxLinks = 6
	// TrackingDataID marks anchors produced by Inject.
	TrackingDataID = "switchboard_tracking"
)

var (
	strongPattern   = regexp.MustCompile(`(?is)<strong>(.*?)</strong>`)
	promoLanguage   = []string{"promo code", "bonus code"}
	codeFollowsName = regexp.MustCompile(`(?i)^\s+(?:bonus|promo|code)\s+code`)
	hrefEscaper     = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// Href encodes a URL for an href attribute. Already encoded input is
// decoded first, so every caller writes the same URL the same way.
func Href(rawURL string) string {
	return hrefEscaper.Replace(html.UnescapeString(rawURL))
}

// SameURL reports whether two href values name the same URL, whether or
// not either one is entity encoded.
func SameURL(a, b string) bool {
	return html.UnescapeString(a) == html.UnescapeString(b)
}

// Options configures Inject.
type Options struct {
	Brand       string
	BonusCode   string
	TrackingURL string
	MaxLinks    int
}

// Inject rewrites <strong> phrases that mention the brand, the bonus code or
// promo language into tracked links. When that adds nothing and the document
// has no tracked link yet, the first plain brand mention is wrapped instead.
// Text inside an open anchor, an h1-h3 heading or a tag is never touched, so
// running Inject on its own output adds no links. It returns the new document
// and the number of links added.
func Inject(doc string, opts Options) (string, int) {
	if opts.Brand == "" || opts.TrackingURL == "" || doc == "" {
		return doc, 0
	}
	limit := opts.MaxLinks
	if limit <= 0 {
		limit = DefaultMaxLinks
	}

	brand := strings.ToLower(opts.Brand)
	code := strings.ToLower(strings.TrimSpace(opts.BonusCode))

	var (
		b     strings.Builder
		added int
		last  int
	)
	for _, m := range strongPattern.FindAllStringSubmatchIndex(doc, -1) {
		start, end := m[0], m[1]
		inner := doc[m[2]:m[3]]
		if added >= limit || !linkable(doc, start) || !mentionsOffer(strings.ToLower(inner), brand, code) {
			continue
		}
		b.WriteString(doc[last:start])
		b.WriteString(anchor(opts.TrackingURL, "<strong>"+inner+"</strong>"))
		last = end
		added++
	}
	b.WriteString(doc[last:])
	result := b.String()

	if added > 0 || HasTrackedLink(result) {
		return result, added
	}

	brandPattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(opts.Brand))
	for _, m := range brandPattern.FindAllStringIndex(result, -1) {
		if !linkable(result, m[0]) {
			continue
		}
		return result[:m[0]] + anchor(opts.TrackingURL, result[m[0]:m[1]]) + result[m[1]:], 1
	}
	return result, 0
}

// HasTrackedLink reports whether doc already holds an anchor made by Inject.
func HasTrackedLink(doc string) bool {
	return strings.Contains(doc, `data-id="`+TrackingDataID+`"`)
}

// CountTrackedLinks counts anchors made by Inject.
func CountTrackedLinks(doc string) int {
	return strings.Count(doc, `data-id="`+TrackingDataID+`"`)
}

// BrandReviewLinks links standalone brand mentions to the brand review page.
// Mentions followed by "bonus code" or "promo code" are left for Inject.
func BrandReviewLinks(doc, brand, reviewURL string, maxLinks int) (string, int) {
	if brand == "" || reviewURL == "" || doc == "" {
		return doc, 0
	}
	if maxLinks <= 0 {
		maxLinks = 3
	}

	pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(brand) + `\b`)
	var (
		b     strings.Builder
		added int
		last  int
	)
	for _, m := range pattern.FindAllStringIndex(doc, -1) {
		if added >= maxLinks {
			break
		}
		if !linkable(doc, m[0]) || codeFollowsName.MatchString(doc[m[1]:]) {
			continue
		}
		b.WriteString(doc[last:m[0]])
		b.WriteString(`<a href="` + Href(reviewURL) + `" rel="follow">` + doc[m[0]:m[1]] + `</a>`)
		last = m[1]
		added++
	}
	b.WriteString(doc[last:])
	return b.String(), added
}

func anchor(href, inner string) string {
	return `<a data-id="` + TrackingDataID + `" href="` + Href(href) + `" rel="nofollow">` + inner + `</a>`
}

func mentionsOffer(inner, brand, code string) bool {
	if strings.Contains(inner, brand) {
		return true
	}
	for _, phrase := range promoLanguage {
		if strings.Contains(inner, phrase) {
			return true
		}
	}
	return code != "" && strings.Contains(inner, code)
}

// linkable reports whether position pos of doc is plain text outside any
// open anchor, h1-h3 heading or tag.
func linkable(doc string, pos int) bool {
	before := strings.ToLower(doc[:pos])
	if strings.LastIndex(before, "<") > strings.LastIndex(before, ">") {
		return false
	}
	if open := lastOpen(before, "a"); open >= 0 && open > strings.LastIndex(before, "</a>") {
		return false
	}
	for _, tag := range []string{"h1", "h2", "h3"} {
		if open := lastOpen(before, tag); open >= 0 && open > strings.LastIndex(before, "</"+tag+">") {
			return false
		}
	}
	return true
}

// lastOpen finds the last opening tag named tag, with or without attributes.
func lastOpen(s, tag string) int {
	return max(strings.LastIndex(s, "<"+tag+" "), strings.LastIndex(s, "<"+tag+">"))
}
