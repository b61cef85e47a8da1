package draft

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"planwrite/internal/compliance"
	"planwrite/internal/core"
	"planwrite/internal/inject"
	"planwrite/internal/render"
)

const minParagraphWords = 3

var (
	anchorPattern = regexp.MustCompile(`(?is)<a\s[^>]*href="([^"]*)"[^>]*>(.*?)</a>`)
	blankLines    = regexp.MustCompile(`\n\s*\n`)
)

// finish runs the document-level passes over the assembled sections.
func (e *Executor) finish(ctx context.Context, s *session, doc string) string {
	doc = stripDisclaimers(doc)

	if e.links != nil {
		if related := relatedReading(doc, e.links.Guaranteed(ctx, s.req.Property)); related != "" {
			doc += "\n" + related
		}
	}

	primary := s.primary()
	if url := s.trackingURL(primary); url != "" {
		var added int
		doc, added = inject.Inject(doc, inject.Options{
			Brand:       primary.Brand,
			BonusCode:   primary.BonusCode,
			TrackingURL: url,
			MaxLinks:    e.maxLinks,
		})
		e.log.Debug("Tracked links injected", "added", added)
	}
	if primary.ReviewURL != "" {
		doc, _ = inject.BrandReviewLinks(doc, primary.Brand, primary.ReviewURL, 0)
	}

	doc += "\n<p><em>" + compliance.DisclaimerForState(s.state) + "</em></p>"
	return doc
}

// disclaimerBlock is an element kind that may carry a responsible gaming
// line written by the model.
type disclaimerBlock struct {
	pattern *regexp.Regexp
	close   string
}

var (
	disclaimerBlocks = []disclaimerBlock{
		{pattern: paragraphPattern, close: "</p>"},
		{pattern: regexp.MustCompile(`(?is)(<li[^>]*>)(.*?)</li>`), close: "</li>"},
		{pattern: regexp.MustCompile(`(?is)(<div[^>]*>)(.*?)</div>`), close: "</div>"},
	}
	nestedBlock = regexp.MustCompile(`(?i)<(?:p|div|li|ul|ol|h[1-6])[\s>]`)
	emptyList   = regexp.MustCompile(`(?is)<[uo]l[^>]*>\s*</[uo]l>`)
)

// stripDisclaimers removes responsible gaming sentences from paragraphs,
// list items, divs and bare text lines. Blocks left with almost nothing
// are dropped, as are lists left without items.
func stripDisclaimers(doc string) string {
	for _, block := range disclaimerBlocks {
		doc = block.pattern.ReplaceAllStringFunc(doc, func(el string) string {
			m := block.pattern.FindStringSubmatch(el)
			open, inner := m[1], m[2]
			if nestedBlock.MatchString(inner) {
				return el
			}
			rest, changed := withoutDisclaimer(inner)
			if !changed {
				return el
			}
			if rest == "" {
				return ""
			}
			return open + rest + block.close
		})
	}
	doc = emptyList.ReplaceAllString(doc, "")

	lines := strings.Split(doc, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "<") {
			continue
		}
		if rest, changed := withoutDisclaimer(line); changed {
			lines[i] = rest
		}
	}
	doc = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(doc, "\n"))
}

// withoutDisclaimer drops the disclaimer sentences of a fragment. It
// reports whether anything was removed; the result is empty when too few
// words remain.
func withoutDisclaimer(fragment string) (string, bool) {
	if !compliance.IsDisclaimer(render.StripTags(fragment)) {
		return fragment, false
	}
	var kept []string
	for _, sentence := range splitSentences(fragment) {
		if !compliance.IsDisclaimer(render.StripTags(sentence)) {
			kept = append(kept, sentence)
		}
	}
	rest := strings.Join(kept, " ")
	if len(strings.Fields(render.StripTags(rest))) < minParagraphWords {
		return "", true
	}
	return rest, true
}

// relatedReading lists guaranteed links the draft does not already carry.
// A link counts as present when an anchor with its URL uses one of its
// recommended anchors.
func relatedReading(doc string, guaranteed []core.InternalLinkSpec) string {
	var items []string
	for _, spec := range guaranteed {
		if spec.URL == "" || hasLink(doc, spec) {
			continue
		}
		anchorText := spec.Title
		if len(spec.RecommendedAnchors) > 0 {
			anchorText = spec.RecommendedAnchors[0]
		}
		items = append(items, fmt.Sprintf(`<li><a href="%s">%s</a></li>`, inject.Href(spec.URL), escapeText(anchorText)))
	}
	if len(items) == 0 {
		return ""
	}
	return "<h2>Related Reading</h2>\n<ul>\n" + strings.Join(items, "\n") + "\n</ul>"
}

func hasLink(doc string, spec core.InternalLinkSpec) bool {
	anchors := append([]string{spec.Title}, spec.RecommendedAnchors...)
	for _, m := range anchorPattern.FindAllStringSubmatch(doc, -1) {
		if !inject.SameURL(m[1], spec.URL) {
			continue
		}
		text := strings.TrimSpace(render.StripTags(m[2]))
		for _, a := range anchors {
			if strings.EqualFold(text, strings.TrimSpace(a)) {
				return true
			}
		}
	}
	return false
}
