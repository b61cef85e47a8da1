package draft

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"planwrite/internal/core"
	"planwrite/internal/inject"
	"planwrite/internal/offers"
	"planwrite/internal/operator"
	"planwrite/internal/render"
)

const promoTermsChars = 500

var (
	paragraphPattern  = regexp.MustCompile(`(?is)(<p[^>]*>)(.*?)</p>`)
	nationwidePattern = regexp.MustCompile(`(?i)\b(?:nationwide|across the country)\b`)
	textEscaper       = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

func toHTML(fragment string) string {
	return render.EnsureHTML(fragment)
}

// promoCard renders the offer block placed at shortcode positions. Offer
// copy is used verbatim. The closing note is not a responsible gaming
// disclaimer; that appears once, at the end of the article.
func promoCard(o core.Offer, trackingURL string) string {
	var b strings.Builder
	b.WriteString(`<div class="promo-card">` + "\n")
	b.WriteString(fmt.Sprintf("<p><strong>%s: %s</strong></p>\n", escapeText(o.Brand), escapeText(o.OfferText)))
	if o.HasCode() {
		b.WriteString(fmt.Sprintf("<p>Bonus Code: <strong>%s</strong></p>\n", escapeText(o.BonusCode)))
	}
	if trackingURL != "" {
		b.WriteString(fmt.Sprintf(`<p><a data-id="%s" href="%s" rel="nofollow"><strong>Claim Offer</strong></a></p>`+"\n", inject.TrackingDataID, inject.Href(trackingURL)))
	}
	if terms := strings.Join(strings.Fields(strings.ReplaceAll(o.Terms, `\n`, " ")), " "); terms != "" {
		runes := []rune(terms)
		if len(runes) > promoTermsChars {
			terms = string(runes[:promoTermsChars]) + "..."
		}
		b.WriteString(fmt.Sprintf("<details><summary>Terms apply</summary><p>%s</p></details>\n", escapeText(terms)))
	}
	b.WriteString("<p><em>21+. Terms apply.</em></p>\n</div>")
	return b.String()
}

// termsSection renders the operator's terms one paragraph per line. Without
// terms it states the known facts and points readers at the full terms.
func termsSection(o core.Offer, pm bool) string {
	raw := strings.TrimSpace(strings.ReplaceAll(o.Terms, `\n`, "\n"))
	if raw != "" {
		var paras []string
		for _, line := range strings.Split(raw, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				paras = append(paras, "<p>"+escapeText(line)+"</p>")
			}
		}
		return strings.Join(paras, "\n")
	}

	var lines []string
	if o.ExpirationDays > 0 {
		lines = append(lines, fmt.Sprintf("%s expire in %d days.", pick(pm, "Bonus bets", "Promotional credits"), o.ExpirationDays))
	}
	if !pm && o.MinimumOdds != "" {
		lines = append(lines, fmt.Sprintf("Minimum odds of %s apply to qualifying bets.", o.MinimumOdds))
	}
	if !pm && o.WageringRequirement != "" {
		lines = append(lines, fmt.Sprintf("Wagering requirement: %s.", o.WageringRequirement))
	}
	brand := o.Brand
	if brand == "" {
		brand = "the operator"
	}
	lines = append(lines, fmt.Sprintf("See full terms at %s before you claim the offer.", brand))

	paras := make([]string, len(lines))
	for i, line := range lines {
		paras[i] = "<p>" + escapeText(line) + "</p>"
	}
	return operator.Apply(strings.Join(paras, "\n"), pm)
}

// signupSteps is the fixed five-step registration list.
func signupSteps(brand, code string, pm bool) []string {
	if brand == "" {
		brand = "the operator"
	}
	codeStep := "Create your account. No promo code is required."
	if strings.TrimSpace(code) != "" {
		codeStep = fmt.Sprintf("Create your account and enter <strong>%s promo code %s</strong>.", escapeText(brand), escapeText(strings.TrimSpace(code)))
	}
	return []string{
		fmt.Sprintf("Go to the %s app or website and confirm you are 21+ and located in an eligible state.", escapeText(brand)),
		codeStep,
		"Verify your identity and location when prompted.",
		"Make your first deposit with a supported payment method.",
		pick(pm,
			"Place your first qualifying bet to unlock the bonus.",
			"Open your first qualifying market position to unlock the promo."),
	}
}

func orderedList(items []string) string {
	var b strings.Builder
	b.WriteString("<ol>\n")
	for _, item := range items {
		b.WriteString("<li>" + item + "</li>\n")
	}
	b.WriteString("</ol>")
	return b.String()
}

// dailyPromos renders the placeholder list editors refresh on publish day.
func dailyPromos(candidates []core.Offer, pm bool) string {
	var b strings.Builder
	b.WriteString(operator.Apply("<p><em>Editor: refresh before publish. Confirm today's offers, codes and states.</em></p>", pm))
	b.WriteString("\n<ul>\n")
	if len(candidates) == 0 {
		b.WriteString("<li>[Operator]: [Offer] (code: [Code]). States: [States]</li>\n")
	}
	for _, o := range candidates {
		code := "no code needed"
		if o.HasCode() {
			code = "code: " + o.BonusCode
		}
		states := offers.StateList(o.States)
		if states == "" {
			states = "[States]"
		}
		b.WriteString(fmt.Sprintf("<li>%s: %s (%s). States: %s</li>\n",
			escapeText(o.Brand), escapeText(o.OfferText), escapeText(code), escapeText(states)))
	}
	b.WriteString("</ul>")
	return b.String()
}

// shapeIntro makes sure the intro has at least two paragraphs and names the
// eligible states instead of saying "nationwide".
func shapeIntro(intro string, states []string) string {
	if list := offers.StateList(states); list != "" && !offers.IsNationwide(states) {
		intro = nationwidePattern.ReplaceAllString(intro, "in "+list)
	}

	paras := paragraphPattern.FindAllStringSubmatch(intro, -1)
	if len(paras) >= 2 {
		return intro
	}
	text := intro
	if len(paras) == 1 {
		if strings.TrimSpace(intro) != paras[0][0] {
			return intro
		}
		text = paras[0][2]
	}
	sentences := splitSentences(strings.TrimSpace(text))
	if len(sentences) < 2 {
		if len(paras) == 0 && text != "" {
			return "<p>" + text + "</p>"
		}
		return intro
	}
	half := (len(sentences) + 1) / 2
	return "<p>" + strings.Join(sentences[:half], " ") + "</p>\n<p>" + strings.Join(sentences[half:], " ") + "</p>"
}

// splitSentences splits text after sentence punctuation followed by
// whitespace. A period after "vs" does not end a sentence.
func splitSentences(text string) []string {
	runes := []rune(text)
	var (
		out   []string
		start int
	)
	for i := 0; i < len(runes)-1; i++ {
		r := runes[i]
		if (r != '.' && r != '?' && r != '!') || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if r == '.' && strings.HasSuffix(strings.ToLower(string(runes[start:i])), "vs") {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
