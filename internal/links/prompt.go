package links

import (
	"fmt"
	"strings"

	"planwrite/internal/core"
)

// FormatForPrompt renders link suggestions as prompt bullets followed by a
// few contextual placeholder links the writer may use with href="#".
// Guaranteed links are flagged so the writer keeps them.
func FormatForPrompt(specs []core.InternalLinkSpec, brand string, predictionMarket bool) string {
	var lines []string
	for _, l := range specs {
		display := l.Title
		if l.URL != "" {
			display = fmt.Sprintf("[%s](%s)", l.Title, l.URL)
		}
		hint := ""
		if len(l.RecommendedAnchors) > 0 {
			hint = " — anchors: " + strings.Join(l.RecommendedAnchors[:min(3, len(l.RecommendedAnchors))], ", ")
		}
		if l.AlwaysInclude {
			lines = append(lines, fmt.Sprintf("- GUARANTEED: %s%s — must appear in the final article", display, hint))
			continue
		}
		lines = append(lines, "- "+display+hint)
	}

	name := brand
	if name == "" {
		name = "BRAND"
	}
	if predictionMarket {
		lines = append(lines,
			fmt.Sprintf("- [%s sign-up guide](#) — use when explaining registration steps", name),
			"- [how market contracts settle](#) — use when explaining how trades pay out",
			fmt.Sprintf("- [check %s availability in your state](#) — use when mentioning state-specific rules", name),
		)
	} else {
		lines = append(lines,
			fmt.Sprintf("- [%s sign-up guide](#) — use when explaining registration steps", name),
			"- [how bonus bets work](#) — use when explaining bonus bet mechanics",
			fmt.Sprintf("- [check your state's %s terms](#) — use when mentioning state-specific rules", name),
		)
	}
	return strings.Join(lines, "\n")
}
