package outline

import (
	"regexp"
	"strings"

	"planwrite/internal/core"
)

var (
	introToken     = regexp.MustCompile(`(?i)^\[INTRO\]$`)
	shortcodeToken = regexp.MustCompile(`(?i)^\[(SHORTCODE(?:_(?:MAIN|\d+))?)\]$`)
	headingToken   = regexp.MustCompile(`(?i)^\[(H[23]):\s*(.+)\]$`)
	avoidLine      = regexp.MustCompile(`(?i)^!\s*Avoid:\s*(.+)$`)
)

// ToText renders an outline in the editable bracket format:
//
//	[INTRO]
//	> Hook with date and offer value
//
//	[SHORTCODE]
//
//	[H2: Section Title]
//	> Talking point
//	! Avoid: thing covered elsewhere
func ToText(o core.Outline) string {
	var b strings.Builder
	for _, s := range o {
		switch {
		case s.Level == core.LevelIntro:
			b.WriteString("[INTRO]\n")
		case s.Level.IsShortcode():
			b.WriteString("[" + strings.ToUpper(string(s.Level)) + "]\n")
		case s.Level.IsHeading():
			b.WriteString("[" + strings.ToUpper(string(s.Level)) + ": " + oneLine(s.Title) + "]\n")
		default:
			continue
		}
		for _, p := range s.TalkingPoints {
			b.WriteString("> " + oneLine(p) + "\n")
		}
		if len(s.Avoid) > 0 {
			avoid := make([]string, len(s.Avoid))
			for i, a := range s.Avoid {
				avoid[i] = oneLine(a)
			}
			b.WriteString("! Avoid: " + strings.Join(avoid, ", ") + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// FromText parses the bracket format back into an outline. Blank lines,
// unknown tokens and points before the first section header are ignored.
// Avoid items are split on commas.
func FromText(text string) core.Outline {
	out := core.Outline{}
	var current *core.OutlineSection
	flush := func() {
		if current != nil {
			out = append(out, *current)
		}
	}
	start := func(level core.Level, title string) {
		flush()
		current = &core.OutlineSection{Level: level, Title: title, TalkingPoints: []string{}, Avoid: []string{}}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if introToken.MatchString(line) {
			start(core.LevelIntro, "")
			continue
		}
		if m := shortcodeToken.FindStringSubmatch(line); m != nil {
			level, err := core.ParseLevel(m[1])
			if err != nil {
				continue
			}
			start(level, "")
			continue
		}
		if m := headingToken.FindStringSubmatch(line); m != nil {
			start(core.Level(strings.ToLower(m[1])), strings.TrimSpace(m[2]))
			continue
		}
		if current == nil {
			continue
		}

		if point, ok := strings.CutPrefix(line, ">"); ok {
			if point = strings.TrimSpace(point); point != "" {
				current.TalkingPoints = append(current.TalkingPoints, point)
			}
			continue
		}
		if m := avoidLine.FindStringSubmatch(line); m != nil {
			for _, item := range strings.Split(m[1], ",") {
				if item = strings.TrimSpace(item); item != "" {
					current.Avoid = append(current.Avoid, item)
				}
			}
		}
	}
	flush()
	return out
}
