package outline

import (
	"fmt"
	"strings"

	"planwrite/internal/core"
)

const (
	minH2Sections    = 3
	maxH2Sections    = 6
	minShortcodes    = 2
	minKeywordH2s    = 2
	minTalkingPoints = 2
)

// Validate returns advisory warnings about an outline's structure. An empty
// result means the outline looks publishable; warnings never block a draft.
func Validate(o core.Outline, keyword string) []string {
	var warnings []string

	h2Count, shortcodes, hasIntro := 0, 0, false
	var h2Titles []string
	for _, s := range o {
		switch {
		case s.Level == core.LevelIntro:
			hasIntro = true
		case s.Level.IsShortcode():
			shortcodes++
		case s.Level == core.LevelH2:
			h2Count++
			h2Titles = append(h2Titles, strings.ToLower(s.Title))
		}
	}

	if !hasIntro {
		warnings = append(warnings, "Missing [INTRO] section")
	}
	switch {
	case h2Count < minH2Sections:
		warnings = append(warnings, fmt.Sprintf("Only %d H2 sections (recommend 4-5)", h2Count))
	case h2Count > maxH2Sections:
		warnings = append(warnings, fmt.Sprintf("Too many H2 sections (%d) - recommend max 5", h2Count))
	}
	if shortcodes < minShortcodes {
		warnings = append(warnings, "Consider adding more [SHORTCODE] placements for CTAs")
	}

	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw != "" {
		if len(h2Titles) > 0 && !strings.Contains(h2Titles[0], kw) {
			warnings = append(warnings, fmt.Sprintf("First H2 should contain keyword '%s'", keyword))
		}
		inTitles := 0
		for _, t := range h2Titles {
			if strings.Contains(t, kw) {
				inTitles++
			}
		}
		if inTitles < minKeywordH2s {
			warnings = append(warnings, fmt.Sprintf("Keyword '%s' only in %d H2 titles (recommend 3+)", keyword, inTitles))
		}
	}

	for _, s := range o {
		if s.Level.IsHeading() && len(s.TalkingPoints) < minTalkingPoints {
			title := s.Title
			if title == "" {
				title = "Untitled"
			}
			warnings = append(warnings, fmt.Sprintf("Section '%s' has too few talking points", title))
		}
	}
	return warnings
}
