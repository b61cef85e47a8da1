package outline

import (
	"strings"
	"time"
	_ "time/tzdata"
)

// EasternZone is the zone game times and article dates are written in.
const EasternZone = "America/New_York"

// Game describes the featured event of an article.
type Game struct {
	AwayTeam  string `json:"away_team"`
	HomeTeam  string `json:"home_team"`
	StartTime string `json:"start_time,omitempty"` // ISO 8601 or preformatted text
	Network   string `json:"network,omitempty"`
	Venue     string `json:"venue,omitempty"`
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// FormatGameContext renders a game as event context lines for prompts, for
// example "Featured game: Atlanta Hawks vs Charlotte Hornets". ISO start
// times are converted to Eastern time; anything else passes through as is.
func FormatGameContext(g Game) string {
	var lines []string
	if g.AwayTeam != "" && g.HomeTeam != "" {
		lines = append(lines, "Featured game: "+strings.TrimSpace(g.AwayTeam)+" vs "+strings.TrimSpace(g.HomeTeam))
	}
	if when := FormatGameTime(g.StartTime); when != "" {
		lines = append(lines, "Game time: "+when)
	}
	if g.Network != "" {
		lines = append(lines, "Network: "+g.Network)
	}
	if g.Venue != "" {
		lines = append(lines, "Venue: "+g.Venue)
	}
	return strings.Join(lines, "\n")
}

// FormatGameTime converts an ISO timestamp to "Friday, February 13 at 8:00 PM ET".
// Timestamps without a zone are read as UTC. Unparseable input is returned
// trimmed.
func FormatGameTime(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range isoLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		return t.In(eastern()).Format("Monday, January 2 at 3:04 PM") + " ET"
	}
	return raw
}

func eastern() *time.Location {
	loc, err := time.LoadLocation(EasternZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
