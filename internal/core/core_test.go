package core

import "testing"

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{"intro", LevelIntro, false},
		{"SHORTCODE", LevelShortcode, false},
		{"shortcode_main", LevelShortcodeMain, false},
		{"shortcode_2", Level("shortcode_2"), false},
		{" h2 ", LevelH2, false},
		{"h3", LevelH3, false},
		{"h4", "", true},
		{"shortcode_x", "", true},
		{"shortcode_-1", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.raw)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLevel(%q): expected error, got %q", tt.raw, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLevel(%q): unexpected error %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q): expected %q, got %q", tt.raw, tt.want, got)
		}
	}
}

func TestShortcodeIndex(t *testing.T) {
	tests := map[Level]int{
		LevelShortcode:      0,
		LevelShortcodeMain:  0,
		Level("shortcode_1"): 1,
		Level("shortcode_7"): 7,
		LevelH2:             0,
	}
	for level, want := range tests {
		if got := level.ShortcodeIndex(); got != want {
			t.Errorf("%s.ShortcodeIndex(): expected %d, got %d", level, want, got)
		}
	}

	if !ShortcodeLevel(2).IsShortcode() {
		t.Error("Expected ShortcodeLevel(2) to be a shortcode level")
	}
	if ShortcodeLevel(0) != LevelShortcodeMain {
		t.Errorf("Expected ShortcodeLevel(0) to be shortcode_main, got %s", ShortcodeLevel(0))
	}
}

func TestNewInternalLinkSpecDefaultsAnchors(t *testing.T) {
	spec := NewInternalLinkSpec("Best Betting Sites", "https://example.com/best", nil)
	if len(spec.RecommendedAnchors) != 2 {
		t.Fatalf("Expected 2 default anchors, got %d", len(spec.RecommendedAnchors))
	}
	if spec.RecommendedAnchors[1] != "best betting sites" {
		t.Errorf("Expected lowercased title anchor, got %q", spec.RecommendedAnchors[1])
	}

	spec = NewInternalLinkSpec("Guide", "https://example.com/guide", []string{" ", "guide anchor"})
	if len(spec.RecommendedAnchors) != 1 || spec.RecommendedAnchors[0] != "guide anchor" {
		t.Errorf("Expected blank anchors to be dropped, got %v", spec.RecommendedAnchors)
	}
}

func TestOutlineClone(t *testing.T) {
	original := Outline{{Level: LevelH2, Title: "A", TalkingPoints: []string{"x"}}}
	clone := original.Clone()
	clone[0].TalkingPoints[0] = "changed"

	if original[0].TalkingPoints[0] != "x" {
		t.Error("Expected Clone to deep-copy talking points")
	}
}

func TestComplianceResultCount(t *testing.T) {
	result := ComplianceResult{Issues: []ComplianceIssue{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
		{Severity: SeverityError},
	}}
	if result.Count(SeverityError) != 2 {
		t.Errorf("Expected 2 errors, got %d", result.Count(SeverityError))
	}
	if result.Count(SeverityInfo) != 0 {
		t.Errorf("Expected 0 info issues, got %d", result.Count(SeverityInfo))
	}
}
