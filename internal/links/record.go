// Package links maintains per-property internal link indexes and suggests
// links for article sections by embedding similarity.
package links

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/operator"
)

// Record is one internal link in a property index.
type Record struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Summary       string   `json:"summary,omitempty"`
	Anchors       []string `json:"recommended_anchors,omitempty"`
	Operator      string   `json:"operator,omitempty"`
	AlwaysInclude bool     `json:"always_include,omitempty"`
}

// sourceRecord accepts both anchor field spellings found in seed files.
type sourceRecord struct {
	Record
	LegacyAnchors []string `json:"anchors,omitempty"`
}

// ParseSource reads newline-delimited JSON link records. Records without a
// title or url are dropped, ids default to the url and the first record for
// an id wins. A missing operator tag is inferred from the title, url and
// anchors.
func ParseSource(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var (
		records []Record
		seen    = make(map[string]bool)
		line    int
	)
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var src sourceRecord
		if err := json.Unmarshal([]byte(raw), &src); err != nil {
			return nil, fmt.Errorf("failed to parse link record on line %d: %w", line, err)
		}

		rec := src.Record
		rec.Title = strings.TrimSpace(rec.Title)
		rec.URL = strings.TrimSpace(rec.URL)
		if rec.Title == "" || rec.URL == "" {
			continue
		}
		if len(rec.Anchors) == 0 {
			rec.Anchors = src.LegacyAnchors
		}
		if rec.ID == "" {
			rec.ID = rec.URL
		}
		if seen[rec.ID] {
			continue
		}
		seen[rec.ID] = true

		if rec.Operator != "" {
			rec.Operator = operator.Key(rec.Operator)
		} else {
			rec.Operator = operator.Normalize(append([]string{rec.Title, rec.URL}, rec.Anchors...)...)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read link source: %w", err)
	}
	return records, nil
}

// EmbeddingText is the document embedded for a record.
func (r Record) EmbeddingText() string {
	text := r.Title + " — " + r.Summary
	if len(r.Anchors) > 0 {
		text += " | " + strings.Join(r.Anchors, ", ")
	}
	return text
}

// Spec converts the record into a link spec with the given score.
func (r Record) Spec(score float64) core.InternalLinkSpec {
	spec := core.NewInternalLinkSpec(r.Title, r.URL, r.Anchors)
	spec.Description = r.Summary
	spec.Score = score
	spec.Operator = r.Operator
	spec.AlwaysInclude = r.AlwaysInclude
	return spec
}
