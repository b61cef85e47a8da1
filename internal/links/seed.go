package links

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"planwrite/internal/operator"
)

// alwaysIncludePhrases marks seed titles that become guaranteed links.
var alwaysIncludePhrases = map[string][]string{
	"action_network": {"best betting sites", "legal sports betting", "best sportsbooks"},
	"vegas_insider":  {"best sportsbook promos", "best online casinos", "new sweepstakes casinos", "best prediction markets"},
	"sportshandle":   {"best betting sites", "best sports betting apps", "best prediction market apps"},
	"rotogrinders":   {"best prediction market apps", "best dfs apps"},
	"fantasy_labs":   {"nfl dfs", "best dfs apps", "top dfs sites"},
}

var (
	seedURLPattern = regexp.MustCompile(`https?://\S+`)
	camelTail      = regexp.MustCompile(`^(.*?)([A-Z][A-Za-z0-9.\-]+)$`)
	slugChars      = regexp.MustCompile(`^[a-z0-9\-]{2,}$`)
	slugSeparators = regexp.MustCompile(`[-_]+`)
)

// BuildSeed turns a raw seed list, one URL with an optional title per line,
// into link records grouped by property. domains maps a bare domain to its
// property; URLs on other domains are skipped. Every property in domains gets
// an entry, even when empty.
func BuildSeed(r io.Reader, domains map[string]string) (map[string][]Record, error) {
	out := make(map[string][]Record)
	seen := make(map[string]map[string]bool)
	for _, property := range domains {
		if _, ok := out[property]; !ok {
			out[property] = []Record{}
			seen[property] = make(map[string]bool)
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		rawURL, title := splitSeedLine(scanner.Text())
		if rawURL == "" {
			continue
		}
		link, title := cleanSeedURL(rawURL, title)
		if link == "" {
			continue
		}
		property := propertyForURL(link, domains)
		if property == "" {
			continue
		}
		if title == "" {
			title = titleFromURL(link)
		}
		title = strings.Join(strings.Fields(title), " ")

		key := link + "::" + strings.ToLower(title)
		if seen[property][key] {
			continue
		}
		seen[property][key] = true

		out[property] = append(out[property], Record{
			ID:            uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String(),
			Title:         title,
			URL:           link,
			Summary:       title,
			Anchors:       []string{strings.ToLower(title)},
			Operator:      operator.Normalize(title, link),
			AlwaysInclude: alwaysInclude(property, title),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read seed list: %w", err)
	}
	return out, nil
}

// WriteSeed writes one JSONL source file per property into dir and returns
// the properties written, sorted.
func WriteSeed(dir string, seeds map[string][]Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	properties := make([]string, 0, len(seeds))
	for property := range seeds {
		properties = append(properties, property)
	}
	sort.Strings(properties)

	for _, property := range properties {
		if err := writeSource(SourcePath(dir, property), seeds[property]); err != nil {
			return nil, fmt.Errorf("failed to write seed for %s: %w", property, err)
		}
	}
	return properties, nil
}

func writeSource(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func splitSeedLine(raw string) (string, string) {
	line := strings.Join(strings.Fields(raw), " ")
	loc := seedURLPattern.FindStringIndex(line)
	if loc == nil {
		return "", ""
	}
	return line[loc[0]:loc[1]], strings.TrimSpace(line[loc[1]:])
}

// cleanSeedURL repairs seed URLs that had a title fragment pasted onto the
// last path segment, such as "/bet365-bonus-codeBet365 Review", repeated
// slugs like "/nflnfl" and "/best" tails split from "best ..." titles.
func cleanSeedURL(raw, title string) (string, string) {
	raw = strings.TrimRight(strings.TrimSpace(raw), ".,)")
	raw = strings.Replace(raw, "http://actionnetwork.com", "https://www.actionnetwork.com", 1)

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", title
	}

	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		u.Path = "/"
		return u.String(), title
	}

	tail := segments[len(segments)-1]
	label := strings.TrimSpace(title)

	if m := camelTail.FindStringSubmatch(tail); m != nil && m[1] != "" {
		tail = m[1]
		label = strings.TrimSpace(m[2] + " " + label)
	}

	if half := len(tail) / 2; len(tail)%2 == 0 && half >= 2 && tail[:half] == tail[half:] && slugChars.MatchString(tail[:half]) {
		base := tail[:half]
		tail = base
		switch {
		case label == "":
			label = base
		case !strings.HasPrefix(strings.ToLower(label), strings.ToLower(base)):
			label = base + " " + label
		}
	}

	lowerTail := strings.ToLower(tail)
	switch {
	case lowerTail == "best" && label != "":
		segments = segments[:len(segments)-1]
		tail = ""
		label = withBestPrefix(label)
	case strings.HasSuffix(lowerTail, "best") && lowerTail != "best" && label != "":
		tail = tail[:len(tail)-4]
		label = withBestPrefix(label)
	}

	if len(segments) > 0 && tail != "" {
		segments[len(segments)-1] = tail
	}
	u.Path = "/" + strings.Join(segments, "/")
	clean := u.String()
	if u.Path != "/" {
		clean = strings.TrimRight(clean, "/")
	}

	label = strings.Trim(strings.Join(strings.Fields(label), " "), " -")
	return clean, label
}

func withBestPrefix(label string) string {
	if strings.HasPrefix(strings.ToLower(label), "best ") {
		return label
	}
	return "best " + label
}

func propertyForURL(link string, domains map[string]string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for domain, property := range domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return property
		}
	}
	return ""
}

func titleFromURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return "Resource"
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return "Resource"
	}
	parts := strings.Split(path, "/")
	words := strings.Fields(slugSeparators.ReplaceAllString(parts[len(parts)-1], " "))
	if len(words) == 0 {
		return "Resource"
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func alwaysInclude(property, title string) bool {
	lower := strings.ToLower(title)
	for _, phrase := range alwaysIncludePhrases[property] {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
