package compliance

import (
	"regexp"
	"strings"
)

var stateDisclaimers = map[string]string{
	"ALL": "21+. Gambling problem? Call 1-800-GAMBLER. Please bet responsibly.",
	"NY":  "21+. Gambling problem? Call 877-8-HOPENY or text HOPENY (467369).",
	"AZ":  "21+. Gambling problem? Call 1-800-NEXT-STEP.",
	"PA":  "21+. Gambling problem? Call 1-800-GAMBLER.",
	"NJ":  "21+. Gambling problem? Call 1-800-GAMBLER.",
	"CO":  "21+. Gambling problem? Call 1-800-522-4700.",
	"MI":  "21+. Gambling problem? Call 1-800-270-7117.",
	"VA":  "21+. Gambling problem? Call 1-888-532-3500.",
	"OH":  "21+. If you or a loved one has a gambling problem, call 1-800-589-9966.",
	"MA":  "21+. Gambling problem? Call 1-800-327-5050.",
	"KY":  "21+. Gambling problem? Call 1-800-522-4700.",
}

var disclaimerPattern = regexp.MustCompile(`(?i)gambling problem|1-800-gambler|hopeny|bet responsibly|trade responsibly`)

// DisclaimerForState returns the responsible gaming disclaimer for a state
// code, falling back to the national text.
func DisclaimerForState(state string) string {
	if d, ok := stateDisclaimers[strings.ToUpper(strings.TrimSpace(state))]; ok {
		return d
	}
	return stateDisclaimers["ALL"]
}

// IsDisclaimer reports whether a paragraph of text is a responsible gaming
// disclaimer. Short "21+. Terms apply." notes are not.
func IsDisclaimer(text string) bool {
	return disclaimerPattern.MatchString(text)
}
