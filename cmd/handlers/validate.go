package handlers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"planwrite/internal/compliance"
	"planwrite/internal/core"
)

// NewValidateCmd creates the validate command
func NewValidateCmd() *cobra.Command {
	var (
		state    string
		keyword  string
		property string
		offer    offerInput
		asJSON   bool
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check an article against state compliance rules",
		Long: `Check an HTML or markdown article for gambling-advertising compliance.

The check covers the responsible gambling disclaimer for the state,
prohibited claims like "guaranteed win" or "risk-free", age requirements,
offer terms, keyword density and links to domains outside the property.

The report is printed as a table unless --json is set. With --strict the
command exits non-zero when the article is not valid.

Examples:
  planwrite validate article.html --state NJ
  planwrite validate article.md --state NY --keyword "fanduel promo code" --json
  cat article.html | planwrite validate - --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(args[0])
			if err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if state == "" {
				state = cfg.Draft.DefaultState
			}
			if property == "" {
				property = cfg.App.DefaultProperty
			}

			opts := compliance.Options{
				Keyword:        keyword,
				AllowedDomains: cfg.Properties[strings.ToLower(property)].Domains,
			}
			if offer.file != "" || offer.brand != "" {
				o, err := offer.load()
				if err != nil {
					return err
				}
				opts.Offer = &o
			}

			result := compliance.Validate(string(content), state, opts)
			if asJSON {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
				fmt.Println(string(data))
			} else {
				fmt.Println(renderReport(result, state))
			}

			if strict && !result.Valid {
				return fmt.Errorf("article failed compliance with %d errors", result.Count(core.SeverityError))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Target state code (default from config)")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Keyword to check density for")
	cmd.Flags().StringVar(&property, "property", "", "Property whose domains count as internal")
	cmd.Flags().StringVar(&offer.file, "offer", "", "JSON file with the offer the article promotes")
	cmd.Flags().StringVar(&offer.brand, "brand", "", "Operator brand (overrides the offer file)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the article is not valid")

	return cmd
}

var (
	reportTitle  = lipgloss.NewStyle().Bold(true).Padding(0, 1).Border(lipgloss.RoundedBorder())
	passStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	severityCell = lipgloss.NewStyle().Width(9)
)

func severityStyle(sev core.Severity) lipgloss.Style {
	switch sev {
	case core.SeverityError:
		return failStyle
	case core.SeverityWarning:
		return warnStyle
	default:
		return infoStyle
	}
}

// renderReport formats a compliance result for the terminal.
func renderReport(result core.ComplianceResult, state string) string {
	status := passStyle.Render("PASS")
	if !result.Valid {
		status = failStyle.Render("FAIL")
	}
	header := fmt.Sprintf("Compliance %s  state %s  score %.0f  %d words",
		status, strings.ToUpper(state), result.Score, result.WordCount)

	var b strings.Builder
	b.WriteString(reportTitle.Render(header))
	b.WriteString("\n")

	if len(result.Issues) == 0 {
		b.WriteString(mutedStyle.Render("No issues found."))
		return b.String()
	}

	b.WriteString(mutedStyle.Render(fmt.Sprintf("%d errors, %d warnings, %d info",
		result.Count(core.SeverityError), result.Count(core.SeverityWarning), result.Count(core.SeverityInfo))))
	b.WriteString("\n\n")

	for _, issue := range result.Issues {
		sev := severityCell.Render(severityStyle(issue.Severity).Render(strings.ToUpper(string(issue.Severity))))
		line := lipgloss.JoinHorizontal(lipgloss.Top, sev, issue.Message)
		b.WriteString(line)
		b.WriteString("\n")
		if issue.Location != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("         at: %s", issue.Location)))
			b.WriteString("\n")
		}
		if issue.Suggestion != "" {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("         fix: %s", issue.Suggestion)))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
