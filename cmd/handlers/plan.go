package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"planwrite/internal/core"
	"planwrite/internal/outline"
)

// planInput collects the flags that feed the outline planner.
type planInput struct {
	keyword        string
	title          string
	eventContext   string
	gameFile       string
	betExample     string
	competitorFile string
	offer          offerInput
}

func (p *planInput) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&p.keyword, "keyword", "k", "", "Target keyword, e.g. \"fanduel promo code\"")
	f.StringVar(&p.title, "title", "", "Article title")
	f.StringVar(&p.eventContext, "event", "", "Event context for the article")
	f.StringVar(&p.gameFile, "game", "", "JSON file describing the featured game")
	f.StringVar(&p.betExample, "bet-example", "", "Example bet for the claim section")
	f.StringVar(&p.competitorFile, "competitor", "", "File with competitor article notes")
	f.StringVar(&p.offer.file, "offer", "", "JSON file with the primary offer")
	f.StringVar(&p.offer.brand, "brand", "", "Operator brand (overrides the offer file)")
	f.StringVar(&p.offer.offerText, "offer-text", "", "Offer headline (overrides the offer file)")
	f.StringVar(&p.offer.code, "code", "", "Bonus code (overrides the offer file)")
	f.StringVar(&p.offer.termsFile, "terms", "", "File with the offer terms")
}

// request builds the planner request. The keyword is required.
func (p *planInput) request() (outline.Request, error) {
	if strings.TrimSpace(p.keyword) == "" {
		return outline.Request{}, fmt.Errorf("--keyword is required")
	}
	offer, err := p.offer.load()
	if err != nil {
		return outline.Request{}, err
	}

	eventContext := p.eventContext
	if eventContext == "" && p.gameFile != "" {
		var game outline.Game
		if err := readJSONFile(p.gameFile, &game); err != nil {
			return outline.Request{}, err
		}
		eventContext = outline.FormatGameContext(game)
	}

	var competitor string
	if p.competitorFile != "" {
		data, err := readInput(p.competitorFile)
		if err != nil {
			return outline.Request{}, err
		}
		competitor = string(data)
	}

	return outline.Request{
		RequestID:         uuid.NewString(),
		Keyword:           strings.TrimSpace(p.keyword),
		Title:             strings.TrimSpace(p.title),
		Offer:             offer,
		EventContext:      eventContext,
		BetExample:        p.betExample,
		CompetitorContext: competitor,
	}, nil
}

// NewPlanCmd creates the plan command
func NewPlanCmd() *cobra.Command {
	var (
		input  planInput
		asJSON bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan an article outline",
		Long: `Plan a section outline for a promo article.

The planner asks the AI provider for the H2/H3 structure, then repairs it
so the intro and offer shortcodes are always in place. When the provider
fails, a default outline built from the keyword and offer is returned.

The outline is printed in the editable bracket format unless --json is set.

Examples:
  planwrite plan --keyword "fanduel promo code" --offer offer.json
  planwrite plan -k "kalshi promo code" --brand Kalshi --offer-text "Get $10" --json
  planwrite plan -k "bet365 bonus code" --offer offer.json --game game.json -o outline.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd.Context(), input, asJSON, output)
		},
	}

	input.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the outline as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the outline to a file")

	return cmd
}

func runPlan(ctx context.Context, input planInput, asJSON bool, output string) error {
	req, err := input.request()
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	planned := rt.planner().Plan(ctx, req)
	for _, warning := range outline.Validate(planned, req.Keyword) {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return writeOutline(planned, asJSON, output)
}

func writeOutline(o core.Outline, asJSON bool, output string) error {
	if !asJSON {
		return writeOutput(output, outline.ToText(o))
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outline: %w", err)
	}
	return writeOutput(output, string(data))
}

// NewOutlineFmtCmd creates the outline-fmt command
func NewOutlineFmtCmd() *cobra.Command {
	var (
		asJSON  bool
		keyword string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "outline-fmt [file]",
		Short: "Convert an outline between text and JSON",
		Long: `Read an outline in either the bracket text format or JSON and write it
back out in text form, or as JSON with --json. Use "-" to read stdin.

With --keyword, the outline is also checked for a missing keyword and
structural problems, and any warnings are printed to stderr.

Examples:
  planwrite outline-fmt outline.txt --json
  planwrite outline-fmt outline.json -o outline.txt
  cat outline.txt | planwrite outline-fmt - --keyword "fanduel promo code"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := readOutline(args[0])
			if err != nil {
				return err
			}
			if keyword != "" {
				for _, warning := range outline.Validate(o, keyword) {
					fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
				}
			}
			return writeOutline(o, asJSON, output)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of text")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "Keyword to check the outline against")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
