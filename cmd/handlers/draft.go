package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"planwrite/internal/compliance"
	"planwrite/internal/core"
	"planwrite/internal/draft"
	"planwrite/internal/observability"
)

type draftOptions struct {
	plan          planInput
	outlineFile   string
	altOffersFile string
	state         string
	property      string
	format        string
	output        string
	stream        bool
	skipCheck     bool
}

// NewDraftCmd creates the draft command
func NewDraftCmd() *cobra.Command {
	var opts draftOptions

	cmd := &cobra.Command{
		Use:   "draft",
		Short: "Draft an article from an outline",
		Long: `Draft a promo article section by section.

The outline is read from --outline (bracket text or JSON). Without one, an
outline is planned first from the same inputs the plan command takes.

Each H2/H3 section is generated with the keyword budget, internal link
suggestions and the previous sections as context. Offer cards, terms and
daily promos are rendered from the offer data. The finished article gets
one state disclaimer and tracked offer links, and is checked against the
state's compliance rules unless --no-check is set.

Examples:
  planwrite draft --outline outline.txt -k "fanduel promo code" --offer offer.json --state NJ
  planwrite draft -k "draftkings promo code" --offer offer.json --alt-offers alts.json --format markdown -o article.md
  planwrite draft --outline outline.txt -k "kalshi promo code" --offer kalshi.json --stream`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDraft(cmd.Context(), opts)
		},
	}

	opts.plan.bind(cmd)
	cmd.Flags().StringVar(&opts.outlineFile, "outline", "", "Outline file (text or JSON, \"-\" for stdin)")
	cmd.Flags().StringVar(&opts.altOffersFile, "alt-offers", "", "JSON file with alternate offers")
	cmd.Flags().StringVar(&opts.state, "state", "", "Target state code (default from config)")
	cmd.Flags().StringVar(&opts.property, "property", "", "Publishing property (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "html", "Output format: html or markdown")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the article to a file")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "Print section progress while drafting")
	cmd.Flags().BoolVar(&opts.skipCheck, "no-check", false, "Skip the compliance check")

	return cmd
}

func runDraft(ctx context.Context, opts draftOptions) error {
	planReq, err := opts.plan.request()
	if err != nil {
		return err
	}
	if strings.TrimSpace(planReq.Offer.Brand) == "" {
		return fmt.Errorf("an offer brand is required (--offer or --brand)")
	}

	var altOffers []core.Offer
	if opts.altOffersFile != "" {
		if err := readJSONFile(opts.altOffersFile, &altOffers); err != nil {
			return err
		}
	}

	rt, err := newRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var planned core.Outline
	if opts.outlineFile != "" {
		if planned, err = readOutline(opts.outlineFile); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(os.Stderr, "No outline given, planning one first...")
		planned = rt.planner().Plan(ctx, planReq)
	}

	state := opts.state
	if state == "" {
		state = rt.cfg.Draft.DefaultState
	}
	req := draft.Request{
		RequestID:    planReq.RequestID,
		Outline:      planned,
		Keyword:      planReq.Keyword,
		Title:        planReq.Title,
		Offer:        planReq.Offer,
		AltOffers:    altOffers,
		State:        state,
		Property:     rt.property(opts.property),
		EventContext: planReq.EventContext,
		BetExample:   planReq.BetExample,
		Format:       core.ParseFormat(opts.format),
	}

	executor := rt.executor()
	var doc string
	if opts.stream {
		doc, err = streamDraft(ctx, executor, req)
	} else {
		doc, err = executor.Execute(ctx, req)
	}
	if err != nil {
		return err
	}

	if err := writeOutput(opts.output, doc); err != nil {
		return err
	}
	if opts.skipCheck {
		return nil
	}

	result := compliance.Validate(doc, req.State, compliance.Options{
		Keyword:        req.Keyword,
		Offer:          &req.Offer,
		AllowedDomains: rt.cfg.Properties[req.Property].Domains,
	})
	observability.TrackValidation(ctx, rt.tracker, req.RequestID, req.State, result.Score, result.Valid, len(result.Issues))
	fmt.Fprintln(os.Stderr, renderReport(result, req.State))
	return nil
}

// streamDraft prints section progress to stderr and returns the finished
// draft from the done event.
func streamDraft(ctx context.Context, executor *draft.Executor, req draft.Request) (string, error) {
	var doc string
	done := false
	for ev := range executor.Stream(ctx, req) {
		switch ev.Type {
		case draft.EventStatus:
			fmt.Fprintf(os.Stderr, "… %s\n", ev.Message)
		case draft.EventContent:
			fmt.Fprintf(os.Stderr, "✓ %s\n", sectionLabel(ev.Section))
		case draft.EventError:
			fmt.Fprintf(os.Stderr, "✗ %s: %s\n", sectionLabel(ev.Section), ev.Message)
		case draft.EventDone:
			doc = ev.Draft
			done = true
			fmt.Fprintf(os.Stderr, "Done: %d words\n", ev.WordCount)
		}
	}
	if !done {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("failed to draft article: %w", err)
		}
		return "", fmt.Errorf("failed to draft article: stream ended without a result")
	}
	return doc, nil
}

func sectionLabel(section string) string {
	if section == "" {
		return "document"
	}
	return section
}
