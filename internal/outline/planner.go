// Package outline plans promo articles: a schema-constrained generation call
// produces the sections, and deterministic repair and editorial passes turn
// the answer into the house structure. Outlines round-trip through an
// editable bracket text format so editors can adjust them before drafting.
package outline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"planwrite/internal/core"
	"planwrite/internal/llm"
	"planwrite/internal/logger"
	"planwrite/internal/observability"
	"planwrite/internal/operator"
	"planwrite/internal/style"
)

var (
	errNoGenerator = errors.New("no generator configured")
	errNoSections  = errors.New("planner returned no h2 sections")
)

// Request carries the inputs of one planning call.
type Request struct {
	RequestID         string
	Keyword           string
	Title             string
	Offer             core.Offer
	EventContext      string
	BetExample        string
	CompetitorContext string
}

// PredictionMarket reports whether the request targets a prediction market.
func (r Request) PredictionMarket() bool {
	return operator.DetectPredictionMarket(r.Offer.Operator, r.Offer.Brand, r.Offer.OfferText, r.Keyword, r.Title)
}

// Planner turns a request into an outline.
type Planner struct {
	gen     llm.Generator
	log     *slog.Logger
	tracker observability.Tracker
	now     func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// WithTracker sets the usage event sink.
func WithTracker(t observability.Tracker) Option {
	return func(p *Planner) { p.tracker = t }
}

// WithClock overrides the clock used for the article date.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// NewPlanner creates a planner backed by gen.
func NewPlanner(gen llm.Generator, opts ...Option) *Planner {
	p := &Planner{gen: gen, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	p.log = logger.Or(p.log, "outline")
	return p
}

type plannedSection struct {
	Level         string   `json:"level"`
	Title         string   `json:"title"`
	TalkingPoints []string `json:"talking_points"`
	Avoid         []string `json:"avoid"`
}

// Plan produces an outline for req. When generation fails or returns
// nothing usable, the default outline is returned instead, so Plan never
// fails. The result always satisfies Repair.
func (p *Planner) Plan(ctx context.Context, req Request) core.Outline {
	start := time.Now()
	pm := req.PredictionMarket()

	planned, err := p.generate(ctx, req, pm)
	fallback := err != nil
	var result core.Outline
	if fallback {
		p.log.Warn("Outline generation failed, using default outline", "keyword", req.Keyword, "error", err.Error())
		result = DefaultOutline(req.Keyword, req.Offer.Brand, req.EventContext, req.BetExample, pm)
	} else {
		result = ApplyEditorialRules(Repair(planned), req.Keyword, req.Offer.Brand, req.EventContext, pm)
	}
	result = flatten(Repair(result))

	if p.tracker != nil {
		requestID := req.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}
		observability.TrackOutlineGenerated(ctx, p.tracker, requestID, req.Keyword, len(result), fallback, time.Since(start).Milliseconds())
	}
	p.log.Info("Outline planned", "keyword", req.Keyword, "sections", len(result), "fallback", fallback)
	return result
}

func (p *Planner) generate(ctx context.Context, req Request, pm bool) (core.Outline, error) {
	if p.gen == nil {
		return nil, errNoGenerator
	}
	prompt := llm.Prompt{
		System:      buildSystemPrompt(pm),
		User:        buildUserPrompt(req, TodayLong(p.now()), pm),
		Temperature: style.Temperature(style.SectionOutline),
		MaxTokens:   maxOutlineTokens,
		Name:        "article_outline",
	}

	var raw []plannedSection
	if err := p.gen.CompleteStructured(ctx, prompt, sectionSchema(), &raw); err != nil {
		return nil, err
	}

	out := make(core.Outline, 0, len(raw))
	for _, s := range raw {
		level, err := core.ParseLevel(s.Level)
		if err != nil {
			p.log.Debug("Dropping outline section with unknown level", "level", s.Level)
			continue
		}
		title := oneLine(s.Title)
		if level.IsHeading() && title == "" {
			continue
		}
		if !level.IsHeading() {
			title = ""
		}
		out = append(out, core.OutlineSection{
			Level:         level,
			Title:         title,
			TalkingPoints: cleanList(s.TalkingPoints),
			Avoid:         splitAvoid(s.Avoid),
		})
	}
	if out.CountLevel(core.LevelH2) == 0 {
		return nil, errNoSections
	}
	return out, nil
}

// cleanList flattens each item to one line and drops empty ones, so the
// outline survives the text format unchanged.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = oneLine(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitAvoid cleans avoid items and splits any that contain commas, since
// the text format separates avoid items with commas.
func splitAvoid(items []string) []string {
	var parts []string
	for _, item := range items {
		parts = append(parts, strings.Split(item, ",")...)
	}
	return cleanList(parts)
}

// flatten applies the same cleanup to the fallback outline, whose talking
// points can carry caller text such as the bet example.
func flatten(o core.Outline) core.Outline {
	for i := range o {
		o[i].Title = oneLine(o[i].Title)
		o[i].TalkingPoints = cleanList(o[i].TalkingPoints)
		o[i].Avoid = splitAvoid(o[i].Avoid)
	}
	return o
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
