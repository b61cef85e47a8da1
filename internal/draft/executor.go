// Package draft writes a promo article from an outline. Sections are
// rendered in order: generative sections go through the configured
// generator, while promo cards, terms and daily promos come from templates.
// The assembled document then gets a single disclaimer, any missing
// guaranteed links and tracked affiliate links.
package draft

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"planwrite/internal/core"
	"planwrite/internal/links"
	"planwrite/internal/llm"
	"planwrite/internal/logger"
	"planwrite/internal/observability"
	"planwrite/internal/render"
)

const (
	// DefaultKeywordTarget is how many keyword mentions a draft aims for.
	DefaultKeywordTarget = 9
	// DefaultMaxLinks caps tracked links in a finished draft.
	DefaultMaxLinks = 12
)

// LinkSuggester supplies internal links for a property.
type LinkSuggester interface {
	Suggest(ctx context.Context, title string, terms []string, k int, property, brand string) []core.InternalLinkSpec
	Guaranteed(ctx context.Context, property string) []core.InternalLinkSpec
}

// Request carries the inputs of one drafting call.
type Request struct {
	RequestID    string
	Outline      core.Outline
	Keyword      string
	Title        string
	Offer        core.Offer
	AltOffers    []core.Offer
	State        string
	Property     string
	EventContext string
	BetExample   string
	Format       core.Format
}

// Executor drafts articles section by section.
type Executor struct {
	gen             llm.Generator
	links           LinkSuggester
	log             *slog.Logger
	tracker         observability.Tracker
	now             func() time.Time
	keywordTarget   int
	maxLinks        int
	linksPerSection int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithTracker sets the usage event sink.
func WithTracker(t observability.Tracker) Option {
	return func(e *Executor) { e.tracker = t }
}

// WithClock overrides the clock used for the article date.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithKeywordTarget sets the keyword mention target.
func WithKeywordTarget(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.keywordTarget = n
		}
	}
}

// WithMaxLinks caps the tracked links added to a draft.
func WithMaxLinks(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxLinks = n
		}
	}
}

// WithLinksPerSection sets how many link suggestions each generated section sees.
func WithLinksPerSection(k int) Option {
	return func(e *Executor) {
		if k > 0 {
			e.linksPerSection = k
		}
	}
}

// NewExecutor creates an executor. suggester may be nil, in which case no
// internal links are offered or guaranteed.
func NewExecutor(gen llm.Generator, suggester LinkSuggester, opts ...Option) *Executor {
	e := &Executor{
		gen:             gen,
		links:           suggester,
		now:             time.Now,
		keywordTarget:   DefaultKeywordTarget,
		maxLinks:        DefaultMaxLinks,
		linksPerSection: links.DefaultK,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.Or(e.log, "draft")
	return e
}

// Execute drafts the whole article. Sections that fail are replaced by an
// HTML comment and drafting continues; only cancellation makes it fail.
func (e *Executor) Execute(ctx context.Context, req Request) (string, error) {
	var doc string
	err := e.run(ctx, req, func(ev Event) bool {
		if ev.Type == EventDone {
			doc = ev.Draft
		}
		return true
	})
	if err != nil {
		return "", fmt.Errorf("failed to draft article: %w", err)
	}
	return doc, nil
}

// Stream drafts the article and reports progress as events. The channel is
// closed after the done event or once ctx is cancelled.
func (e *Executor) Stream(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go func() {
		defer close(events)
		err := e.run(ctx, req, func(ev Event) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		})
		if err != nil {
			e.log.Info("Draft stream stopped", "keyword", req.Keyword, "error", err.Error())
		}
	}()
	return events
}

func (e *Executor) run(ctx context.Context, req Request, emit func(Event) bool) error {
	start := time.Now()
	s := newSession(req)

	if !emit(Event{Type: EventStatus, Message: fmt.Sprintf("Drafting %d sections", len(req.Outline))}) {
		return ctx.Err()
	}

	var parts []string
	if title := strings.TrimSpace(req.Title); title != "" {
		h1 := "<h1>" + escapeText(title) + "</h1>"
		parts = append(parts, h1)
		s.record(h1)
	}

	for _, section := range req.Outline {
		if err := ctx.Err(); err != nil {
			return err
		}
		label := sectionLabel(section)
		content, err := e.renderSection(ctx, s, section)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.failed++
			e.log.Warn("Section failed", "section", label, "error", err.Error())
			content = failureMarker(section)
			if !emit(Event{Type: EventError, Section: label, Message: err.Error()}) {
				return ctx.Err()
			}
		}
		if content == "" {
			continue
		}
		parts = append(parts, content)
		s.record(content)
		if err == nil && !emit(Event{Type: EventContent, Section: label, Content: content}) {
			return ctx.Err()
		}
	}

	doc := e.finish(ctx, s, strings.Join(parts, "\n"))
	words := render.WordCount(doc)
	if req.Format == core.FormatMarkdown {
		doc = render.HTMLToMarkdown(doc)
	}

	if e.tracker != nil {
		requestID := req.RequestID
		if requestID == "" {
			requestID = uuid.NewString()
		}
		observability.TrackDraftGenerated(ctx, e.tracker, requestID, req.Keyword, s.state, words, s.failed, time.Since(start).Milliseconds())
	}
	e.log.Info("Draft generated", "keyword", req.Keyword, "words", words, "failed_sections", s.failed)

	emit(Event{Type: EventDone, Draft: doc, WordCount: words})
	return nil
}

func sectionLabel(section core.OutlineSection) string {
	if section.Level.IsHeading() && section.Title != "" {
		return section.Title
	}
	return string(section.Level)
}

func failureMarker(section core.OutlineSection) string {
	label := strings.ReplaceAll(sectionLabel(section), "--", "-")
	marker := fmt.Sprintf("<!-- section failed: %s -->", label)
	if section.Level.IsHeading() && section.Title != "" {
		return headingTag(section.Level, section.Title) + "\n" + marker
	}
	return marker
}
