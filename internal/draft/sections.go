package draft

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"planwrite/internal/core"
	"planwrite/internal/intent"
	"planwrite/internal/links"
	"planwrite/internal/llm"
	"planwrite/internal/operator"
	"planwrite/internal/style"
)

const (
	maxIntroTokens   = 500
	maxSectionTokens = 800
	maxSignupTokens  = 400
	signupStepCount  = 5
)

var (
	errNoGenerator = errors.New("no generator configured")

	codeFence      = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	leadingHeading = regexp.MustCompile(`(?is)^\s*(?:<h[1-6][^>]*>.*?</h[1-6]>|#{1,6} [^\n]*\n)`)
	stepNumber     = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*])\s*`)
)

func (e *Executor) renderSection(ctx context.Context, s *session, section core.OutlineSection) (string, error) {
	switch {
	case section.Level == core.LevelIntro:
		return e.renderIntro(ctx, s, section)
	case section.Level.IsShortcode():
		offer := s.offerFor(section.Level)
		return promoCard(offer, s.trackingURL(offer)), nil
	case section.Level.IsHeading():
		title := strings.TrimSpace(section.Title)
		if !s.markSeen(title) {
			e.log.Debug("Skipping duplicate heading", "title", title)
			return "", nil
		}
		body, err := e.renderBody(ctx, s, section)
		if err != nil {
			return "", err
		}
		return operator.Apply(headingTag(section.Level, title), s.pm) + "\n" + body, nil
	}
	return "", nil
}

func (e *Executor) renderIntro(ctx context.Context, s *session, section core.OutlineSection) (string, error) {
	raw, err := e.complete(ctx, llm.Prompt{
		System:      buildSystemPrompt(s.pm),
		User:        e.buildIntroPrompt(s, section),
		Temperature: style.Temperature(style.SectionIntro),
		MaxTokens:   maxIntroTokens,
		Name:        "article_intro",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate intro: %w", err)
	}
	intro := shapeIntro(cleanFragment(raw), s.primary().States)
	return operator.Apply(intro, s.pm), nil
}

func (e *Executor) renderBody(ctx context.Context, s *session, section core.OutlineSection) (string, error) {
	switch kind := intent.Classify(section.Title); kind {
	case intent.Terms:
		return termsSection(s.primary(), s.pm), nil
	case intent.DailyPromos:
		return dailyPromos(s.daily, s.pm), nil
	case intent.Signup:
		return e.renderSignup(ctx, s), nil
	default:
		return e.renderGenerated(ctx, s, section, kind)
	}
}

func (e *Executor) renderGenerated(ctx context.Context, s *session, section core.OutlineSection, kind intent.Intent) (string, error) {
	primary := s.primary()
	var suggestions []core.InternalLinkSpec
	if e.links != nil {
		suggestions = e.links.Suggest(ctx, section.Title, []string{s.req.Keyword, primary.Brand}, e.linksPerSection, s.req.Property, primary.Brand)
	}

	temperature := style.Temperature(style.SectionH2)
	if section.Level == core.LevelH3 {
		temperature = style.Temperature(style.SectionH3)
	}
	raw, err := e.complete(ctx, llm.Prompt{
		System:      buildSystemPrompt(s.pm),
		User:        e.buildSectionPrompt(s, section, kind, links.FormatForPrompt(suggestions, primary.Brand, s.pm)),
		Temperature: temperature,
		MaxTokens:   maxSectionTokens,
		Name:        "article_section",
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate section %q: %w", section.Title, err)
	}
	body := cleanFragment(raw)
	if body == "" {
		return "", fmt.Errorf("failed to generate section %q: %w", section.Title, llm.ErrEmptyResponse)
	}
	return operator.Apply(body, s.pm), nil
}

type signupPlan struct {
	Steps []string `json:"steps"`
}

// renderSignup asks for exactly five steps and falls back to the template
// when the answer is unusable.
func (e *Executor) renderSignup(ctx context.Context, s *session) string {
	primary := s.primary()
	steps := signupSteps(primary.Brand, primary.BonusCode, s.pm)

	if e.gen != nil {
		var plan signupPlan
		err := e.gen.CompleteStructured(ctx, llm.Prompt{
			System:      buildSystemPrompt(s.pm),
			User:        buildSignupPrompt(s),
			Temperature: style.Temperature(style.SectionSignup),
			MaxTokens:   maxSignupTokens,
			Name:        "signup_steps",
		}, signupSchema(), &plan)
		switch generated := cleanSteps(plan.Steps); {
		case err != nil:
			e.log.Warn("Signup steps generation failed, using template", "error", err.Error())
		case len(generated) != signupStepCount:
			e.log.Warn("Signup steps had the wrong length, using template", "steps", len(generated))
		default:
			steps = generated
		}
	}
	return operator.Apply(orderedList(steps), s.pm)
}

func (e *Executor) complete(ctx context.Context, prompt llm.Prompt) (string, error) {
	if e.gen == nil {
		return "", errNoGenerator
	}
	return e.gen.Complete(ctx, prompt)
}

func signupSchema() *llm.Schema {
	return llm.ObjectSchema([]string{"steps"}, map[string]*llm.Schema{
		"steps": llm.ArraySchema(llm.StringSchema(), signupStepCount, signupStepCount),
	})
}

func cleanSteps(steps []string) []string {
	out := make([]string, 0, len(steps))
	for _, step := range steps {
		step = strings.TrimSpace(stepNumber.ReplaceAllString(step, ""))
		if step == "" {
			return nil
		}
		out = append(out, step)
	}
	return out
}

// cleanFragment strips code fences and a repeated heading from generated
// text and converts markdown to HTML.
func cleanFragment(raw string) string {
	text := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	text = leadingHeading.ReplaceAllString(text, "")
	return toHTML(text)
}

func headingTag(level core.Level, title string) string {
	tag := "h2"
	if level == core.LevelH3 {
		tag = "h3"
	}
	return fmt.Sprintf("<%s>%s</%s>", tag, escapeText(title), tag)
}

func pick(predictionMarket bool, sportsbook, market string) string {
	if predictionMarket {
		return market
	}
	return sportsbook
}
