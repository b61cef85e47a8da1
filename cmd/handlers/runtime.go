package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"planwrite/internal/config"
	"planwrite/internal/core"
	"planwrite/internal/draft"
	"planwrite/internal/links"
	"planwrite/internal/llm"
	"planwrite/internal/logger"
	"planwrite/internal/observability"
	"planwrite/internal/outline"
)

// runtime bundles the components a command needs, built from config.
type runtime struct {
	cfg      *config.Config
	provider llm.Provider
	tracker  *observability.PostHogClient
	registry *links.Registry
	closers  []io.Closer
}

// newRuntime loads configuration and connects the AI provider, the usage
// tracker and the link registry.
func newRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tracker, err := observability.NewPostHogClient(cfg.PostHog)
	if err != nil {
		logger.Warn("Usage tracking disabled", "error", err.Error())
		tracker = observability.Disabled()
	}
	rt := &runtime{cfg: cfg, tracker: tracker}
	rt.closers = append(rt.closers, tracker)

	provider, err := llm.New(ctx, cfg.AI, cfg.Retry)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to initialize AI provider: %w", err)
	}
	rt.provider = llm.NewTracked(provider, tracker)

	store, err := links.NewStore(cfg.Links)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to open link store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		rt.closers = append(rt.closers, c)
	}
	rt.registry = links.NewRegistry(store, rt.provider,
		links.WithRequiredLinks(links.RequiredLinksFromConfig(cfg.Properties)),
		links.WithBatchSize(cfg.Links.BatchSize),
		links.WithLogger(logger.With("links")),
	)
	return rt, nil
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetLevel(cfg.Logging.Level)
	return cfg, nil
}

// Close releases the store connection and flushes usage events.
func (rt *runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			logger.Warn("Failed to close resource", "error", err.Error())
		}
	}
}

func (rt *runtime) planner() *outline.Planner {
	return outline.NewPlanner(rt.provider,
		outline.WithLogger(logger.With("outline")),
		outline.WithTracker(rt.tracker),
	)
}

func (rt *runtime) executor() *draft.Executor {
	d := rt.cfg.Draft
	return draft.NewExecutor(rt.provider, rt.registry,
		draft.WithLogger(logger.With("draft")),
		draft.WithTracker(rt.tracker),
		draft.WithKeywordTarget(d.KeywordTarget),
		draft.WithMaxLinks(d.MaxLinks),
		draft.WithLinksPerSection(d.LinksPerSection),
	)
}

func (rt *runtime) property(name string) string {
	if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
		return name
	}
	return rt.cfg.App.DefaultProperty
}

// readInput reads a file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func readJSONFile(path string, v any) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// readOutline loads an outline from JSON or the bracket text format.
func readOutline(path string) (core.Outline, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var o core.Outline
	if err := json.Unmarshal(data, &o); err == nil && len(o) > 0 {
		return o, nil
	}
	o = outline.FromText(string(data))
	if len(o) == 0 {
		return nil, fmt.Errorf("no outline sections found in %s", path)
	}
	return o, nil
}

// writeOutput writes content to path, or stdout when path is empty.
func writeOutput(path, content string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}

// offerInput collects the offer flags shared by plan, draft and validate.
type offerInput struct {
	file      string
	brand     string
	offerText string
	code      string
	termsFile string
}

func (o *offerInput) load() (core.Offer, error) {
	var offer core.Offer
	if o.file != "" {
		if err := readJSONFile(o.file, &offer); err != nil {
			return offer, err
		}
	}
	if o.brand != "" {
		offer.Brand = o.brand
	}
	if o.offerText != "" {
		offer.OfferText = o.offerText
	}
	if o.code != "" {
		offer.BonusCode = o.code
	}
	if o.termsFile != "" {
		terms, err := readInput(o.termsFile)
		if err != nil {
			return offer, err
		}
		offer.Terms = strings.TrimSpace(string(terms))
	}
	return offer, nil
}
