package links

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"planwrite/internal/config"
	"planwrite/internal/core"
	"planwrite/internal/llm"
	"planwrite/internal/logger"
	"planwrite/internal/operator"
)

const (
	// DefaultBatchSize is the number of documents embedded per provider call.
	DefaultBatchSize = 64
	// DefaultK is the number of ranked suggestions returned per section.
	DefaultK = 3
	// maxContextTerms bounds the context terms added to a query.
	maxContextTerms = 3
)

// Registry caches one link index per property. Indexes load lazily from the
// store on first use and are replaced in place by Ingest.
type Registry struct {
	store     Store
	embedder  llm.Embedder
	required  map[string][]core.InternalLinkSpec
	batchSize int
	log       *slog.Logger

	mu      sync.RWMutex
	indexes map[string]*Index
}

// Option configures a Registry.
type Option func(*Registry)

// WithRequiredLinks sets the configured guaranteed links per property.
func WithRequiredLinks(required map[string][]core.InternalLinkSpec) Option {
	return func(r *Registry) { r.required = required }
}

// WithBatchSize sets the embedding batch size used by Ingest.
func WithBatchSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// NewRegistry creates an empty registry.
func NewRegistry(store Store, embedder llm.Embedder, opts ...Option) *Registry {
	r := &Registry{
		store:     store,
		embedder:  embedder,
		required:  map[string][]core.InternalLinkSpec{},
		batchSize: DefaultBatchSize,
		indexes:   make(map[string]*Index),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.Or(r.log, "links")
	return r
}

// RequiredLinksFromConfig converts the configured required links per property.
func RequiredLinksFromConfig(props map[string]config.Property) map[string][]core.InternalLinkSpec {
	out := make(map[string][]core.InternalLinkSpec, len(props))
	for name, prop := range props {
		for _, l := range prop.RequiredLinks {
			if l.Title == "" || l.URL == "" {
				continue
			}
			spec := core.NewInternalLinkSpec(l.Title, l.URL, l.Anchors)
			spec.AlwaysInclude = true
			spec.Score = 1
			out[name] = append(out[name], spec)
		}
	}
	return out
}

// Index returns the cached index for property, loading it from the store on
// first use. Missing indexes are not cached.
func (r *Registry) Index(ctx context.Context, property string) (*Index, error) {
	r.mu.RLock()
	idx, ok := r.indexes[property]
	r.mu.RUnlock()
	if ok {
		return idx, nil
	}

	loaded, err := r.store.Load(ctx, property)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.indexes[property]; ok {
		return idx, nil
	}
	r.indexes[property] = loaded
	return loaded, nil
}

// Invalidate drops the cached index so the next call reloads it.
func (r *Registry) Invalidate(property string) {
	r.mu.Lock()
	delete(r.indexes, property)
	r.mu.Unlock()
}

// Ingest rebuilds the index of property from newline-delimited JSON records,
// persists it and replaces the cached copy. It returns the number of records
// indexed.
func (r *Registry) Ingest(ctx context.Context, property string, source io.Reader) (int, error) {
	records, err := ParseSource(source)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		r.log.Warn("No link records to ingest", "property", property)
		return 0, nil
	}

	vectors, err := r.embedRecords(ctx, records)
	if err != nil {
		return 0, err
	}

	built := NewIndex(records, vectors)
	if err := r.store.Save(ctx, property, built); err != nil {
		return 0, fmt.Errorf("failed to save link index for %s: %w", property, err)
	}

	r.mu.Lock()
	cached, ok := r.indexes[property]
	if !ok {
		r.indexes[property] = built
	}
	r.mu.Unlock()
	if ok {
		cached.replace(records, vectors)
	}

	r.log.Info("Link index rebuilt", "property", property, "records", len(records))
	return len(records), nil
}

func (r *Registry) embedRecords(ctx context.Context, records []Record) ([][]float64, error) {
	vectors := make([][]float64, 0, len(records))
	for start := 0; start < len(records); start += r.batchSize {
		end := min(start+r.batchSize, len(records))

		texts := make([]string, 0, end-start)
		for _, rec := range records[start:end] {
			texts = append(texts, rec.EmbeddingText())
		}

		batch, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed link batch %d-%d: %w", start, end, err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedding batch %d-%d returned %d vectors for %d texts", start, end, len(batch), len(texts))
		}
		for _, v := range batch {
			vectors = append(vectors, normalize(toFloat64(v)))
		}
	}
	return vectors, nil
}

// IngestFile ingests the seed file of property found under dataDir.
func (r *Registry) IngestFile(ctx context.Context, dataDir, property string) (int, error) {
	f, err := os.Open(SourcePath(dataDir, property))
	if err != nil {
		return 0, fmt.Errorf("failed to open link source for %s: %w", property, err)
	}
	defer f.Close()
	return r.Ingest(ctx, property, f)
}

// IngestAll rebuilds several properties concurrently and returns the record
// count per property.
func (r *Registry) IngestAll(ctx context.Context, dataDir string, properties []string) (map[string]int, error) {
	var (
		mu     sync.Mutex
		counts = make(map[string]int, len(properties))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, property := range properties {
		g.Go(func() error {
			n, err := r.IngestFile(gctx, dataDir, property)
			if err != nil {
				return err
			}
			mu.Lock()
			counts[property] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return counts, err
	}
	return counts, nil
}

// SourcePath is the seed file location of a property.
func SourcePath(dataDir, property string) string {
	return filepath.Join(dataDir, "evergreen_"+property+".jsonl")
}

// Guaranteed returns the links every article of property must carry: index
// records flagged always_include, then configured required links for URLs
// the index did not already contribute. Results are deduplicated by URL.
func (r *Registry) Guaranteed(ctx context.Context, property string) []core.InternalLinkSpec {
	var out []core.InternalLinkSpec
	seen := make(map[string]bool)

	if idx, err := r.Index(ctx, property); err == nil {
		for _, rec := range idx.Guaranteed() {
			if seen[rec.URL] {
				continue
			}
			seen[rec.URL] = true
			out = append(out, rec.Spec(1))
		}
	}
	for _, spec := range r.required[property] {
		if seen[spec.URL] {
			continue
		}
		seen[spec.URL] = true
		out = append(out, spec)
	}
	return out
}

// Suggest ranks the index of property against a query built from title and
// up to three context terms. Candidates tagged with an operator other than
// the brand's are dropped. Guaranteed links always come first. Suggest never
// fails: without an index or an embedding only guaranteed links return.
func (r *Registry) Suggest(ctx context.Context, title string, terms []string, k int, property, brand string) []core.InternalLinkSpec {
	if k <= 0 {
		k = DefaultK
	}
	guaranteed := r.Guaranteed(ctx, property)

	idx, err := r.Index(ctx, property)
	if err != nil {
		if !errors.Is(err, ErrIndexNotFound) {
			r.log.Warn("Failed to load link index", "property", property, "error", err.Error())
		}
		return guaranteed
	}
	records, vectors := idx.snapshot()
	if len(records) == 0 {
		return guaranteed
	}

	query, err := r.embedder.Embed(ctx, Query(title, terms))
	if err != nil {
		r.log.Warn("Failed to embed link query", "property", property, "error", err.Error())
		return guaranteed
	}
	qv := normalize(toFloat64(query))

	order := make([]int, len(records))
	scores := make([]float64, len(records))
	for i := range records {
		order[i] = i
		scores[i] = cosine(vectors[i], qv)
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })

	brandOp := operator.Normalize(brand)
	seen := make(map[string]bool, len(guaranteed))
	for _, g := range guaranteed {
		seen[g.URL] = true
	}

	out := guaranteed
	ranked := 0
	for _, i := range order {
		if ranked >= k {
			break
		}
		rec := records[i]
		if rec.AlwaysInclude || seen[rec.URL] || operator.Conflicts(rec.Operator, brandOp) {
			continue
		}
		seen[rec.URL] = true
		out = append(out, rec.Spec(scores[i]))
		ranked++
	}
	return out
}

// Query joins a section title and up to three context terms.
func Query(title string, terms []string) string {
	parts := []string{title}
	for _, t := range terms {
		if len(parts) > maxContextTerms {
			break
		}
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " | ")
}
