package llm

import (
	"context"
	"time"

	"planwrite/internal/observability"
)

// Tracked wraps a provider and records one usage event per call.
type Tracked struct {
	inner   Provider
	tracker observability.Tracker
}

// NewTracked wraps inner. A nil tracker makes the wrapper a pass-through.
func NewTracked(inner Provider, tracker observability.Tracker) *Tracked {
	return &Tracked{inner: inner, tracker: tracker}
}

// Name returns the wrapped provider label.
func (t *Tracked) Name() string { return t.inner.Name() }

// Complete calls the wrapped provider and records the call.
func (t *Tracked) Complete(ctx context.Context, prompt Prompt) (string, error) {
	start := time.Now()
	result, err := t.inner.Complete(ctx, prompt)
	t.record(ctx, prompt.Name, estimateTokens(prompt.System+prompt.User, result), start, err)
	return result, err
}

// CompleteStructured calls the wrapped provider and records the call.
func (t *Tracked) CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error {
	start := time.Now()
	err := t.inner.CompleteStructured(ctx, prompt, schema, out)
	t.record(ctx, prompt.Name, estimateTokens(prompt.System+prompt.User, ""), start, err)
	return err
}

// Embed calls the wrapped provider and records the call.
func (t *Tracked) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	v, err := t.inner.Embed(ctx, text)
	t.record(ctx, "embedding", estimateTokens(text, ""), start, err)
	return v, err
}

// EmbedBatch calls the wrapped provider and records the call.
func (t *Tracked) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	v, err := t.inner.EmbedBatch(ctx, texts)
	tokens := 0
	for _, text := range texts {
		tokens += estimateTokens(text, "")
	}
	t.record(ctx, "embedding", tokens, start, err)
	return v, err
}

func (t *Tracked) record(ctx context.Context, operation string, tokens int, start time.Time, err error) {
	if t.tracker == nil {
		return
	}
	if operation == "" {
		operation = "generation"
	}
	observability.TrackLLMCall(ctx, t.tracker, t.inner.Name(), operation, tokens, time.Since(start).Milliseconds(), err == nil)
}

// estimateTokens approximates token usage at four characters per token.
func estimateTokens(prompt, completion string) int {
	return (len(prompt) + len(completion)) / 4
}
