package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"planwrite/internal/config"
)

const (
	// DefaultGeminiModel is the default Gemini model for generation.
	DefaultGeminiModel = "gemini-2.5-flash"
	// DefaultEmbeddingModel is the default Gemini model for embeddings.
	DefaultEmbeddingModel = "gemini-embedding-001"
	// DefaultEmbeddingDimensions is the output dimension for Gemini embeddings (Matryoshka).
	DefaultEmbeddingDimensions = int32(768)
	// DefaultOpenAIModel is the default OpenAI chat model.
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIEmbeddingModel is the default OpenAI embedding model.
	DefaultOpenAIEmbeddingModel = "text-embedding-3-small"
)

var (
	// ErrEmptyResponse is returned when a provider answers with no text.
	ErrEmptyResponse = errors.New("empty response from LLM")
	// ErrMalformedResponse is returned when structured output cannot be decoded.
	ErrMalformedResponse = errors.New("malformed structured response")
)

// Prompt is a single generation request.
type Prompt struct {
	System      string
	User        string
	Temperature float32 // 0 leaves the provider default
	MaxTokens   int32   // 0 leaves the provider default
	Name        string  // short label used for logs and usage events
}

// Generator produces text from prompts.
type Generator interface {
	// Complete returns the raw text answer.
	Complete(ctx context.Context, prompt Prompt) (string, error)
	// CompleteStructured constrains the answer to schema and decodes it into out.
	CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error
}

// Embedder turns text into vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider is a client that both generates and embeds.
type Provider interface {
	Generator
	Embedder
	Name() string
}

// New builds the configured provider wrapped with retries.
func New(ctx context.Context, ai config.AI, retry config.Retry) (Provider, error) {
	var (
		p   Provider
		err error
	)
	switch strings.ToLower(ai.Provider) {
	case "", "gemini":
		p, err = NewGeminiClient(ctx, ai.Gemini)
	case "openai":
		p, err = NewOpenAIClient(ai.OpenAI)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", ai.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewRetrying(p, RetryOptionsFromConfig(retry)), nil
}

// DecodeJSON decodes a model answer into out, tolerating markdown code fences
// and leading chatter before the first JSON value.
func DecodeJSON(raw string, out any) error {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ErrEmptyResponse
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if start := strings.IndexAny(text, "[{"); start > 0 {
		text = text[start:]
	}
	if err := json.Unmarshal([]byte(text), out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
