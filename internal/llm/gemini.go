package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"planwrite/internal/config"
)

// GeminiClient talks to Google Gemini through the genai SDK.
type GeminiClient struct {
	modelName      string
	embeddingModel string
	dims           int32
	gClient        *genai.Client
}

// NewGeminiClient creates a Gemini client from configuration.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file")
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &GeminiClient{
		modelName:      cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		dims:           cfg.EmbeddingDims,
		gClient:        gClient,
	}
	if c.modelName == "" {
		c.modelName = DefaultGeminiModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultEmbeddingModel
	}
	if c.dims <= 0 {
		c.dims = DefaultEmbeddingDimensions
	}
	return c, nil
}

// Name returns the provider label.
func (c *GeminiClient) Name() string { return "gemini:" + c.modelName }

func (c *GeminiClient) generate(ctx context.Context, prompt Prompt, schema *Schema) (string, error) {
	if prompt.User == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt.User}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	if prompt.MaxTokens > 0 {
		config.MaxOutputTokens = prompt.MaxTokens
	}
	if prompt.Temperature > 0 {
		temp := prompt.Temperature
		config.Temperature = &temp
	}
	if schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = schema.ToGenai()
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Complete generates free text.
func (c *GeminiClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// CompleteStructured generates JSON constrained by schema and decodes it.
func (c *GeminiClient) CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error {
	text, err := c.generate(ctx, prompt, schema)
	if err != nil {
		return err
	}
	return DecodeJSON(text, out)
}

// Embed returns the embedding for a single text.
func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request, preserving order.
func (c *GeminiClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Parts: []*genai.Part{{Text: text}},
			Role:  "user",
		}
	}

	dims := c.dims
	resp, err := c.gClient.Models.EmbedContent(ctx, c.embeddingModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: requested %d", len(texts))
	}

	out := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("no embedding values returned for input %d", i)
		}
		out[i] = emb.Values
	}
	return out, nil
}

// geminiStatus extracts the HTTP status from a genai error, or 0.
func geminiStatus(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}
