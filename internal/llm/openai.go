package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"planwrite/internal/config"
)

// OpenAIClient implements Provider using the official openai-go SDK.
type OpenAIClient struct {
	model          string
	embeddingModel string
	client         openai.Client
}

// NewOpenAIClient creates an OpenAI client from configuration.
func NewOpenAIClient(cfg config.OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key missing; set OPENAI_API_KEY or ai.openai.api_key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	c := &OpenAIClient{
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		client:         openai.NewClient(opts...),
	}
	if c.model == "" {
		c.model = DefaultOpenAIModel
	}
	if c.embeddingModel == "" {
		c.embeddingModel = DefaultOpenAIEmbeddingModel
	}
	return c, nil
}

// Name returns the provider label.
func (c *OpenAIClient) Name() string { return "openai:" + c.model }

func (c *OpenAIClient) params(prompt Prompt) openai.ChatCompletionNewParams {
	var msgs []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		msgs = append(msgs, openai.SystemMessage(prompt.System))
	}
	msgs = append(msgs, openai.UserMessage(prompt.User))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: msgs,
	}
	if prompt.Temperature > 0 {
		params.Temperature = openai.Float(float64(prompt.Temperature))
	}
	if prompt.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(prompt.MaxTokens))
	}
	return params
}

func (c *OpenAIClient) complete(ctx context.Context, params openai.ChatCompletionNewParams) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// Complete generates free text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if prompt.User == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}
	return c.complete(ctx, c.params(prompt))
}

// CompleteStructured requests a json_schema response. Non-object roots are
// wrapped in {"items": ...} because the API only accepts object schemas.
func (c *OpenAIClient) CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error {
	if prompt.User == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	wrapped := schema != nil && schema.Type != TypeObject
	root := schema
	if wrapped {
		root = ObjectSchema([]string{"items"}, map[string]*Schema{"items": schema})
	}

	params := c.params(prompt)
	name := prompt.Name
	if name == "" {
		name = "response"
	}
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: root.ToJSONSchema(),
			},
		},
	}

	text, err := c.complete(ctx, params)
	if err != nil {
		return err
	}
	if !wrapped {
		return DecodeJSON(text, out)
	}
	var envelope struct {
		Items json.RawMessage `json:"items"`
	}
	if err := DecodeJSON(text, &envelope); err != nil {
		return err
	}
	return DecodeJSON(string(envelope.Items), out)
}

// Embed returns the embedding for a single text.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one request. Results are placed by the index
// the API reports, so ordering always matches the input.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: requested %d, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		idx := int(d.Index)
		if idx < 0 || idx >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", idx)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		out[idx] = vec
	}
	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("missing embedding for input %d", i)
		}
	}
	return out, nil
}

// openAIStatus extracts the HTTP status from an openai-go error, or 0.
func openAIStatus(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr.StatusCode
	}
	return 0
}
