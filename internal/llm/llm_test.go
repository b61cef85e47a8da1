package llm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"

	"planwrite/internal/config"
	"planwrite/internal/observability"
)

// statusError carries an HTTP status like provider SDK errors do.
type statusError struct{ code int }

func (e statusError) Error() string       { return "status error" }
func (e statusError) HTTPStatusCode() int { return e.code }

// fakeProvider fails with the queued errors before succeeding.
type fakeProvider struct {
	errs  []error
	calls int
}

func (f *fakeProvider) next() error {
	f.calls++
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	if err := f.next(); err != nil {
		return "", err
	}
	return "ok: " + prompt.User, nil
}

func (f *fakeProvider) CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error {
	if err := f.next(); err != nil {
		return err
	}
	return DecodeJSON(`{"steps":["a","b"]}`, out)
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	return []float32{1, 0}, nil
}

func (f *fakeProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := f.next(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func fastRetry() RetryOptions {
	return RetryOptions{MaxTries: 3, InitialInterval: time.Millisecond, Multiplier: 2, MaxInterval: 5 * time.Millisecond}
}

func TestNewGeminiClient_NoAPIKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), config.GeminiConfig{})
	if err == nil {
		t.Fatal("Expected error when no API key is available")
	}
	if !strings.Contains(err.Error(), "gemini API key is required") {
		t.Errorf("Expected API key error, got: %v", err)
	}
}

func TestNewOpenAIClient_NoAPIKey(t *testing.T) {
	if _, err := NewOpenAIClient(config.OpenAIConfig{}); err == nil {
		t.Error("Expected error when no OpenAI API key is available")
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), config.AI{Provider: "bogus"}, config.Retry{})
	if err == nil || !strings.Contains(err.Error(), "unknown AI provider") {
		t.Errorf("Expected unknown provider error, got %v", err)
	}
}

func TestGeminiComplete_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set, skipping integration test")
	}

	client, err := NewGeminiClient(context.Background(), config.GeminiConfig{APIKey: apiKey})
	if err != nil {
		t.Fatalf("NewGeminiClient failed: %v", err)
	}
	text, err := client.Complete(context.Background(), Prompt{User: "Reply with the single word: ready", MaxTokens: 20})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text == "" {
		t.Error("Expected non-empty completion")
	}
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Steps []string `json:"steps"`
	}

	if err := DecodeJSON("```json\n{\"steps\":[\"one\",\"two\"]}\n```", &out); err != nil {
		t.Fatalf("Expected fenced JSON to decode, got %v", err)
	}
	if len(out.Steps) != 2 {
		t.Errorf("Expected 2 steps, got %v", out.Steps)
	}

	if err := DecodeJSON("Here you go: {\"steps\":[\"x\"]}", &out); err != nil {
		t.Errorf("Expected leading chatter to be skipped, got %v", err)
	}

	if err := DecodeJSON("   ", &out); !errors.Is(err, ErrEmptyResponse) {
		t.Errorf("Expected ErrEmptyResponse, got %v", err)
	}

	if err := DecodeJSON("{not json", &out); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("Expected ErrMalformedResponse, got %v", err)
	}
}

func TestSchemaToGenai(t *testing.T) {
	schema := ArraySchema(ObjectSchema(
		[]string{"level", "title"},
		map[string]*Schema{
			"level": StringSchema("intro", "h2"),
			"title": StringSchema(),
		},
	), 3, 0)

	gs := schema.ToGenai()
	if gs.Type != genai.TypeArray {
		t.Errorf("Expected array type, got %v", gs.Type)
	}
	if gs.MinItems == nil || *gs.MinItems != 3 {
		t.Errorf("Expected minItems 3, got %v", gs.MinItems)
	}
	if gs.MaxItems != nil {
		t.Errorf("Expected no maxItems, got %v", *gs.MaxItems)
	}
	item := gs.Items
	if item == nil || item.Type != genai.TypeObject {
		t.Fatalf("Expected object items, got %+v", item)
	}
	if len(item.Required) != 2 || item.Required[0] != "level" {
		t.Errorf("Expected required [level title], got %v", item.Required)
	}
	if len(item.Properties["level"].Enum) != 2 {
		t.Errorf("Expected level enum, got %v", item.Properties["level"].Enum)
	}
}

func TestSchemaToJSONSchema(t *testing.T) {
	schema := ObjectSchema([]string{"steps"}, map[string]*Schema{
		"steps": ArraySchema(StringSchema(), 5, 5),
	})

	js := schema.ToJSONSchema()
	if js["type"] != "object" {
		t.Errorf("Expected object type, got %v", js["type"])
	}
	if js["additionalProperties"] != false {
		t.Error("Expected additionalProperties false on objects")
	}
	props := js["properties"].(map[string]any)
	steps := props["steps"].(map[string]any)
	if steps["minItems"] != 5 || steps["maxItems"] != 5 {
		t.Errorf("Expected 5..5 items, got %v", steps)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("connection reset"), true},
		{"empty", ErrEmptyResponse, true},
		{"server error", statusError{500}, true},
		{"rate limited", statusError{429}, true},
		{"request timeout", statusError{408}, true},
		{"bad request", statusError{400}, false},
		{"unauthorized", statusError{401}, false},
		{"malformed", ErrMalformedResponse, false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRetryingRecoversFromTransientErrors(t *testing.T) {
	inner := &fakeProvider{errs: []error{statusError{503}, ErrEmptyResponse}}
	r := NewRetrying(inner, fastRetry())

	text, err := r.Complete(context.Background(), Prompt{User: "hi"})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if text != "ok: hi" {
		t.Errorf("Expected inner response, got %q", text)
	}
	if inner.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryingStopsOnPermanentError(t *testing.T) {
	inner := &fakeProvider{errs: []error{statusError{400}, nil}}
	r := NewRetrying(inner, fastRetry())

	_, err := r.Complete(context.Background(), Prompt{User: "hi"})
	if err == nil {
		t.Fatal("Expected permanent error to surface")
	}
	var se statusError
	if !errors.As(err, &se) || se.code != 400 {
		t.Errorf("Expected the original 400 error, got %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("Expected a single call, got %d", inner.calls)
	}
}

func TestRetryingGivesUpAfterMaxTries(t *testing.T) {
	inner := &fakeProvider{errs: []error{statusError{500}, statusError{500}, statusError{500}, statusError{500}}}
	r := NewRetrying(inner, fastRetry())

	if _, err := r.EmbedBatch(context.Background(), []string{"a"}); err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("Expected 3 calls, got %d", inner.calls)
	}
}

func TestRetryingStructured(t *testing.T) {
	inner := &fakeProvider{errs: []error{errors.New("flaky")}}
	r := NewRetrying(inner, fastRetry())

	var out struct {
		Steps []string `json:"steps"`
	}
	if err := r.CompleteStructured(context.Background(), Prompt{User: "x"}, nil, &out); err != nil {
		t.Fatalf("Expected structured call to succeed, got %v", err)
	}
	if len(out.Steps) != 2 {
		t.Errorf("Expected decoded steps, got %v", out.Steps)
	}
}

func TestTrackedRecordsCalls(t *testing.T) {
	rec := &observability.Recorder{}
	tracked := NewTracked(&fakeProvider{}, rec)

	if _, err := tracked.Complete(context.Background(), Prompt{User: "hello", Name: "intro"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := tracked.Embed(context.Background(), "query"); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	if len(rec.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(rec.Events))
	}
	if rec.Events[0].Properties["operation"] != "intro" {
		t.Errorf("Expected operation intro, got %v", rec.Events[0].Properties["operation"])
	}
	if rec.Events[1].Properties["operation"] != "embedding" {
		t.Errorf("Expected operation embedding, got %v", rec.Events[1].Properties["operation"])
	}
}

func TestRetryOptionsFromConfig(t *testing.T) {
	opts := RetryOptionsFromConfig(config.Retry{MaxTries: 5, InitialInterval: "1s", Multiplier: 3})
	if opts.MaxTries != 5 || opts.InitialInterval != time.Second || opts.Multiplier != 3 {
		t.Errorf("Expected config values to be applied, got %+v", opts)
	}

	def := RetryOptionsFromConfig(config.Retry{})
	if def.MaxTries != 3 || def.InitialInterval != 500*time.Millisecond || def.Multiplier != 2 {
		t.Errorf("Expected defaults, got %+v", def)
	}
}
