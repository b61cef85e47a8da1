// Package observability records product usage events.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/posthog/posthog-go"

	"planwrite/internal/config"
)

// EventProperties contains properties for an event
type EventProperties map[string]interface{}

// Tracker is the usage-event sink components depend on.
type Tracker interface {
	Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error
}

// PostHogClient wraps the PostHog SDK for product analytics
type PostHogClient struct {
	client  posthog.Client
	enabled bool
	log     *slog.Logger
}

// NewPostHogClient creates a PostHog client. Tracking is disabled when no
// API key is configured.
func NewPostHogClient(cfg config.PostHog) (*PostHogClient, error) {
	if cfg.APIKey == "" {
		return Disabled(), nil
	}

	client, err := posthog.NewWithConfig(cfg.APIKey, posthog.Config{
		Endpoint: cfg.Host,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PostHog client: %w", err)
	}

	return &PostHogClient{
		client:  client,
		enabled: true,
		log:     slog.Default(),
	}, nil
}

// Disabled returns a client that drops every event.
func Disabled() *PostHogClient {
	return &PostHogClient{enabled: false, log: slog.Default()}
}

// IsEnabled returns whether PostHog tracking is enabled
func (p *PostHogClient) IsEnabled() bool {
	return p != nil && p.enabled
}

// Capture sends an event to PostHog
func (p *PostHogClient) Capture(ctx context.Context, distinctID string, event string, properties EventProperties) error {
	if !p.IsEnabled() {
		return nil
	}
	if distinctID == "" {
		distinctID = "anonymous"
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := p.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		p.log.Warn("Failed to enqueue usage event", "event", event, "error", err.Error())
		return err
	}
	return nil
}

// Close flushes pending events and shuts the client down
func (p *PostHogClient) Close() error {
	if !p.IsEnabled() {
		return nil
	}
	return p.client.Close()
}

// TrackLLMCall tracks provider calls for cost and latency monitoring
func TrackLLMCall(ctx context.Context, t Tracker, model, operation string, tokens int, latencyMs int64, success bool) {
	capture(ctx, t, "system", "llm_call", EventProperties{
		"model":      model,
		"operation":  operation, // "outline", "intro", "section", "signup", "embedding"
		"tokens":     tokens,
		"latency_ms": latencyMs,
		"success":    success,
	})
}

// TrackOutlineGenerated tracks a completed planning call
func TrackOutlineGenerated(ctx context.Context, t Tracker, requestID, keyword string, sections int, fallback bool, durationMs int64) {
	capture(ctx, t, "system", "outline_generated", EventProperties{
		"request_id":  requestID,
		"keyword":     keyword,
		"sections":    sections,
		"fallback":    fallback,
		"duration_ms": durationMs,
	})
}

// TrackDraftGenerated tracks a completed draft
func TrackDraftGenerated(ctx context.Context, t Tracker, requestID, keyword, state string, words, failedSections int, durationMs int64) {
	capture(ctx, t, "system", "draft_generated", EventProperties{
		"request_id":      requestID,
		"keyword":         keyword,
		"state":           state,
		"word_count":      words,
		"failed_sections": failedSections,
		"duration_ms":     durationMs,
	})
}

// TrackValidation tracks a compliance validation run
func TrackValidation(ctx context.Context, t Tracker, requestID, state string, score float64, valid bool, issues int) {
	capture(ctx, t, "system", "content_validated", EventProperties{
		"request_id": requestID,
		"state":      state,
		"score":      score,
		"valid":      valid,
		"issues":     issues,
	})
}

// TrackAPIRequest tracks one HTTP request
func TrackAPIRequest(ctx context.Context, t Tracker, username, method, path string, status int, durationMs int64) {
	capture(ctx, t, username, "api_request", EventProperties{
		"method":      method,
		"path":        path,
		"status_code": status,
		"duration_ms": durationMs,
	})
}

// TrackError tracks when an error occurs
func TrackError(ctx context.Context, t Tracker, errorType, errorMessage, component string) {
	capture(ctx, t, "system", "error_occurred", EventProperties{
		"error_type":    errorType,
		"error_message": errorMessage,
		"component":     component,
	})
}

// capture never fails the caller; usage tracking is best effort.
func capture(ctx context.Context, t Tracker, distinctID, event string, props EventProperties) {
	if t == nil {
		return
	}
	_ = t.Capture(ctx, distinctID, event, props)
}

// Recorder is an in-memory Tracker, used by tests and dry runs.
type Recorder struct {
	mu     sync.Mutex
	Events []RecordedEvent
}

// RecordedEvent is one captured event.
type RecordedEvent struct {
	DistinctID string
	Event      string
	Properties EventProperties
}

// Capture records the event.
func (r *Recorder) Capture(_ context.Context, distinctID, event string, properties EventProperties) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, RecordedEvent{DistinctID: distinctID, Event: event, Properties: properties})
	return nil
}

// Names returns the recorded event names in order.
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Event
	}
	return out
}
