package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"planwrite/internal/config"
	"planwrite/internal/logger"
)

// RetryOptions configures bounded exponential retry of provider calls.
type RetryOptions struct {
	MaxTries        uint
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration
}

// DefaultRetryOptions returns three tries starting at 500ms, doubling.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxTries:        3,
		InitialInterval: 500 * time.Millisecond,
		Multiplier:      2,
		MaxInterval:     10 * time.Second,
	}
}

// RetryOptionsFromConfig maps the retry config section onto RetryOptions.
func RetryOptionsFromConfig(cfg config.Retry) RetryOptions {
	opts := DefaultRetryOptions()
	if cfg.MaxTries > 0 {
		opts.MaxTries = cfg.MaxTries
	}
	opts.InitialInterval = config.Duration(cfg.InitialInterval, opts.InitialInterval)
	if cfg.Multiplier > 1 {
		opts.Multiplier = cfg.Multiplier
	}
	return opts
}

// StatusCoder is implemented by errors that carry an HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// StatusOf returns the HTTP status carried by a provider error, or 0.
func StatusOf(err error) int {
	if code := geminiStatus(err); code != 0 {
		return code
	}
	if code := openAIStatus(err); code != 0 {
		return code
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatusCode()
	}
	return 0
}

// IsRetryable reports whether a provider error is worth another attempt.
// Client errors are final except request timeouts and rate limits; decode
// failures and cancellations are final too.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	status := StatusOf(err)
	if status == 0 {
		return true
	}
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500
}

// Retrying wraps a provider with bounded exponential retry.
type Retrying struct {
	inner Provider
	opts  RetryOptions
	log   *slog.Logger
}

// NewRetrying wraps inner with retries.
func NewRetrying(inner Provider, opts RetryOptions) *Retrying {
	if opts.MaxTries == 0 {
		opts.MaxTries = 1
	}
	return &Retrying{inner: inner, opts: opts, log: logger.With("llm")}
}

// Name returns the wrapped provider label.
func (r *Retrying) Name() string { return r.inner.Name() }

// Complete retries inner.Complete.
func (r *Retrying) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return retry(ctx, r, prompt.Name, func() (string, error) {
		return r.inner.Complete(ctx, prompt)
	})
}

// CompleteStructured retries inner.CompleteStructured.
func (r *Retrying) CompleteStructured(ctx context.Context, prompt Prompt, schema *Schema, out any) error {
	_, err := retry(ctx, r, prompt.Name, func() (struct{}, error) {
		return struct{}{}, r.inner.CompleteStructured(ctx, prompt, schema, out)
	})
	return err
}

// Embed retries inner.Embed.
func (r *Retrying) Embed(ctx context.Context, text string) ([]float32, error) {
	return retry(ctx, r, "embed", func() ([]float32, error) {
		return r.inner.Embed(ctx, text)
	})
}

// EmbedBatch retries inner.EmbedBatch.
func (r *Retrying) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return retry(ctx, r, "embed_batch", func() ([][]float32, error) {
		return r.inner.EmbedBatch(ctx, texts)
	})
}

func retry[T any](ctx context.Context, r *Retrying, op string, fn func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.opts.InitialInterval
	b.Multiplier = r.opts.Multiplier
	if r.opts.MaxInterval > 0 {
		b.MaxInterval = r.opts.MaxInterval
	}

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.opts.MaxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.log.Warn("LLM request retrying",
				"op", op,
				"attempt", attempt,
				"max_tries", r.opts.MaxTries,
				"sleep", next.String(),
				"error", err.Error(),
			)
		}),
	)
}
