// Package ai defines the text-completion provider abstraction used by the
// generation pipeline, along with the prompt composer and the deterministic
// fallback templates.
//
// Providers implement a single Complete operation. Every provider failure
// is represented by one of the sentinel errors below so that the caller
// can treat the whole class uniformly: the orchestrator absorbs all of
// them and falls back to a locally composed message.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider is the external text-completion capability.
type Provider interface {
	// Complete generates text for the given prompt pair. It returns a
	// non-empty string on success, or an error wrapping one of the
	// sentinel provider errors on transport, credential, quota, or
	// empty-response failure. Implementations must honor ctx deadlines.
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Prompt is a composed system/user prompt pair ready for a provider call.
type Prompt struct {
	System string
	User   string
}

// ProviderConfig contains common tuning for providers.
type ProviderConfig struct {
	MaxRetries     int           // Maximum retry attempts for transient errors
	RetryBaseDelay time.Duration // Base delay for exponential backoff
	RequestTimeout time.Duration // Timeout for individual requests
}

// Provider error sentinels. All of them are recoverable via fallback.
var (
	// ErrMissingCredentials indicates no API key is configured.
	ErrMissingCredentials = errors.New("ai provider credentials missing")

	// ErrRateLimit indicates the provider rate limit or quota is exhausted.
	ErrRateLimit = errors.New("ai provider rate limit exceeded")

	// ErrTimeout indicates the request timed out.
	ErrTimeout = errors.New("ai request timed out")

	// ErrUnavailable indicates the provider is temporarily unavailable.
	ErrUnavailable = errors.New("ai provider temporarily unavailable")

	// ErrUnauthorized indicates invalid API credentials.
	ErrUnauthorized = errors.New("ai provider authentication failed")

	// ErrEmptyResponse indicates the provider returned no usable text.
	ErrEmptyResponse = errors.New("ai provider returned empty response")
)

// IsRetryable returns true for transient errors worth retrying within a
// single provider call.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimit) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, ErrUnavailable)
}

// WrapError wraps an error with context about the AI operation.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("ai %s: %w", operation, err)
}
