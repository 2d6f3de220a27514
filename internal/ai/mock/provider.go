// Package mock provides a configurable ai.Provider double for testing and
// local development.
package mock

import (
	"context"
	"log/slog"

	"github.com/ewaller/leadloop/internal/ai"
)

// Provider is a mock text-completion provider.
type Provider struct {
	logger *slog.Logger

	// Configurable behavior for tests.
	CompleteResponse string
	CompleteError    error

	// Call tracking for tests.
	CompleteCalls int
}

// New creates a new mock provider.
func New(logger *slog.Logger) *Provider {
	return &Provider{
		logger: logger,
	}
}

// Complete returns the configured response, or a canned deterministic one.
func (p *Provider) Complete(ctx context.Context, prompt ai.Prompt) (string, error) {
	p.CompleteCalls++

	if p.CompleteError != nil {
		return "", p.CompleteError
	}
	if p.CompleteResponse != "" {
		return p.CompleteResponse, nil
	}

	return "Hi! Just checking in on our last conversation — is there anything I can help with? Would later this week work for a quick call?", nil
}

// Reset clears call counters and configured behavior.
func (p *Provider) Reset() {
	p.CompleteCalls = 0
	p.CompleteResponse = ""
	p.CompleteError = nil
}
