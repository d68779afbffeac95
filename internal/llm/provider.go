package llm

import (
	"context"
	"errors"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
	// Name returns the name of this provider.
	Name() string
}

var (
	// ErrUnconfigured is returned by the placeholder provider used when no
	// chat endpoint has been supplied.
	ErrUnconfigured = errors.New("chat endpoint not configured")
	// ErrRequestFailed reports a non-2xx response from the chat endpoint.
	ErrRequestFailed = errors.New("chat request failed")
	// ErrEmptyResponse reports a response without usable content.
	ErrEmptyResponse = errors.New("no response from AI")
)

// Unconfigured is the explicit "no endpoint" provider. Every call fails
// with ErrUnconfigured.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "unconfigured" }

func (Unconfigured) Complete(context.Context, CompletionRequest) (*CompletionResponse, error) {
	return nil, ErrUnconfigured
}

// IsConfigured reports whether p can actually serve requests.
func IsConfigured(p Provider) bool {
	if p == nil {
		return false
	}
	_, unconfigured := p.(Unconfigured)
	return !unconfigured
}
