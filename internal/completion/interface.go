package completion

import (
	"context"
	"errors"
)

var (
	// ErrDisabled is returned when no completion backend is configured.
	ErrDisabled = errors.New("completion service is not configured")
	// ErrEmptyResponse is returned when the backend answers without any choice.
	ErrEmptyResponse = errors.New("completion service returned no choices")
)

// Request is a single prompt with an optional system instruction.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

func (r Request) temperature() float64 {
	if r.Temperature <= 0 {
		return 0.7
	}
	return r.Temperature
}

// Service defines the text-completion operations the application relies on.
type Service interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Disabled is used when no API key is configured; every call fails with ErrDisabled.
type Disabled struct{}

func (Disabled) Complete(context.Context, Request) (string, error) {
	return "", ErrDisabled
}

// Ensure implementations satisfy the interface
var (
	_ Service = (*Client)(nil)
	_ Service = Disabled{}
)
