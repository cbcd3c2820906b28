package llm

import (
	"context"
	"errors"
)

// ErrProviderDisabled means the selected provider has no credentials or was
// switched off. Callers run without a text generator.
var ErrProviderDisabled = errors.New("llm provider disabled")

// LLM defines the interface for language model providers
type LLM interface {

	// GenerateResponse generates a response from the LLM given a prompt
	GenerateResponse(ctx context.Context, prompt string) (string, error)

	// IsModelAvailable checks if the configured model is available
	IsModelAvailable(ctx context.Context) error
}
