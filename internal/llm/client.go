// Package llm talks to the text-generation backends behind the chat assistant.
package llm

import (
	"context"
)

// Client is the interface for LLM clients
type Client interface {
	// Complete sends a single prompt and returns the generated text
	Complete(ctx context.Context, prompt string) (string, error)
	// GetModelName returns the model name
	GetModelName() string
}

// Options carries the generation settings shared by all providers.
type Options struct {
	Model           string
	Temperature     float64
	TopK            int
	TopP            float64
	MaxOutputTokens int
	// BaseURL overrides the provider endpoint; empty uses the SDK default.
	BaseURL string
}
