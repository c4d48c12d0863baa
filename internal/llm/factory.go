package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NewClient builds the client for provider. A missing API key does not fail
// here; the returned client reports ErrMissingAPIKey on every call so the
// server can start without one. Errors from Complete are *ServiceError.
func NewClient(ctx context.Context, provider, apiKey, keyEnv string, opts Options) (Client, error) {
	var (
		inner Client
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", "google":
		provider = "google"
		inner, err = NewGoogleAIClient(ctx, apiKey, opts)
	case "openai":
		inner, err = NewOpenAIClient(apiKey, opts)
	case "anthropic":
		inner, err = NewAnthropicClient(apiKey, opts)
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	if errors.Is(err, ErrMissingAPIKey) {
		inner = &unconfiguredClient{model: opts.Model}
	} else if err != nil {
		return nil, err
	}

	return &classifyingClient{
		inner:    inner,
		provider: provider,
		keyEnv:   keyEnv,
	}, nil
}

type classifyingClient struct {
	inner    Client
	provider string
	keyEnv   string
}

func (c *classifyingClient) Complete(ctx context.Context, prompt string) (string, error) {
	text, err := c.inner.Complete(ctx, prompt)
	if err != nil {
		return "", Classify(c.provider, c.keyEnv, err)
	}
	return text, nil
}

func (c *classifyingClient) GetModelName() string {
	return c.inner.GetModelName()
}

type unconfiguredClient struct {
	model string
}

func (c *unconfiguredClient) Complete(context.Context, string) (string, error) {
	return "", ErrMissingAPIKey
}

func (c *unconfiguredClient) GetModelName() string {
	return c.model
}
