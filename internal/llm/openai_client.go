package llm

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient implements the Client interface with the Responses API.
type OpenAIClient struct {
	client          openai.Client
	model           string
	temperature     float64
	topP            float64
	maxOutputTokens int
}

// NewOpenAIClient constructs a client that talks directly to the OpenAI API.
// Retries are disabled; a failed call surfaces immediately.
func NewOpenAIClient(apiKey string, opts Options) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultOpenAIModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &OpenAIClient{
		client:          openai.NewClient(reqOpts...),
		model:           model,
		temperature:     opts.Temperature,
		topP:            opts.TopP,
		maxOutputTokens: opts.MaxOutputTokens,
	}, nil
}

func (c *OpenAIClient) GetModelName() string {
	return c.model
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(prompt),
		},
	}
	if c.temperature > 0 && !isOpenAITemperatureUnsupported(c.model) {
		params.Temperature = openai.Float(c.temperature)
		if c.topP > 0 {
			params.TopP = openai.Float(c.topP)
		}
	}
	if c.maxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(int64(c.maxOutputTokens))
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return resp.OutputText(), nil
}

// isOpenAITemperatureUnsupported reports reasoning models that reject
// sampling parameters.
func isOpenAITemperatureUnsupported(modelName string) bool {
	m := strings.ToLower(strings.TrimSpace(modelName))
	return strings.HasPrefix(m, "o1") ||
		strings.HasPrefix(m, "o3") ||
		strings.HasPrefix(m, "o4") ||
		strings.HasPrefix(m, "gpt-5") ||
		strings.Contains(m, "reasoning")
}
