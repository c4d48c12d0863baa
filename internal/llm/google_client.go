package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/codefionn/aifm/internal/consts"
	genai "google.golang.org/genai"
)

// GoogleGenAIClient implements the Client interface using the official Google GenAI SDK.
type GoogleGenAIClient struct {
	modelName string
	client    *genai.Client
	config    *genai.GenerateContentConfig
}

// NewGoogleAIClient creates a Gemini client with the generation settings from opts.
func NewGoogleAIClient(ctx context.Context, apiKey string, opts Options) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google GenAI client: %w", err)
	}

	return &GoogleGenAIClient{
		modelName: normalizeGoogleModelName(opts.Model),
		client:    client,
		config:    buildGenAIGenerationConfig(opts),
	}, nil
}

func (c *GoogleGenAIClient) GetModelName() string {
	return c.modelName
}

func (c *GoogleGenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), c.config)
	if err != nil {
		return "", fmt.Errorf("google genai completion failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("google genai blocked the prompt: %s", resp.PromptFeedback.BlockReason)
		}
		return "", nil
	}
	return collectTextFromContent(resp.Candidates[0].Content), nil
}

func collectTextFromContent(content *genai.Content) string {
	if content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

// buildGenAIGenerationConfig applies sampling limits and blocks medium and
// above harassment, hate speech, sexual and dangerous content.
func buildGenAIGenerationConfig(opts Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}

	if opts.Temperature > 0 {
		temp := float32(opts.Temperature)
		cfg.Temperature = &temp
	}
	if opts.TopK > 0 {
		topK := float32(opts.TopK)
		cfg.TopK = &topK
	}
	if opts.TopP > 0 {
		topP := float32(opts.TopP)
		cfg.TopP = &topP
	}

	maxTokens := opts.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = consts.DefaultMaxOutputTokens
	}
	cfg.MaxOutputTokens = int32(maxTokens)

	for _, category := range []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	} {
		cfg.SafetySettings = append(cfg.SafetySettings, &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockMediumAndAbove,
		})
	}

	return cfg
}

func normalizeGoogleModelName(modelName string) string {
	trimmed := strings.TrimSpace(modelName)
	if trimmed == "" {
		trimmed = consts.DefaultGoogleModel
	}

	lowered := strings.ToLower(trimmed)
	if strings.HasPrefix(lowered, "models/") || strings.HasPrefix(lowered, "publishers/") {
		return trimmed
	}

	return "models/" + trimmed
}
