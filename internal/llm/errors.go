package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	openai "github.com/openai/openai-go"
)

// Kind classifies a failed LLM call so the user gets an actionable message.
type Kind string

const (
	KindAuth    Kind = "auth"
	KindQuota   Kind = "quota"
	KindGeneric Kind = "generic"
)

// ErrMissingAPIKey is returned by clients built without an API key.
var ErrMissingAPIKey = errors.New("API key not configured")

// ServiceError wraps a failed call to the text-generation backend.
type ServiceError struct {
	Kind     Kind
	Provider string
	// KeyEnv names the environment variable that supplies the provider key.
	KeyEnv string
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown in the chat when the call failed.
func (e *ServiceError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		env := e.KeyEnv
		if env == "" {
			env = "API key"
		}
		return fmt.Sprintf("API key configuration error. Please check your %s in the .env file.", env)
	case KindQuota:
		return fmt.Sprintf("API quota exceeded. Please try again later or check your %s API limits.", providerTitle(e.Provider))
	default:
		return "Error processing request: " + e.Err.Error()
	}
}

// Classify wraps err in a ServiceError. HTTP status codes reported by the
// OpenAI and Anthropic SDKs are used when present, otherwise the message
// text is inspected.
func Classify(provider, keyEnv string, err error) *ServiceError {
	if err == nil {
		return nil
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return se
	}
	return &ServiceError{
		Kind:     classifyKind(err),
		Provider: provider,
		KeyEnv:   keyEnv,
		Err:      err,
	}
}

func classifyKind(err error) Kind {
	if errors.Is(err, ErrMissingAPIKey) {
		return KindAuth
	}

	status := 0
	var oaiErr *openai.Error
	var antErr *anthropic.Error
	switch {
	case errors.As(err, &oaiErr):
		status = oaiErr.StatusCode
	case errors.As(err, &antErr):
		status = antErr.StatusCode
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindQuota
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api_key"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "permission_denied"):
		return KindAuth
	case strings.Contains(msg, "quota"),
		strings.Contains(msg, "limit"),
		strings.Contains(msg, "429"),
		strings.Contains(msg, "resource_exhausted"):
		return KindQuota
	default:
		return KindGeneric
	}
}

func providerTitle(provider string) string {
	switch provider {
	case "openai":
		return "OpenAI"
	case "anthropic":
		return "Anthropic"
	default:
		return "Gemini"
	}
}
