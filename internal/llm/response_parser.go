package llm

import (
	"encoding/json"
	"strings"

	"github.com/codefionn/aifm/internal/consts"
)

// CleanLLMJSONResponse strips the wrapping models put around JSON replies:
// markdown fences (```json or ```), one outer XML-style tag and surrounding
// whitespace.
func CleanLLMJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
		// drop the info string, e.g. json or JSON
		if nl := strings.IndexByte(response, '\n'); nl >= 0 && !strings.ContainsAny(response[:nl], "{[") {
			response = response[nl+1:]
		} else {
			response = strings.TrimPrefix(strings.TrimPrefix(response, "json"), "JSON")
		}
		response = strings.TrimSuffix(strings.TrimSpace(response), "```")
	}
	response = strings.TrimSpace(response)

	return strings.TrimSpace(extractFromXMLTags(response))
}

// extractFromXMLTags returns the content of a leading "<tag ...>content</tag>".
func extractFromXMLTags(content string) string {
	if !strings.HasPrefix(content, "<") {
		return content
	}

	openEnd := strings.Index(content, ">")
	if openEnd == -1 {
		return content
	}

	tagName := content[1:openEnd]
	if sp := strings.IndexByte(tagName, ' '); sp >= 0 {
		tagName = tagName[:sp]
	}
	if tagName == "" || strings.HasPrefix(tagName, "/") {
		return content
	}

	closeStart := strings.LastIndex(content, "</"+tagName+">")
	if closeStart <= openEnd {
		return content
	}
	return content[openEnd+1 : closeStart]
}

// ExtractJSON decodes a JSON object from a model reply into target. It tries
// the cleaned reply first, then the span between the first '{' and the
// last '}'. Failure yields a *JSONParseError.
func ExtractJSON(response string, target any) error {
	cleaned := CleanLLMJSONResponse(response)
	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), target); err == nil {
			return nil
		}
	}

	return &JSONParseError{Response: response, Message: "could not parse JSON object"}
}

// JSONParseError reports a reply that did not contain a usable JSON object.
type JSONParseError struct {
	Response string
	Message  string
}

func (e *JSONParseError) Error() string {
	return e.Message + ": " + TruncateForError(e.Response, consts.MaxErrorResponseChars)
}

// TruncateForError shortens value to limit runes for logs and errors.
func TruncateForError(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
