package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLLMJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain JSON", `{"key": "value"}`, `{"key": "value"}`},
		{"json fence", "```json\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"upper-case fence", "```JSON\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"bare fence", "```\n{\"key\": \"value\"}\n```", `{"key": "value"}`},
		{"single line fence", "```json{\"key\": \"value\"}```", `{"key": "value"}`},
		{"whitespace around fence", "  ```json  \n  {\"key\": \"value\"}  \n  ```  ", `{"key": "value"}`},
		{"xml tag", "<result>{\"key\": \"value\"}</result>", `{"key": "value"}`},
		{"xml tag with attributes", "<result type=\"json\">{\"key\": \"value\"}</result>", `{"key": "value"}`},
		{"fence then tag", "```json\n<result>{\"key\": \"value\"}</result>\n```", `{"key": "value"}`},
		{"prose untouched", "I created the file for you.", "I created the file for you."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanLLMJSONResponse(tt.input))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	type reply struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}

	tests := []struct {
		name    string
		input   string
		want    reply
		wantErr bool
	}{
		{
			name:  "plain object",
			input: `{"type": "action", "message": "Creating file"}`,
			want:  reply{Type: "action", Message: "Creating file"},
		},
		{
			name:  "fenced object",
			input: "```json\n{\"type\": \"info\", \"message\": \"hi\"}\n```",
			want:  reply{Type: "info", Message: "hi"},
		},
		{
			name:  "object inside prose",
			input: "Sure! {\"type\": \"info\", \"message\": \"done\"} Let me know.",
			want:  reply{Type: "info", Message: "done"},
		},
		{
			name:    "prose only",
			input:   "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "broken object",
			input:   `{"type": "info", "message": }`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got reply
			err := ExtractJSON(tt.input, &got)
			if tt.wantErr {
				var pe *JSONParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.input, pe.Response)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSONParseErrorTruncates(t *testing.T) {
	err := &JSONParseError{Response: strings.Repeat("a", 300), Message: "parse failed"}
	msg := err.Error()

	assert.True(t, strings.HasPrefix(msg, "parse failed: "))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.LessOrEqual(t, len(msg), len("parse failed: ")+200+len("..."))
}

func TestTruncateForErrorCountsRunes(t *testing.T) {
	assert.Equal(t, "äöü", TruncateForError("äöü", 3))
	assert.Equal(t, "äö...", TruncateForError("äöü", 2))
}

func TestExtractFromXMLTags(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<tag>content</tag>", "content"},
		{`<tag attr="value">content</tag>`, "content"},
		{"<outer><inner>content</inner></outer>", "<inner>content</inner>"},
		{"plain content", "plain content"},
		{"<tag>content", "<tag>content"},
		{"<tag>", "<tag>"},
		{"</tag>", "</tag>"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractFromXMLTags(tt.input))
		})
	}
}
