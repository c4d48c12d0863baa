package agent

import (
	"encoding/json"
	"strings"

	"github.com/codefionn/aifm/internal/fs"
	"github.com/codefionn/aifm/internal/llm"
)

// Operations an Action can request.
const (
	OpCreateFile      = "create_file"
	OpCreateFolder    = "create_folder"
	OpDelete          = "delete"
	OpCreateStructure = "create_structure"
	OpList            = "list"
)

const fallbackHint = " (Fallback: Please try being more specific about the file name)"

// Targets accepts either a JSON array of strings or a single string.
type Targets []string

func (t *Targets) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*t = nil
		} else {
			*t = Targets{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*t = many
	return nil
}

// Action is one filesystem operation requested by the model.
type Action struct {
	Operation string        `json:"operation"`
	Targets   Targets       `json:"targets,omitempty"`
	Content   string        `json:"content,omitempty"`
	Structure *fs.Structure `json:"structure,omitempty"`
	BasePath  string        `json:"basePath,omitempty"`
}

// Reply is the structured answer shown in the chat.
type Reply struct {
	Type    string  `json:"type"`
	Message string  `json:"message"`
	Action  *Action `json:"action"`
}

// Result is what ParseReply made of the model output: Parsed or Unstructured.
type Result interface {
	AsReply() Reply
	isResult()
}

// Parsed is a reply that decoded to JSON with type and message set.
type Parsed struct {
	Reply Reply
}

func (p Parsed) AsReply() Reply { return p.Reply }
func (Parsed) isResult()        {}

// Unstructured is model output that could not be used as a Reply. It is
// shown to the user as an informational message.
type Unstructured struct {
	Text string
	Err  error
}

func (u Unstructured) AsReply() Reply {
	msg := u.Text
	if strings.TrimSpace(msg) == "" {
		msg = "I encountered an issue processing your request."
	}
	lower := strings.ToLower(u.Text)
	if strings.Contains(lower, "create") && strings.Contains(lower, "file") {
		msg += fallbackHint
	}
	return Reply{Type: "info", Message: msg}
}

func (Unstructured) isResult() {}

// ParseReply decodes model output into a Parsed reply, falling back to
// Unstructured when no JSON object with type and message can be found.
func ParseReply(text string) Result {
	var reply Reply
	if err := llm.ExtractJSON(text, &reply); err != nil {
		return Unstructured{Text: text, Err: err}
	}
	if reply.Type == "" || reply.Message == "" {
		return Unstructured{Text: text, Err: &llm.JSONParseError{Response: text, Message: "reply is missing type or message"}}
	}
	return Parsed{Reply: reply}
}
