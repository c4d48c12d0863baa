// Package agent turns chat messages into file operations via an LLM.
package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/fs"
	"github.com/codefionn/aifm/internal/history"
	"github.com/codefionn/aifm/internal/llm"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/codefionn/aifm/internal/sandbox"
	"github.com/google/uuid"
)

// ErrEmptyMessage is returned for blank chat messages.
var ErrEmptyMessage = errors.New("message is required")

var directoryPattern = regexp.MustCompile(`(?i)(?:set directory to|change directory to|working directory to|work in)\s+(.+)`)

const directoryRequestMessage = `I can help you set a working directory! Please provide the full path to the directory where you want to create files. For example: "Set directory to /home/you/Desktop/MyProject" or "Change working directory to ~/Documents/Projects"`

// Context is what the browser knows about its current view.
type Context struct {
	CurrentPath      string   `json:"currentPath"`
	WorkingDirectory string   `json:"workingDirectory"`
	SelectedItems    []string `json:"selectedItems"`
}

// Response is the chat reply plus the outcome of its action.
type Response struct {
	Type             string       `json:"type"`
	Message          string       `json:"message"`
	Action           *Action      `json:"action"`
	ActionResult     ActionResult `json:"actionResult"`
	WorkingDirectory string       `json:"workingDirectory"`
}

// Agent processes chat messages against the file operations service.
type Agent struct {
	client   llm.Client
	files    *fs.Service
	executor *Executor
	history  history.Store
	log      *logger.Logger
}

// New creates an agent. store may be nil to disable history.
func New(client llm.Client, files *fs.Service, store history.Store) *Agent {
	if store == nil {
		store = history.NewMemoryStore()
	}
	return &Agent{
		client:   client,
		files:    files,
		executor: NewExecutor(files),
		history:  store,
		log:      logger.Global().WithPrefix("ai"),
	}
}

// Process handles one chat message. Only a blank message is an error; LLM
// and action failures are reported inside the Response.
func (a *Agent) Process(ctx context.Context, message string, c Context) (*Response, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}
	a.log.Debug("Processing message %q (currentPath=%q)", message, c.CurrentPath)

	if m := directoryPattern.FindStringSubmatch(message); m != nil {
		return a.setDirectory(m[1]), nil
	}
	if mentionsDirectoryChange(message) {
		return &Response{
			Type:             "directory_request",
			Message:          directoryRequestMessage,
			WorkingDirectory: a.files.WorkingDirectory(),
		}, nil
	}

	files, err := a.files.ListDirectory(ctx, c.CurrentPath)
	if err != nil {
		a.log.Warn("Could not load current files: %v", err)
		files = nil
	}

	prompt, err := BuildPrompt(message, a.files.WorkingDirectory(), c.CurrentPath, files, c.SelectedItems, consts.MaxPromptListingEntries)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}

	text, err := a.client.Complete(ctx, prompt)
	if err != nil {
		se := llm.Classify("", "", err)
		a.log.Error("LLM call failed: %v", se)
		return &Response{
			Type:             "error",
			Message:          se.UserMessage(),
			WorkingDirectory: a.files.WorkingDirectory(),
		}, nil
	}
	a.log.Debug("LLM reply: %s", llm.TruncateForError(text, consts.MaxErrorResponseChars))

	a.record(ctx, message, text)

	result := ParseReply(text)
	if u, ok := result.(Unstructured); ok {
		a.log.Warn("Unstructured reply: %v", u.Err)
	}
	reply := result.AsReply()

	resp := &Response{
		Type:    reply.Type,
		Message: reply.Message,
		Action:  reply.Action,
	}
	if reply.Action != nil && reply.Type != "error" {
		ar, err := a.executor.Execute(ctx, reply.Action)
		if err != nil {
			a.log.Error("Action %s failed: %v", reply.Action.Operation, err)
			ar = ActionResult{"error": "Failed to execute action: " + err.Error()}
		}
		resp.ActionResult = ar
	}
	resp.WorkingDirectory = a.files.WorkingDirectory()
	return resp, nil
}

// History returns the recorded conversation, oldest first.
func (a *Agent) History(ctx context.Context) ([]history.Entry, error) {
	return a.history.List(ctx)
}

// ModelName returns the model answering chat messages.
func (a *Agent) ModelName() string {
	return a.client.GetModelName()
}

func (a *Agent) setDirectory(raw string) *Response {
	requested := strings.NewReplacer(`"`, "", "'", "").Replace(strings.TrimSpace(raw))
	requested = sandbox.ExpandShortcut(requested)

	dir, err := a.files.Manager().SetWorkingDirectory(requested)
	if err != nil {
		a.log.Warn("Could not set directory to %s: %v", requested, err)
		return &Response{
			Type:             "error",
			Message:          fmt.Sprintf("I couldn't set the directory: %v. Please make sure the path exists and you have permission to access it.", err),
			WorkingDirectory: a.files.WorkingDirectory(),
		}
	}

	return &Response{
		Type:    "directory_set",
		Message: fmt.Sprintf("Great! I've set the working directory to: %s. Now I can create files and folders in this location. What would you like me to create?", dir),
		ActionResult: ActionResult{
			"message":   "Working directory changed to: " + dir,
			"directory": dir,
		},
		WorkingDirectory: dir,
	}
}

func (a *Agent) record(ctx context.Context, user, assistant string) {
	entry := history.Entry{
		ID:        uuid.NewString(),
		User:      user,
		Assistant: assistant,
		Timestamp: time.Now(),
	}
	if err := a.history.Add(ctx, entry); err != nil {
		a.log.Warn("Failed to record history: %v", err)
	}
}

func mentionsDirectoryChange(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "set directory") ||
		strings.Contains(lower, "change directory") ||
		strings.Contains(lower, "working directory")
}
