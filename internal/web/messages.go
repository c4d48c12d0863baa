package web

import (
	"time"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/codefionn/aifm/internal/fs"
)

// Message types pushed over the websocket feed
const (
	MessageTypeFSChange         = "fs_change"
	MessageTypeDirectoryChanged = "directory_changed"
	MessageTypeHello            = "hello"
)

// WebMessage is one event sent to connected browsers
type WebMessage struct {
	Type      string    `json:"type"`
	Op        string    `json:"op,omitempty"`
	Path      string    `json:"path,omitempty"`
	Directory string    `json:"directory,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// envelope is the {success, ...} shape every JSON API response shares
type envelope map[string]any

type pathRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

type directoryRequest struct {
	Directory string `json:"directory"`
}

type structureRequest struct {
	Structure *fs.Structure `json:"structure"`
	BasePath  string        `json:"basePath"`
}

type processRequest struct {
	Message string        `json:"message"`
	Context agent.Context `json:"context"`
}
