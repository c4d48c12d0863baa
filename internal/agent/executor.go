package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codefionn/aifm/internal/fs"
)

// ActionResult is reported back to the client next to the reply.
type ActionResult map[string]any

// Executor dispatches actions to the file operations service.
type Executor struct {
	files *fs.Service
}

// NewExecutor creates an executor backed by files.
func NewExecutor(files *fs.Service) *Executor {
	return &Executor{files: files}
}

// Execute runs action. No validation beyond what the file operations
// enforce is applied.
func (e *Executor) Execute(ctx context.Context, action *Action) (ActionResult, error) {
	if action == nil {
		return nil, errors.New("no action given")
	}

	switch action.Operation {
	case OpCreateFile:
		if len(action.Targets) == 0 {
			return nil, errors.New("no file path specified")
		}
		path, err := e.files.CreateFile(ctx, action.Targets[0], action.Content)
		if err != nil {
			return nil, err
		}
		return ActionResult{
			"message": "File created successfully: " + path,
			"path":    path,
		}, nil

	case OpCreateFolder:
		if len(action.Targets) == 0 {
			return nil, errors.New("no folder path specified")
		}
		path, err := e.files.CreateFolder(ctx, action.Targets[0])
		if err != nil {
			return nil, err
		}
		return ActionResult{
			"message": "Folder created successfully: " + path,
			"path":    path,
		}, nil

	case OpDelete:
		if len(action.Targets) == 0 {
			return nil, errors.New("no targets specified for deletion")
		}
		deleted := make([]string, 0, len(action.Targets))
		for _, target := range action.Targets {
			if err := e.files.DeleteItem(ctx, target); err != nil {
				return nil, err
			}
			deleted = append(deleted, target)
		}
		return ActionResult{
			"message": "Successfully deleted: " + strings.Join(deleted, ", "),
			"deleted": deleted,
		}, nil

	case OpCreateStructure:
		if action.Structure == nil {
			return nil, errors.New("no structure specified")
		}
		created, err := e.files.CreateStructure(ctx, action.Structure, action.BasePath)
		if err != nil {
			return nil, err
		}
		location := e.files.WorkingDirectory()
		return ActionResult{
			"message":  fmt.Sprintf("Project structure created with %d items in %s", len(created), location),
			"created":  created,
			"location": location,
		}, nil

	case OpList:
		target := ""
		if len(action.Targets) > 0 {
			target = action.Targets[0]
		}
		items, err := e.files.ListDirectory(ctx, target)
		if err != nil {
			return nil, err
		}
		where := target
		if where == "" {
			where = "current directory"
		}
		return ActionResult{
			"message": fmt.Sprintf("Found %d items in %s", len(items), where),
			"items":   items,
		}, nil

	default:
		return ActionResult{
			"message": fmt.Sprintf("Action '%s' completed", action.Operation),
			"note":    "Action type not fully implemented yet",
		}, nil
	}
}
