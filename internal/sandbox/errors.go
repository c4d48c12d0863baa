package sandbox

import (
	"errors"
	"fmt"
)

// Error kinds returned by the resolver, the registry and the file operations.
// Match them with errors.Is.
var (
	ErrPathEscape    = errors.New("access denied: path outside working directory")
	ErrNotFound      = errors.New("no such file or directory")
	ErrNotADirectory = errors.New("not a directory")
	ErrIsADirectory  = errors.New("is a directory")
	ErrRootTarget    = errors.New("refusing to operate on the working directory itself")
)

// PathError records the operation and the caller-supplied path that failed.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// NewPathError wraps err for op on path.
func NewPathError(op, path string, err error) error {
	return &PathError{Op: op, Path: path, Err: err}
}
