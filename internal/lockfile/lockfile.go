// Package lockfile keeps two servers from claiming the same port and state.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// ErrHeld is matched by a HeldError when another live process owns the lock.
var ErrHeld = errors.New("lock is held by another process")

// HeldError names the process that owns the lock
type HeldError struct {
	Path string
	PID  int
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("%s is held by running process %d", e.Path, e.PID)
}

func (e *HeldError) Is(target error) bool {
	return target == ErrHeld
}

// Lock is an acquired lockfile containing "<pid>\n<RFC3339 time>\n"
type Lock struct {
	path string
	file *os.File
}

// Acquire creates path exclusively. A lockfile left behind by a process that
// no longer runs is replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lockfile directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0644)
		if err == nil {
			l := &Lock{path: path, file: file}
			if err := l.stamp(); err != nil {
				_ = l.Release()
				return nil, err
			}
			return l, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		if pid, alive := owner(path); alive {
			return nil, &HeldError{Path: path, PID: pid}
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, fmt.Errorf("failed to acquire %s", path)
}

func (l *Lock) stamp() error {
	content := fmt.Sprintf("%d\n%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	if _, err := l.file.WriteString(content); err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	return l.file.Sync()
}

// owner returns the PID recorded in path and whether that process still runs.
// Unreadable or malformed files count as stale.
func owner(path string) (int, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	pid, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || pid <= 0 {
		return 0, false
	}
	return pid, isProcessRunning(pid)
}

// Path returns the lockfile path
func (l *Lock) Path() string {
	return l.path
}

// Release closes and removes the lockfile. Calling it twice is harmless.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
		err = errors.Join(err, fmt.Errorf("failed to remove lockfile: %w", rmErr))
	}
	return err
}
