package sandbox

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/logger"
)

// ChangeFunc is called after the working root switched to dir.
type ChangeFunc func(dir string)

// Manager owns the working root and the ordered set of allowed roots.
// File operations run their resolve-and-act sequence inside WithRoot so a
// concurrent SetWorkingDirectory cannot swap the root halfway through.
type Manager struct {
	mu        sync.RWMutex
	root      string
	allowed   []string
	listeners []ChangeFunc
}

// NewManager seeds the allowed roots with the home directory, its Desktop,
// Documents and Downloads folders, the launch directory, workspaceDir and
// extraRoots. Seeds that do not exist are skipped. workspaceDir becomes the
// working root and is created if missing.
func NewManager(workspaceDir string, extraRoots ...string) (*Manager, error) {
	workspace, err := filepath.Abs(workspaceDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(workspace, consts.DirPerm); err != nil {
		logger.Warn("Could not create workspace %s: %v", workspace, err)
	}

	m := &Manager{root: workspace}

	var seeds []string
	if home, err := os.UserHomeDir(); err == nil {
		seeds = append(seeds,
			home,
			filepath.Join(home, "Desktop"),
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Downloads"),
		)
	}
	if cwd, err := os.Getwd(); err == nil {
		seeds = append(seeds, cwd)
	}
	seeds = append(seeds, workspace)
	seeds = append(seeds, extraRoots...)

	for _, seed := range seeds {
		abs, err := filepath.Abs(seed)
		if err != nil || !isDir(abs) {
			continue
		}
		if !m.hasExactLocked(abs) {
			m.allowed = append(m.allowed, abs)
		}
	}

	logger.Debug("Sandbox root %s, %d allowed roots", m.root, len(m.allowed))
	return m, nil
}

// WorkingDirectory returns the current working root.
func (m *Manager) WorkingDirectory() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.root
}

// AllowedRoots returns a copy of the allowed roots in insertion order.
func (m *Manager) AllowedRoots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.allowed))
	copy(out, m.allowed)
	return out
}

// SetWorkingDirectory makes path the working root. It fails with ErrNotFound
// when path does not exist and ErrNotADirectory when it is not a directory;
// the root is unchanged in both cases. The resolved path is admitted to the
// allowed roots unless an existing root already contains it.
func (m *Manager) SetWorkingDirectory(path string) (string, error) {
	abs, err := checkDir("setdir", path)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.admitLocked(abs)
	m.root = abs
	listeners := append([]ChangeFunc(nil), m.listeners...)
	m.mu.Unlock()

	logger.Info("Working directory set to %s", abs)
	for _, fn := range listeners {
		fn(abs)
	}
	return abs, nil
}

// AddAllowedRoot admits an existing directory without switching to it.
func (m *Manager) AddAllowedRoot(path string) error {
	abs, err := checkDir("allow", path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.admitLocked(abs)
	return nil
}

// IsAllowed reports whether path lies within one of the allowed roots.
func (m *Manager) IsAllowed(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, root := range m.allowed {
		if Within(root, abs) {
			return true
		}
	}
	return false
}

// OnChange registers fn to run after every successful SetWorkingDirectory.
func (m *Manager) OnChange(fn ChangeFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// WithRoot runs fn with the current root while holding the read lock.
func (m *Manager) WithRoot(fn func(root string) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.root)
}

// Resolve maps p against the current root.
func (m *Manager) Resolve(p string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Resolve(m.root, p)
}

func (m *Manager) admitLocked(abs string) {
	for _, root := range m.allowed {
		if Within(root, abs) {
			return
		}
	}
	m.allowed = append(m.allowed, abs)
	logger.Debug("Admitted allowed root %s", abs)
}

func (m *Manager) hasExactLocked(abs string) bool {
	for _, root := range m.allowed {
		if root == abs {
			return true
		}
	}
	return false
}

func checkDir(op, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", NewPathError(op, path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", NewPathError(op, path, ErrNotFound)
		}
		return "", NewPathError(op, path, err)
	}
	if !info.IsDir() {
		return "", NewPathError(op, path, ErrNotADirectory)
	}
	return abs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
