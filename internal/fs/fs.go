// Package fs implements the sandboxed file operations behind the file
// browser and the chat assistant.
package fs

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"

	"github.com/codefionn/aifm/internal/consts"
	"github.com/codefionn/aifm/internal/logger"
	"github.com/codefionn/aifm/internal/sandbox"
)

// Entry kinds used in listings and structure results.
const (
	KindFile   = "file"
	KindFolder = "folder"
)

// FileEntry is one direct child of a listed directory.
type FileEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
}

// StructureResult records one entry created by CreateStructure.
type StructureResult struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// Service performs file operations relative to the manager's working root.
type Service struct {
	mgr     *sandbox.Manager
	watcher *Watcher
	log     *logger.Logger
}

// NewService creates a file operations service bound to mgr.
func NewService(mgr *sandbox.Manager) *Service {
	return &Service{
		mgr: mgr,
		log: logger.Global().WithPrefix("files"),
	}
}

// SetWatcher makes listed directories report changes to w.
func (s *Service) SetWatcher(w *Watcher) {
	s.watcher = w
}

// Manager returns the working-directory manager.
func (s *Service) Manager() *sandbox.Manager {
	return s.mgr
}

// WorkingDirectory returns the current working root.
func (s *Service) WorkingDirectory() string {
	return s.mgr.WorkingDirectory()
}

// CreateFile writes content to p, creating parent directories and
// overwriting an existing file. It returns the absolute path written.
func (s *Service) CreateFile(ctx context.Context, p, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var abs string
	err := s.mgr.WithRoot(func(root string) error {
		var err error
		abs, err = writeFile(root, p, content)
		return err
	})
	if err != nil {
		return "", err
	}
	s.log.Debug("Created file %s", abs)
	return abs, nil
}

// CreateFolder creates p and its parents. Existing folders are not an error.
func (s *Service) CreateFolder(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var abs string
	err := s.mgr.WithRoot(func(root string) error {
		var err error
		abs, err = makeFolder(root, p)
		return err
	})
	if err != nil {
		return "", err
	}
	s.log.Debug("Created folder %s", abs)
	return abs, nil
}

// DeleteItem removes p recursively. A symlink is removed, not its target. A
// missing target is not an error. Deleting the working root itself fails with
// sandbox.ErrRootTarget.
func (s *Service) DeleteItem(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.mgr.WithRoot(func(root string) error {
		abs, err := sandbox.ResolveEntry(root, p)
		if err != nil {
			return err
		}
		if abs == filepath.Clean(root) {
			return sandbox.NewPathError("delete", p, sandbox.ErrRootTarget)
		}
		if err := os.RemoveAll(abs); err != nil {
			return sandbox.NewPathError("delete", p, err)
		}
		s.log.Debug("Deleted %s", abs)
		return nil
	})
}

// ListDirectory returns the direct children of p sorted by name. A missing
// directory yields an empty listing.
func (s *Service) ListDirectory(ctx context.Context, p string) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		abs     string
		entries []FileEntry
	)
	err := s.mgr.WithRoot(func(root string) error {
		var err error
		abs, err = sandbox.Resolve(root, p)
		if err != nil {
			return err
		}
		entries, err = readDir(root, abs, p, false)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.watcher != nil {
		if err := s.watcher.Watch(abs); err != nil {
			s.log.Debug("Not watching %s: %v", abs, err)
		}
	}
	return entries, nil
}

// GetFileContent returns the text of the file at p.
func (s *Service) GetFileContent(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var content string
	err := s.mgr.WithRoot(func(root string) error {
		abs, err := sandbox.Resolve(root, p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return statError("read", p, err)
		}
		if info.IsDir() {
			return sandbox.NewPathError("read", p, sandbox.ErrIsADirectory)
		}
		data, err := os.ReadFile(abs)
		if err != nil {
			return sandbox.NewPathError("read", p, err)
		}
		content = string(data)
		return nil
	})
	return content, err
}

// CreateStructure materializes spec below basePath. Results are in creation
// order with every folder ahead of its children. Nothing is rolled back on
// failure; the results created so far are returned with the error.
func (s *Service) CreateStructure(ctx context.Context, spec *Structure, basePath string) ([]StructureResult, error) {
	results := make([]StructureResult, 0)
	err := s.mgr.WithRoot(func(root string) error {
		if _, err := sandbox.Resolve(root, basePath); err != nil {
			return err
		}
		return createTree(ctx, root, spec, basePath, &results)
	})
	if err != nil {
		s.log.Warn("Structure creation stopped after %d entries: %v", len(results), err)
		return results, err
	}
	s.log.Debug("Created structure with %d entries under %q", len(results), basePath)
	return results, nil
}

// ExploreDirectory lists the sub-folders of an absolute directory. It is
// not confined to the working root; it backs the directory picker.
func (s *Service) ExploreDirectory(ctx context.Context, dir string) ([]FileEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, sandbox.NewPathError("explore", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, statError("explore", dir, err)
	}
	if !info.IsDir() {
		return nil, sandbox.NewPathError("explore", dir, sandbox.ErrNotADirectory)
	}
	return readDir(abs, abs, abs, true)
}

func createTree(ctx context.Context, root string, spec *Structure, base string, results *[]StructureResult) error {
	for _, entry := range spec.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}

		rel := path.Join(filepath.ToSlash(base), entry.Name)
		if entry.IsFolder() {
			if _, err := makeFolder(root, rel); err != nil {
				return err
			}
			*results = append(*results, StructureResult{Type: KindFolder, Path: rel})
			if err := createTree(ctx, root, entry.Children, rel, results); err != nil {
				return err
			}
			continue
		}

		if _, err := writeFile(root, rel, entry.Content); err != nil {
			return err
		}
		*results = append(*results, StructureResult{Type: KindFile, Path: rel})
	}
	return nil
}

func writeFile(root, p, content string) (string, error) {
	abs, err := sandbox.Resolve(root, p)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return "", sandbox.NewPathError("create_file", p, sandbox.ErrIsADirectory)
	}
	if err := os.MkdirAll(filepath.Dir(abs), consts.DirPerm); err != nil {
		return "", sandbox.NewPathError("create_file", p, err)
	}
	if err := os.WriteFile(abs, []byte(content), consts.FilePerm); err != nil {
		return "", sandbox.NewPathError("create_file", p, err)
	}
	return abs, nil
}

func makeFolder(root, p string) (string, error) {
	abs, err := sandbox.Resolve(root, p)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return "", sandbox.NewPathError("create_folder", p, sandbox.ErrNotADirectory)
	}
	if err := os.MkdirAll(abs, consts.DirPerm); err != nil {
		return "", sandbox.NewPathError("create_folder", p, err)
	}
	return abs, nil
}

// readDir lists abs with entry paths relative to root. Folder-only
// listings carry absolute paths.
func readDir(root, abs, requested string, foldersOnly bool) ([]FileEntry, error) {
	dirents, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []FileEntry{}, nil
		}
		if info, statErr := os.Stat(abs); statErr == nil && !info.IsDir() {
			return nil, sandbox.NewPathError("list", requested, sandbox.ErrNotADirectory)
		}
		return nil, sandbox.NewPathError("list", requested, err)
	}

	entries := make([]FileEntry, 0, len(dirents))
	for _, d := range dirents {
		full := filepath.Join(abs, d.Name())

		isDir := d.IsDir()
		if d.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(full); err == nil {
				isDir = info.IsDir()
			}
		}
		if foldersOnly && !isDir {
			continue
		}

		kind := KindFile
		if isDir {
			kind = KindFolder
		}

		rel := full
		if !foldersOnly {
			rel = sandbox.Relative(root, full)
		}
		entries = append(entries, FileEntry{
			Name:     d.Name(),
			Type:     kind,
			Path:     rel,
			FullPath: full,
		})
	}
	return entries, nil
}

func statError(op, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return sandbox.NewPathError(op, p, sandbox.ErrNotFound)
	}
	return sandbox.NewPathError(op, p, err)
}
