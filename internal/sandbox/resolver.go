// Package sandbox confines file operations to a working root directory and
// tracks which roots the user has admitted.
package sandbox

import (
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
)

// Within reports whether target equals root or lies below it. Both paths are
// cleaned and compared segment by segment, so /tmp/ws-other is not within
// /tmp/ws.
func Within(root, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Resolve maps p (relative to root, or absolute) to an absolute path inside
// root. Symlinks below root are evaluated as if root were the filesystem
// root, so a link cannot lead outside of it.
func Resolve(root, p string) (string, error) {
	root = filepath.Clean(root)
	rel, err := relWithin(root, p)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return root, nil
	}

	joined, err := securejoin.SecureJoin(root, rel)
	if err != nil {
		return "", NewPathError("resolve", p, err)
	}
	return joined, nil
}

// ResolveEntry is Resolve for operations on the named entry itself. Only the
// parent is evaluated; the final element is joined as is, so a symlink named
// by p is the link and not its target.
func ResolveEntry(root, p string) (string, error) {
	root = filepath.Clean(root)
	rel, err := relWithin(root, p)
	if err != nil {
		return "", err
	}
	if rel == "." {
		return root, nil
	}

	parent := root
	if dir := filepath.Dir(rel); dir != "." {
		parent, err = securejoin.SecureJoin(root, dir)
		if err != nil {
			return "", NewPathError("resolve", p, err)
		}
	}
	return filepath.Join(parent, filepath.Base(rel)), nil
}

// relWithin returns p relative to root after the lexical containment check.
func relWithin(root, p string) (string, error) {
	var abs string
	if filepath.IsAbs(p) {
		abs = filepath.Clean(p)
	} else {
		abs = filepath.Join(root, p)
	}

	if !Within(root, abs) {
		return "", NewPathError("resolve", p, ErrPathEscape)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", NewPathError("resolve", p, ErrPathEscape)
	}
	return rel, nil
}

// Relative returns abs relative to root using forward slashes, the form
// shown to clients in listings.
func Relative(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
