package sandbox

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	workspace := filepath.Join(home, "ai-file-manager-workspace")
	m, err := NewManager(workspace)
	require.NoError(t, err)
	return m, home
}

func TestNewManagerSeeds(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, "Documents"), 0755))
	extra := t.TempDir()

	workspace := filepath.Join(home, "ai-file-manager-workspace")
	m, err := NewManager(workspace, extra, filepath.Join(home, "missing"))
	require.NoError(t, err)

	assert.Equal(t, workspace, m.WorkingDirectory())
	assert.DirExists(t, workspace)

	roots := m.AllowedRoots()
	assert.Contains(t, roots, home)
	assert.Contains(t, roots, filepath.Join(home, "Documents"))
	assert.Contains(t, roots, workspace)
	assert.Contains(t, roots, extra)
	assert.NotContains(t, roots, filepath.Join(home, "Desktop"))
	assert.NotContains(t, roots, filepath.Join(home, "missing"))
	assert.Equal(t, home, roots[0])
}

func TestSetWorkingDirectory(t *testing.T) {
	m, _ := newTestManager(t)
	target := t.TempDir()

	got, err := m.SetWorkingDirectory(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)
	assert.Equal(t, target, m.WorkingDirectory())
	assert.Contains(t, m.AllowedRoots(), target)
}

func TestSetWorkingDirectoryNotFound(t *testing.T) {
	m, home := newTestManager(t)
	before := m.WorkingDirectory()

	_, err := m.SetWorkingDirectory(filepath.Join(home, "does-not-exist"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, m.WorkingDirectory())
}

func TestSetWorkingDirectoryNotADirectory(t *testing.T) {
	m, home := newTestManager(t)
	before := m.WorkingDirectory()

	file := filepath.Join(home, "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := m.SetWorkingDirectory(file)
	assert.ErrorIs(t, err, ErrNotADirectory)
	assert.Equal(t, before, m.WorkingDirectory())
}

func TestSetWorkingDirectoryInsideExistingRootIsNotReadded(t *testing.T) {
	m, home := newTestManager(t)
	sub := filepath.Join(home, "projects", "demo")
	require.NoError(t, os.MkdirAll(sub, 0755))
	before := len(m.AllowedRoots())

	_, err := m.SetWorkingDirectory(sub)
	require.NoError(t, err)
	assert.Len(t, m.AllowedRoots(), before)
	assert.Equal(t, sub, m.WorkingDirectory())
}

func TestAddAllowedRoot(t *testing.T) {
	m, home := newTestManager(t)
	other := t.TempDir()

	require.NoError(t, m.AddAllowedRoot(other))
	assert.Contains(t, m.AllowedRoots(), other)
	assert.True(t, m.IsAllowed(filepath.Join(other, "child")))
	assert.False(t, m.IsAllowed(other+"-sibling"))

	assert.ErrorIs(t, m.AddAllowedRoot(filepath.Join(home, "nope")), ErrNotFound)
}

func TestOnChange(t *testing.T) {
	m, _ := newTestManager(t)
	target := t.TempDir()

	var got []string
	m.OnChange(func(dir string) {
		got = append(got, dir)
		// listeners run outside the lock
		assert.Equal(t, dir, m.WorkingDirectory())
	})

	_, err := m.SetWorkingDirectory(target)
	require.NoError(t, err)
	_, err = m.SetWorkingDirectory(filepath.Join(target, "missing"))
	require.Error(t, err)

	assert.Equal(t, []string{target}, got)
}

func TestManagerResolveUsesCurrentRoot(t *testing.T) {
	m, _ := newTestManager(t)
	target := t.TempDir()
	_, err := m.SetWorkingDirectory(target)
	require.NoError(t, err)

	got, err := m.Resolve("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(target, "a.txt"), got)
}

func TestManagerConcurrentAccess(t *testing.T) {
	m, _ := newTestManager(t)
	dirs := []string{t.TempDir(), t.TempDir(), t.TempDir()}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = m.SetWorkingDirectory(dirs[i%len(dirs)])
		}(i)
		go func() {
			defer wg.Done()
			_ = m.WithRoot(func(root string) error {
				abs, err := Resolve(root, "file.txt")
				if err == nil {
					assert.Equal(t, filepath.Join(root, "file.txt"), abs)
				}
				return err
			})
		}()
	}
	wg.Wait()
}
