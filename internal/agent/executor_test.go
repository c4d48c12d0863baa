package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/codefionn/aifm/internal/fs"
	"github.com/codefionn/aifm/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	mgr, err := sandbox.NewManager(root)
	require.NoError(t, err)
	return NewExecutor(fs.NewService(mgr)), root
}

func TestExecuteCreateFolder(t *testing.T) {
	e, root := newTestExecutor(t)

	res, err := e.Execute(context.Background(), &Action{Operation: OpCreateFolder, Targets: Targets{"New Project"}})
	require.NoError(t, err)
	assert.Equal(t, "Folder created successfully: "+filepath.Join(root, "New Project"), res["message"])
	assert.DirExists(t, filepath.Join(root, "New Project"))
}

func TestExecuteDelete(t *testing.T) {
	e, root := newTestExecutor(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), nil, 0644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0755))

	res, err := e.Execute(context.Background(), &Action{Operation: OpDelete, Targets: Targets{"a.txt", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "Successfully deleted: a.txt, b", res["message"])
	assert.NoFileExists(t, filepath.Join(root, "a.txt"))
	assert.NoDirExists(t, filepath.Join(root, "b"))
}

func TestExecuteCreateStructure(t *testing.T) {
	e, root := newTestExecutor(t)
	spec := fs.NewStructure(
		fs.Folder("src", fs.File("main.go", "package main")),
		fs.File("README.md", "# demo"),
	)

	res, err := e.Execute(context.Background(), &Action{Operation: OpCreateStructure, Structure: spec, BasePath: "demo"})
	require.NoError(t, err)
	assert.Equal(t, "Project structure created with 3 items in "+root, res["message"])

	data, err := os.ReadFile(filepath.Join(root, "demo", "src", "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))
}

func TestExecuteList(t *testing.T) {
	e, root := newTestExecutor(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "x.txt"), nil, 0644))

	res, err := e.Execute(context.Background(), &Action{Operation: OpList})
	require.NoError(t, err)
	assert.Equal(t, "Found 1 items in current directory", res["message"])
	items, ok := res["items"].([]fs.FileEntry)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "x.txt", items[0].Name)
}

func TestExecuteUnknownOperation(t *testing.T) {
	e, _ := newTestExecutor(t)

	res, err := e.Execute(context.Background(), &Action{Operation: "rename"})
	require.NoError(t, err)
	assert.Equal(t, "Action 'rename' completed", res["message"])
	assert.Equal(t, "Action type not fully implemented yet", res["note"])
}

func TestExecuteMissingArguments(t *testing.T) {
	e, _ := newTestExecutor(t)

	tests := []struct {
		action *Action
		want   string
	}{
		{nil, "no action given"},
		{&Action{Operation: OpCreateFile}, "no file path specified"},
		{&Action{Operation: OpCreateFolder}, "no folder path specified"},
		{&Action{Operation: OpDelete}, "no targets specified for deletion"},
		{&Action{Operation: OpCreateStructure}, "no structure specified"},
	}
	for _, tt := range tests {
		_, err := e.Execute(context.Background(), tt.action)
		assert.EqualError(t, err, tt.want)
	}
}
