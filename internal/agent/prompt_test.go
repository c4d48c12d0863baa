package agent

import (
	"fmt"
	"strings"
	"testing"

	"github.com/codefionn/aifm/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPromptDefaults(t *testing.T) {
	prompt, err := BuildPrompt("make a file", "/work", "", nil, nil, 10)
	require.NoError(t, err)

	assert.Contains(t, prompt, "- Working directory: /work")
	assert.Contains(t, prompt, "- Current directory: root")
	assert.Contains(t, prompt, "- Current files: []")
	assert.NotContains(t, prompt, "Selected items")
	assert.Contains(t, prompt, `USER REQUEST: "make a file"`)
	assert.True(t, strings.HasSuffix(prompt, "NO ADDITIONAL TEXT."))
}

func TestBuildPromptTruncatesListing(t *testing.T) {
	var files []fs.FileEntry
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("f%d.txt", i)
		files = append(files, fs.FileEntry{Name: name, Type: fs.KindFile, Path: name})
	}

	prompt, err := BuildPrompt("hi", "/work", "sub", files, []string{"sub/f0.txt"}, 2)
	require.NoError(t, err)

	assert.Contains(t, prompt, `"name":"f1.txt"`)
	assert.NotContains(t, prompt, `"name":"f2.txt"`)
	assert.Contains(t, prompt, `- Selected items: ["sub/f0.txt"]`)
}
