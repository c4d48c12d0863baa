package agent

import (
	"encoding/json"
	"testing"

	"github.com/codefionn/aifm/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReplyParsed(t *testing.T) {
	text := `{
		"type": "structure",
		"message": "Creating a Go project",
		"action": {
			"operation": "create_structure",
			"structure": {"cmd": {"main.go": "package main"}, "go.mod": "module x"},
			"basePath": "proj"
		}
	}`

	result := ParseReply(text)
	parsed, ok := result.(Parsed)
	require.True(t, ok, "got %T", result)

	reply := parsed.AsReply()
	assert.Equal(t, "structure", reply.Type)
	require.NotNil(t, reply.Action)
	assert.Equal(t, OpCreateStructure, reply.Action.Operation)
	assert.Equal(t, "proj", reply.Action.BasePath)

	entries := reply.Action.Structure.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "cmd", entries[0].Name)
	assert.True(t, entries[0].IsFolder())
	assert.Equal(t, "go.mod", entries[1].Name)
}

func TestParseReplyUnstructured(t *testing.T) {
	for _, text := range []string{"", "just words", `{"message": "no type"}`, `{"type": "info", "message": ""}`} {
		result := ParseReply(text)
		u, ok := result.(Unstructured)
		require.True(t, ok, "text %q gave %T", text, result)
		assert.Error(t, u.Err)
		assert.Equal(t, "info", u.AsReply().Type)
	}
}

func TestUnstructuredEmptyText(t *testing.T) {
	reply := Unstructured{}.AsReply()
	assert.Equal(t, "I encountered an issue processing your request.", reply.Message)
}

func TestTargetsAcceptsString(t *testing.T) {
	var a Action
	require.NoError(t, json.Unmarshal([]byte(`{"operation": "delete", "targets": "old.txt"}`), &a))
	assert.Equal(t, Targets{"old.txt"}, a.Targets)

	require.NoError(t, json.Unmarshal([]byte(`{"operation": "delete", "targets": ["a", "b"]}`), &a))
	assert.Equal(t, Targets{"a", "b"}, a.Targets)

	assert.Error(t, json.Unmarshal([]byte(`{"targets": 3}`), &a))
}

func TestActionMarshalKeepsStructureOrder(t *testing.T) {
	a := Action{
		Operation: OpCreateStructure,
		Structure: fs.NewStructure(fs.File("z.txt", "z"), fs.Folder("a")),
	}
	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation":"create_structure","structure":{"z.txt":"z","a":{}}}`, string(data))
	assert.Contains(t, string(data), `{"z.txt":"z","a":{}}`)
}
