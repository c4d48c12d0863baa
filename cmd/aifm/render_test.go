package main

import (
	"bytes"
	"testing"

	"github.com/codefionn/aifm/internal/agent"
	"github.com/stretchr/testify/assert"
)

func TestPrintResponse(t *testing.T) {
	var buf bytes.Buffer
	printResponse(&buf, &agent.Response{
		Type:         "create",
		Message:      "Created **notes.txt**",
		ActionResult: agent.ActionResult{"message": "File created successfully: /w/notes.txt"},
	}, 80)

	out := buf.String()
	assert.Contains(t, out, "[create]")
	assert.Contains(t, out, "notes.txt")
	assert.Contains(t, out, "File created successfully: /w/notes.txt")
}

func TestPrintResponseActionError(t *testing.T) {
	var buf bytes.Buffer
	printResponse(&buf, &agent.Response{
		Type:         "create",
		Message:      "ok",
		ActionResult: agent.ActionResult{"error": "Failed to execute action: boom"},
	}, 80)

	assert.Contains(t, buf.String(), "Failed to execute action: boom")
}
