package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		" debug ": LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"ERROR":   LevelError,
		"none":    LevelNone,
		"off":     LevelNone,
		"invalid": LevelInfo,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseLevel(input), input)
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "NONE", LevelNone.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "aifm.log")

	l, err := New(LevelInfo, logPath, "files")
	require.NoError(t, err)
	l.Info("created %s", "a.txt")
	l.Debug("should not appear")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[INFO] [files] created a.txt")
	assert.NotContains(t, string(content), "should not appear")
}

func TestWithPrefixSharesSink(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWriter(LevelInfo, &buf, "ai")
	child := parent.WithPrefix("agent")

	child.Info("hello")
	assert.Contains(t, buf.String(), "[ai:agent] hello")

	parent.SetLevel(LevelError)
	child.Warn("quiet")
	assert.NotContains(t, buf.String(), "quiet")

	require.NoError(t, parent.Close())
	child.Error("after close")
	assert.NotContains(t, buf.String(), "after close")
}

func TestDisabledLogger(t *testing.T) {
	l, err := New(LevelNone, "", "test")
	require.NoError(t, err)

	l.Error("nothing")
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close())
}

func TestStderrLogger(t *testing.T) {
	l, err := New(LevelInfo, StderrPath, "")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, l.GetLevel())
	assert.NoError(t, l.Close())
}

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(LevelDebug, &buf, "http")

	std := StdLogger(l, slog.LevelError)
	std.Printf("http: TLS handshake error from %s", "127.0.0.1")

	assert.Contains(t, buf.String(), "[ERROR] [http] http: TLS handshake error from 127.0.0.1")
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	sl := slog.New(NewSlogHandler(NewWriter(LevelDebug, &buf, "")))

	sl.With("dir", "/tmp").WithGroup("req").Warn("listing", "count", 3, slog.Group("user", "id", 7))

	assert.Contains(t, buf.String(), "[WARN] listing dir=/tmp req.count=3 req.user.id=7")
}

func TestInitReplacesGlobal(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "global.log")
	require.NoError(t, Init(LevelDebug, logPath))
	Info("hello %s", "global")
	require.NoError(t, Init(LevelNone, ""))

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello global")

	// disabled global must not panic
	Debug("debug")
}
