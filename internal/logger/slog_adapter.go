package logger

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
)

// StdLogger adapts l to a *log.Logger whose lines are logged at level.
// net/http uses it for http.Server.ErrorLog.
func StdLogger(l *Logger, level slog.Level) *log.Logger {
	if l == nil {
		l = Global()
	}
	return slog.NewLogLogger(NewSlogHandler(l), level)
}

// NewSlogHandler returns a slog.Handler that forwards records to l.
// Attributes are appended to the message as key=value pairs, with group
// names joined by dots.
func NewSlogHandler(l *Logger) slog.Handler {
	if l == nil {
		return nil
	}
	return &slogHandler{log: l}
}

type slogHandler struct {
	log *Logger
	// pre-rendered attributes from WithAttrs
	attrs []string
	group string
}

func toLevel(level slog.Level) Level {
	switch {
	case level >= slog.LevelError:
		return LevelError
	case level >= slog.LevelWarn:
		return LevelWarn
	case level >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

func (h *slogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.log.sink.enabled(toLevel(level))
}

func (h *slogHandler) Handle(_ context.Context, record slog.Record) error {
	parts := []string{strings.TrimRight(record.Message, "\n")}
	parts = append(parts, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		parts = appendAttr(parts, h.group, a)
		return true
	})
	if parts[0] == "" {
		parts = parts[1:]
	}

	h.log.log(toLevel(record.Level), "%s", strings.Join(parts, " "))
	return nil
}

func (h *slogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &slogHandler{log: h.log, group: h.group, attrs: append([]string(nil), h.attrs...)}
	for _, a := range attrs {
		next.attrs = appendAttr(next.attrs, h.group, a)
	}
	return next
}

func (h *slogHandler) WithGroup(name string) slog.Handler {
	return &slogHandler{log: h.log, attrs: h.attrs, group: joinKey(h.group, name)}
}

func appendAttr(parts []string, group string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return parts
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, nested := range a.Value.Group() {
			parts = appendAttr(parts, joinKey(group, a.Key), nested)
		}
		return parts
	}
	key := a.Key
	if key == "" {
		key = "attr"
	}
	return append(parts, fmt.Sprintf("%s=%v", joinKey(group, key), a.Value))
}

func joinKey(group, key string) string {
	switch {
	case group == "":
		return key
	case key == "":
		return group
	default:
		return group + "." + key
	}
}
