package streamdeck

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

// logSink is where forwarded records go. *Plugin satisfies it.
type logSink interface {
	LogMessage(message string) error
}

type sinkRef struct {
	sink atomic.Pointer[logSink]
}

// LogHandler passes every record to next and also forwards records at or
// above min to the Stream Deck application's log once a plugin is attached.
type LogHandler struct {
	next   slog.Handler
	min    slog.Level
	ref    *sinkRef
	attrs  []slog.Attr
	groups []string
}

// NewLogHandler wraps next.
func NewLogHandler(next slog.Handler, min slog.Level) *LogHandler {
	return &LogHandler{next: next, min: min, ref: &sinkRef{}}
}

// Attach starts forwarding to p. Handlers derived with WithAttrs or WithGroup
// share the attachment.
func (h *LogHandler) Attach(p *Plugin) {
	var s logSink = p
	h.ref.sink.Store(&s)
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min || h.next.Enabled(ctx, level)
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	if h.next.Enabled(ctx, r.Level) {
		err = h.next.Handle(ctx, r)
	}
	if r.Level < h.min {
		return err
	}
	if s := h.ref.sink.Load(); s != nil {
		// Best effort: a failed forward must not log again.
		_ = (*s).LogMessage(h.format(r))
	}
	return err
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	prefixed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		prefixed[i] = slog.Attr{Key: h.prefix() + a.Key, Value: a.Value}
	}
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), prefixed...)
	return &clone
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.next = h.next.WithGroup(name)
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func (h *LogHandler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *LogHandler) format(r slog.Record) string {
	var b strings.Builder
	b.WriteString(r.Level.String())
	b.WriteByte(' ')
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value.Resolve())
	}
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&b, " %s%s=%v", prefix, a.Key, a.Value.Resolve())
		return true
	})
	return b.String()
}
