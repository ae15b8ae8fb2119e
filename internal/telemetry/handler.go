// ABOUTME: slog.Handler adapter that feeds ordinary application logs into the pipeline.
// ABOUTME: Attributes become top-level extra fields of the JSON line.

package telemetry

import (
	"context"
	"log/slog"
	"strings"
)

// Handler is a slog.Handler writing records as Events to an Emitter.
type Handler struct {
	emitter Emitter
	name    string
	level   slog.Leveler
	attrs   []slog.Attr
	groups  []string
}

// NewHandler returns a Handler that logs under the given logger name.
// Records below level are dropped before reaching the emitter.
func NewHandler(emitter Emitter, name string, level slog.Leveler) *Handler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{emitter: emitter, name: name, level: level}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	extra := make(map[string]any, len(h.attrs)+r.NumAttrs())
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range h.attrs {
		addAttr(extra, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(extra, prefix, a)
		return true
	})

	h.emitter.Emit(Event{
		Time:    r.Time,
		Level:   FromSlogLevel(r.Level),
		Logger:  h.name,
		Message: r.Message,
		Extra:   extra,
	})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	for _, a := range attrs {
		a.Key = prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

// WithGroup implements slog.Handler.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string{}, h.groups...), name)
	return &h2
}

func addAttr(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if a.Key == "" && v.Kind() != slog.KindGroup {
		return
	}
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range v.Group() {
			addAttr(dst, p, ga)
		}
		return
	}

	switch v.Kind() {
	case slog.KindDuration:
		dst[prefix+a.Key] = v.Duration().String()
	case slog.KindTime:
		dst[prefix+a.Key] = v.Time().UTC().Format(TimestampLayout)
	default:
		val := v.Any()
		if err, ok := val.(error); ok {
			val = err.Error()
		}
		dst[prefix+a.Key] = val
	}
}

// FromSlogLevel maps slog levels onto the pipeline's levels.
func FromSlogLevel(l slog.Level) Level {
	switch {
	case l >= slog.LevelError+4:
		return LevelCritical
	case l >= slog.LevelError:
		return LevelError
	case l >= slog.LevelWarn:
		return LevelWarning
	case l >= slog.LevelInfo:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// SlogLevel maps a pipeline level onto slog.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l >= LevelCritical:
		return slog.LevelError + 4
	case l >= LevelError:
		return slog.LevelError
	case l >= LevelWarning:
		return slog.LevelWarn
	case l >= LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
