package mongolog

import (
	"context"
	"log/slog"
	"runtime"
	"strconv"
)

// SlogHandler adapts a mongolog handler to log/slog, letting an application
// route its standard structured logging into the store.
//
//	h, _ := mongolog.NewBuffered(store)
//	logger := slog.New(mongolog.NewSlogHandler(h, mongolog.LevelInfo))
type SlogHandler struct {
	emitter Emitter
	level   Level
	attrs   []slog.Attr
	group   string
}

// NewSlogHandler wraps emitter in a slog.Handler that forwards records at
// or above the given level.
func NewSlogHandler(emitter Emitter, level Level) *SlogHandler {
	return &SlogHandler{
		emitter: emitter,
		level:   level,
	}
}

// Enabled reports whether records at the given level are forwarded.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevel(level) >= s.level
}

// Handle converts the slog record into a Record and emits it. Attributes
// become extras; an attribute holding an error becomes the record's error.
func (s *SlogHandler) Handle(_ context.Context, record slog.Record) error {
	r := &Record{
		Time:    record.Time,
		Level:   slogLevel(record.Level),
		Message: record.Message,
		Thread:  goroutineID(),
	}
	r.ThreadName = "goroutine-" + strconv.FormatInt(r.Thread, 10)

	if record.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
		r.FileName = frame.File
		r.LineNumber = frame.Line
		r.Method = frame.Function
		r.Module = moduleName(frame.File)
	}

	for _, a := range s.attrs {
		s.addAttr(r, a)
	}
	record.Attrs(func(a slog.Attr) bool {
		s.addAttr(r, a)
		return true
	})

	s.emitter.Emit(r)
	return nil
}

func (s *SlogHandler) addAttr(r *Record, a slog.Attr) {
	if err, ok := a.Value.Any().(error); ok && r.Err == nil {
		r.Err = err
		return
	}
	key := a.Key
	if s.group != "" {
		key = s.group + "." + key
	}
	if r.Extras == nil {
		r.Extras = make(map[string]interface{})
	}
	r.Extras[key] = a.Value.Any()
}

// WithAttrs returns a handler that includes attrs on every record.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(s.attrs), len(s.attrs)+len(attrs))
	copy(merged, s.attrs)
	merged = append(merged, attrs...)
	return &SlogHandler{
		emitter: s.emitter,
		level:   s.level,
		attrs:   merged,
		group:   s.group,
	}
}

// WithGroup returns a handler that prefixes attribute keys with name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	group := name
	if s.group != "" {
		group = s.group + "." + name
	}
	return &SlogHandler{
		emitter: s.emitter,
		level:   s.level,
		attrs:   s.attrs,
		group:   group,
	}
}

// slogLevel maps slog levels onto the handler's level scale. Levels above
// slog.LevelError map to CRITICAL.
func slogLevel(l slog.Level) Level {
	switch {
	case l < slog.LevelInfo:
		return LevelDebug
	case l < slog.LevelWarn:
		return LevelInfo
	case l < slog.LevelError:
		return LevelWarning
	case l < slog.LevelError+4:
		return LevelError
	default:
		return LevelCritical
	}
}
