package mongolog

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Record is a single log event handed to a handler. It is an external
// input: every field is caller-settable, so hosts that already track their
// own source locations or worker identities can fill the struct directly.
// NewRecord is a convenience constructor for callers that want the current
// call site and goroutine captured automatically.
type Record struct {
	Time       time.Time
	Level      Level
	LoggerName string
	Message    string

	// Source location
	FileName   string // full path of the emitting file
	Module     string // file name without extension
	Method     string // function name, package-qualified
	LineNumber int

	// Emitting goroutine identity
	Thread     int64
	ThreadName string

	// Err, when non-nil, is rendered into the document's exception field.
	Err error

	// Extras are caller-supplied key/value pairs copied into the document.
	Extras map[string]interface{}
}

// NewRecord builds a Record for the caller's location with the current
// goroutine's identity filled in.
func NewRecord(level Level, loggerName, message string) *Record {
	r := &Record{
		Time:       time.Now(),
		Level:      level,
		LoggerName: loggerName,
		Message:    message,
	}
	r.fillCaller(2)
	r.Thread = goroutineID()
	r.ThreadName = "goroutine-" + strconv.FormatInt(r.Thread, 10)
	return r
}

// WithError attaches an error to the record and returns it.
func (r *Record) WithError(err error) *Record {
	r.Err = err
	return r
}

// WithExtra adds a contextual key/value pair to the record and returns it.
func (r *Record) WithExtra(key string, value interface{}) *Record {
	if r.Extras == nil {
		r.Extras = make(map[string]interface{})
	}
	r.Extras[key] = value
	return r
}

// fillCaller captures the source location skip frames up the stack, where
// skip 0 is fillCaller itself.
func (r *Record) fillCaller(skip int) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return
	}
	r.FileName = file
	r.LineNumber = line
	r.Module = moduleName(file)
	if fn := runtime.FuncForPC(pc); fn != nil {
		r.Method = fn.Name()
	}
}

// moduleName derives a module identifier from a source file path.
func moduleName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// goroutineID returns the numeric id of the calling goroutine, parsed from
// the runtime stack header ("goroutine 18 [running]:").
func goroutineID() int64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		if id, err := strconv.ParseInt(string(buf[:i]), 10, 64); err == nil {
			return id
		}
	}
	return -1
}
