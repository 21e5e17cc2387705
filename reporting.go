package mongolog

import (
	"fmt"
	"os"
	"time"
)

// LogError describes a failure inside the write path. Failures are never
// returned to the code that emitted the record; they are delivered to the
// configured ErrorHandler instead.
type LogError struct {
	Time     time.Time
	Source   string // "emit", "flush", "close"
	Message  string
	Err      error
	Document Document               // the document involved, if any
	Context  map[string]interface{} // additional diagnostic context
}

// ErrorHandler receives write-path failures. Implementations must not call
// back into the handler that reported the error.
type ErrorHandler func(LogError)

// Error returns the string representation of the LogError
func (le LogError) Error() string {
	s := fmt.Sprintf("[%s] %s error: %s",
		le.Time.Format("2006-01-02 15:04:05"), le.Source, le.Message)
	if le.Err != nil {
		s += fmt.Sprintf(" - %v", le.Err)
	}
	for key, value := range le.Context {
		s += fmt.Sprintf("\n%s: %v", key, value)
	}
	if le.Document != nil {
		s += fmt.Sprintf("\ndocument: %v", le.Document)
	}
	return s
}

// Predefined error handlers

// StderrErrorHandler writes errors to stderr (default behavior)
func StderrErrorHandler(err LogError) {
	fmt.Fprintf(os.Stderr, "%s\n", err.Error())
}

// SilentErrorHandler discards all errors
func SilentErrorHandler(LogError) {}

// ChannelErrorHandler returns an error handler that sends errors to a
// channel without blocking. Errors are dropped when the channel is full.
func ChannelErrorHandler(ch chan<- LogError) ErrorHandler {
	return func(err LogError) {
		select {
		case ch <- err:
		default:
		}
	}
}
