package mongolog

import (
	"errors"
	"fmt"
	"time"
)

// Common errors returned by handler operations
var (
	// ErrHandlerClosed is returned when using a handler after Close/Destroy
	ErrHandlerClosed = errors.New("handler is closed")

	// ErrNoStore is returned at construction when no store is bound and
	// fail-silently was not requested
	ErrNoStore = errors.New("no store bound")
)

// ErrorCode identifies the class of a handler error
type ErrorCode int

const (
	// ErrCodeUnknown represents an unclassified error
	ErrCodeUnknown ErrorCode = iota

	// Configuration errors
	ErrCodeInvalidConfig
	ErrCodeInvalidLevel

	// Lifecycle errors
	ErrCodeStoreClose
)

// HandlerError is a structured error with operation context
type HandlerError struct {
	Code    ErrorCode
	Op      string // Operation that failed (e.g., "emit", "flush", "close")
	Err     error  // Underlying error
	Time    time.Time
	Context map[string]interface{} // Additional context
}

// NewHandlerError creates a structured handler error
func NewHandlerError(code ErrorCode, op string, err error) *HandlerError {
	return &HandlerError{
		Code: code,
		Op:   op,
		Err:  err,
		Time: time.Now(),
	}
}

// WithContext attaches a contextual key/value pair to the error
func (e *HandlerError) WithContext(key string, value interface{}) *HandlerError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface
func (e *HandlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s operation failed: %v",
			e.Time.Format("2006-01-02 15:04:05"), e.Op, e.Err)
	}
	return fmt.Sprintf("[%s] %s operation failed", e.Time.Format("2006-01-02 15:04:05"), e.Op)
}

// Unwrap returns the underlying error
func (e *HandlerError) Unwrap() error {
	return e.Err
}
