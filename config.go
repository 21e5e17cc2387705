package mongolog

import (
	"time"
)

const (
	defaultBufferSize    = 100
	defaultFlushInterval = 5 * time.Second
	defaultWriteTimeout  = 5 * time.Second
)

// Config contains all configuration options for a handler. A Config is
// consumed at construction time and is immutable thereafter.
type Config struct {
	// Formatting
	Formatter Formatter // Record-to-document formatter

	// Buffering (BufferedHandler only)
	BufferSize      int           // Buffered documents before a size-triggered flush
	FlushInterval   time.Duration // Periodic flush interval (0 disables the timer)
	EarlyFlushLevel Level         // Records at or above this level force a flush

	// Error handling
	FailSilently bool         // Swallow connectivity and write errors
	ErrorHandler ErrorHandler // Side channel for write-path failures

	// WriteTimeout bounds each storage call issued by the handler.
	WriteTimeout time.Duration

	// set when WithErrorHandler was applied, so fail-silently only
	// replaces the default reporter
	explicitErrorHandler bool
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Formatter:       NewDocumentFormatter(),
		BufferSize:      defaultBufferSize,
		FlushInterval:   defaultFlushInterval,
		EarlyFlushLevel: LevelCritical,
		FailSilently:    false,
		ErrorHandler:    StderrErrorHandler,
		WriteTimeout:    defaultWriteTimeout,
	}
}
