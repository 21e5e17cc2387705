package mongolog

import (
	"time"
)

// Option is a functional option for configuring a handler
type Option func(*Config) error

// WithFormatter sets the record-to-document formatter
func WithFormatter(f Formatter) Option {
	return func(c *Config) error {
		if f == nil {
			return NewHandlerError(ErrCodeInvalidConfig, "config", nil).
				WithContext("error", "formatter cannot be nil")
		}
		c.Formatter = f
		return nil
	}
}

// WithBufferSize sets the number of buffered documents that triggers a flush
func WithBufferSize(size int) Option {
	return func(c *Config) error {
		if size <= 0 {
			return NewHandlerError(ErrCodeInvalidConfig, "config", nil).
				WithContext("bufferSize", size)
		}
		c.BufferSize = size
		return nil
	}
}

// WithFlushInterval sets the periodic flush interval. An interval of zero
// disables the periodic flush entirely.
func WithFlushInterval(interval time.Duration) Option {
	return func(c *Config) error {
		if interval < 0 {
			return NewHandlerError(ErrCodeInvalidConfig, "config", nil).
				WithContext("flushInterval", interval)
		}
		c.FlushInterval = interval
		return nil
	}
}

// WithEarlyFlushLevel sets the severity at or above which a single emitted
// record forces an immediate flush regardless of buffer occupancy.
func WithEarlyFlushLevel(level Level) Option {
	return func(c *Config) error {
		if level < LevelDebug || level > LevelCritical {
			return NewHandlerError(ErrCodeInvalidLevel, "config", nil).
				WithContext("level", level)
		}
		c.EarlyFlushLevel = level
		return nil
	}
}

// WithFailSilently suppresses connectivity and write errors. A handler
// constructed with this option accepts a nil store and turns every write
// into a no-op, and its default error handler becomes SilentErrorHandler.
func WithFailSilently() Option {
	return func(c *Config) error {
		c.FailSilently = true
		return nil
	}
}

// WithErrorHandler sets the side channel for write-path failures
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Config) error {
		if h == nil {
			return NewHandlerError(ErrCodeInvalidConfig, "config", nil).
				WithContext("error", "error handler cannot be nil")
		}
		c.ErrorHandler = h
		c.explicitErrorHandler = true
		return nil
	}
}

// WithWriteTimeout bounds each storage call issued by the handler
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return NewHandlerError(ErrCodeInvalidConfig, "config", nil).
				WithContext("writeTimeout", timeout)
		}
		c.WriteTimeout = timeout
		return nil
	}
}

// applyOptions builds the effective config from defaults plus options.
func applyOptions(opts []Option) (*Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	// Fail-silently swaps the default reporter for the silent one, but an
	// explicitly configured handler wins.
	if cfg.FailSilently && !cfg.explicitErrorHandler {
		cfg.ErrorHandler = SilentErrorHandler
	}
	return cfg, nil
}
