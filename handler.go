package mongolog

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/mongolog/mongolog/pkg/backends"
)

// Handler writes each emitted record to the store immediately, one insert
// per record. Write failures never reach the emitting caller: they are
// swallowed under fail-silently, otherwise delivered to the error handler.
//
// Construction requires a bound store unless fail-silently is configured,
// in which case a nil store is accepted and every emission is a no-op. That
// mirrors the policy for construction-time connectivity failures: connect,
// and on error either give up or hand the handler a nil store.
//
// Example:
//
//	store, err := backends.NewMongoStore(ctx, backends.MongoConfig{
//	    Database:   "logs",
//	    Collection: "logs",
//	})
//	if err != nil {
//	    return err
//	}
//	h, err := mongolog.New(store)
type Handler struct {
	store        backends.Store
	formatter    Formatter
	failSilently bool
	errorHandler ErrorHandler
	writeTimeout time.Duration

	closed int32
	stats  counters
}

// Emitter is the common surface of the unbuffered and buffered handlers.
type Emitter interface {
	Emit(r *Record)
}

// New creates an unbuffered handler writing to store.
func New(store backends.Store, opts ...Option) (*Handler, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return newHandler(store, cfg)
}

func newHandler(store backends.Store, cfg *Config) (*Handler, error) {
	if store == nil && !cfg.FailSilently {
		return nil, ErrNoStore
	}
	return &Handler{
		store:        store,
		formatter:    cfg.Formatter,
		failSilently: cfg.FailSilently,
		errorHandler: cfg.ErrorHandler,
		writeTimeout: cfg.WriteTimeout,
	}, nil
}

// Emit formats the record and inserts the resulting document. A failed
// insert is reported through the error handler unless fail-silently is set.
// Emission on a closed handler or an unbound store is a no-op.
func (h *Handler) Emit(r *Record) {
	if h.isClosed() || h.store == nil {
		return
	}
	atomic.AddUint64(&h.stats.emitted, 1)

	doc := h.formatter.Format(r)
	ctx, cancel := h.writeContext()
	defer cancel()
	if err := h.store.InsertOne(ctx, doc); err != nil {
		if !h.failSilently {
			h.reportError(LogError{
				Time:     time.Now(),
				Source:   "emit",
				Message:  "insert failed, document dropped",
				Err:      err,
				Document: doc,
			})
		}
		atomic.AddUint64(&h.stats.dropped, 1)
		return
	}
	atomic.AddUint64(&h.stats.inserted, 1)
}

// Close releases the store. Safe to call when the handler was constructed
// without a store, and safe to call more than once.
func (h *Handler) Close() error {
	if !atomic.CompareAndSwapInt32(&h.closed, 0, 1) {
		return nil
	}
	if h.store == nil {
		return nil
	}
	ctx, cancel := h.writeContext()
	defer cancel()
	if err := h.store.Close(ctx); err != nil {
		return NewHandlerError(ErrCodeStoreClose, "close", err)
	}
	return nil
}

// Metrics returns a snapshot of the handler's counters.
func (h *Handler) Metrics() HandlerMetrics {
	return h.stats.snapshot()
}

// Store returns the bound store, which is nil when construction failed
// silently.
func (h *Handler) Store() backends.Store {
	return h.store
}

func (h *Handler) isClosed() bool {
	return atomic.LoadInt32(&h.closed) == 1
}

func (h *Handler) writeContext() (context.Context, context.CancelFunc) {
	if h.writeTimeout > 0 {
		return context.WithTimeout(context.Background(), h.writeTimeout)
	}
	return context.WithCancel(context.Background())
}

// reportError delivers a write-path failure to the error handler.
func (h *Handler) reportError(le LogError) {
	atomic.AddUint64(&h.stats.reportedErrors, 1)
	if h.errorHandler != nil {
		h.errorHandler(le)
	}
}
