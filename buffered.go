package mongolog

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/mongolog/mongolog/internal/buffer"
	"github.com/mongolog/mongolog/pkg/backends"
)

// BufferedHandler accumulates formatted documents and writes them to the
// store in batches. A flush is triggered when the buffer reaches its
// configured size, when a record at or above the early-flush level is
// emitted, when the periodic timer fires, and on shutdown.
//
// A flush first attempts one bulk insert of the drained batch. If the bulk
// insert fails, each document is retried individually; documents that still
// fail are dropped and reported through the error handler, except that
// failures of DEBUG-level documents are not reported. Drained documents are
// never re-queued: delivery is at-most-once and best-effort, so a slow or
// broken store can never wedge the application behind its logging.
type BufferedHandler struct {
	*Handler

	batch           *buffer.DocumentBatch
	bufferSize      int
	earlyFlushLevel Level
	flushInterval   time.Duration

	stop     chan struct{}
	loopDone sync.WaitGroup
	destroy  sync.Once
}

// NewBuffered creates a buffered handler writing to store.
//
// Parameters:
//   - store: The storage collaborator. May be nil under WithFailSilently,
//     in which case flushes no-op while the buffer keeps accepting records.
//   - opts: Functional options; WithBufferSize, WithFlushInterval and
//     WithEarlyFlushLevel control the flush triggers.
//
// Returns:
//   - *BufferedHandler: The handler. Call Destroy (or Close) on shutdown to
//     stop the periodic flush and drain residual documents.
//   - error: Configuration error, or ErrNoStore for a nil store without
//     fail-silently.
func NewBuffered(store backends.Store, opts ...Option) (*BufferedHandler, error) {
	cfg, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	h, err := newHandler(store, cfg)
	if err != nil {
		return nil, err
	}

	bh := &BufferedHandler{
		Handler:         h,
		batch:           buffer.New(cfg.BufferSize),
		bufferSize:      cfg.BufferSize,
		earlyFlushLevel: cfg.EarlyFlushLevel,
		flushInterval:   cfg.FlushInterval,
	}

	if cfg.FlushInterval > 0 {
		bh.stop = make(chan struct{})
		bh.loopDone.Add(1)
		go bh.flushLoop()
	}

	return bh, nil
}

// Emit formats the record and appends the document to the buffer, then
// flushes if the buffer reached capacity or the record's level is at or
// above the early-flush level. The append and the length used for trigger
// evaluation are consistent under the buffer's lock.
func (bh *BufferedHandler) Emit(r *Record) {
	if bh.isClosed() {
		return
	}
	atomic.AddUint64(&bh.stats.emitted, 1)

	doc := bh.formatter.Format(r)
	n := bh.batch.Append(doc, r)

	if n >= bh.bufferSize || r.Level >= bh.earlyFlushLevel {
		bh.Flush()
	}
}

// Flush drains the buffer and writes the drained documents to the store.
// It no-ops when the store is unbound or the buffer is empty, and is safe
// to invoke concurrently: the drain is atomic, so concurrent flushes
// operate on disjoint document sets.
func (bh *BufferedHandler) Flush() {
	if bh.store == nil {
		return
	}
	docs, last := bh.batch.Drain()
	if len(docs) == 0 {
		return
	}
	atomic.AddUint64(&bh.stats.flushes, 1)

	ctx, cancel := bh.writeContext()
	defer cancel()

	bulkErr := bh.store.InsertMany(ctx, docs)
	if bulkErr == nil {
		atomic.AddUint64(&bh.stats.inserted, uint64(len(docs)))
		return
	}
	atomic.AddUint64(&bh.stats.bulkFailures, 1)

	// Bulk write failed: retry each document on its own. Whatever still
	// fails is dropped. DEBUG documents are written and counted like the
	// rest but their failures are not worth a report.
	for _, doc := range docs {
		itemCtx, itemCancel := bh.writeContext()
		err := bh.store.InsertOne(itemCtx, doc)
		itemCancel()
		if err == nil {
			atomic.AddUint64(&bh.stats.inserted, 1)
			continue
		}
		atomic.AddUint64(&bh.stats.dropped, 1)
		if level, _ := doc["level"].(string); level == LevelDebug.String() {
			continue
		}
		le := LogError{
			Time:     time.Now(),
			Source:   "flush",
			Message:  "bulk insert failed and per-document retry failed, document dropped",
			Err:      err,
			Document: doc,
			Context:  map[string]interface{}{"bulkError": bulkErr},
		}
		if last != nil {
			le.Context["lastRecord"] = last
		}
		bh.reportError(le)
	}
}

// flushLoop periodically flushes the buffer until stopped. Flush itself
// no-ops on an empty buffer, so ticks during quiet periods are free.
func (bh *BufferedHandler) flushLoop() {
	defer bh.loopDone.Done()
	ticker := time.NewTicker(bh.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			bh.Flush()
		case <-bh.stop:
			return
		}
	}
}

// Destroy stops the periodic flush, drains residual buffered documents and
// releases the store. Idempotent: repeated calls return nil without
// flushing or writing again.
func (bh *BufferedHandler) Destroy() error {
	var err error
	bh.destroy.Do(func() {
		if bh.stop != nil {
			close(bh.stop)
			bh.loopDone.Wait()
		}
		bh.Flush()
		err = bh.Handler.Close()
	})
	return err
}

// Close is an alias for Destroy so the handler satisfies io.Closer.
func (bh *BufferedHandler) Close() error {
	return bh.Destroy()
}

// BufferedCount returns the number of documents currently awaiting a flush.
func (bh *BufferedHandler) BufferedCount() int {
	return bh.batch.Len()
}
