package mongolog

import "sync/atomic"

// HandlerMetrics is a snapshot of a handler's runtime counters.
type HandlerMetrics struct {
	// Emitted counts records accepted by Emit
	Emitted uint64 `json:"emitted"`

	// Inserted counts documents confirmed written by the store
	Inserted uint64 `json:"inserted"`

	// Flushes counts flush invocations that drained at least one document
	Flushes uint64 `json:"flushes"`

	// BulkFailures counts bulk writes that failed and fell back to
	// per-document inserts
	BulkFailures uint64 `json:"bulk_failures"`

	// Dropped counts documents dropped after a failed write
	Dropped uint64 `json:"dropped"`

	// ReportedErrors counts failures delivered to the error handler
	ReportedErrors uint64 `json:"reported_errors"`
}

// counters holds the handler's atomic counters.
type counters struct {
	emitted        uint64
	inserted       uint64
	flushes        uint64
	bulkFailures   uint64
	dropped        uint64
	reportedErrors uint64
}

func (c *counters) snapshot() HandlerMetrics {
	return HandlerMetrics{
		Emitted:        atomic.LoadUint64(&c.emitted),
		Inserted:       atomic.LoadUint64(&c.inserted),
		Flushes:        atomic.LoadUint64(&c.flushes),
		BulkFailures:   atomic.LoadUint64(&c.bulkFailures),
		Dropped:        atomic.LoadUint64(&c.dropped),
		ReportedErrors: atomic.LoadUint64(&c.reportedErrors),
	}
}
