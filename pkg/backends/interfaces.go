// Package backends contains the storage collaborators log handlers write
// to. A backend exposes single and bulk document inserts; the handler core
// treats any bulk failure as "the whole batch failed" and decides itself
// whether to fall back to per-document writes.
package backends

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is the storage collaborator contract for log handlers.
type Store interface {
	// InsertOne persists a single document
	InsertOne(ctx context.Context, doc bson.M) error

	// InsertMany persists a batch of documents. Implementations may apply
	// all-or-nothing semantics; callers must treat any error as a failure
	// of the whole batch.
	InsertMany(ctx context.Context, docs []bson.M) error

	// Close releases the underlying connection
	Close(ctx context.Context) error

	// Stats returns store statistics
	Stats() StoreStats
}

// StoreStats represents statistics for a store
type StoreStats struct {
	Target        string    // collection, subject or other destination name
	InsertCount   uint64    // single-document inserts attempted
	BulkCount     uint64    // bulk inserts attempted
	DocumentCount uint64    // documents successfully persisted
	ErrorCount    uint64    // failed operations
	LastError     time.Time // time of the most recent failure
}
