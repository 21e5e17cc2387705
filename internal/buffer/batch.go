// Package buffer provides the lock-guarded document batch underlying the
// buffered handler. A single mutex guards the append, the length check used
// for trigger evaluation, and the drain-and-replace step, so a drain never
// observes a half-appended batch and two drains never share documents.
package buffer

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// DocumentBatch accumulates formatted documents awaiting a batched write.
type DocumentBatch struct {
	mu       sync.Mutex
	docs     []bson.M
	capacity int
	last     interface{} // most recently appended record, for diagnostics
}

// New creates an empty batch. The capacity is advisory: it sizes the
// backing slice and is reported back by Append for trigger evaluation, but
// the batch itself never refuses an append.
func New(capacity int) *DocumentBatch {
	if capacity <= 0 {
		capacity = 1
	}
	return &DocumentBatch{
		docs:     make([]bson.M, 0, capacity),
		capacity: capacity,
	}
}

// Append adds a document under the batch lock, retaining rec as the last
// appended record, and returns the resulting length. The returned length is
// consistent with the append, so callers may evaluate flush triggers on it
// without re-acquiring the lock.
func (b *DocumentBatch) Append(doc bson.M, rec interface{}) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = rec
	b.docs = append(b.docs, doc)
	return len(b.docs)
}

// Len returns the current number of buffered documents.
func (b *DocumentBatch) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.docs)
}

// Capacity returns the advisory capacity the batch was created with.
func (b *DocumentBatch) Capacity() int {
	return b.capacity
}

// Drain atomically takes the buffered documents and replaces the batch with
// a fresh empty one, returning the snapshot together with the last appended
// record. Concurrent drains receive disjoint snapshots; a drain of an empty
// batch returns a nil slice.
func (b *DocumentBatch) Drain() ([]bson.M, interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.docs) == 0 {
		return nil, b.last
	}
	docs := b.docs
	b.docs = make([]bson.M, 0, b.capacity)
	return docs, b.last
}
