package buffer

import (
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

// TestAppendReturnsConsistentLength verifies the length returned by Append
// reflects the append it performed.
func TestAppendReturnsConsistentLength(t *testing.T) {
	b := New(4)
	for i := 1; i <= 3; i++ {
		if n := b.Append(bson.M{"i": i}, nil); n != i {
			t.Errorf("Append returned %d, want %d", n, i)
		}
	}
	if b.Len() != 3 {
		t.Errorf("Len = %d, want 3", b.Len())
	}
}

// TestDrainReplacesBuffer verifies drain-and-replace semantics
func TestDrainReplacesBuffer(t *testing.T) {
	b := New(4)
	b.Append(bson.M{"n": 1}, "first")
	b.Append(bson.M{"n": 2}, "second")

	docs, last := b.Drain()
	if len(docs) != 2 {
		t.Fatalf("drained %d documents, want 2", len(docs))
	}
	if last != "second" {
		t.Errorf("last record = %v, want second", last)
	}
	if b.Len() != 0 {
		t.Errorf("batch not empty after drain: %d", b.Len())
	}

	// A fresh drain returns nothing.
	docs, _ = b.Drain()
	if docs != nil {
		t.Errorf("drain of empty batch returned %v", docs)
	}

	// The batch keeps working after a drain.
	if n := b.Append(bson.M{"n": 3}, nil); n != 1 {
		t.Errorf("append after drain returned %d, want 1", n)
	}
}

// TestAppendBeyondCapacity verifies capacity is advisory only
func TestAppendBeyondCapacity(t *testing.T) {
	b := New(2)
	for i := 0; i < 10; i++ {
		b.Append(bson.M{"i": i}, nil)
	}
	if b.Len() != 10 {
		t.Errorf("Len = %d, want 10", b.Len())
	}
	if b.Capacity() != 2 {
		t.Errorf("Capacity = %d, want 2", b.Capacity())
	}
}

// TestConcurrentAppendAndDrain verifies no document is lost or duplicated
// when appends race with drains.
func TestConcurrentAppendAndDrain(t *testing.T) {
	const writers = 8
	const perWriter = 200

	b := New(16)
	var wg sync.WaitGroup
	var drained sync.Map
	done := make(chan struct{})

	// Draining competitor.
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				docs, _ := b.Drain()
				for _, doc := range docs {
					drained.Store(doc["id"], struct{}{})
				}
			}
		}
	}()

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				b.Append(bson.M{"id": w*perWriter + i}, nil)
			}
		}(w)
	}
	wg.Wait()
	close(done)

	// Final drain picks up anything the competitor missed.
	docs, _ := b.Drain()
	for _, doc := range docs {
		drained.Store(doc["id"], struct{}{})
	}

	count := 0
	drained.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	if count != writers*perWriter {
		t.Errorf("drained %d unique documents, want %d", count, writers*perWriter)
	}
}
