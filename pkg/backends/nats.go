package backends

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

const defaultNATSFlushTimeout = 2 * time.Second

// NATSConfig configures a NATS store.
type NATSConfig struct {
	// URL is the NATS server URL, e.g. "nats://localhost:4222".
	URL string

	// Subject the documents are published to.
	Subject string

	// Name identifies the connection on the server. Optional.
	Name string

	// FlushTimeout bounds the flush performed after a bulk publish.
	FlushTimeout time.Duration
}

// NATSStore publishes log documents as JSON messages on a NATS subject.
// It satisfies the same Store contract as MongoStore, so the buffered write
// path can feed a message stream instead of a collection. A bulk insert is
// a sequence of publishes followed by a flush; if any step fails the caller
// treats the whole batch as failed, matching the Store contract.
type NATSStore struct {
	conn         *nats.Conn
	subject      string
	flushTimeout time.Duration

	insertCount uint64
	bulkCount   uint64
	docCount    uint64
	errorCount  uint64
	lastErrorNs int64
}

// NewNATSStore connects to the NATS server and binds the subject.
func NewNATSStore(cfg NATSConfig) (*NATSStore, error) {
	if cfg.Subject == "" {
		return nil, pkgerrors.New("nats store requires a subject")
	}
	var opts []nats.Option
	if cfg.Name != "" {
		opts = append(opts, nats.Name(cfg.Name))
	}
	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "nats connect")
	}
	timeout := cfg.FlushTimeout
	if timeout == 0 {
		timeout = defaultNATSFlushTimeout
	}
	return &NATSStore{
		conn:         conn,
		subject:      cfg.Subject,
		flushTimeout: timeout,
	}, nil
}

// InsertOne publishes a single document.
func (s *NATSStore) InsertOne(ctx context.Context, doc bson.M) error {
	atomic.AddUint64(&s.insertCount, 1)
	if err := s.publish(doc); err != nil {
		s.recordError()
		return err
	}
	atomic.AddUint64(&s.docCount, 1)
	return nil
}

// InsertMany publishes each document and flushes the connection.
func (s *NATSStore) InsertMany(ctx context.Context, docs []bson.M) error {
	atomic.AddUint64(&s.bulkCount, 1)
	for _, doc := range docs {
		if err := s.publish(doc); err != nil {
			s.recordError()
			return err
		}
	}
	if err := s.conn.FlushTimeout(s.flushTimeout); err != nil {
		s.recordError()
		return pkgerrors.Wrap(err, "nats flush")
	}
	atomic.AddUint64(&s.docCount, uint64(len(docs)))
	return nil
}

func (s *NATSStore) publish(doc bson.M) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return pkgerrors.Wrap(err, "marshal document")
	}
	if err := s.conn.Publish(s.subject, data); err != nil {
		return pkgerrors.Wrap(err, "nats publish")
	}
	return nil
}

// Close flushes pending publishes and closes the connection.
func (s *NATSStore) Close(ctx context.Context) error {
	if s.conn.IsClosed() {
		return nil
	}
	err := s.conn.FlushTimeout(s.flushTimeout)
	s.conn.Close()
	if err != nil {
		return pkgerrors.Wrap(err, "nats flush on close")
	}
	return nil
}

func (s *NATSStore) recordError() {
	atomic.AddUint64(&s.errorCount, 1)
	atomic.StoreInt64(&s.lastErrorNs, time.Now().UnixNano())
}

// Stats returns store statistics.
func (s *NATSStore) Stats() StoreStats {
	stats := StoreStats{
		Target:        s.subject,
		InsertCount:   atomic.LoadUint64(&s.insertCount),
		BulkCount:     atomic.LoadUint64(&s.bulkCount),
		DocumentCount: atomic.LoadUint64(&s.docCount),
		ErrorCount:    atomic.LoadUint64(&s.errorCount),
	}
	if ns := atomic.LoadInt64(&s.lastErrorNs); ns != 0 {
		stats.LastError = time.Unix(0, ns)
	}
	return stats
}
