package backends

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// namespaceExistsCode is returned by MongoDB when creating a collection
// that already exists. Capped provisioning treats it as success.
const namespaceExistsCode = 48

const (
	defaultMongoHost      = "localhost"
	defaultMongoPort      = 27017
	defaultConnectTimeout = 5 * time.Second
)

// MongoConfig configures a MongoDB store.
type MongoConfig struct {
	// URI is the full connection string. When empty it is assembled from
	// Host and Port.
	URI  string
	Host string
	Port int

	Database   string
	Collection string

	// Optional credentials. AuthSource defaults to "admin".
	Username   string
	Password   string
	AuthSource string

	// Capped collection provisioning. When Capped is set the collection is
	// created capped with the given document and byte limits; an existing
	// collection is used as-is.
	Capped     bool
	CappedMax  int64
	CappedSize int64

	// ConnectTimeout bounds connection establishment and the liveness ping.
	ConnectTimeout time.Duration

	// Registry, when set, provides a shared client per connection string
	// instead of a dedicated connection per store.
	Registry *Registry
}

func (c *MongoConfig) uri() string {
	if c.URI != "" {
		return c.URI
	}
	host := c.Host
	if host == "" {
		host = defaultMongoHost
	}
	port := c.Port
	if port == 0 {
		port = defaultMongoPort
	}
	return fmt.Sprintf("mongodb://%s:%d", host, port)
}

func (c *MongoConfig) clientOptions() *options.ClientOptions {
	timeout := c.ConnectTimeout
	if timeout == 0 {
		timeout = defaultConnectTimeout
	}
	opts := options.Client().
		ApplyURI(c.uri()).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)
	if c.Username != "" {
		authSource := c.AuthSource
		if authSource == "" {
			authSource = "admin"
		}
		opts.SetAuth(options.Credential{
			Username:   c.Username,
			Password:   c.Password,
			AuthSource: authSource,
		})
	}
	return opts
}

// MongoStore persists log documents to a MongoDB collection.
type MongoStore struct {
	client   *mongo.Client
	coll     *mongo.Collection
	registry *Registry
	uri      string
	target   string

	mu     sync.Mutex
	closed bool

	insertCount uint64
	bulkCount   uint64
	docCount    uint64
	errorCount  uint64
	lastErrorNs int64
}

// NewMongoStore connects to MongoDB, verifies the server is reachable and
// binds the configured collection. A connectivity failure is returned to
// the caller; the fail-silently policy belongs to the handler, which may
// then proceed with a nil store.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" || cfg.Collection == "" {
		return nil, pkgerrors.New("mongo store requires a database and collection name")
	}

	uri := cfg.uri()
	var client *mongo.Client
	var err error
	if cfg.Registry != nil {
		client, err = cfg.Registry.Get(ctx, uri, cfg.clientOptions())
	} else {
		client, err = connectMongo(ctx, cfg.clientOptions())
	}
	if err != nil {
		return nil, err
	}

	store := &MongoStore{
		client:   client,
		registry: cfg.Registry,
		uri:      uri,
		target:   cfg.Database + "." + cfg.Collection,
	}

	db := client.Database(cfg.Database)
	if cfg.Capped {
		if err := provisionCapped(ctx, db, cfg); err != nil {
			_ = store.release(ctx)
			return nil, err
		}
	}
	store.coll = db.Collection(cfg.Collection)
	return store, nil
}

// connectMongo establishes and verifies a dedicated client connection.
func connectMongo(ctx context.Context, opts *options.ClientOptions) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, pkgerrors.Wrap(err, "mongo ping")
	}
	return client, nil
}

// provisionCapped creates the collection capped. An already existing
// collection is left untouched: capped options cannot be applied
// retroactively and overriding an existing capped collection would error
// anyway.
func provisionCapped(ctx context.Context, db *mongo.Database, cfg MongoConfig) error {
	opts := options.CreateCollection().SetCapped(true)
	if cfg.CappedMax > 0 {
		opts.SetMaxDocuments(cfg.CappedMax)
	}
	if cfg.CappedSize > 0 {
		opts.SetSizeInBytes(cfg.CappedSize)
	}
	err := db.CreateCollection(ctx, cfg.Collection, opts)
	if err == nil || isNamespaceExists(err) {
		return nil
	}
	return pkgerrors.Wrap(err, "create capped collection")
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	if pkgerrors.As(err, &cmdErr) {
		return cmdErr.Code == namespaceExistsCode || cmdErr.Name == "NamespaceExists"
	}
	return false
}

// InsertOne persists a single document.
func (s *MongoStore) InsertOne(ctx context.Context, doc bson.M) error {
	atomic.AddUint64(&s.insertCount, 1)
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		s.recordError()
		return pkgerrors.Wrap(err, "mongo insert one")
	}
	atomic.AddUint64(&s.docCount, 1)
	return nil
}

// InsertMany persists a batch in a single ordered bulk insert. On error the
// whole batch must be treated as failed by the caller.
func (s *MongoStore) InsertMany(ctx context.Context, docs []bson.M) error {
	atomic.AddUint64(&s.bulkCount, 1)
	batch := make([]interface{}, len(docs))
	for i, doc := range docs {
		batch[i] = doc
	}
	if _, err := s.coll.InsertMany(ctx, batch, options.InsertMany().SetOrdered(true)); err != nil {
		s.recordError()
		return pkgerrors.Wrap(err, "mongo insert many")
	}
	atomic.AddUint64(&s.docCount, uint64(len(docs)))
	return nil
}

// Close releases the client. A dedicated client is disconnected; a
// registry-provided client is released back to the registry, which owns its
// lifecycle. Safe to call more than once.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.release(ctx)
}

func (s *MongoStore) release(ctx context.Context) error {
	if s.registry != nil {
		s.registry.Release(s.uri)
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return pkgerrors.Wrap(err, "mongo disconnect")
	}
	return nil
}

func (s *MongoStore) recordError() {
	atomic.AddUint64(&s.errorCount, 1)
	atomic.StoreInt64(&s.lastErrorNs, time.Now().UnixNano())
}

// Stats returns store statistics.
func (s *MongoStore) Stats() StoreStats {
	stats := StoreStats{
		Target:        s.target,
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
