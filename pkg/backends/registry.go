package backends

import (
	"context"
	"sync"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Registry shares MongoDB clients between stores. One client is opened per
// connection string and reference-counted; released clients stay cached so
// later handlers reuse the connection. The registry is an explicit object
// owned by the application, which decides when CloseAll runs. Multiple
// handlers writing to the same server through one registry share a single
// connection pool instead of each opening their own.
type Registry struct {
	mu      sync.Mutex
	clients map[string]*registryEntry
}

type registryEntry struct {
	client *mongo.Client
	refs   int
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*registryEntry)}
}

// Get returns the shared client for the given connection string, dialing it
// on first use. Every successful Get must be paired with a Release.
func (r *Registry) Get(ctx context.Context, uri string, opts *options.ClientOptions) (*mongo.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.clients[uri]; ok {
		entry.refs++
		return entry.client, nil
	}

	client, err := connectMongo(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.clients[uri] = &registryEntry{client: client, refs: 1}
	return client, nil
}

// Release returns a client obtained from Get. The connection is kept cached
// even at zero references; CloseAll disposes of it.
func (r *Registry) Release(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.clients[uri]; ok && entry.refs > 0 {
		entry.refs--
	}
}

// Len returns the number of cached clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// CloseAll disconnects every cached client. The registry is empty and
// reusable afterwards. The first disconnect error is returned; all clients
// are disconnected regardless.
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*registryEntry)
	r.mu.Unlock()

	var firstErr error
	for uri, entry := range clients {
		if err := entry.client.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = pkgerrors.Wrapf(err, "disconnect %s", uri)
		}
	}
	return firstErr
}
