// Package registry tracks the single live connection of every connected
// identity.
package registry

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/prometheus/client_golang/prometheus"
)

// Connection is a live channel bound to one identity. Implementations must
// be comparable (pointer types) and Close must not block.
type Connection interface {
	ID() string
	Identity() string
	// Send queues env for delivery. An error means it will not be delivered.
	Send(env protocol.Envelope) error
	// Close tears the connection down; reason selects the close frame.
	Close(reason error)
}

// Registry maps identities to connections. Mutations are serialized and
// lookups never observe a half-applied supersession.
type Registry struct {
	mu      sync.RWMutex
	conns   map[string]Connection
	logger  logging.Logger
	metrics *registryMetrics
}

func New(l logging.Logger, reg prometheus.Registerer) *Registry {
	return &Registry{
		conns:   make(map[string]Connection),
		logger:  l.With("module", "registry"),
		metrics: newRegistryMetrics(reg),
	}
}

// Register binds c to identity. A previously registered connection for the
// same identity is closed with common.ErrConnectionSuperseded before the
// lock is released.
func (r *Registry) Register(identity string, c Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.conns[identity]
	r.conns[identity] = c

	if ok && prev == c {
		return
	}
	if ok {
		prev.Close(common.ErrConnectionSuperseded)
		r.metrics.superseded()
		r.logger.Info(context.Background(), "connection superseded",
			"identity", identity, "old_conn", prev.ID(), "new_conn", c.ID())
		return
	}
	r.metrics.setActive(len(r.conns))
	r.logger.Debug(context.Background(), "connection registered", "identity", identity, "conn_id", c.ID())
}

func (r *Registry) Lookup(identity string) (Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conns[identity]
	return c, ok
}

// Unregister removes identity only while c is still the registered
// connection, so a late teardown cannot evict its successor.
func (r *Registry) Unregister(identity string, c Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.conns[identity]
	if !ok || cur != c {
		return false
	}
	delete(r.conns, identity)
	r.metrics.setActive(len(r.conns))
	r.logger.Debug(context.Background(), "connection unregistered", "identity", identity, "conn_id", c.ID())
	return true
}

// IsOnline reports whether identity has a registered connection.
func (r *Registry) IsOnline(identity string) bool {
	_, ok := r.Lookup(identity)
	return ok
}

// Identities returns the connected identities in ascending order.
func (r *Registry) Identities() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.conns))
	for id := range r.conns {
		out = append(out, id)
	}
	r.mu.RUnlock()

	slices.Sort(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// CloseAll closes every registered connection with reason. Entries are
// removed by the connections' own teardown.
func (r *Registry) CloseAll(reason error) {
	r.mu.RLock()
	conns := make([]Connection, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		c.Close(reason)
	}
}
