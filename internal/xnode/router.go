package xnode

import (
	"context"
	"sync"
	"time"
)

// Router resolves a leaf name to its owning Session and performs the request/response exchange, per spec.md §4.5's
// invocation contract.
type Router struct {
	registry *LeafRegistry

	mu       sync.RWMutex
	sessions map[string]*Session

	invokeTimeout time.Duration
}

// NewRouter constructs a Router over registry, bounding every invocation to invokeTimeout.
func NewRouter(registry *LeafRegistry, invokeTimeout time.Duration) *Router {
	return &Router{
		registry:      registry,
		sessions:      make(map[string]*Session),
		invokeTimeout: invokeTimeout,
	}
}

// AddSession registers session so Invoke can route to it.
func (r *Router) AddSession(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// RemoveSession drops session from routing, called on session teardown.
func (r *Router) RemoveSession(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}

// Invoke implements the invocation contract: resolve leafName to a session via the registry, send invoke_func,
// and wait up to the router's configured deadline (or until parent is done, e.g. a Timeout decorator's scope or a
// stop_tree cancellation) for the reply.
func (r *Router) Invoke(parent context.Context, leafName string) Result {
	rec, err := r.registry.Resolve(leafName)
	if err != nil {
		return Failure(LeafUnavailable)
	}

	r.mu.RLock()
	session, ok := r.sessions[rec.SessionID]
	r.mu.RUnlock()
	if !ok {
		return Failure(LeafUnavailable)
	}

	ctx := parent
	if r.invokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.invokeTimeout)
		defer cancel()
	}

	return session.Invoke(ctx, leafName)
}
