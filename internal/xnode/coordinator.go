package xnode

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xnodehq/xnode/internal/transport"
)

// Coordinator ties together the registry, router, tree store, tick engine and control plane into the single
// object a transport.Server hands new connections to, per spec.md §2's component list.
type Coordinator struct {
	Registry *LeafRegistry
	Router   *Router
	Trees    *TreeStore
	Engine   *Engine
	Plane    *ControlPlane

	logger *logrus.Logger
}

// NewCoordinator wires a fresh set of components: registry, router (bounded to invokeTimeout per invocation),
// builder, tree store, engine (ticking Running trees every tickInterval), and the control plane that dispatches
// commands across all of them.
func NewCoordinator(invokeTimeout, tickInterval time.Duration, logger *logrus.Logger) *Coordinator {
	registry := NewLeafRegistry()
	router := NewRouter(registry, invokeTimeout)
	builder := NewBuilder(registry, router)
	trees := NewTreeStore(builder)
	engine := NewEngine(nil, tickInterval, logger)
	plane := NewControlPlane(registry, trees, engine, logger)
	return &Coordinator{
		Registry: registry,
		Router:   router,
		Trees:    trees,
		Engine:   engine,
		Plane:    plane,
		logger:   logger,
	}
}

// OnAccept is the transport.Server callback: it wraps channel in a Session bound to the control plane, registers
// the session with the router, and runs its read loop until the peer disconnects.
func (c *Coordinator) OnAccept(channel transport.Channel) {
	session := NewSession(channel, c.logger, c.Plane.Handle, func(sessionID string) {
		c.Router.RemoveSession(sessionID)
		c.Registry.RemoveSession(sessionID)
	})
	c.Router.AddSession(session)
	go session.Run()
}

// Shutdown cancels every in-flight run_tree and waits for them to unwind, per the ambient graceful-shutdown stack.
func (c *Coordinator) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		c.Engine.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}
