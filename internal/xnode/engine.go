package xnode

import (
	"context"
	"sync"
	"time"

	opentracing "github.com/opentracing/opentracing-go"
	otlog "github.com/opentracing/opentracing-go/log"
	"github.com/sirupsen/logrus"

	"github.com/xnodehq/xnode/behaviortree"
)

// Engine drives a Tree's root node to completion, ticking it repeatedly while it returns Running, per spec.md
// §2's Tick Engine and grounded on littlealbert's Run loop (per-tick opentracing span, tickRate between Running
// outer ticks, Failure on parent cancellation/deadline).
type Engine struct {
	manager      behaviortree.Manager
	tracer       opentracing.Tracer
	tickInterval time.Duration
	logger       *logrus.Logger
}

// NewEngine constructs an Engine. tracer defaults to a no-op tracer if nil, consistent with littlealbert's
// defaultTracer. tickInterval bounds how long a Running result's next outer tick waits before re-ticking.
func NewEngine(tracer opentracing.Tracer, tickInterval time.Duration, logger *logrus.Logger) *Engine {
	if tracer == nil {
		tracer = opentracing.NoopTracer{}
	}
	return &Engine{
		manager:      behaviortree.NewManager(),
		tracer:       tracer,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// runTicker adapts a Tree's run into a behaviortree.Ticker, so the Engine's Manager can cancel every in-flight
// run_tree as a group on Stop (e.g. during coordinator shutdown).
type runTicker struct {
	done   chan struct{}
	once   sync.Once
	stopFn func()
}

func (r *runTicker) Done() <-chan struct{} { return r.done }
func (r *runTicker) Err() error            { return nil }
func (r *runTicker) Stop()                 { r.once.Do(func() { r.stopFn() }) }

// RunTree ticks tree to completion under parentCtx, returning the final Result. It registers the run with the
// Engine's Manager so Stop can cancel it as part of a group shutdown; stop_tree instead calls Tree.Stop directly.
func (e *Engine) RunTree(parentCtx context.Context, tree *Tree) Result {
	runCtx, finish := tree.beginRun(parentCtx)
	defer finish()

	rt := &runTicker{done: make(chan struct{}), stopFn: tree.Stop}
	defer close(rt.done)
	if err := e.manager.Add(rt); err != nil && e.logger != nil {
		e.logger.WithError(err).Debug("run_tree not tracked by shutdown manager")
	}

	return e.tick(runCtx, tree)
}

// Stop cancels every tree run currently tracked by the engine (used on coordinator shutdown).
func (e *Engine) Stop() {
	e.manager.Stop()
	<-e.manager.Done()
}

func (e *Engine) tick(ctx context.Context, tree *Tree) Result {
	for {
		if err := ctx.Err(); err != nil {
			return cancellationResult(err)
		}

		span := e.tracer.StartSpan("xnode::tick")
		status, err := tree.Root.Tick()
		span.LogFields(
			otlog.String("tree_id", tree.ID),
			otlog.String("result", status.String()),
		)
		span.Finish()

		if err != nil {
			tag := TagOf(err)
			if tag == "" {
				tag = RemoteError
			}
			return Failure(tag)
		}

		switch status {
		case behaviortree.Success:
			return Success(nil)
		case behaviortree.Failure:
			return Failure("")
		default: // Running
			select {
			case <-ctx.Done():
				return cancellationResult(ctx.Err())
			case <-time.After(e.tickInterval):
				continue
			}
		}
	}
}

func cancellationResult(err error) Result {
	if err == context.DeadlineExceeded {
		return Failure(Timeout)
	}
	return Failure(Cancelled)
}
