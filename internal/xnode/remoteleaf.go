package xnode

import (
	"context"

	"github.com/xnodehq/xnode/behaviortree"
)

// Invoker is the subset of Router used by a RemoteLeaf, allowing tests to substitute a fake without a real
// Session/Channel.
type Invoker interface {
	Invoke(ctx context.Context, leafName string) Result
}

// toStatusErr always returns a nil error: per spec.md §7, a transient invocation failure (LeafUnavailable,
// RemoteError, Timeout, Cancelled) is "tick sees Failure" - a plain business outcome the tree's own composite
// semantics fold in, not a Go error that aborts the teacher's Sequence/Selector/Parallel evaluation. The tag
// itself is already on record in history (history.Update ran before this is called); there is nothing left for
// the Tick's error return to carry.
func toStatusErr(r Result, leafName string) (behaviortree.Status, error) {
	return r.Status, nil
}

// NewActionLeaf builds the behaviortree.Node for an ActionNode leaf, per spec.md §4.1: executeOnce short-circuits
// once the leaf has previously completed with Success; repeat ticks the remote leaf up to count times, failing
// fast on the first Failure; otherwise the leaf is invoked exactly once. ctxFn supplies the context.Context each
// invocation is bound to - the tree's root run context, or a Timeout decorator's scope context.
func NewActionLeaf(name string, repeat bool, count int, executeOnce bool, invoker Invoker, history *Context, ctxFn func() context.Context) behaviortree.Node {
	return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		if executeOnce && history.HasCompleted(name) {
			return behaviortree.Success, nil
		}

		invokeOnce := func() (behaviortree.Status, error) {
			result := invoker.Invoke(ctxFn(), name)
			history.Update(name, result)
			return toStatusErr(result, name)
		}

		if repeat {
			n := count
			if n < 1 {
				n = 1
			}
			for i := 0; i < n; i++ {
				status, err := invokeOnce()
				if err != nil || status != behaviortree.Success {
					return status, err
				}
			}
			return behaviortree.Success, nil
		}

		return invokeOnce()
	})
}

// NewConditionLeaf builds the behaviortree.Node for a ConditionNode leaf: a single invocation per tick, mapped to
// Success/Failure and recorded in history.
func NewConditionLeaf(name string, invoker Invoker, history *Context, ctxFn func() context.Context) behaviortree.Node {
	return behaviortree.New(func([]behaviortree.Node) (behaviortree.Status, error) {
		result := invoker.Invoke(ctxFn(), name)
		history.Update(name, result)
		return toStatusErr(result, name)
	})
}
