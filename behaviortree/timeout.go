/*
   Copyright 2026 Joseph Cumines

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package behaviortree

import (
	"context"
	"time"
)

// Timeout constructs a decorator node with a single child, bounding each outer tick of that child to duration.
// scope is reconfigured to derive from parentFn() with a fresh deadline and (re)initialised at the start of every
// outer tick of the returned node (cancelling whatever context a prior tick left running), so that anything under
// child observing scope's context - most importantly a RemoteLeaf - unblocks with ctx.Err() once the deadline
// elapses. parentFn is called fresh on every outer tick (typically returning the tree run's current root context),
// so only the deadline, not the parent, is considered fixed at construction time.
//
// If child does not return before the deadline of its own accord, Timeout reports a clean Failure (nil error) once
// scope's context is done, without waiting on child further (child's goroutine, if any, is expected to observe
// cancellation itself). A deadline expiry is a tick-sees-Failure outcome like any other transient invocation
// failure, not a Go error: it must not abort a parent Selector/Sequence/Parallel's own evaluation.
func Timeout(scope *Context, parentFn func() context.Context, duration time.Duration, child Node) Node {
	if parentFn == nil {
		parentFn = context.Background
	}
	return New(func([]Node) (Status, error) {
		parent := parentFn()
		if parent == nil {
			parent = context.Background()
		}
		scope.WithTimeout(parent, duration)
		if _, err := scope.Init(nil); err != nil {
			return Failure, err
		}

		type result struct {
			status Status
			err    error
		}
		done := make(chan result, 1)
		go func() {
			status, err := child.Tick()
			done <- result{status, err}
		}()

		select {
		case r := <-done:
			return r.status, r.err
		case <-scope.ctx.Done():
			return Failure, nil
		}
	})
}
