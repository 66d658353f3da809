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
	"testing"
	"time"
)

func TestTimeout_childFastEnough(t *testing.T) {
	var scope Context
	child := New(func([]Node) (Status, error) { return Success, nil })
	node := Timeout(&scope, func() context.Context { return context.Background() }, time.Second, child)

	if status, err := node.Tick(); status != Success || err != nil {
		t.Fatal(status, err)
	}
}

func TestTimeout_childTooSlow(t *testing.T) {
	var scope Context
	started := make(chan struct{})
	release := make(chan struct{})
	child := New(func([]Node) (Status, error) {
		close(started)
		<-release
		return Success, nil
	})
	node := Timeout(&scope, func() context.Context { return context.Background() }, time.Millisecond, child)

	status, err := node.Tick()
	<-started
	close(release)

	if status != Failure || err != nil {
		t.Fatal(status, err)
	}
	if scope.ctx.Err() == nil {
		t.Error("expected scope context to be done")
	}
}

func TestTimeout_resetsAcrossTicks(t *testing.T) {
	var scope Context
	child := New(func([]Node) (Status, error) { return Success, nil })
	node := Timeout(&scope, func() context.Context { return context.Background() }, time.Millisecond, child)

	for i := 0; i < 3; i++ {
		if status, err := node.Tick(); status != Success || err != nil {
			t.Fatal(i, status, err)
		}
		// each tick should get its own fresh, not-yet-expired deadline
		if err := scope.ctx.Err(); err != nil {
			t.Fatal(i, err)
		}
	}
}

func TestTimeout_parentCancellation(t *testing.T) {
	var scope Context
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	started := make(chan struct{})
	release := make(chan struct{})
	child := New(func([]Node) (Status, error) {
		close(started)
		<-release
		return Success, nil
	})
	node := Timeout(&scope, func() context.Context { return parent }, time.Second, child)

	status, err := node.Tick()
	<-started
	close(release)

	if status != Failure || err != nil {
		t.Fatal(status, err)
	}
}
