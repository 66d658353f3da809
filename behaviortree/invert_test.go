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
	"errors"
	"testing"
)

func TestInvert_success(t *testing.T) {
	child := New(func([]Node) (Status, error) { return Success, nil })
	if status, err := Invert(child).Tick(); status != Failure || err != nil {
		t.Error(status, err)
	}
}

func TestInvert_failure(t *testing.T) {
	child := New(func([]Node) (Status, error) { return Failure, nil })
	if status, err := Invert(child).Tick(); status != Success || err != nil {
		t.Error(status, err)
	}
}

func TestInvert_running(t *testing.T) {
	child := New(func([]Node) (Status, error) { return Running, nil })
	if status, err := Invert(child).Tick(); status != Running || err != nil {
		t.Error(status, err)
	}
}

func TestInvert_error(t *testing.T) {
	child := New(func([]Node) (Status, error) { return Failure, errors.New(`some_err`) })
	status, err := Invert(child).Tick()
	if status != Failure || err == nil || err.Error() != `some_err` {
		t.Error(status, err)
	}
}
