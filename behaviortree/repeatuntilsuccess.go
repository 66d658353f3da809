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

// RepeatUntilSuccess constructs a decorator node with a single child, ticking that child up to maxRetries times
// serially within a single outer tick. The first Success returns Success immediately, short-circuiting the
// remaining iterations; a Running status is likewise returned immediately, without counting towards maxRetries. If
// child fails on every one of the maxRetries iterations, RepeatUntilSuccess fails. A non-positive maxRetries fails
// without ticking the child.
func RepeatUntilSuccess(child Node, maxRetries int) Node {
	return New(func([]Node) (Status, error) {
		for i := 0; i < maxRetries; i++ {
			status, err := child.Tick()
			if err != nil {
				return Failure, err
			}
			switch status {
			case Success:
				return Success, nil
			case Running:
				return Running, nil
			}
		}
		return Failure, nil
	})
}
