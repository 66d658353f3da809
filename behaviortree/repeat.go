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

// Repeat constructs a decorator node with a single child, ticking that child up to n times serially within a
// single outer tick. Any Failure (or error) from child is returned immediately, short-circuiting the remaining
// iterations; a Running status is likewise returned immediately, without counting towards n. If child succeeds on
// every one of the n iterations, Repeat succeeds. A non-positive n succeeds without ticking the child.
func Repeat(child Node, n int) Node {
	return New(func([]Node) (Status, error) {
		for i := 0; i < n; i++ {
			status, err := child.Tick()
			if err != nil {
				return Failure, err
			}
			switch status {
			case Failure:
				return Failure, nil
			case Running:
				return Running, nil
			}
		}
		return Success, nil
	})
}
