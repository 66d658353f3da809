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

// Invert constructs a decorator node with a single child, swapping Success and Failure outcomes of that child
// (Running passes through unchanged), by way of Not.
func Invert(child Node) Node {
	return New(Not(func([]Node) (Status, error) { return child.Tick() }))
}
