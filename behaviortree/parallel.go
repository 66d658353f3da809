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

import "fmt"

// Parallel generates a tick implementation that ticks every child, in order, within a single outer tick, counting
// successes and failures as it goes. It returns Success as soon as the success count reaches threshold, and Failure
// as soon as the failure count exceeds len(children)-threshold, otherwise Running. Unlike Sequence and Selector,
// Parallel never short-circuits on an individual child's status - every child is ticked every outer tick (callers
// that need previously-terminal children to be skipped should wrap the result with Memorize).
func Parallel(threshold int) Tick {
	return func(children []Node) (Status, error) {
		var successes, failures int
		for i, c := range children {
			status, err := c.Tick()
			if err != nil {
				return Failure, fmt.Errorf("bt.Parallel encountered error with child at index %d: %s", i, err.Error())
			}
			switch status {
			case Success:
				successes++
			case Failure:
				failures++
			}
		}
		if successes >= threshold {
			return Success, nil
		}
		if failures > len(children)-threshold {
			return Failure, nil
		}
		return Running, nil
	}
}
