// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package game

import "github.com/cespare/xxhash/v2"

// Trajectory is the ordered list of States a round went through, where
// the first element is the initial State.
type Trajectory []State

// Last returns the final State of the trajectory.
func (trajectory Trajectory) Last() State {
	if len(trajectory) == 0 {
		return nil
	}

	return trajectory[len(trajectory)-1]
}

// Index returns the index of the first State in the trajectory which is
// equal to state, or -1 if there is none.
func (trajectory Trajectory) Index(state State) int {
	for i, seen := range trajectory {
		if seen.Hash() == state.Hash() && seen.Equal(state) {
			return i
		}
	}

	return -1
}

// History remembers the States seen in a round, bucketed by their hashes,
// so that repetitions can be found without a linear scan.
type History struct {
	seen map[StateHash][]State
}

func NewHistory() *History {
	return &History{seen: make(map[StateHash][]State)}
}

// Add records state and reports whether an equal State was already
// recorded before.
func (history *History) Add(state State) (repeated bool) {
	hash := state.Hash()
	for _, seen := range history.seen[hash] {
		if seen.Equal(state) {
			return true
		}
	}

	history.seen[hash] = append(history.seen[hash], state)
	return false
}

// HashString is a convenience for States whose identity can be written
// down as a string, like a FEN.
func HashString(key string) StateHash {
	return StateHash(xxhash.Sum64String(key))
}
