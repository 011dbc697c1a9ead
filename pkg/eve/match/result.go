// Copyright © 2023 Rak Laptudirm <rak@laptudirm.com>
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

package match

import (
	"fmt"
	"strings"
	"time"

	"laptudirm.com/x/referee/pkg/game"
)

// Outcome is the state of the round driver.
type Outcome int

const (
	Running       Outcome = iota // Running round.
	Terminal                     // Ended in a terminal state.
	CycleDetected                // Ended because a state repeated.
	Aborted                      // Ended by a faulty agent or cancellation.
)

// String returns a string representation of the given Outcome.
func (outcome Outcome) String() string {
	switch outcome {
	case Running:
		return "running"
	case Terminal:
		return "terminal"
	case CycleDetected:
		return "cycle"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result is the record of a single round.
type Result struct {
	Game    string
	Players []string

	// Trajectory is every state of the round in order, and Actions[i] is
	// the action which led from Trajectory[i] to Trajectory[i+1].
	Trajectory game.Trajectory
	Actions    []game.Action

	Outcome Outcome

	// Rewards of each player, only set if the Outcome is Terminal.
	Rewards []float64

	// Faulty is the player which aborted the round, or -1.
	Faulty int
	Err    error

	InvalidActions int
	Duration       time.Duration
}

// Turns returns the number of state transitions in the round.
func (result *Result) Turns() int {
	return len(result.Actions)
}

// Winners returns the players with the highest reward. It returns nil if
// the round did not reach a terminal state, or if every player got the
// same reward.
func (result *Result) Winners() []int {
	if result.Outcome != Terminal || len(result.Rewards) == 0 {
		return nil
	}

	best := result.Rewards[0]
	for _, reward := range result.Rewards[1:] {
		best = max(best, reward)
	}

	var winners []int
	for player, reward := range result.Rewards {
		if reward == best {
			winners = append(winners, player)
		}
	}

	if len(winners) == len(result.Rewards) {
		return nil
	}

	return winners
}

// String returns a human readable summary of the Result.
func (result *Result) String() string {
	switch result.Outcome {
	case Terminal:
		winners := result.Winners()
		if winners == nil {
			return fmt.Sprintf("Draw after %d turns", result.Turns())
		}

		names := make([]string, len(winners))
		for i, player := range winners {
			names[i] = result.player(player)
		}

		return fmt.Sprintf("%s wins after %d turns", strings.Join(names, ", "), result.Turns())

	case CycleDetected:
		return fmt.Sprintf("Draw by repetition after %d turns", result.Turns())

	case Aborted:
		if result.Faulty >= 0 {
			return fmt.Sprintf("Aborted by %s: %v", result.player(result.Faulty), result.Err)
		}

		return fmt.Sprintf("Aborted: %v", result.Err)
	}

	return "illegal result"
}

func (result *Result) player(id int) string {
	if id < len(result.Players) {
		return result.Players[id]
	}

	return fmt.Sprintf("player%d", id+1)
}
