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

// Package game defines the contracts that a turn based game and the agents
// playing it have to satisfy to be driven by the referee.
package game

import "strconv"

// Action is an opaque move. It is only meaningful relative to the State
// which produced it, and its dynamic type must be comparable with ==.
type Action any

// StateHash is a bucket key for a State. Equal states must have equal
// hashes, but equal hashes do not imply equal states.
type StateHash uint64

// State is an immutable snapshot of a game. None of its methods may modify
// the receiver: Act returns a new State, which lets agents look into the
// future without affecting the game being played.
type State interface {
	// NumPlayers returns the number of players in the game.
	NumPlayers() int

	// CurrentPlayer returns the id of the player to move, which is in the
	// range [0, NumPlayers).
	CurrentPlayer() int

	// IsTerminal reports whether the game is over.
	IsTerminal() bool

	// Actions returns the legal actions of the current player. It is
	// empty iff the state is terminal.
	Actions() []Action

	// Reward returns the payoff of the given player. It fails with
	// ErrInvalidQuery if the state is not terminal.
	Reward(player int) (float64, error)

	// Act returns the State reached by performing action in this State.
	// Illegal actions, or any action in a terminal State, are rejected
	// with an error wrapping ErrInvalidAction.
	Act(action Action) (State, error)

	// Draw returns a textual picture of the State.
	Draw() string

	Hash() StateHash
	Equal(other State) bool
}

// Type creates the initial State of a game.
type Type interface {
	Name() string

	// Init returns the initial State for the given agents. Player ids are
	// assigned in the order of the agents slice.
	Init(agents []Agent) State
}

// Agent decides the actions of a player.
type Agent interface {
	// Decide returns the action to perform in the given State, which
	// should be one of state.Actions(). A non-nil error is handled the
	// same way as an illegal action.
	Decide(state State) (Action, error)
}

// Learner is implemented by agents which learn from finished rounds.
type Learner interface {
	// Learn is called once after every round with the complete trajectory
	// and the player id the agent played as.
	Learn(states Trajectory, player int) error
}

// Namer is implemented by agents that have a display name.
type Namer interface {
	Name() string
}

// Notation is implemented by states which can be described in a single
// line of text, like a FEN string.
type Notation interface {
	Notation() string
}

// AgentName returns the name of the agent if it has one, or a name
// derived from the player id otherwise.
func AgentName(agent Agent, player int) string {
	if namer, ok := agent.(Namer); ok && namer.Name() != "" {
		return namer.Name()
	}

	return "player" + strconv.Itoa(player+1)
}
