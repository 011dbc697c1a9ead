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

// Package gametest provides small scripted games and agents for testing
// code which drives games.
package gametest

import (
	"errors"
	"fmt"
	"sync"

	"laptudirm.com/x/referee/pkg/game"
)

// Countdown is a game where players take turns subtracting one or two from
// a counter. The player who brings the counter to zero wins.
type Countdown struct {
	Start int
}

func (Countdown) Name() string { return "countdown" }

func (countdown Countdown) Init(agents []game.Agent) game.State {
	return CountdownState{Remaining: countdown.Start, Players: len(agents), Winner: -1}
}

type CountdownState struct {
	Remaining int
	Players   int
	Turn      int
	Winner    int
}

func (state CountdownState) NumPlayers() int    { return state.Players }
func (state CountdownState) CurrentPlayer() int { return state.Turn }
func (state CountdownState) IsTerminal() bool   { return state.Remaining == 0 }

func (state CountdownState) Actions() []game.Action {
	switch {
	case state.Remaining >= 2:
		return []game.Action{1, 2}
	case state.Remaining == 1:
		return []game.Action{1}
	default:
		return nil
	}
}

func (state CountdownState) Reward(player int) (float64, error) {
	if !state.IsTerminal() {
		return 0, game.ErrInvalidQuery
	}

	if player == state.Winner {
		return 1, nil
	}

	return -1, nil
}

func (state CountdownState) Act(action game.Action) (game.State, error) {
	if err := game.Validate(state, action); err != nil {
		return nil, err
	}

	next := state
	next.Remaining -= action.(int)
	if next.Remaining == 0 {
		next.Winner = state.Turn
	}

	next.Turn = (state.Turn + 1) % state.Players
	return next, nil
}

func (state CountdownState) Draw() string {
	return fmt.Sprintf("remaining: %03d turn: %d", state.Remaining, state.Turn)
}

func (state CountdownState) Notation() string {
	return fmt.Sprintf("%d/%d", state.Remaining, state.Turn)
}

func (state CountdownState) Hash() game.StateHash {
	return game.HashString(state.Notation())
}

func (state CountdownState) Equal(other game.State) bool {
	o, ok := other.(CountdownState)
	return ok && o == state
}

// Toggle is a game which never ends: its single action flips between two
// positions, so it repeats itself after two turns.
type Toggle struct{}

func (Toggle) Name() string { return "toggle" }

func (Toggle) Init(agents []game.Agent) game.State {
	return ToggleState{Players: len(agents)}
}

type ToggleState struct {
	On      bool
	Players int
	Turn    int
}

// Flip is the only action of the Toggle game.
const Flip = "flip"

func (state ToggleState) NumPlayers() int        { return state.Players }
func (state ToggleState) CurrentPlayer() int     { return state.Turn }
func (state ToggleState) IsTerminal() bool       { return false }
func (state ToggleState) Actions() []game.Action { return []game.Action{Flip} }

func (state ToggleState) Reward(int) (float64, error) {
	return 0, game.ErrInvalidQuery
}

func (state ToggleState) Act(action game.Action) (game.State, error) {
	if err := game.Validate(state, action); err != nil {
		return nil, err
	}

	// The turn does not take part in equality, so a single player cycles
	// just like two.
	return ToggleState{On: !state.On, Players: state.Players, Turn: (state.Turn + 1) % state.Players}, nil
}

func (state ToggleState) Draw() string {
	if state.On {
		return "[on ]"
	}

	return "[off]"
}

func (state ToggleState) Hash() game.StateHash {
	if state.On {
		return 1
	}

	return 0
}

func (state ToggleState) Equal(other game.State) bool {
	o, ok := other.(ToggleState)
	return ok && o.On == state.On
}

// Scripted is an agent which plays the given actions in order, and the
// first legal action once the script runs out. It records every state it
// was asked to decide in and every trajectory it learnt from.
type Scripted struct {
	AgentName string
	Script    []game.Action

	// LearnErr, if set, is returned from Learn. LearnPanic makes Learn
	// panic instead.
	LearnErr   error
	LearnPanic bool

	mu      sync.Mutex
	decided []game.State
	learnt  []game.Trajectory
	players []int
}

func (agent *Scripted) Name() string { return agent.AgentName }

func (agent *Scripted) Decide(state game.State) (game.Action, error) {
	agent.mu.Lock()
	defer agent.mu.Unlock()

	agent.decided = append(agent.decided, state)
	if len(agent.Script) > 0 {
		action := agent.Script[0]
		agent.Script = agent.Script[1:]
		return action, nil
	}

	actions := state.Actions()
	if len(actions) == 0 {
		return nil, errors.New("gametest: no legal actions")
	}

	return actions[0], nil
}

func (agent *Scripted) Learn(states game.Trajectory, player int) error {
	agent.mu.Lock()
	agent.learnt = append(agent.learnt, states)
	agent.players = append(agent.players, player)
	agent.mu.Unlock()

	if agent.LearnPanic {
		panic("gametest: learn panicked")
	}

	return agent.LearnErr
}

// Decided returns the number of times Decide was called.
func (agent *Scripted) Decided() int {
	agent.mu.Lock()
	defer agent.mu.Unlock()
	return len(agent.decided)
}

// Learnt returns the trajectories and player ids Learn was called with.
func (agent *Scripted) Learnt() ([]game.Trajectory, []int) {
	agent.mu.Lock()
	defer agent.mu.Unlock()
	return agent.learnt, agent.players
}

// Broken is an agent that only ever proposes an illegal action.
type Broken struct{}

func (Broken) Decide(game.State) (game.Action, error) {
	return "illegal", nil
}
