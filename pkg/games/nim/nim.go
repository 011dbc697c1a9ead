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

// Package nim implements normal play nim for any number of players: the
// player who takes the last object wins.
package nim

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"laptudirm.com/x/referee/pkg/game"
)

// DefaultHeaps are the heaps of a game of nim if none are specified.
var DefaultHeaps = []int{3, 4, 5}

type Nim struct {
	Heaps []int
}

func (Nim) Name() string { return "nim" }

func (Nim) Players() (min, max int) { return 1, 16 }

func (nim Nim) Init(agents []game.Agent) game.State {
	heaps := nim.Heaps
	if len(heaps) == 0 {
		heaps = DefaultHeaps
	}

	return State{heaps: slices.Clone(heaps), players: len(agents), winner: -1}
}

// Take removes Count objects from the heap at index Heap.
type Take struct {
	Heap, Count int
}

func (take Take) String() string {
	return fmt.Sprintf("%d:%d", take.Heap, take.Count)
}

// State is a position of nim. Its heaps are never modified after it has
// been created.
type State struct {
	heaps   []int
	players int
	turn    int
	winner  int
}

func (state State) NumPlayers() int    { return state.players }
func (state State) CurrentPlayer() int { return state.turn }

func (state State) IsTerminal() bool {
	for _, heap := range state.heaps {
		if heap > 0 {
			return false
		}
	}

	return true
}

func (state State) Actions() []game.Action {
	var actions []game.Action
	for heap, size := range state.heaps {
		for count := 1; count <= size; count++ {
			actions = append(actions, Take{Heap: heap, Count: count})
		}
	}

	return actions
}

func (state State) Reward(player int) (float64, error) {
	if !state.IsTerminal() {
		return 0, game.ErrInvalidQuery
	}

	if player == state.winner {
		return 1, nil
	}

	return -1, nil
}

func (state State) Act(action game.Action) (game.State, error) {
	if err := game.Validate(state, action); err != nil {
		return nil, err
	}

	take := action.(Take)
	next := State{
		heaps:   slices.Clone(state.heaps),
		players: state.players,
		turn:    (state.turn + 1) % state.players,
		winner:  -1,
	}

	next.heaps[take.Heap] -= take.Count
	if next.IsTerminal() {
		next.winner = state.turn
	}

	return next, nil
}

// Heaps returns the sizes of the heaps.
func (state State) Heaps() []int {
	return slices.Clone(state.heaps)
}

func (state State) Draw() string {
	var b strings.Builder
	for i, heap := range state.heaps {
		fmt.Fprintf(&b, "%2d │ %s\n", i, strings.Repeat("● ", heap))
	}

	if state.IsTerminal() {
		fmt.Fprintf(&b, "player %d took the last object\n", state.winner+1)
	} else {
		fmt.Fprintf(&b, "player %d to move\n", state.turn+1)
	}

	return b.String()
}

func (state State) Notation() string {
	sizes := make([]string, len(state.heaps))
	for i, heap := range state.heaps {
		sizes[i] = strconv.Itoa(heap)
	}

	return strings.Join(sizes, ",") + "/" + strconv.Itoa(state.turn)
}

func (state State) Hash() game.StateHash {
	return game.HashString(state.Notation())
}

func (state State) Equal(other game.State) bool {
	o, ok := other.(State)
	return ok && o.turn == state.turn && o.winner == state.winner && slices.Equal(o.heaps, state.heaps)
}
