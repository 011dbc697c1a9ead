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

// Package chess implements the game of chess on top of mess. Actions are
// moves in UCI long algebraic notation, like "e2e4".
package chess

import (
	"fmt"
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/formats/fen"

	"laptudirm.com/x/referee/pkg/game"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// Chess starts every round from FEN, or the standard starting position.
type Chess struct {
	FEN string
}

func (Chess) Name() string { return "chess" }

func (Chess) Players() (min, max int) { return 2, 2 }

func (chess Chess) Init([]game.Agent) game.State {
	position := chess.FEN
	if position == "" {
		position = StartFEN
	}

	return newState(position)
}

// Result is the reason a game of chess ended.
type Result string

const (
	Ongoing              Result = ""
	Checkmate            Result = "checkmate"
	Stalemate            Result = "stalemate"
	FiftyMoveRule        Result = "50-move rule"
	InsufficientMaterial Result = "insufficient material"
)

// State is a chess position. It is fully described by its FEN string;
// everything else is derived from it on creation.
type State struct {
	fen    string
	key    string
	turn   int
	moves  []string
	result Result
}

func newState(position string) State {
	b := board.New(board.FEN(fen.FromString(position)))
	return fromBoard(b)
}

func fromBoard(b *board.Board) State {
	fields := [6]string(b.FEN())

	state := State{
		fen: strings.Join(fields[:], " "),
		// The clocks don't take part in the identity of a position.
		key: strings.Join(fields[:4], " "),
	}

	if fields[1] == "b" {
		state.turn = 1
	}

	for _, m := range b.GenerateMoves(false) {
		state.moves = append(state.moves, m.String())
	}

	switch {
	case len(state.moves) == 0:
		if b.IsInCheck(b.SideToMove) {
			state.result = Checkmate
		} else {
			state.result = Stalemate
		}

	case b.DrawClock >= 100:
		state.result = FiftyMoveRule
	case b.IsInsufficientMaterial():
		state.result = InsufficientMaterial
	}

	if state.result != Ongoing {
		state.moves = nil
	}

	return state
}

func (state State) NumPlayers() int    { return 2 }
func (state State) CurrentPlayer() int { return state.turn }
func (state State) IsTerminal() bool   { return state.result != Ongoing }

// Result returns the reason the game ended, or Ongoing.
func (state State) Result() Result { return state.result }

func (state State) Actions() []game.Action {
	actions := make([]game.Action, len(state.moves))
	for i, m := range state.moves {
		actions[i] = m
	}

	return actions
}

func (state State) Reward(player int) (float64, error) {
	switch {
	case !state.IsTerminal():
		return 0, game.ErrInvalidQuery
	case state.result != Checkmate:
		return 0, nil
	case player == state.turn:
		// The side to move has been mated.
		return -1, nil
	default:
		return 1, nil
	}
}

func (state State) Act(action game.Action) (game.State, error) {
	if str, ok := action.(string); ok {
		action = strings.ToLower(str)
	}

	if err := game.Validate(state, action); err != nil {
		return nil, err
	}

	b := board.New(board.FEN(fen.FromString(state.fen)))
	for _, m := range b.GenerateMoves(false) {
		if m.String() == action.(string) {
			b.MakeMove(m)
			return fromBoard(b), nil
		}
	}

	return nil, fmt.Errorf("%w: %v", game.ErrInvalidAction, action)
}

func (state State) Draw() string {
	fields := strings.Fields(state.fen)

	var b strings.Builder
	for i, rank := range strings.Split(fields[0], "/") {
		fmt.Fprintf(&b, "%d ", 8-i)
		for _, square := range rank {
			if square >= '1' && square <= '8' {
				b.WriteString(strings.Repeat(". ", int(square-'0')))
				continue
			}

			b.WriteRune(square)
			b.WriteByte(' ')
		}

		b.WriteByte('\n')
	}

	b.WriteString("  a b c d e f g h\n\n")

	switch {
	case state.result == Checkmate:
		fmt.Fprintf(&b, "%s is checkmated\n", side(state.turn))
	case state.IsTerminal():
		fmt.Fprintf(&b, "draw by %s\n", state.result)
	default:
		fmt.Fprintf(&b, "%s to move\n", side(state.turn))
	}

	return b.String()
}

func side(turn int) string {
	if turn == 0 {
		return "white"
	}

	return "black"
}

// Notation returns the FEN string of the position.
func (state State) Notation() string { return state.fen }

func (state State) Hash() game.StateHash {
	return game.HashString(state.key)
}

func (state State) Equal(other game.State) bool {
	o, ok := other.(State)
	return ok && o.key == state.key
}
