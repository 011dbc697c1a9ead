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

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidAction is the rejection returned by State.Act.
	ErrInvalidAction = errors.New("game: invalid action")

	// ErrTerminal is returned when acting in a terminal State.
	ErrTerminal = fmt.Errorf("%w: state is terminal", ErrInvalidAction)

	// ErrInvalidQuery is returned by State.Reward on non-terminal States.
	ErrInvalidQuery = errors.New("game: reward queried on a non-terminal state")
)

// Validate checks that action can be performed in state. Implementations of
// State.Act should call it before computing the next State.
func Validate(state State, action Action) error {
	if state.IsTerminal() {
		return ErrTerminal
	}

	actions := state.Actions()
	if !Contains(actions, action) {
		return fmt.Errorf(
			"%w: %v (allowed actions: %s)",
			ErrInvalidAction, action, FormatActions(actions),
		)
	}

	return nil
}

// Contains reports whether action is one of actions.
func Contains(actions []Action, action Action) bool {
	for _, legal := range actions {
		if legal == action {
			return true
		}
	}

	return false
}

// FormatActions returns a space separated list of the given actions.
func FormatActions(actions []Action) string {
	words := make([]string, len(actions))
	for i, action := range actions {
		words[i] = fmt.Sprint(action)
	}

	return strings.Join(words, " ")
}
