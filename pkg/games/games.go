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

// Package games is the registry of the games shipped with the referee.
package games

import (
	"fmt"
	"sort"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/games/chess"
	"laptudirm.com/x/referee/pkg/games/nim"
)

var registry = map[string]game.Type{
	"chess": chess.Chess{},
	"nim":   nim.Nim{},
}

// Get returns the game with the given name.
func Get(name string) (game.Type, error) {
	if typ, found := registry[name]; found {
		return typ, nil
	}

	return nil, fmt.Errorf("get game: unknown game %q", name)
}

// Names returns the names of every registered game in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// Options customize the shipped games. Each game ignores the options
// meant for the others.
type Options struct {
	// Heaps of a nim game.
	Heaps []int `yaml:"heaps"`

	// FEN of the starting position of a chess game.
	FEN string `yaml:"fen"`
}

// Configure returns the game with the given name, set up with options.
func Configure(name string, options Options) (game.Type, error) {
	typ, err := Get(name)
	if err != nil {
		return nil, err
	}

	switch typ := typ.(type) {
	case nim.Nim:
		for _, heap := range options.Heaps {
			if heap < 0 {
				return nil, fmt.Errorf("configure nim: negative heap %d", heap)
			}
		}

		typ.Heaps = options.Heaps
		return typ, nil

	case chess.Chess:
		typ.FEN = options.FEN
		return typ, nil
	}

	return typ, nil
}

// PlayerCounter is implemented by games which only support some numbers
// of players.
type PlayerCounter interface {
	Players() (min, max int)
}

// CheckPlayers returns an error if typ can't be played by n players.
func CheckPlayers(typ game.Type, n int) error {
	counter, ok := typ.(PlayerCounter)
	if !ok {
		return nil
	}

	if min, max := counter.Players(); n < min || n > max {
		if min == max {
			return fmt.Errorf("%s: needs %d players, got %d", typ.Name(), min, n)
		}

		return fmt.Errorf("%s: needs %d to %d players, got %d", typ.Name(), min, max, n)
	}

	return nil
}
