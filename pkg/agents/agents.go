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

// Package agents implements the agents shipped with the referee.
package agents

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"laptudirm.com/x/referee/pkg/game"
)

type Config struct {
	Name string `yaml:"name"`

	// Kind is one of random, first, or process.
	Kind string `yaml:"kind"`

	// Seed of the random agent. Zero picks a seed from the clock.
	Seed uint64 `yaml:"seed"`

	// Process agent stuff.
	Cmd     string        `yaml:"cmd"`
	Dir     string        `yaml:"dir"`
	Arg     string        `yaml:"arg"`
	InitStr string        `yaml:"init-string"`
	Timeout time.Duration `yaml:"timeout"`
}

// Kinds are the kinds of agents New knows how to create.
var Kinds = []string{"random", "first", "process"}

// New creates the agent described by config.
func New(config Config) (game.Agent, error) {
	if config.Name == "" {
		config.Name = config.Kind
	}

	switch config.Kind {
	case "random", "":
		return NewRandom(config.Name, config.Seed), nil
	case "first":
		return First{AgentName: config.Name}, nil
	case "process":
		return StartProcess(config)
	default:
		return nil, fmt.Errorf("new agent: invalid kind %q", config.Kind)
	}
}

// Close releases the resources held by the given agents, like external
// processes.
func Close(agents []game.Agent) {
	for _, agent := range agents {
		if process, ok := agent.(*Process); ok {
			_ = process.Kill()
		}
	}
}

var ErrNoActions = errors.New("agents: no legal actions")

// Random plays a uniformly random legal action.
type Random struct {
	AgentName string
	rng       *rand.Rand
}

func NewRandom(name string, seed uint64) *Random {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return &Random{AgentName: name, rng: rand.New(rand.NewSource(seed))}
}

func (agent *Random) Name() string { return agent.AgentName }

func (agent *Random) Decide(state game.State) (game.Action, error) {
	actions := state.Actions()
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	return actions[agent.rng.Intn(len(actions))], nil
}

// First always plays the first legal action.
type First struct {
	AgentName string
}

func (agent First) Name() string { return agent.AgentName }

func (First) Decide(state game.State) (game.Action, error) {
	actions := state.Actions()
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	return actions[0], nil
}
