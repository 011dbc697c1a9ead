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

// Package session plays rounds of a game one after another until the
// replay policy says otherwise.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/referee/pkg/eve/match"
	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/render"
)

var ErrNoDisplay = errors.New("session: display requested without a coordinator")

// Confirmer asks the user a yes or no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Prompter is everything a session asks of the user: whether to play again
// and when to continue a paused round. Both render.Coordinator and
// prompt.Prompt are Prompters.
type Prompter interface {
	Confirmer
	match.Pauser
}

type Hooks struct {
	RoundStarted  func(round int)
	RoundFinished func(round int, result *match.Result)
}

type Config struct {
	Type   game.Type
	Agents []game.Agent

	// Display draws the rounds on the Coordinator, which also becomes the
	// session's Prompter. Pacing only applies when displaying.
	Display     bool
	Coordinator *render.Coordinator
	Pacing      match.Pacing

	Policy            Policy
	PauseOnTurn       bool
	MaxInvalidActions int

	// Prompter is used when running headless.
	Prompter Prompter

	Hooks Hooks
}

type Result struct {
	ID      uuid.UUID
	Game    string
	Players []string
	Policy  string

	Rounds []match.Result

	Started  time.Time
	Duration time.Duration
}

// Run plays the session. When displaying, the rounds are simulated on a
// new goroutine while the display loop runs on the calling one.
func Run(ctx context.Context, config *Config) (Result, error) {
	if config.Display && config.Coordinator == nil {
		return Result{}, ErrNoDisplay
	}

	if config.Policy == nil {
		config.Policy = Never{}
	}

	result := Result{
		ID:      uuid.New(),
		Players: make([]string, len(config.Agents)),
		Policy:  config.Policy.String(),
		Started: time.Now(),
	}

	if config.Type != nil {
		result.Game = config.Type.Name()
	}

	for i, agent := range config.Agents {
		result.Players[i] = game.AgentName(agent, i)
	}

	logrus.Debugf("Starting session %s of %s", result.ID, result.Game)

	if !config.Display {
		err := config.simulate(ctx, &result, config.Prompter)
		result.Duration = time.Since(result.Started)
		return result, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		err = config.simulate(ctx, &result, config.Coordinator)
	}()

	if quit := config.Coordinator.Run(done); quit != nil {
		cancel()
		<-done
		err = quit
	}

	result.Duration = time.Since(result.Started)
	return result, err
}

func (config *Config) simulate(ctx context.Context, result *Result, prompter Prompter) error {
	matchConfig := match.Config{
		Type:              config.Type,
		Agents:            config.Agents,
		PauseOnTurn:       config.PauseOnTurn,
		MaxInvalidActions: config.MaxInvalidActions,
	}

	if prompter != nil {
		matchConfig.Pauser = prompter
	}

	if config.Display {
		matchConfig.Drawer = config.Coordinator
		matchConfig.Pacing = config.Pacing
	}

	for round := 1; ; round++ {
		if config.Hooks.RoundStarted != nil {
			config.Hooks.RoundStarted(round)
		}

		roundResult, err := match.Run(ctx, &matchConfig)
		if err != nil {
			return err
		}

		result.Rounds = append(result.Rounds, roundResult)
		if config.Hooks.RoundFinished != nil {
			config.Hooks.RoundFinished(round, &result.Rounds[len(result.Rounds)-1])
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("session: %w", err)
		}

		var confirmer Confirmer
		if prompter != nil {
			confirmer = prompter
		}

		again, err := config.Policy.Again(ctx, round, confirmer)
		if err != nil {
			return fmt.Errorf("session: %w", err)
		}

		if !again {
			return nil
		}
	}
}
