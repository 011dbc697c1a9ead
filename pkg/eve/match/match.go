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

// Package match implements the round driver, which plays a single game
// from its initial state until it ends or repeats itself.
package match

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/referee/pkg/game"
	"laptudirm.com/x/referee/pkg/metrics"
)

// DefaultMaxInvalidActions is the number of consecutive invalid actions
// an agent may propose before the round is aborted.
const DefaultMaxInvalidActions = 100

var (
	ErrNoAgents       = errors.New("match: no agents")
	ErrNoGame         = errors.New("match: no game type")
	ErrBadPlayer      = errors.New("match: current player out of range")
	ErrTooManyInvalid = errors.New("match: too many invalid actions")
)

// Drawer receives every state of a round as soon as it is reached.
type Drawer interface {
	Draw(state game.State)
}

// Pauser blocks until the round may continue.
type Pauser interface {
	Continue(ctx context.Context) error
}

type Config struct {
	Type   game.Type
	Agents []game.Agent

	Pacing      Pacing
	PauseOnTurn bool

	// MaxInvalidActions bounds the retries of a single turn. Zero means
	// DefaultMaxInvalidActions.
	MaxInvalidActions int

	// Drawer is nil when running headless.
	Drawer Drawer

	// Pauser is required if PauseOnTurn is set.
	Pauser Pauser
}

func (config *Config) validate() error {
	switch {
	case config.Type == nil:
		return ErrNoGame
	case len(config.Agents) == 0:
		return ErrNoAgents
	case config.PauseOnTurn && config.Pauser == nil:
		return errors.New("match: pause on turn without a pauser")
	}

	return nil
}

// Run plays a single round of the configured game. Faults of the agents
// never make Run fail; they are reported through the Result instead. The
// returned error is only non-nil if the Config is unusable.
func Run(ctx context.Context, config *Config) (Result, error) {
	if err := config.validate(); err != nil {
		return Result{}, err
	}

	limit := config.MaxInvalidActions
	if limit <= 0 {
		limit = DefaultMaxInvalidActions
	}

	name := config.Type.Name()
	players := make([]string, len(config.Agents))
	for i, agent := range config.Agents {
		players[i] = game.AgentName(agent, i)
	}

	startTime := time.Now()

	state := config.Type.Init(config.Agents)
	result := Result{
		Game:       name,
		Players:    players,
		Trajectory: game.Trajectory{state},
		Faulty:     -1,
	}

	history := game.NewHistory()
	history.Add(state)
	config.draw(state)

	// Seats take turns in order, starting from the initial state's player.
	player := state.CurrentPlayer()
	if !state.IsTerminal() && (player < 0 || player >= len(config.Agents)) {
		result.abort(-1, fmt.Errorf("%w: %d", ErrBadPlayer, player))
	}

	for result.Outcome == Running {
		if state.IsTerminal() {
			result.Outcome = Terminal
			break
		}

		if err := ctx.Err(); err != nil {
			result.abort(-1, err)
			break
		}

		if current := state.CurrentPlayer(); current != player {
			logrus.Debugf("%s: state says player %d is to move, seating %s", name, current+1, players[player])
		}

		turnStart := time.Now()
		action, next, err := config.turn(ctx, &result, state, player, limit)
		if err != nil {
			result.abort(player, err)
			break
		}

		metrics.Turns.WithLabelValues(name).Inc()
		logrus.Debugf("%s: %s played %v", name, players[player], action)

		result.Trajectory = append(result.Trajectory, next)
		result.Actions = append(result.Actions, action)
		state = next
		player = (player + 1) % len(config.Agents)
		config.draw(state)

		switch {
		case history.Add(state):
			logrus.Infof("%s: state of turn %d has been repeated, the game is over", name, result.Trajectory.Index(state))
			result.Outcome = CycleDetected
			continue

		case state.IsTerminal():
			result.Outcome = Terminal
			continue
		}

		if err := config.pause(ctx, turnStart); err != nil {
			result.abort(-1, err)
		}
	}

	if result.Outcome == Terminal {
		result.Rewards = rewards(state)
	}

	learn(name, config.Agents, result.Trajectory)

	metrics.Rounds.WithLabelValues(name, result.Outcome.String()).Inc()
	logrus.Infof("%s: %s", name, &result)

	if config.Drawer != nil {
		// The round is over anyway, so cancellation is irrelevant here.
		_ = sleep(context.WithoutCancel(ctx), config.Pacing.Round)
	}

	result.Duration = time.Since(startTime)
	return result, nil
}

// turn asks the given player for an action until it proposes a legal one,
// and returns that action along with the state it leads to.
func (config *Config) turn(ctx context.Context, result *Result, state game.State, player, limit int) (game.Action, game.State, error) {
	agent := config.Agents[player]

	for invalid := 0; ; {
		action, err := agent.Decide(state)
		if err == nil {
			var next game.State
			if next, err = state.Act(action); err == nil && next != nil {
				return action, next, nil
			}

			if err == nil {
				err = fmt.Errorf("%w: %v led nowhere", game.ErrInvalidAction, action)
			}
		}

		invalid++
		result.InvalidActions++
		metrics.InvalidActions.WithLabelValues(result.Game).Inc()
		logrus.Warnf("%s: invalid action performed by %s: %v", result.Game, result.Players[player], err)

		if invalid >= limit {
			return nil, nil, fmt.Errorf("%w: %d in a row", ErrTooManyInvalid, invalid)
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}
}

// pause waits out the rest of the turn's time budget and, if asked to,
// for the signal to continue.
func (config *Config) pause(ctx context.Context, turnStart time.Time) error {
	if config.Pacing.Turn > 0 {
		if err := sleep(ctx, config.Pacing.Turn-time.Since(turnStart)); err != nil {
			return err
		}
	}

	if config.PauseOnTurn {
		return config.Pauser.Continue(ctx)
	}

	return nil
}

func (config *Config) draw(state game.State) {
	if config.Drawer != nil {
		config.Drawer.Draw(state)
	}
}

func (result *Result) abort(player int, err error) {
	result.Outcome = Aborted
	result.Faulty = player
	result.Err = err
}

func rewards(state game.State) []float64 {
	rewards := make([]float64, state.NumPlayers())
	for player := range rewards {
		reward, err := state.Reward(player)
		if err != nil {
			logrus.Errorf("reward of player %d: %v", player+1, err)
			continue
		}

		rewards[player] = reward
	}

	return rewards
}

// learn lets every learning agent look back at the round. Failures are
// logged and do not affect the other agents.
func learn(name string, agents []game.Agent, trajectory game.Trajectory) {
	for player, agent := range agents {
		learner, ok := agent.(game.Learner)
		if !ok {
			continue
		}

		if err := safeLearn(learner, slices.Clone(trajectory), player); err != nil {
			metrics.LearnFailures.Inc()
			logrus.Errorf("%s: %s failed to learn: %v", name, game.AgentName(agent, player), err)
		}
	}
}

func safeLearn(learner game.Learner, trajectory game.Trajectory, player int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	return learner.Learn(trajectory, player)
}
